// Package config handles configuration loading and validation for tether.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable holding the GitHub access token. The
// token is never read from the config file.
const TokenEnv = "TETHER_GITHUB_TOKEN"

// Config holds the application configuration.
type Config struct {
	GitHub  GitHubConfig  `yaml:"github"`
	Storage StorageConfig `yaml:"storage"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// GitHubConfig identifies the repository todo items are mirrored to.
type GitHubConfig struct {
	// Enabled overrides auto-detection: nil means enabled when owner and
	// repo are set, false disables the integration entirely.
	Enabled *bool  `yaml:"enabled"`
	Owner   string `yaml:"owner"`
	Repo    string `yaml:"repo"`
	// APIURL overrides the API base URL, for GitHub Enterprise hosts.
	APIURL string `yaml:"api_url"`
}

// IsConfigured reports whether both owner and repo are set.
func (c GitHubConfig) IsConfigured() bool {
	return c.Owner != "" && c.Repo != ""
}

// IsEnabled reports whether the GitHub integration should be used.
func (c GitHubConfig) IsEnabled() bool {
	if c.Enabled != nil {
		return *c.Enabled
	}
	return c.IsConfigured()
}

// FullName returns the owner/repo identifier.
func (c GitHubConfig) FullName() string {
	return c.Owner + "/" + c.Repo
}

// Backend selects an item store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// StorageConfig selects and configures the item store backend.
type StorageConfig struct {
	Backend Backend `yaml:"backend"`
	// Path is the JSON file location for the file backend. Defaults to
	// <data-dir>/todos.json.
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendFile,
		},
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. dataDir is carried on the returned config and used to
// resolve default storage paths.
func Load(path, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file is fine, defaults apply.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.DataDir = dataDir
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(dataDir, "todos.json")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.GitHub.Enabled != nil && *c.GitHub.Enabled && !c.GitHub.IsConfigured() {
		return fmt.Errorf("github integration enabled but owner/repo not set")
	}

	return nil
}

// Token returns the GitHub access token from the environment.
func Token() string {
	return os.Getenv(TokenEnv)
}
