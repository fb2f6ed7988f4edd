package commands

import (
	"context"

	"github.com/colonyops/tether/internal/core/config"
	"github.com/colonyops/tether/internal/github"
	"github.com/colonyops/tether/pkg/iojson"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

type ConfigValidateCmd struct {
	flags *Flags

	checkToken bool
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config command group to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate the configuration file",
				UsageText: "tether config validate [--check-token]",
				Description: `Validates the configuration file and reports the effective settings.

With --check-token, also verifies the ` + config.TokenEnv + ` token
against the GitHub API.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "check-token",
						Usage:       "verify the GitHub token against the API",
						Destination: &cmd.checkToken,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

// validationReport is the JSON output of tether config validate.
type validationReport struct {
	Valid          bool   `json:"valid"`
	ConfigPath     string `json:"config_path"`
	StorageBackend string `json:"storage_backend"`
	GitHubEnabled  bool   `json:"github_enabled"`
	Repository     string `json:"repository,omitempty"`
	TokenSet       bool   `json:"token_set"`
	TokenValid     *bool  `json:"token_valid,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	report := validationReport{ConfigPath: cmd.flags.ConfigPath}

	cfg, err := config.Load(cmd.flags.ConfigPath, cmd.flags.DataDir)
	if err != nil {
		report.Error = err.Error()
		if werr := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); werr != nil {
			return werr
		}
		return cli.Exit("", 1)
	}

	report.Valid = true
	report.StorageBackend = string(cfg.Storage.Backend)
	report.GitHubEnabled = cfg.GitHub.IsEnabled()
	report.TokenSet = config.Token() != ""
	if cfg.GitHub.IsConfigured() {
		report.Repository = cfg.GitHub.FullName()
	}

	if cmd.checkToken {
		valid := cmd.validateToken(ctx, cfg)
		report.TokenValid = &valid
		if !valid {
			report.Valid = false
		}
	}

	if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, report); err != nil {
		return err
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigValidateCmd) validateToken(ctx context.Context, cfg *config.Config) bool {
	client := github.NewAPIClient(cfg.GitHub.APIURL, config.Token(), log.Logger)
	return client.ValidateToken(ctx)
}
