package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tether/internal/commands"
	"github.com/colonyops/tether/internal/core/config"
	"github.com/colonyops/tether/internal/core/todo"
	"github.com/colonyops/tether/internal/data/db"
	"github.com/colonyops/tether/internal/data/stores"
	"github.com/colonyops/tether/internal/github"
	"github.com/colonyops/tether/internal/tether"
	"github.com/colonyops/tether/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() falls back
	// to runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		tetherApp = &tether.App{}
		database  *db.DB
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "tether",
		Usage:     "A todo list that mirrors items to GitHub issues",
		UsageText: "tether [global options] command [command options]",
		Description: `Tether keeps a local todo list whose items can mirror GitHub issues.

Checking, unchecking, or deleting a mirrored item reconciles the change
with the linked issue, asking for confirmation whenever the change
would alter the issue's state.

Set ` + config.TokenEnv + ` to authenticate against the GitHub API.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TETHER_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/tether.log)",
				Sources:     cli.EnvVars("TETHER_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TETHER_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TETHER_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "tether.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			var store todo.Store
			switch cfg.Storage.Backend {
			case config.BackendMemory:
				store = stores.NewMemoryStore()
			case config.BackendSQLite:
				database, err = db.Open(cfg.DataDir)
				if err != nil {
					return ctx, fmt.Errorf("open database: %w", err)
				}
				store = stores.NewSQLiteStore(database)
			default:
				store = stores.NewFileStore(cfg.Storage.Path)
			}

			var client github.Client
			if cfg.GitHub.IsEnabled() {
				apiURL := cfg.GitHub.APIURL
				if apiURL == "" {
					apiURL = github.DefaultAPIURL
				}
				client = github.NewAPIClient(apiURL, config.Token(), log.Logger)
			}

			*tetherApp = *tether.NewApp(cfg, store, client, log.Logger)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewTodoCmd(flags, tetherApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
