package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/vibeplanner/internal/commands"
	"github.com/colonyops/vibeplanner/internal/core/config"
	"github.com/colonyops/vibeplanner/internal/core/eventbus"
	"github.com/colonyops/vibeplanner/internal/core/logging"
	"github.com/colonyops/vibeplanner/internal/core/styles"
	"github.com/colonyops/vibeplanner/internal/data/db"
	"github.com/colonyops/vibeplanner/internal/data/stores"
	"github.com/colonyops/vibeplanner/internal/vibe"
	"github.com/colonyops/vibeplanner/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// eventBufferSize bounds queued domain events before new ones are dropped.
const eventBufferSize = 256

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
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

// openDatabase opens the SQLite store, moving a corrupted file aside and
// starting fresh when the existing one cannot be read.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	backup, recoverErr := stores.RecoverFromCorruption(cfg.DataDir)
	if recoverErr != nil {
		return nil, errors.Join(err, recoverErr)
	}
	log.Warn().Err(err).Str("backup", backup).Msg("database was corrupted; moved aside and starting fresh")

	return db.Open(cfg.DataDir, opts)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		vibeApp   = &vibe.App{}
		database  *db.DB
		busCancel context.CancelFunc
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "vibeplanner",
		Usage:     "Review and apply AI-proposed changes to your team's records",
		UsageText: "vibeplanner [global options] command [command options]",
		Description: `VibePlanner stages record changes proposed by an AI assistant and lets
you confirm or reject each one before anything is written.

Proposals arrive through 'vibeplanner chat' (Gemini) or 'vibeplanner mcp'
(any MCP client). Run 'vibeplanner' with no arguments to open the review
workspace on the newest turn.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("VIBEPLANNER_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/vibeplanner.log)",
				Sources:     cli.EnvVars("VIBEPLANNER_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("VIBEPLANNER_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("VIBEPLANNER_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; stdout belongs to command output and MCP.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "vibeplanner.log")
			}

			logger, closer, err := logutils.New(logutils.Options{Level: flags.LogLevel, File: logFile})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			database, err = openDatabase(cfg)
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			bus := eventbus.New(eventBufferSize)
			eventbus.RegisterDebugLogger(bus, log.With().Str("component", "eventbus").Logger())
			eventbus.NewNotificationRouter(bus).Register()

			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			go bus.Start(busCtx)

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*vibeApp = *vibe.NewApp(cfg, database, vibe.Stores{
				Records:       stores.NewRecordStore(database),
				Members:       stores.NewMemberStore(database),
				Inbox:         stores.NewInboxStore(database),
				Notifications: stores.NewNotifyStore(database),
			}, bus, log.Logger)

			ctx = logging.WithTeamID(ctx, cfg.Actor.TeamID)
			if added, err := vibeApp.Teams.Bootstrap(ctx, vibeApp.Actor); err != nil {
				return ctx, fmt.Errorf("bootstrap team: %w", err)
			} else if added {
				log.Info().Str("user", cfg.Actor.UserID).Str("team", cfg.Actor.TeamID).Msg("joined empty team")
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
			}

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

	reviewCmd := commands.NewReviewCmd(flags, vibeApp)

	app = reviewCmd.Register(app)
	app = commands.NewChatCmd(flags, vibeApp).Register(app)
	app = commands.NewMCPCmd(flags, vibeApp).Register(app)
	app = commands.NewApplyCmd(flags, vibeApp).Register(app)
	app = commands.NewRecordsCmd(flags, vibeApp).Register(app)
	app = commands.NewTeamCmd(flags, vibeApp).Register(app)
	app = commands.NewNotificationsCmd(flags, vibeApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)
	app = commands.NewDoctorCmd(flags, vibeApp).Register(app)
	app = commands.NewInitCmd(flags).Register(app)

	// Register review flags on root command
	app.Flags = append(app.Flags, reviewCmd.Flags()...)

	// Set review as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'vibeplanner --help' for usage", c.Args().First())
		}
		return reviewCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
