// Package main is the entry point for the mealdb API server.
//
// MAIN PACKAGE IN GO:
// main stays small. It parses the command line, loads configuration,
// builds a logger and hands everything to internal/server. All real logic
// lives in imported packages so it can be tested without a process.
//
// COMMANDS:
//
//	mealdb-server serve     run the HTTP API (the default)
//	mealdb-server migrate   apply the schema and exit
//
// Both accept --config pointing at a TOML file. Environment variables and
// .env still override it; see internal/config.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/sakif/mealdb/internal/config"
	"github.com/sakif/mealdb/internal/repository/sqldb"
	"github.com/sakif/mealdb/internal/server"
)

const name = "mealdb-server"

// overridden during build with ldflags
var version = "dev"

func main() {
	// SIGINT (Ctrl+C) and SIGTERM (docker stop, Kubernetes) both cancel ctx,
	// which Start treats as "shut down gracefully".
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    name,
		Usage:   "Recipe and meal planning API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file (defaults to $CONFIG_FILE)",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
		// No subcommand means serve.
		Action: runServe,
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API",
		Action: runServe,
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the database schema and exit",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}

			db, err := sqldb.Connect(ctx, cfg.Database.Driver, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema up to date", slog.String("database", cfg.Database.Driver))
			return nil
		},
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Start blocks until ctx is cancelled or the listener fails.
	return srv.Start(ctx)
}

// setup runs the steps every command shares.
func setup(cmd *cli.Command) (config.Config, *slog.Logger, error) {
	// === 1. READ CONFIGURATION ===
	// Precedence, lowest first: defaults, TOML file, .env, environment.
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, nil, err
	}

	// === 2. SET UP LOGGING ===
	// Text output for people, at the configured level. SetDefault routes
	// any stray slog.Info calls through the same handler.
	level, err := cfg.SlogLevel()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	redacted := cfg.Redacted()
	logger.Debug("configuration loaded",
		slog.String("version", version),
		slog.String("env", redacted.Env),
		slog.String("addr", redacted.Addr()),
		slog.String("database", redacted.Database.Driver),
		slog.String("databaseUrl", redacted.Database.URL),
		slog.String("mealdb", redacted.MealDB.BaseURL),
	)

	// === 3. DATABASE DIRECTORY ===
	// SQLite creates the file but not its parent directory.
	if err := ensureDataDir(cfg); err != nil {
		return config.Config{}, nil, err
	}

	return cfg, logger, nil
}

// ensureDataDir creates the directory holding a file-backed SQLite
// database. It does nothing for Postgres or in-memory databases.
func ensureDataDir(cfg config.Config) error {
	if cfg.Database.Driver != config.DriverSQLite || cfg.Database.URL == ":memory:" {
		return nil
	}
	dir := filepath.Dir(cfg.Database.URL)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dir, err)
	}
	return nil
}
