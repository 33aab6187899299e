package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/adolfohrq/prdgen/internal/app"
	"github.com/adolfohrq/prdgen/internal/infra/config"
	"github.com/adolfohrq/prdgen/internal/infra/sqlite"
)

// cli carries the writers and persistent flags shared by every subcommand.
type cli struct {
	out     io.Writer
	errOut  io.Writer
	envFile string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:   "prdgen",
		Short: "AI generation layer for product requirement documents",
		Long: `prdgen turns product ideas into PRD content using Gemini and Groq models.

Examples:
  prdgen serve --user alice
  prdgen suggest "a marketplace for used climbing gear"
  prdgen classify "design the tables for my app"
  prdgen doctor`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 1,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	root.AddCommand(
		c.serveCmd(),
		c.migrateCmd(),
		c.versionCmd(),
		c.doctorCmd(),
		c.tokenCmd(),
		c.suggestCmd(),
		c.classifyCmd(),
		c.mcpCmd(),
	)
	return root
}

func (c *cli) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(c.envFile); err != nil {
		return config.Config{}, err
	}
	return config.Load(), nil
}

// logger writes JSON logs to errOut so stdout stays clean for command output and MCP frames.
func (c *cli) logger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(c.errOut, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// openDB opens the configured database, creating its directory, and applies pending migrations.
func openDB(cfg config.Config) (*sql.DB, []string, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	applied, err := sqlite.MigrateUp(db)
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, nil, err
	}
	return db, applied, nil
}

// bootstrap loads configuration and starts the service graph. When user is set, that user's
// stored settings become the active configuration.
func (c *cli) bootstrap(ctx context.Context, user string) (*app.App, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := c.logger(cfg)
	db, _, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	a := app.New(cfg, db, logger)
	a.Start(ctx)
	if user != "" {
		active, err := a.Settings.Restore(ctx, user)
		if err != nil {
			a.Close() //nolint:errcheck
			return nil, fmt.Errorf("restore settings for %q: %w", user, err)
		}
		logger.Info("settings restored", "user_id", user, "model", active.SelectedModel)
	}
	return a, nil
}
