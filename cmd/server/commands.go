package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phrazzld/task-tracker/internal/platform/migrate"
	"github.com/spf13/cobra"
)

var version = "v0.1.0"

// newRootCmd builds the command tree. Running the bare command serves HTTP.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "task-tracker",
		Short: "A REST API for creating, listing, updating and deleting tasks",
		Long: `task-tracker serves a JSON API over a single tasks table stored in
PostgreSQL or SQLite. Configuration comes from config.yaml and TASKS_*
environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, dialect, err := setupAppDatabase(cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to set up database", "error", err)
		return err
	}

	app, err := newApplication(cfg, logger, db, dialect)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := app.provisionSchema(ctx); err != nil {
			app.cleanup()
			return err
		}
	}

	return app.Run(ctx)
}

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply, roll back and inspect the embedded goose migrations on the configured database.`,
	}

	for _, sub := range []struct {
		use   string
		short string
	}{
		{"up", "Apply all pending migrations"},
		{"down", "Roll back the most recent migration"},
		{"status", "List migrations and whether they are applied"},
		{"version", "Print the current schema version"},
	} {
		command := sub.use
		migrateCmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: sub.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrationCommand(cmd.Context(), command, cmd.OutOrStdout())
			},
		})
	}

	var dir string
	createCmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Scaffold a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := migrate.Create(dir, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "created migration %q in %s\n", args[0], dir)
			return err
		},
	}
	createCmd.Flags().StringVar(&dir, "dir", "internal/platform/postgres/migrations",
		"Directory to write the migration into")
	migrateCmd.AddCommand(createCmd)

	return migrateCmd
}

// commandContext returns ctx, or a background context when cobra was run
// without one.
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
