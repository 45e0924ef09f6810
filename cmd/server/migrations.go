package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/phrazzld/task-tracker/internal/platform/migrate"
)

// runMigrationCommand executes one goose operation against the configured
// database and prints a short report to out.
func runMigrationCommand(ctx context.Context, command string, out io.Writer) error {
	ctx = commandContext(ctx)

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
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
		}
	}()

	migrator, err := migrate.New(db, dialect, logger)
	if err != nil {
		return err
	}

	return executeMigration(ctx, migrator, command, out)
}

func executeMigration(ctx context.Context, migrator *migrate.Migrator, command string, out io.Writer) error {
	switch command {
	case "up":
		applied, err := migrator.Up(ctx)
		for _, m := range applied {
			fmt.Fprintf(out, "applied %s\n", m.Path)
		}
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(out, "no pending migrations")
		}
		return nil

	case "down":
		rolledBack, err := migrator.Down(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "rolled back %s\n", rolledBack.Path)
		return nil

	case "status":
		statuses, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
		for _, st := range statuses {
			state, appliedAt := "pending", "-"
			if st.Applied {
				state, appliedAt = "applied", st.AppliedAt.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", st.Version, state, appliedAt, st.Path)
		}
		return w.Flush()

	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d\n", version)
		return nil

	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}
