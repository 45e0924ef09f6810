package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/postgres"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/pressly/goose/v3"
)

// Migrator runs goose migrations against one database.
type Migrator struct {
	provider *goose.Provider
	dialect  string
	logger   *slog.Logger
}

// AppliedMigration describes one migration that was run.
type AppliedMigration struct {
	Version   int64
	Path      string
	Direction string
	Duration  time.Duration
}

// MigrationStatus describes whether one migration has been applied.
type MigrationStatus struct {
	Version   int64
	Path      string
	Applied   bool
	AppliedAt time.Time
}

// Source returns the embedded migrations and goose dialect for a
// config dialect name.
func Source(dialect string) (fs.FS, goose.Dialect, error) {
	switch dialect {
	case config.DialectPostgres:
		return postgres.Migrations(), goose.DialectPostgres, nil
	case config.DialectSQLite:
		return sqlite.Migrations(), goose.DialectSQLite3, nil
	default:
		return nil, "", fmt.Errorf("unsupported database dialect %q", dialect)
	}
}

// New creates a Migrator for db. If logger is nil, the default logger is used.
func New(db *sql.DB, dialect string, logger *slog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}

	fsys, gooseDialect, err := Source(dialect)
	if err != nil {
		return nil, err
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Migrator{
		provider: provider,
		dialect:  dialect,
		logger:   logger.With(slog.String("component", "migrations"), slog.String("dialect", dialect)),
	}, nil
}

// operationLogger tags every log line of one operation with the same
// correlation id.
func (m *Migrator) operationLogger(command string) *slog.Logger {
	return m.logger.With(
		slog.String("correlation_id", uuid.New().String()),
		slog.String("command", command),
	)
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) ([]AppliedMigration, error) {
	log := m.operationLogger("up")
	start := time.Now()
	log.Info("starting migration operation")

	results, err := m.provider.Up(ctx)
	applied := make([]AppliedMigration, 0, len(results))
	for _, res := range results {
		applied = append(applied, toApplied(res))
		log.Info("migration applied",
			slog.Int64("version", res.Source.Version),
			slog.String("path", res.Source.Path),
			slog.Int64("duration_ms", res.Duration.Milliseconds()))
	}
	if err != nil {
		log.Error("migration failed", slog.String("error", err.Error()))
		return applied, fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("migration operation completed",
		slog.Int("applied", len(applied)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))
	return applied, nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) (AppliedMigration, error) {
	log := m.operationLogger("down")

	res, err := m.provider.Down(ctx)
	if err != nil {
		log.Error("rollback failed", slog.String("error", err.Error()))
		return AppliedMigration{}, fmt.Errorf("failed to roll back migration: %w", err)
	}

	rolledBack := toApplied(res)
	log.Info("migration rolled back",
		slog.Int64("version", rolledBack.Version),
		slog.String("path", rolledBack.Path))
	return rolledBack, nil
}

// Status reports every known migration in version order.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	statuses, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration status: %w", err)
	}

	out := make([]MigrationStatus, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, MigrationStatus{
			Version:   st.Source.Version,
			Path:      st.Source.Path,
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return out, nil
}

// Version returns the current schema version, 0 when nothing is applied.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := m.provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Create scaffolds a new sequentially numbered SQL migration in dir.
func Create(dir, name string) error {
	if name == "" {
		return fmt.Errorf("migration name is required")
	}
	goose.SetSequential(true)
	if err := goose.Create(nil, dir, name, "sql"); err != nil {
		return fmt.Errorf("failed to create migration %q: %w", name, err)
	}
	return nil
}

func toApplied(res *goose.MigrationResult) AppliedMigration {
	if res == nil || res.Source == nil {
		return AppliedMigration{}
	}
	return AppliedMigration{
		Version:   res.Source.Version,
		Path:      res.Source.Path,
		Direction: res.Direction,
		Duration:  res.Duration,
	}
}
