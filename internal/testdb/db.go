package testdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/migrate"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	_ "modernc.org/sqlite" // sqlite driver
)

// TestTimeout bounds connection checks and container startup.
const TestTimeout = 60 * time.Second

// OpenSQLite opens a fresh SQLite database in a temporary directory and
// applies the schema. The pool is limited to one connection, matching how
// the server runs SQLite.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.DatabaseConfig{URL: "sqlite://" + filepath.Join(t.TempDir(), "tasks.db")}
	driver, dsn, err := cfg.DriverDSN()
	require.NoError(t, err)

	db, err := sql.Open(driver, dsn)
	require.NoError(t, err, "failed to open sqlite database")
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { CleanupDB(t, db) })

	ApplyMigrations(t, db, config.DialectSQLite)
	return db
}

// OpenPostgres returns a migrated PostgreSQL database. DATABASE_URL wins;
// otherwise a postgres container is started for the test. The test is
// skipped when neither is available.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		dbURL = startPostgresContainer(t)
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open database connection")
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	t.Cleanup(func() { CleanupDB(t, db) })

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "database ping failed")

	ApplyMigrations(t, db, config.DialectPostgres)
	return db
}

func startPostgresContainer(t *testing.T) string {
	t.Helper()

	if !dockerAvailable() {
		t.Skip("DATABASE_URL not set and Docker not available, skipping PostgreSQL test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tasks_test"),
		tcpostgres.WithUsername("tasks"),
		tcpostgres.WithPassword("tasks"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")
	return connStr
}

// ApplyMigrations brings db up to the latest schema for dialect.
func ApplyMigrations(t *testing.T, db *sql.DB, dialect string) {
	t.Helper()

	migrator, err := migrate.New(db, dialect, nil)
	require.NoError(t, err)

	_, err = migrator.Up(context.Background())
	require.NoError(t, err, "failed to apply migrations")
}

// CleanupDB closes db, logging any error.
func CleanupDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db == nil {
		return
	}

	if err := db.Close(); err != nil {
		t.Logf("Warning: failed to close database connection: %v", err)
	}
}
