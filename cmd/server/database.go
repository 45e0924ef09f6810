package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/redact"
	_ "modernc.org/sqlite" // sqlite driver
)

// setupAppDatabase opens the configured database, sizes its pool and checks
// that it answers. It returns the dialect alongside the pool.
func setupAppDatabase(cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, string, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, "", err
	}

	driver, dsn, err := cfg.DriverDSN()
	if err != nil {
		return nil, "", err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open database connection: %w", err)
	}

	configurePool(db, cfg, dialect)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established",
		"dialect", dialect,
		"url", redact.DatabaseURL(cfg.URL),
		"max_open_conns", db.Stats().MaxOpenConnections)
	return db, dialect, nil
}

// configurePool applies the pool limits. SQLite allows one writer, so it
// always gets exactly one long-lived connection.
func configurePool(db *sql.DB, cfg config.DatabaseConfig, dialect string) {
	if dialect == config.DialectSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
}
