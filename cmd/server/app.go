package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/platform/migrate"
	"github.com/phrazzld/task-tracker/internal/platform/postgres"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/session"
	"github.com/phrazzld/task-tracker/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	dialect string

	sessions    *session.Provider
	taskStore   store.TaskStore
	taskService service.TaskService
}

// newApplication wires stores, services and the session provider around an
// already opened database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, dialect string) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		dialect: dialect,
	}

	var err error
	app.taskStore, err = newTaskStore(dialect, db, logger)
	if err != nil {
		return nil, err
	}

	app.taskService, err = service.NewTaskService(app.taskStore, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.sessions = session.NewProvider(db, logger)

	logger.Info("Application initialized successfully", "dialect", dialect)
	return app, nil
}

// newTaskStore picks the store implementation for the dialect.
func newTaskStore(dialect string, db *sql.DB, logger *slog.Logger) (store.TaskStore, error) {
	switch dialect {
	case config.DialectPostgres:
		return postgres.NewPostgresTaskStore(db, logger), nil
	case config.DialectSQLite:
		return sqlite.NewSQLiteTaskStore(db, logger), nil
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}
}

// provisionSchema applies pending migrations before the server accepts traffic.
func (app *application) provisionSchema(ctx context.Context) error {
	migrator, err := migrate.New(app.db, app.dialect, app.logger)
	if err != nil {
		return err
	}
	if _, err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("failed to provision schema: %w", err)
	}
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
