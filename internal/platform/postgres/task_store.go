package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection, session or transaction that is managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (title, description, is_completed)
		VALUES ($1, $2, $3)
		RETURNING ` + store.TaskColumns

	created, err := store.ScanTask(s.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		store.NullableString(task.Description),
		task.IsCompleted,
	))
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "create", "insert failed", MapError(err))
	}

	log.Info("task created", slog.Int64("task_id", created.ID))
	return created, nil
}

// List implements store.TaskStore.List
// The title filter uses strpos so that the match is a literal, case-sensitive
// substring test: LIKE wildcards in the filter have no special meaning.
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + store.TaskColumns + ` FROM tasks`
	var args []any
	if filter.TitleContains != "" {
		query += ` WHERE strpos(title, $1) > 0`
		args = append(args, filter.TitleContains)
	}
	query += ` ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := store.ScanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "scan failed", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "list", "row iteration failed", MapError(err))
	}

	log.Debug("tasks listed",
		slog.Int("count", len(tasks)),
		slog.Bool("filtered", filter.TitleContains != ""))
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + store.TaskColumns + ` FROM tasks WHERE id = $1`

	task, err := store.ScanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "get", "query failed", MapError(err))
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// Every mutable column is overwritten; the id is only used to locate the row.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title = $1, description = $2, is_completed = $3
		WHERE id = $4
		RETURNING ` + store.TaskColumns

	updated, err := store.ScanTask(s.db.QueryRowContext(
		ctx,
		query,
		task.Title,
		store.NullableString(task.Description),
		task.IsCompleted,
		task.ID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update", slog.Int64("task_id", task.ID))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", task.ID))
		return nil, store.NewStoreError("task", "update", "update failed", MapError(err))
	}

	log.Info("task updated", slog.Int64("task_id", updated.ID))
	return updated, nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}

	if err := CheckRowsAffected(result); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			log.Debug("task not found for delete", slog.Int64("task_id", id))
			return err
		}
		return store.NewStoreError("task", "delete", "delete failed", err)
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return nil
}

// WithDB implements store.TaskStore.WithDB
func (s *PostgresTaskStore) WithDB(db store.DBTX) store.TaskStore {
	return &PostgresTaskStore{
		db:     db,
		logger: s.logger,
	}
}
