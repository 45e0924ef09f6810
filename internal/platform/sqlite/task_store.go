package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
)

// SQLiteTaskStore implements store.TaskStore on an SQLite database.
type SQLiteTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteTaskStore creates a task store over the given connection, session
// or transaction. If logger is nil, the default logger is used.
func NewSQLiteTaskStore(db store.DBTX, logger *slog.Logger) *SQLiteTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store"), slog.String("dialect", "sqlite")),
	}
}

var _ store.TaskStore = (*SQLiteTaskStore)(nil)

// Create implements store.TaskStore.Create
func (s *SQLiteTaskStore) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (title, description, is_completed)
		VALUES (?, ?, ?)
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
// instr performs a literal, case-sensitive substring match.
func (s *SQLiteTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + store.TaskColumns + ` FROM tasks`
	var args []any
	if filter.TitleContains != "" {
		query += ` WHERE instr(title, ?) > 0`
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

	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
func (s *SQLiteTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + store.TaskColumns + ` FROM tasks WHERE id = ?`

	task, err := store.ScanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
func (s *SQLiteTaskStore) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET title = ?, description = ?, is_completed = ?
		WHERE id = ?
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
func (s *SQLiteTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deletedID int64
	err := s.db.QueryRowContext(ctx, `DELETE FROM tasks WHERE id = ? RETURNING id`, id).Scan(&deletedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrTaskNotFound
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "delete failed", MapError(err))
	}

	log.Info("task deleted", slog.Int64("task_id", deletedID))
	return nil
}

// WithDB implements store.TaskStore.WithDB
func (s *SQLiteTaskStore) WithDB(db store.DBTX) store.TaskStore {
	return &SQLiteTaskStore{
		db:     db,
		logger: s.logger,
	}
}
