package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/session"
	"github.com/phrazzld/task-tracker/internal/store"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TaskService provides task-related operations.
// Every method returns an error matching store.ErrTaskNotFound when the id
// has no task.
type TaskService interface {
	// CreateTask stores a new task built from the input.
	CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error)

	// ListTasks returns the tasks matching filter in ascending id order.
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)

	// GetTask retrieves a task by its id.
	GetTask(ctx context.Context, id int64) (*domain.Task, error)

	// UpdateTask replaces every mutable field of the task with the input.
	UpdateTask(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error)

	// DeleteTask removes the task permanently.
	DeleteTask(ctx context.Context, id int64) error
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskStore store.TaskStore
	db        store.DB
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// db is used only when the context carries no request session.
func NewTaskService(taskStore store.TaskStore, db store.DB, logger *slog.Logger) (TaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		db:        db,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// sessionDB returns the handle every storage call of this request must use.
// With SQLite the session holds the only pooled connection, so falling back
// to the pool mid-request would block.
func (s *taskServiceImpl) sessionDB(ctx context.Context) store.DB {
	return session.DBFromContext(ctx, s.db)
}

// wrap keeps the not-found sentinel reachable while adding operation context.
func wrap(operation, message string, err error) error {
	if errors.Is(err, store.ErrTaskNotFound) {
		return NewTaskServiceError(operation, "task not found", store.ErrTaskNotFound)
	}
	return NewTaskServiceError(operation, message, err)
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	created, err := s.taskStore.WithDB(s.sessionDB(ctx)).Create(ctx, input.NewTask())
	if err != nil {
		log.Error("failed to create task", slog.String("error", err.Error()))
		return nil, wrap("create_task", "failed to save task", err)
	}

	return created, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.taskStore.WithDB(s.sessionDB(ctx)).List(ctx, filter)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, wrap("list_tasks", "failed to list tasks", err)
	}

	log.Debug("listed tasks", slog.Int("count", len(tasks)))
	return tasks, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.WithDB(s.sessionDB(ctx)).GetByID(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to retrieve task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return nil, wrap("get_task", "failed to retrieve task", err)
	}

	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
// The lookup and the overwrite run in one transaction on the request session.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id int64,
	input domain.TaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := store.RunInTransaction(ctx, s.sessionDB(ctx), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithDB(tx)

		existing, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		input.Apply(existing)

		updated, err = txStore.Update(ctx, existing)
		return err
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return nil, wrap("update_task", "failed to update task", err)
	}

	log.Debug("task updated", slog.Int64("task_id", id))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.sessionDB(ctx), func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithDB(tx)

		if _, err := txStore.GetByID(ctx, id); err != nil {
			return err
		}
		return txStore.Delete(ctx, id)
	})
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return wrap("delete_task", "failed to delete task", err)
	}

	log.Debug("task deleted", slog.Int64("task_id", id))
	return nil
}
