package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/task-tracker/internal/domain"
)

// TaskFilter narrows List results. The zero value matches every task.
type TaskFilter struct {
	// TitleContains keeps tasks whose title contains this literal,
	// case-sensitive substring. Empty means no filtering.
	TitleContains string
}

// TaskStore defines the interface for task persistence.
// Every implementation returns tasks in ascending id order from List and
// ErrTaskNotFound for ids that have no row.
type TaskStore interface {
	// Create inserts a new row from the task's mutable fields and returns the
	// stored task with its assigned id. The passed task's ID is ignored.
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// List returns all tasks matching the filter, ordered by id.
	// An empty result is a non-nil empty slice.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// GetByID retrieves a task by id.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// Update overwrites title, description and is_completed of the row with
	// task.ID and returns the stored result.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// Delete removes the task permanently.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// WithDB returns a TaskStore bound to the given handle, typically a
	// request session connection or a transaction.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, conn, func(ctx context.Context, tx *sql.Tx) error {
	//       _, err := taskStore.WithDB(tx).GetByID(ctx, id)
	//       return err
	//   })
	WithDB(db DBTX) TaskStore
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// TaskColumns is the column list every task query selects or returns,
// in the order ScanTask expects.
const TaskColumns = "id, title, description, is_completed"

// ScanTask reads one row of TaskColumns into a domain.Task.
func ScanTask(row RowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
	)
	if err := row.Scan(&task.ID, &task.Title, &description, &task.IsCompleted); err != nil {
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	return &task, nil
}

// NullableString converts an optional string into a value the SQL drivers
// store as NULL when absent.
func NullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
