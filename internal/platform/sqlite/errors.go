package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/phrazzld/task-tracker/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// primaryResultCode strips the extended part of an SQLite result code.
func primaryResultCode(code int) int {
	return code & 0xff
}

// MapError maps an SQLite error to an appropriate store error.
// It wraps the original error to preserve context for logging.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return fmt.Errorf("%w: not null violation: %v", store.ErrInvalidEntity, err)
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return fmt.Errorf("%w: check constraint violation: %v", store.ErrInvalidEntity, err)
	}

	if primaryResultCode(sqliteErr.Code()) == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: constraint violation: %v", store.ErrInvalidEntity, err)
	}

	return err
}
