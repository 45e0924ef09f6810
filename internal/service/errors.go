package service

import (
	"errors"

	"github.com/phrazzld/task-tracker/internal/store"
)

// IsTaskNotFound reports whether err means the requested task does not exist.
func IsTaskNotFound(err error) bool {
	return errors.Is(err, store.ErrTaskNotFound)
}
