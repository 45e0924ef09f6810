package domain

import (
	"errors"
	"fmt"
)

// Common domain errors.
var (
	// ErrValidation is the parent of every input validation failure.
	ErrValidation = errors.New("validation error")

	// ErrInvalidID indicates an identifier that is not a valid task id.
	ErrInvalidID = fmt.Errorf("%w: invalid id", ErrValidation)

	// ErrEmptyTitle is returned when a task is missing its title.
	ErrEmptyTitle = fmt.Errorf("%w: title is required", ErrValidation)
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError. A nil err wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
