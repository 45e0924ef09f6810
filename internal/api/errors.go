package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/service"
)

const (
	// MsgTaskNotFound is the fixed body of every 404.
	MsgTaskNotFound = "Task not found"

	// MsgValidationError heads every 422 body.
	MsgValidationError = "Validation error"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case service.IsTaskNotFound(err):
		return http.StatusNotFound

	case isValidationError(err):
		return http.StatusUnprocessableEntity

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return shared.GenericErrorMessage
	case service.IsTaskNotFound(err):
		return MsgTaskNotFound
	case isValidationError(err):
		return MsgValidationError
	default:
		return shared.GenericErrorMessage
	}
}

func isValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, shared.ErrEmptyBody) ||
		errors.Is(err, shared.ErrInvalidJSON) ||
		errors.As(err, &validationErrs)
}

// ValidationDetails turns a validation failure into per-field details that
// are safe to return to the client.
func ValidationDetails(err error) []shared.ErrorDetail {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]shared.ErrorDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, shared.ErrorDetail{
				Field:   fe.Field(),
				Message: getValidationTagMessage(fe.Tag()),
			})
		}
		return details
	}

	var domainErr *domain.ValidationError
	if errors.As(err, &domainErr) {
		return []shared.ErrorDetail{{Field: domainErr.Field, Message: domainErr.Message}}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []shared.ErrorDetail{{
			Field:   field,
			Message: fmt.Sprintf("invalid type: expected %s", jsonTypeName(typeErr)),
		}}
	}

	if errors.Is(err, shared.ErrEmptyBody) {
		return []shared.ErrorDetail{{Field: "body", Message: "request body is required"}}
	}

	if errors.Is(err, shared.ErrInvalidJSON) {
		return []shared.ErrorDetail{{Field: "body", Message: "malformed JSON"}}
	}

	return []shared.ErrorDetail{{Field: "body", Message: "invalid request"}}
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	default:
		return "validation failed"
	}
}

func jsonTypeName(typeErr *json.UnmarshalTypeError) string {
	if typeErr.Type == nil {
		return "a different type"
	}
	switch typeErr.Type.String() {
	case "string", "*string":
		return "string"
	case "bool", "*bool":
		return "boolean"
	case "api.TaskRequest":
		return "object"
	default:
		return typeErr.Type.String()
	}
}

// HandleAPIError writes the response for err: 422 with details for
// validation failures, otherwise the mapped status with a safe message.
// Server errors are logged with the full, redacted error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusUnprocessableEntity {
		shared.RespondWithErrorDetails(w, r, status, MsgValidationError, ValidationDetails(err))
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}
