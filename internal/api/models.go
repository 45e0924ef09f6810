package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/phrazzld/task-tracker/internal/domain"
)

// TaskRequest defines the payload for creating and replacing a task.
// Pointers distinguish an omitted field from its zero value: title must be
// present (the empty string is allowed), the others fall back to defaults.
type TaskRequest struct {
	Title       *string `json:"title"        validate:"required"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

// UnmarshalJSON decodes the payload and rejects an explicit
// "is_completed": null. Only description may be null.
func (r *TaskRequest) UnmarshalJSON(data []byte) error {
	type taskRequestFields TaskRequest
	var payload struct {
		taskRequestFields
		IsCompleted json.RawMessage `json:"is_completed"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			typeErr.Type = reflect.TypeOf(TaskRequest{})
		}
		return err
	}

	*r = TaskRequest(payload.taskRequestFields)
	if payload.IsCompleted == nil {
		return nil
	}

	if bytes.Equal(bytes.TrimSpace(payload.IsCompleted), []byte("null")) {
		return &json.UnmarshalTypeError{Value: "null", Type: reflect.TypeOf(false), Field: "is_completed"}
	}

	var isCompleted bool
	if err := json.Unmarshal(payload.IsCompleted, &isCompleted); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			typeErr.Field = "is_completed"
		}
		return err
	}
	r.IsCompleted = &isCompleted
	return nil
}

// ToInput applies the task defaults to the request.
func (r TaskRequest) ToInput() (domain.TaskInput, error) {
	return domain.NewTaskInput(r.Title, r.Description, r.IsCompleted)
}

// TaskResponse is the wire representation of a stored task.
type TaskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsCompleted bool    `json:"is_completed"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Message string `json:"message"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		IsCompleted: task.IsCompleted,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}
