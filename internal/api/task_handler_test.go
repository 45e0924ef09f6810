package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskService is a mock implementation of the TaskService interface
type mockTaskService struct {
	createFn func(ctx context.Context, input domain.TaskInput) (*domain.Task, error)
	listFn   func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	getFn    func(ctx context.Context, id int64) (*domain.Task, error)
	updateFn func(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockTaskService) CreateTask(ctx context.Context, input domain.TaskInput) (*domain.Task, error) {
	return m.createFn(ctx, input)
}

func (m *mockTaskService) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	return m.listFn(ctx, filter)
}

func (m *mockTaskService) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	return m.getFn(ctx, id)
}

func (m *mockTaskService) UpdateTask(ctx context.Context, id int64, input domain.TaskInput) (*domain.Task, error) {
	return m.updateFn(ctx, id, input)
}

func (m *mockTaskService) DeleteTask(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}

var _ service.TaskService = (*mockTaskService)(nil)

// failIfCalled makes every service method fail the test, for requests that
// must be rejected before reaching storage.
func failIfCalled(t *testing.T) *mockTaskService {
	return &mockTaskService{
		createFn: func(context.Context, domain.TaskInput) (*domain.Task, error) {
			t.Error("CreateTask must not be called")
			return nil, nil
		},
		listFn: func(context.Context, store.TaskFilter) ([]*domain.Task, error) {
			t.Error("ListTasks must not be called")
			return nil, nil
		},
		getFn: func(context.Context, int64) (*domain.Task, error) {
			t.Error("GetTask must not be called")
			return nil, nil
		},
		updateFn: func(context.Context, int64, domain.TaskInput) (*domain.Task, error) {
			t.Error("UpdateTask must not be called")
			return nil, nil
		},
		deleteFn: func(context.Context, int64) error {
			t.Error("DeleteTask must not be called")
			return nil
		},
	}
}

func newTestRouter(svc service.TaskService) http.Handler {
	h := NewTaskHandler(svc, slog.Default())
	r := chi.NewRouter()
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	return r
}

func doRequest(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func strPtr(s string) *string { return &s }

func TestNewTaskHandler_RequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { NewTaskHandler(nil, slog.Default()) })
	assert.Panics(t, func() { NewTaskHandler(&mockTaskService{}, nil) })
}

func TestCreateTask(t *testing.T) {
	t.Run("title only applies defaults", func(t *testing.T) {
		var got domain.TaskInput
		svc := &mockTaskService{
			createFn: func(_ context.Context, input domain.TaskInput) (*domain.Task, error) {
				got = input
				task := input.NewTask()
				task.ID = 1
				return task, nil
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodPost, "/tasks", `{"title":"Buy milk"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":1,"title":"Buy milk","description":null,"is_completed":false}`, w.Body.String())
		assert.Equal(t, domain.TaskInput{Title: "Buy milk"}, got)
	})

	t.Run("all fields", func(t *testing.T) {
		svc := &mockTaskService{
			createFn: func(_ context.Context, input domain.TaskInput) (*domain.Task, error) {
				task := input.NewTask()
				task.ID = 2
				return task, nil
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodPost, "/tasks",
			`{"title":"Report","description":"Q3","is_completed":true,"priority":"ignored"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":2,"title":"Report","description":"Q3","is_completed":true}`, w.Body.String())
	})

	t.Run("empty title is accepted", func(t *testing.T) {
		svc := &mockTaskService{
			createFn: func(_ context.Context, input domain.TaskInput) (*domain.Task, error) {
				task := input.NewTask()
				task.ID = 3
				return task, nil
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodPost, "/tasks", `{"title":""}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	invalid := []struct {
		name          string
		body          string
		expectedField string
	}{
		{name: "missing title", body: `{"description":"x"}`, expectedField: "title"},
		{name: "null title", body: `{"title":null}`, expectedField: "title"},
		{name: "numeric title", body: `{"title":42}`, expectedField: "title"},
		{name: "string is_completed", body: `{"title":"x","is_completed":"yes"}`, expectedField: "is_completed"},
		{name: "numeric description", body: `{"title":"x","description":7}`, expectedField: "description"},
		{name: "null is_completed", body: `{"title":"x","is_completed":null}`, expectedField: "is_completed"},
		{name: "trailing data", body: `{"title":"y"} trailing-garbage`, expectedField: "body"},
		{name: "malformed json", body: `{"title":`, expectedField: "body"},
		{name: "array body", body: `[]`, expectedField: "body"},
		{name: "empty body", body: ``, expectedField: "body"},
	}

	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(newTestRouter(failIfCalled(t)), http.MethodPost, "/tasks", tc.body)

			require.Equal(t, http.StatusUnprocessableEntity, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, MsgValidationError, resp.Error)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tc.expectedField, resp.Details[0].Field)
		})
	}

	t.Run("storage failure is a generic 500", func(t *testing.T) {
		svc := &mockTaskService{
			createFn: func(context.Context, domain.TaskInput) (*domain.Task, error) {
				return nil, service.NewTaskServiceError("create_task", "failed to save task",
					errors.New("pq: connection to 10.0.0.5:5432 refused"))
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodPost, "/tasks", `{"title":"x"}`)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, shared.GenericErrorMessage, decodeError(t, w).Error)
		assert.NotContains(t, w.Body.String(), "10.0.0.5")
	})
}

func TestListTasks(t *testing.T) {
	t.Run("passes the title filter", func(t *testing.T) {
		var got store.TaskFilter
		svc := &mockTaskService{
			listFn: func(_ context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
				got = filter
				return []*domain.Task{{ID: 1, Title: "Buy milk"}}, nil
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodGet, "/tasks?title=milk", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "milk", got.TitleContains)
		assert.JSONEq(t, `[{"id":1,"title":"Buy milk","description":null,"is_completed":false}]`, w.Body.String())
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		svc := &mockTaskService{
			listFn: func(context.Context, store.TaskFilter) ([]*domain.Task, error) {
				return nil, nil
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodGet, "/tasks", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestGetTask(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		serviceResult  *domain.Task
		serviceError   error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Success",
			path:           "/tasks/4",
			serviceResult:  &domain.Task{ID: 4, Title: "Pay rent", Description: strPtr("monthly")},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found",
			path:           "/tasks/999",
			serviceError:   service.NewTaskServiceError("get_task", "task not found", store.ErrTaskNotFound),
			expectedStatus: http.StatusNotFound,
			expectedError:  MsgTaskNotFound,
		},
		{
			name:           "Negative id is looked up, not rejected",
			path:           "/tasks/-1",
			serviceError:   store.ErrTaskNotFound,
			expectedStatus: http.StatusNotFound,
			expectedError:  MsgTaskNotFound,
		},
		{
			name:           "Non-integer id",
			path:           "/tasks/abc",
			expectedStatus: http.StatusUnprocessableEntity,
			expectedError:  MsgValidationError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockTaskService{
				getFn: func(context.Context, int64) (*domain.Task, error) {
					return tc.serviceResult, tc.serviceError
				},
			}

			w := doRequest(newTestRouter(svc), http.MethodGet, tc.path, "")

			require.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedError != "" {
				assert.Equal(t, tc.expectedError, decodeError(t, w).Error)
				return
			}
			var resp TaskResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.serviceResult.ID, resp.ID)
			assert.Equal(t, "monthly", *resp.Description)
		})
	}
}

func TestUpdateTask(t *testing.T) {
	t.Run("full replace", func(t *testing.T) {
		var gotID int64
		var gotInput domain.TaskInput
		svc := &mockTaskService{
			updateFn: func(_ context.Context, id int64, input domain.TaskInput) (*domain.Task, error) {
				gotID, gotInput = id, input
				task := input.NewTask()
				task.ID = id
				return task, nil
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodPut, "/tasks/7", `{"title":"New"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(7), gotID)
		assert.Equal(t, domain.TaskInput{Title: "New"}, gotInput)
		assert.JSONEq(t, `{"id":7,"title":"New","description":null,"is_completed":false}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockTaskService{
			updateFn: func(context.Context, int64, domain.TaskInput) (*domain.Task, error) {
				return nil, store.ErrTaskNotFound
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodPut, "/tasks/7", `{"title":"New"}`)

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, MsgTaskNotFound, decodeError(t, w).Error)
	})

	t.Run("validation runs before storage", func(t *testing.T) {
		w := doRequest(newTestRouter(failIfCalled(t)), http.MethodPut, "/tasks/7", `{"description":"no title"}`)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("null is_completed is rejected", func(t *testing.T) {
		w := doRequest(newTestRouter(failIfCalled(t)), http.MethodPut, "/tasks/7",
			`{"title":"New","is_completed":null}`)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, shared.ErrorDetail{Field: "is_completed", Message: "invalid type: expected boolean"}, resp.Details[0])
	})
}

func TestDeleteTask(t *testing.T) {
	t.Run("confirms with the id", func(t *testing.T) {
		svc := &mockTaskService{
			deleteFn: func(_ context.Context, id int64) error {
				assert.Equal(t, int64(12), id)
				return nil
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodDelete, "/tasks/12", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Task 12 has been deleted"}`, w.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockTaskService{
			deleteFn: func(context.Context, int64) error {
				return service.NewTaskServiceError("delete_task", "task not found", store.ErrTaskNotFound)
			},
		}

		w := doRequest(newTestRouter(svc), http.MethodDelete, "/tasks/12", "")

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, MsgTaskNotFound, decodeError(t, w).Error)
	})

	t.Run("non-integer id", func(t *testing.T) {
		w := doRequest(newTestRouter(failIfCalled(t)), http.MethodDelete, "/tasks/1.5", "")

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		require.Len(t, resp.Details, 1)
		assert.Equal(t, "id", resp.Details[0].Field)
	})
}
