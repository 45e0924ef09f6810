package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/service"
	"github.com/phrazzld/task-tracker/internal/store"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// decodeTaskRequest reads and validates a TaskRequest. On failure it writes
// the 422 response and returns false.
func (h *TaskHandler) decodeTaskRequest(w http.ResponseWriter, r *http.Request, log *slog.Logger) (TaskRequest, bool) {
	var req TaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid request body", slog.String("error", err.Error()))
		HandleAPIError(w, r, err)
		return TaskRequest{}, false
	}

	if err := shared.ValidateRequest(&req); err != nil {
		log.Debug("request validation failed", slog.String("error", err.Error()))
		HandleAPIError(w, r, err)
		return TaskRequest{}, false
	}

	return req, true
}

// CreateTask handles POST /tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	req, ok := h.decodeTaskRequest(w, r, log)
	if !ok {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), input)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /tasks requests
// An absent or empty title query parameter returns every task.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter := store.TaskFilter{TitleContains: r.URL.Query().Get("title")}

	tasks, err := h.taskService.ListTasks(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, log)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /tasks/{id} requests
// The payload replaces the whole task; omitted optional fields reset.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, log)
	if !ok {
		return
	}

	req, ok := h.decodeTaskRequest(w, r, log)
	if !ok {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, input)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, log)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	shared.RespondWithJSON(w, r, http.StatusOK, DeleteResponse{
		Message: fmt.Sprintf("Task %d has been deleted", id),
	})
}
