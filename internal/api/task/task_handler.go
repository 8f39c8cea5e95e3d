package task

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/FACorreiaa/go-task-manager-api/internal/api"
	"github.com/FACorreiaa/go-task-manager-api/internal/api/auth"
	"github.com/FACorreiaa/go-task-manager-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	ListTasks(w http.ResponseWriter, r *http.Request)
	CreateTask(w http.ResponseWriter, r *http.Request)
	GetTask(w http.ResponseWriter, r *http.Request)
	UpdateTask(w http.ResponseWriter, r *http.Request)
	DeleteTask(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func (h *HandlerImpl) ownerID(w http.ResponseWriter, r *http.Request, l *slog.Logger) (string, bool) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		l.ErrorContext(r.Context(), "User ID not found in context", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Not authorized, token missing")
		return "", false
	}
	return userID, true
}

// writeError maps service errors onto the response.
func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, l *slog.Logger, msg string, err error) {
	var vErr *types.ValidationError
	switch {
	case errors.As(err, &vErr):
		api.ErrorResponse(w, r, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Task not found")
	default:
		api.InternalError(w, r, l, msg, err)
	}
}

// ListTasks godoc
// @Summary      List tasks
// @Description  Returns the caller's tasks, newest first.
// @Tags         Tasks
// @Produce      json
// @Success      200 {object} types.TaskListResponse
// @Failure      401 {object} types.Response
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /api/task/gp [get]
func (h *HandlerImpl) ListTasks(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "ListTasks"))
	ownerID, ok := h.ownerID(w, r, l)
	if !ok {
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), ownerID)
	if err != nil {
		h.writeError(w, r, l, "Failed to list tasks", err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.TaskListResponse{Success: true, Tasks: tasks})
}

// CreateTask godoc
// @Summary      Create task
// @Tags         Tasks
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        task body types.CreateTaskParams true "Task"
// @Success      201 {object} types.TaskResponse
// @Failure      400 {object} types.Response
// @Failure      401 {object} types.Response
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /api/task/gp [post]
func (h *HandlerImpl) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "CreateTask"))
	ownerID, ok := h.ownerID(w, r, l)
	if !ok {
		return
	}

	var params types.CreateTaskParams
	if err := api.DecodeBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.service.CreateTask(ctx, ownerID, params)
	if err != nil {
		h.writeError(w, r, l, "Failed to create task", err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, types.TaskResponse{Success: true, Task: *task})
}

// GetTask godoc
// @Summary      Get task
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} types.TaskResponse
// @Failure      401 {object} types.Response
// @Failure      404 {object} types.Response "Task not found"
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /api/task/{id}/gp [get]
func (h *HandlerImpl) GetTask(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "GetTask"))
	ownerID, ok := h.ownerID(w, r, l)
	if !ok {
		return
	}

	task, err := h.service.GetTask(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, l, "Failed to get task", err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.TaskResponse{Success: true, Task: *task})
}

// UpdateTask godoc
// @Summary      Update task
// @Description  Changes only the fields present in the body.
// @Tags         Tasks
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Param        id path string true "Task ID"
// @Param        task body types.UpdateTaskParams true "Fields to change"
// @Success      200 {object} types.TaskResponse
// @Failure      400 {object} types.Response
// @Failure      401 {object} types.Response
// @Failure      404 {object} types.Response "Task not found"
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /api/task/{id}/gp [put]
func (h *HandlerImpl) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "UpdateTask"))
	ownerID, ok := h.ownerID(w, r, l)
	if !ok {
		return
	}

	var params types.UpdateTaskParams
	if err := api.DecodeBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.service.UpdateTask(ctx, ownerID, chi.URLParam(r, "id"), params)
	if err != nil {
		h.writeError(w, r, l, "Failed to update task", err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.TaskResponse{Success: true, Task: *task})
}

// DeleteTask godoc
// @Summary      Delete task
// @Tags         Tasks
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} types.Response
// @Failure      401 {object} types.Response
// @Failure      404 {object} types.Response "Task not found"
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /api/task/{id}/gp [delete]
func (h *HandlerImpl) DeleteTask(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("HandlerImpl", "DeleteTask"))
	ownerID, ok := h.ownerID(w, r, l)
	if !ok {
		return
	}

	if err := h.service.DeleteTask(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, l, "Failed to delete task", err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{Success: true, Message: "Task deleted"})
}
