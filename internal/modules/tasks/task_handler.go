package tasks

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"doorstep-clean/internal/middleware"
	"doorstep-clean/internal/models"
)

// Handler handles HTTP requests for rider tasks.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new rider task handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// CreateTask assigns a pickup or delivery task to a rider. Admin only.
func (h *Handler) CreateTask(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req models.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	task, err := h.svc.CreateTask(c.Request().Context(), actor, req)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		slog.Error("Handler.CreateTask", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create task"})
	}
	return c.JSON(http.StatusCreated, task)
}

// ListTasks returns the tasks visible to the authenticated actor.
func (h *Handler) ListTasks(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	page := 1
	limit := 20
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	tasks, total, err := h.svc.ListTasks(c.Request().Context(), actor, c.QueryParam("status"), page, limit)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.ListTasks", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve tasks"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"tasks": tasks, "total": total})
}

// GetTask returns one task if the actor's scope covers it.
func (h *Handler) GetTask(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	task, err := h.svc.GetTask(c.Request().Context(), actor, c.Param("taskId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Task not found"})
		}
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.GetTask", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve task"})
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateTask applies a rider progress update or proof of completion.
func (h *Handler) UpdateTask(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req models.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	task, err := h.svc.UpdateTask(c.Request().Context(), actor, c.Param("taskId"), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Task not found"})
		}
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
		}
		if errors.Is(err, models.ErrInvalidStatus) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Task is already completed"})
		}
		slog.Error("Handler.UpdateTask", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update task"})
	}
	return c.JSON(http.StatusOK, task)
}
