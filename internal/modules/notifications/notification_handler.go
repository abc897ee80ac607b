package notifications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"doorstep-clean/internal/middleware"
	"doorstep-clean/internal/models"
)

// Handler handles HTTP requests for the notification feed.
type Handler struct {
	svc ServiceInterface
}

// NewHandler creates a new notification handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// ListNotifications returns the dashboard feed, newest first.
func (h *Handler) ListNotifications(c echo.Context) error {
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
	unreadOnly := c.QueryParam("unread") == "true"

	notifications, total, err := h.svc.ListNotifications(c.Request().Context(), actor, unreadOnly, page, limit)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.ListNotifications", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve notifications"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"notifications": notifications, "total": total})
}

// MarkRead flags a notification as read.
func (h *Handler) MarkRead(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	n, err := h.svc.MarkRead(c.Request().Context(), actor, c.Param("notificationId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Notification not found"})
		}
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.MarkRead", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update notification"})
	}
	return c.JSON(http.StatusOK, n)
}
