package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"doorstep-clean/internal/middleware"
	"doorstep-clean/internal/models"
)

// Handler handles HTTP requests for the service catalog.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new catalog handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// ListServices returns the public price list. With ?all=true (admin screen)
// inactive entries are included too.
func (h *Handler) ListServices(c echo.Context) error {
	includeInactive := c.QueryParam("all") == "true"

	services, err := h.svc.ListServices(c.Request().Context(), includeInactive)
	if err != nil {
		slog.Error("Handler.ListServices", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve services"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"services": services})
}

// CreateService adds a catalog entry. Admin only.
func (h *Handler) CreateService(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req models.CreateServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	svc, err := h.svc.CreateService(c.Request().Context(), actor, req)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.CreateService", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create service"})
	}
	return c.JSON(http.StatusCreated, svc)
}

// UpdateService edits a catalog entry. Admin only.
func (h *Handler) UpdateService(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req models.UpdateServiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	svc, err := h.svc.UpdateService(c.Request().Context(), actor, c.Param("serviceId"), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Service not found"})
		}
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.UpdateService", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update service"})
	}
	return c.JSON(http.StatusOK, svc)
}
