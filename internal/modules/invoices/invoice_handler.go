package invoices

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

// Handler handles HTTP requests for invoices.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new invoice handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *Handler) ListInvoices(c echo.Context) error {
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

	invoices, total, err := h.svc.ListInvoices(c.Request().Context(), actor, c.QueryParam("status"), page, limit)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.ListInvoices", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve invoices"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"invoices": invoices, "total": total})
}

func (h *Handler) CreateInvoice(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req models.CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	inv, err := h.svc.CreateInvoice(c.Request().Context(), actor, req)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		if errors.Is(err, models.ErrConflict) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "An invoice already exists for this order"})
		}
		slog.Error("Handler.CreateInvoice", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create invoice"})
	}

	return c.JSON(http.StatusCreated, inv)
}

func (h *Handler) MarkPaid(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	inv, err := h.svc.MarkPaid(c.Request().Context(), actor, c.Param("invoiceId"))
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Invoice not found"})
		}
		slog.Error("Handler.MarkPaid", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update invoice"})
	}

	return c.JSON(http.StatusOK, inv)
}

func (h *Handler) RevenueSummary(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	summary, err := h.svc.RevenueSummary(c.Request().Context(), actor)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.RevenueSummary", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to build revenue summary"})
	}

	return c.JSON(http.StatusOK, summary)
}
