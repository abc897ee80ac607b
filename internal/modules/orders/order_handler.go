package orders

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"doorstep-clean/internal/middleware"
	"doorstep-clean/internal/models"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// CreateOrder handles the public booking form. No authentication.
func (h *Handler) CreateOrder(c echo.Context) error {
	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.CreateOrder(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrMissingCustomerFields) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: models.ErrMissingCustomerFields.Error()})
		}
		slog.Error("Handler.CreateOrder", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to create order"})
	}

	return c.JSON(http.StatusCreated, order)
}

// TrackOrder handles the public tracking-by-number lookup.
func (h *Handler) TrackOrder(c echo.Context) error {
	summary, err := h.svc.TrackByNumber(c.Request().Context(), c.Param("orderNumber"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		slog.Error("Handler.TrackOrder", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve order"})
	}
	return c.JSON(http.StatusOK, summary)
}

// ListOrders returns the orders visible to the authenticated actor.
func (h *Handler) ListOrders(c echo.Context) error {
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

	orders, total, err := h.svc.ListOrders(c.Request().Context(), actor, c.QueryParam("status"), page, limit)
	if err != nil {
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.ListOrders", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve orders"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"orders": orders, "total": total})
}

// GetOrder returns one order if the actor's scope covers it.
func (h *Handler) GetOrder(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	order, err := h.svc.GetOrder(c.Request().Context(), actor, c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.GetOrder", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve order"})
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrder applies a status transition and/or field updates.
func (h *Handler) UpdateOrder(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	var req models.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	order, err := h.svc.UpdateOrder(c.Request().Context(), actor, c.Param("orderId"), req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
		}
		if errors.Is(err, models.ErrInvalidStatus) {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid order status"})
		}
		slog.Error("Handler.UpdateOrder", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to update order"})
	}
	return c.JSON(http.StatusOK, order)
}

// PaymentPrompt returns a payment link and QR image for the order total.
func (h *Handler) PaymentPrompt(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	url, qr, err := h.svc.PaymentPrompt(c.Request().Context(), actor, c.Param("orderId"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Message: "Order not found"})
		}
		if errors.Is(err, models.ErrForbidden) {
			return c.JSON(http.StatusForbidden, models.ErrorResponse{Message: "Access denied"})
		}
		slog.Error("Handler.PaymentPrompt", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to build payment link"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"url": url,
		"qr":  base64.StdEncoding.EncodeToString(qr),
	})
}
