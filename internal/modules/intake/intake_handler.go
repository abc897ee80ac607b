package intake

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"doorstep-clean/internal/models"
	"doorstep-clean/pkg/email"
	"doorstep-clean/pkg/vision"
)

// Handler serves the public booking-support endpoints: garment image
// analysis and the contact form.
type Handler struct {
	vision   vision.ClientInterface
	email    email.ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new intake handler.
func NewHandler(visionClient vision.ClientInterface, emailSvc email.ServiceInterface) *Handler {
	return &Handler{
		vision:   visionClient,
		email:    emailSvc,
		validate: validator.New(),
	}
}

// Analyze classifies a garment photo to pre-fill the booking form. Failure
// never blocks booking; the client falls back to manual entry.
func (h *Handler) Analyze(c echo.Context) error {
	var req models.AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	assessment, err := h.vision.Analyze(c.Request().Context(), req.Image)
	if err != nil {
		if errors.Is(err, models.ErrAnalysisFailed) {
			return c.JSON(http.StatusBadGateway, models.ErrorResponse{Message: "Could not analyze the image"})
		}
		slog.Error("Handler.Analyze", "error", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to analyze image"})
	}
	return c.JSON(http.StatusOK, assessment)
}

// Contact forwards a contact-form submission to the business inbox. Delivery
// is best-effort: a failed send is logged, not surfaced.
func (h *Handler) Contact(c echo.Context) error {
	var req models.ContactRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	if err := h.email.SendContactMessage(c.Request().Context(), req); err != nil {
		slog.Error("Handler.Contact: send failed", "error", err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"status": "received"})
}
