package email

import (
	"context"
	"log/slog"
	"testing"

	"doorstep-clean/internal/models"
)

var _ ServiceInterface = (*SESService)(nil)
var _ ServiceInterface = (*DisabledService)(nil)

func TestDisabledServiceDropsMailWithoutError(t *testing.T) {
	svc := NewDisabledService(slog.Default())

	order := &models.Order{OrderNumber: "DC-001001"}
	if err := svc.SendBookingConfirmation(context.Background(), order); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	req := models.ContactRequest{Name: "Aina", Email: "aina@example.com", Message: "hello"}
	if err := svc.SendContactMessage(context.Background(), req); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
