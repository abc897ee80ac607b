package notifications

import (
	"context"
	"fmt"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/policy"
)

// ServiceInterface defines the contract for the notification service.
type ServiceInterface interface {
	NotifyNewOrder(ctx context.Context, orderID, orderNumber string) error
	NotifyStatusChange(ctx context.Context, orderID, orderNumber, status string) error
	ListNotifications(ctx context.Context, actor policy.Actor, unreadOnly bool, page, limit int) ([]*models.Notification, int, error)
	MarkRead(ctx context.Context, actor policy.Actor, notificationID string) (*models.Notification, error)
}

// Service implements the ServiceInterface.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new notification service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// NotifyNewOrder records a dashboard notification for a new booking. Called
// from the event worker, not from request handlers.
func (s *Service) NotifyNewOrder(ctx context.Context, orderID, orderNumber string) error {
	_, err := s.repo.Create(ctx, &models.Notification{
		Type:    models.NotifyNewOrder,
		Title:   "New order " + orderNumber,
		Body:    fmt.Sprintf("Order %s was placed and is awaiting pickup scheduling.", orderNumber),
		OrderID: &orderID,
	})
	return err
}

// NotifyStatusChange records a dashboard notification for a status
// transition.
func (s *Service) NotifyStatusChange(ctx context.Context, orderID, orderNumber, status string) error {
	_, err := s.repo.Create(ctx, &models.Notification{
		Type:    models.NotifyStatusChange,
		Title:   fmt.Sprintf("Order %s is now %s", orderNumber, status),
		Body:    fmt.Sprintf("Order %s moved to status %s.", orderNumber, status),
		OrderID: &orderID,
	})
	return err
}

// ListNotifications returns the dashboard feed. Admin only.
func (s *Service) ListNotifications(ctx context.Context, actor policy.Actor, unreadOnly bool, page, limit int) ([]*models.Notification, int, error) {
	if !policy.Allow(actor, policy.NotificationRead, policy.Resource{}) {
		return nil, 0, models.ErrForbidden
	}
	return s.repo.List(ctx, unreadOnly, page, limit)
}

// MarkRead flags a notification as read. Admin only.
func (s *Service) MarkRead(ctx context.Context, actor policy.Actor, notificationID string) (*models.Notification, error) {
	if !policy.Allow(actor, policy.NotificationRead, policy.Resource{}) {
		return nil, models.ErrForbidden
	}
	return s.repo.MarkRead(ctx, notificationID)
}
