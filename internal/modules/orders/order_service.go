package orders

import (
	"context"
	"fmt"
	"time"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/outbox"
	"doorstep-clean/internal/policy"
)

// NumberGenerator issues the public DC- order numbers.
type NumberGenerator interface {
	OrderNumber(ctx context.Context) string
}

// PaymentServiceInterface defines the contract for the payment-link service.
type PaymentServiceInterface interface {
	CreatePaymentLink(ctx context.Context, amount float64, orderNumber string) (string, []byte, error)
}

// ServiceInterface defines the contract for the order service.
type ServiceInterface interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, actor policy.Actor, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, actor policy.Actor, status string, page, limit int) ([]*models.Order, int, error)
	UpdateOrder(ctx context.Context, actor policy.Actor, orderID string, req models.UpdateOrderRequest) (*models.Order, error)
	TrackByNumber(ctx context.Context, orderNumber string) (*models.OrderSummary, error)
	PaymentPrompt(ctx context.Context, actor policy.Actor, orderID string) (string, []byte, error)
}

// Service owns every valid status transition for an order and the side
// effects each transition triggers. Transitions are not adjacency-checked:
// an authorized actor may set any of the seven statuses, including jumping
// backward or skipping ahead. The history ledger records every change.
type Service struct {
	repo     RepositoryInterface
	numbers  NumberGenerator
	payments PaymentServiceInterface
	now      func() time.Time
}

// NewService creates a new order service.
func NewService(repo RepositoryInterface, numbers NumberGenerator, payments PaymentServiceInterface) *Service {
	return &Service{
		repo:     repo,
		numbers:  numbers,
		payments: payments,
		now:      time.Now,
	}
}

// CreateOrder handles the public booking submission. The status history is
// seeded with CREATED and the total is computed from the line items.
// Notification and confirmation-email side effects ride in the same
// transaction as outbox events; their later failure never fails the booking.
func (s *Service) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if req.Customer.Name == "" || req.Customer.Phone == "" || req.Customer.Address == "" {
		return nil, models.ErrMissingCustomerFields
	}

	now := s.now()
	order := &models.Order{
		OrderNumber: s.numbers.OrderNumber(ctx),
		Customer:    req.Customer,
		Items:       req.Items,
		Status:      models.StatusCreated,
		StatusHistory: []models.StatusEntry{{
			Status:    models.StatusCreated,
			Timestamp: now,
			UpdatedBy: req.Customer.Name,
			Note:      "Order placed",
		}},
		PickupDate: req.PickupDate,
		PickupSlot: req.PickupSlot,
		Notes:      req.Notes,
	}
	order.TotalAmount = order.TotalFromItems()

	events := []Message{{
		Topic:   outbox.TopicOrderCreated,
		Payload: outbox.OrderEvent{OrderID: "", OrderNumber: order.OrderNumber, Status: order.Status},
	}}

	created, err := s.repo.Create(ctx, order, events)
	if err != nil {
		return nil, fmt.Errorf("service.CreateOrder: %w", err)
	}
	return created, nil
}

// GetOrder retrieves one order, scoped by the policy table.
func (s *Service) GetOrder(ctx context.Context, actor policy.Actor, orderID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(actor, policy.OrderRead, resourceOf(order)) {
		return nil, models.ErrForbidden
	}
	return order, nil
}

// ListOrders returns the orders visible to the actor: everything for admin,
// assigned orders for staff/riders, own orders for customers.
func (s *Service) ListOrders(ctx context.Context, actor policy.Actor, status string, page, limit int) ([]*models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	f := Filter{Status: status}
	switch policy.ScopeFor(actor, policy.OrderRead) {
	case policy.ScopeAny:
	case policy.ScopeAssigned:
		if actor.Role == models.RoleStaff {
			f.AssignedStaff = actor.ID
		} else {
			f.AssignedRider = actor.ID
		}
	case policy.ScopeOwner:
		f.CustomerEmail = actor.Email
	default:
		return nil, 0, models.ErrForbidden
	}

	orders, total, err := s.repo.List(ctx, f, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListOrders: %w", err)
	}
	return orders, total, nil
}

// UpdateOrder is the single transition/update operation. A status field in
// the request appends exactly one history entry; the other mutable fields
// are applied whether or not the status changed. Reaching DELIVERED enqueues
// invoice auto-generation, which must never fail the transition itself.
func (s *Service) UpdateOrder(ctx context.Context, actor policy.Actor, orderID string, req models.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(actor, policy.OrderUpdate, resourceOf(order)) {
		return nil, models.ErrForbidden
	}

	if req.DeliveryDate != nil {
		order.DeliveryDate = req.DeliveryDate
	}
	if req.AssignedStaff != nil {
		order.AssignedStaff = req.AssignedStaff
	}
	if req.AssignedRider != nil {
		order.AssignedRider = req.AssignedRider
	}
	if req.TotalAmount != nil {
		order.TotalAmount = *req.TotalAmount
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}

	var events []Message
	if req.Status != nil {
		target := *req.Status
		if !models.IsValidOrderStatus(target) {
			return nil, models.ErrInvalidStatus
		}

		note := "Status updated to " + target
		if req.StatusNote != nil && *req.StatusNote != "" {
			note = *req.StatusNote
		}
		order.Status = target
		order.StatusHistory = append(order.StatusHistory, models.StatusEntry{
			Status:    target,
			Timestamp: s.now(),
			UpdatedBy: actor.Name,
			Note:      note,
		})

		events = append(events, Message{
			Topic:   outbox.TopicStatusChanged,
			Payload: outbox.OrderEvent{OrderID: order.ID, OrderNumber: order.OrderNumber, Status: target},
		})
		if target == models.StatusDelivered {
			events = append(events, Message{
				Topic:   outbox.TopicInvoiceGenerate,
				Payload: outbox.OrderEvent{OrderID: order.ID, OrderNumber: order.OrderNumber, Status: target},
			})
		}
	}

	updated, err := s.repo.Update(ctx, order, events)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateOrder: %w", err)
	}
	return updated, nil
}

// TrackByNumber is the public tracking lookup.
func (s *Service) TrackByNumber(ctx context.Context, orderNumber string) (*models.OrderSummary, error) {
	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	summary := order.Summary()
	return &summary, nil
}

// PaymentPrompt builds a payment link and QR image for the order's total.
func (s *Service) PaymentPrompt(ctx context.Context, actor policy.Actor, orderID string) (string, []byte, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return "", nil, err
	}
	if !policy.Allow(actor, policy.OrderRead, resourceOf(order)) {
		return "", nil, models.ErrForbidden
	}

	url, qr, err := s.payments.CreatePaymentLink(ctx, order.TotalAmount, order.OrderNumber)
	if err != nil {
		return "", nil, fmt.Errorf("service.PaymentPrompt: %w", err)
	}
	return url, qr, nil
}

func resourceOf(order *models.Order) policy.Resource {
	res := policy.Resource{OwnerEmail: order.Customer.Email}
	if order.AssignedStaff != nil {
		res.AssignedStaff = *order.AssignedStaff
	}
	if order.AssignedRider != nil {
		res.AssignedRider = *order.AssignedRider
	}
	return res
}
