package invoices

import (
	"context"
	"errors"
	"fmt"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/policy"
)

// NumberGenerator issues the INV- invoice numbers.
type NumberGenerator interface {
	InvoiceNumber(ctx context.Context) string
}

// OrderFinder is the slice of the order repository the auto-generator needs.
type OrderFinder interface {
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
}

// ServiceInterface defines the contract for the invoice service.
type ServiceInterface interface {
	GenerateForOrder(ctx context.Context, orderID string) (*models.Invoice, error)
	CreateInvoice(ctx context.Context, actor policy.Actor, req models.CreateInvoiceRequest) (*models.Invoice, error)
	ListInvoices(ctx context.Context, actor policy.Actor, status string, page, limit int) ([]*models.Invoice, int, error)
	MarkPaid(ctx context.Context, actor policy.Actor, invoiceID string) (*models.Invoice, error)
	RevenueSummary(ctx context.Context, actor policy.Actor) ([]models.RevenueSummary, error)
}

// Service implements invoicing, including the delivered-order auto-generator.
type Service struct {
	repo    RepositoryInterface
	orders  OrderFinder
	numbers NumberGenerator
}

// NewService creates a new invoice service.
func NewService(repo RepositoryInterface, orders OrderFinder, numbers NumberGenerator) *Service {
	return &Service{repo: repo, orders: orders, numbers: numbers}
}

// GenerateForOrder produces the single auto-invoice for a delivered order.
// Idempotent: if an invoice already references the order (found by the
// pre-check or surfaced as a unique-index conflict under a race), that
// invoice is returned and nothing new is created. The invoice total copies
// the order's totalAmount as-is; a manual total override is carried over
// even when it no longer matches the line-item sum.
func (s *Service) GenerateForOrder(ctx context.Context, orderID string) (*models.Invoice, error) {
	existing, err := s.repo.FindByOrderID(ctx, orderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.GenerateForOrder: %w", err)
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("service.GenerateForOrder: %w", err)
	}

	items := make([]models.InvoiceItem, 0, len(order.Items))
	var subtotal float64
	for _, it := range order.Items {
		lineTotal := it.Price * float64(it.Quantity)
		subtotal += lineTotal
		items = append(items, models.InvoiceItem{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    lineTotal,
		})
	}

	inv := &models.Invoice{
		InvoiceNumber: s.numbers.InvoiceNumber(ctx),
		Customer:      order.Customer,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           0,
		Discount:      0,
		Total:         order.TotalAmount,
		Status:        models.InvoiceSent,
		OrderID:       &order.ID,
	}

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost the race; the winner's invoice is the one that counts.
			return s.repo.FindByOrderID(ctx, orderID)
		}
		return nil, fmt.Errorf("service.GenerateForOrder: %w", err)
	}
	return created, nil
}

// CreateInvoice handles manual admin invoicing.
func (s *Service) CreateInvoice(ctx context.Context, actor policy.Actor, req models.CreateInvoiceRequest) (*models.Invoice, error) {
	if !policy.Allow(actor, policy.InvoiceCreate, policy.Resource{}) {
		return nil, models.ErrForbidden
	}

	items := make([]models.InvoiceItem, 0, len(req.Items))
	var subtotal float64
	for _, it := range req.Items {
		lineTotal := it.Price * float64(it.Quantity)
		subtotal += lineTotal
		it.Total = lineTotal
		items = append(items, it)
	}

	inv := &models.Invoice{
		InvoiceNumber: s.numbers.InvoiceNumber(ctx),
		Customer:      req.Customer,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           req.Tax,
		Discount:      req.Discount,
		Total:         subtotal + req.Tax - req.Discount,
		Status:        models.InvoiceDraft,
		OrderID:       req.OrderID,
	}

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("service.CreateInvoice: %w", err)
	}
	return created, nil
}

// ListInvoices lists invoices for the admin dashboard.
func (s *Service) ListInvoices(ctx context.Context, actor policy.Actor, status string, page, limit int) ([]*models.Invoice, int, error) {
	if !policy.Allow(actor, policy.InvoiceRead, policy.Resource{}) {
		return nil, 0, models.ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, status, page, limit)
}

// MarkPaid moves an invoice to the paid status.
func (s *Service) MarkPaid(ctx context.Context, actor policy.Actor, invoiceID string) (*models.Invoice, error) {
	if !policy.Allow(actor, policy.InvoiceCreate, policy.Resource{}) {
		return nil, models.ErrForbidden
	}
	inv, err := s.repo.SetStatus(ctx, invoiceID, models.InvoicePaid)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// RevenueSummary aggregates invoiced totals per status.
func (s *Service) RevenueSummary(ctx context.Context, actor policy.Actor) ([]models.RevenueSummary, error) {
	if !policy.Allow(actor, policy.ReportRead, policy.Resource{}) {
		return nil, models.ErrForbidden
	}
	return s.repo.RevenueByStatus(ctx)
}
