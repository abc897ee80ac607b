package invoices

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/policy"
)

type fakeRepo struct {
	invoices map[string]*models.Invoice
	byOrder  map[string]string
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices: make(map[string]*models.Invoice),
		byOrder:  make(map[string]string),
	}
}

func (f *fakeRepo) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	if inv.OrderID != nil {
		if _, taken := f.byOrder[*inv.OrderID]; taken {
			return nil, models.ErrConflict
		}
	}
	f.nextID++
	cp := *inv
	cp.ID = fmt.Sprintf("inv-%d", f.nextID)
	cp.CreatedAt = time.Now()
	f.invoices[cp.ID] = &cp
	if cp.OrderID != nil {
		f.byOrder[*cp.OrderID] = cp.ID
	}
	out := cp
	return &out, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) FindByOrderID(ctx context.Context, orderID string) (*models.Invoice, error) {
	id, ok := f.byOrder[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return f.FindByID(ctx, id)
}

func (f *fakeRepo) List(ctx context.Context, status string, page, limit int) ([]*models.Invoice, int, error) {
	var out []*models.Invoice
	for _, inv := range f.invoices {
		if status != "" && inv.Status != status {
			continue
		}
		cp := *inv
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeRepo) SetStatus(ctx context.Context, invoiceID, status string) (*models.Invoice, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	inv.Status = status
	cp := *inv
	return &cp, nil
}

func (f *fakeRepo) RevenueByStatus(ctx context.Context) ([]models.RevenueSummary, error) {
	byStatus := map[string]*models.RevenueSummary{}
	for _, inv := range f.invoices {
		s, ok := byStatus[inv.Status]
		if !ok {
			s = &models.RevenueSummary{Status: inv.Status}
			byStatus[inv.Status] = s
		}
		s.Count++
		s.Total += inv.Total
	}
	var out []models.RevenueSummary
	for _, s := range byStatus {
		out = append(out, *s)
	}
	return out, nil
}

type fakeOrders struct {
	orders map[string]*models.Order
}

func (f *fakeOrders) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

type fakeNumbers struct{ n int }

func (f *fakeNumbers) InvoiceNumber(ctx context.Context) string {
	f.n++
	return fmt.Sprintf("INV-%06d", 1000+f.n)
}

func deliveredOrder() *models.Order {
	return &models.Order{
		ID:          "order-1",
		OrderNumber: "DC-001001",
		Customer:    models.CustomerInfo{Name: "Jordan Lee", Phone: "+60", Address: "12 Jalan Besar"},
		Items: []models.ServiceItem{
			{Name: "Wash & Fold", Quantity: 1, Price: 400},
			{Name: "Dry Clean Suit", Quantity: 2, Price: 450},
		},
		Status:      models.StatusDelivered,
		TotalAmount: 1300,
	}
}

func newTestService(fr *fakeRepo, order *models.Order) *Service {
	fo := &fakeOrders{orders: map[string]*models.Order{}}
	if order != nil {
		fo.orders[order.ID] = order
	}
	return NewService(fr, fo, &fakeNumbers{})
}

func TestGenerateForOrderBuildsInvoiceFromOrder(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr, deliveredOrder())

	inv, err := svc.GenerateForOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("GenerateForOrder error: %v", err)
	}

	if inv.InvoiceNumber != "INV-001001" {
		t.Errorf("InvoiceNumber = %s", inv.InvoiceNumber)
	}
	if inv.Status != models.InvoiceSent {
		t.Errorf("Status = %s; want sent", inv.Status)
	}
	if inv.Subtotal != 1300 || inv.Total != 1300 {
		t.Errorf("Subtotal/Total = %v/%v; want 1300/1300", inv.Subtotal, inv.Total)
	}
	if len(inv.Items) != 2 || inv.Items[1].Total != 900 {
		t.Errorf("items = %+v", inv.Items)
	}
	if inv.OrderID == nil || *inv.OrderID != "order-1" {
		t.Errorf("OrderID = %v; want order-1", inv.OrderID)
	}
}

func TestGenerateForOrderIsIdempotent(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr, deliveredOrder())

	first, err := svc.GenerateForOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("first generation: %v", err)
	}
	second, err := svc.GenerateForOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("second generation: %v", err)
	}

	if len(fr.invoices) != 1 {
		t.Fatalf("invoice count = %d; want exactly 1", len(fr.invoices))
	}
	if first.ID != second.ID {
		t.Errorf("re-trigger returned a different invoice: %s vs %s", first.ID, second.ID)
	}
}

func TestGenerateCopiesOverriddenTotal(t *testing.T) {
	order := deliveredOrder()
	order.TotalAmount = 1500 // admin override, diverges from the item sum
	fr := newFakeRepo()
	svc := newTestService(fr, order)

	inv, err := svc.GenerateForOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("GenerateForOrder error: %v", err)
	}
	if inv.Total != 1500 {
		t.Errorf("Total = %v; want the order's overridden 1500", inv.Total)
	}
	if inv.Subtotal != 1300 {
		t.Errorf("Subtotal = %v; want the item sum 1300", inv.Subtotal)
	}
}

func TestManualInvoiceRequiresAdmin(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr, nil)

	req := models.CreateInvoiceRequest{
		Customer: models.CustomerInfo{Name: "Walk-in", Phone: "+60", Address: "somewhere"},
		Items:    []models.InvoiceItem{{Name: "Ironing", Quantity: 3, Price: 50}},
	}

	staff := policy.Actor{ID: "s1", Role: models.RoleStaff}
	if _, err := svc.CreateInvoice(context.Background(), staff, req); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("staff create err = %v; want ErrForbidden", err)
	}

	admin := policy.Actor{ID: "a1", Role: models.RoleAdmin}
	inv, err := svc.CreateInvoice(context.Background(), admin, req)
	if err != nil {
		t.Fatalf("admin create error: %v", err)
	}
	if inv.Status != models.InvoiceDraft || inv.Total != 150 {
		t.Errorf("inv = %+v", inv)
	}
}

func TestListInvoicesDeniedOutsideAdmin(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr, nil)

	rider := policy.Actor{ID: "r1", Role: models.RoleRider}
	if _, _, err := svc.ListInvoices(context.Background(), rider, "", 1, 20); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("rider list err = %v; want ErrForbidden", err)
	}
}

func TestMarkPaidAndRevenueSummary(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr, deliveredOrder())
	admin := policy.Actor{ID: "a1", Role: models.RoleAdmin}

	inv, err := svc.GenerateForOrder(context.Background(), "order-1")
	if err != nil {
		t.Fatalf("GenerateForOrder error: %v", err)
	}

	paid, err := svc.MarkPaid(context.Background(), admin, inv.ID)
	if err != nil {
		t.Fatalf("MarkPaid error: %v", err)
	}
	if paid.Status != models.InvoicePaid {
		t.Errorf("Status = %s; want paid", paid.Status)
	}

	summary, err := svc.RevenueSummary(context.Background(), admin)
	if err != nil {
		t.Fatalf("RevenueSummary error: %v", err)
	}
	if len(summary) != 1 || summary[0].Status != models.InvoicePaid || summary[0].Total != 1300 {
		t.Errorf("summary = %+v", summary)
	}
}
