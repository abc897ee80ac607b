package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/outbox"
	"doorstep-clean/internal/policy"
)

// fakeRepo mimics the real repository against in-memory maps and records the
// outbox messages each write carried.
type fakeRepo struct {
	orders map[string]*models.Order
	events []Message
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[string]*models.Order)}
}

func (f *fakeRepo) Create(ctx context.Context, order *models.Order, events []Message) (*models.Order, error) {
	f.nextID++
	cp := *order
	cp.ID = fmt.Sprintf("order-%d", f.nextID)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.orders[cp.ID] = &cp
	f.events = append(f.events, events...)
	out := cp
	return &out, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRepo) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			cp := *o
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context, fl Filter, page, limit int) ([]*models.Order, int, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if fl.Status != "" && o.Status != fl.Status {
			continue
		}
		if fl.AssignedStaff != "" && (o.AssignedStaff == nil || *o.AssignedStaff != fl.AssignedStaff) {
			continue
		}
		if fl.AssignedRider != "" && (o.AssignedRider == nil || *o.AssignedRider != fl.AssignedRider) {
			continue
		}
		if fl.CustomerEmail != "" && o.Customer.Email != fl.CustomerEmail {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(ctx context.Context, order *models.Order, events []Message) (*models.Order, error) {
	if _, ok := f.orders[order.ID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *order
	cp.UpdatedAt = time.Now()
	f.orders[cp.ID] = &cp
	f.events = append(f.events, events...)
	out := cp
	return &out, nil
}

func (f *fakeRepo) ListDeliveredWithoutInvoice(ctx context.Context, limit int) ([]*models.Order, error) {
	return nil, nil
}

type fakeNumbers struct{ n int }

func (f *fakeNumbers) OrderNumber(ctx context.Context) string {
	f.n++
	return fmt.Sprintf("DC-%06d", 1000+f.n)
}

type fakePayments struct{}

func (fakePayments) CreatePaymentLink(ctx context.Context, amount float64, orderNumber string) (string, []byte, error) {
	return "https://pay.example/" + orderNumber, []byte{0x89, 0x50}, nil
}

func newTestService(fr *fakeRepo) *Service {
	return NewService(fr, &fakeNumbers{}, fakePayments{})
}

func validBooking() models.CreateOrderRequest {
	return models.CreateOrderRequest{
		Customer: models.CustomerInfo{
			Name:    "Jordan Lee",
			Phone:   "+6011111111",
			Email:   "jordan@example.com",
			Address: "12 Jalan Besar",
		},
		Items: []models.ServiceItem{
			{Name: "Wash & Fold", Quantity: 1, Price: 400},
			{Name: "Dry Clean Suit", Quantity: 2, Price: 450},
		},
		PickupDate: time.Now().Add(24 * time.Hour),
		PickupSlot: "09:00-11:00",
	}
}

func TestCreateOrderComputesTotalAndSeedsHistory(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)

	order, err := svc.CreateOrder(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if order.TotalAmount != 1300 {
		t.Errorf("TotalAmount = %v; want 1300", order.TotalAmount)
	}
	if order.Status != models.StatusCreated {
		t.Errorf("Status = %s; want CREATED", order.Status)
	}
	if len(order.StatusHistory) != 1 {
		t.Fatalf("history length = %d; want 1", len(order.StatusHistory))
	}
	if order.StatusHistory[0].Status != models.StatusCreated {
		t.Errorf("seeded history status = %s; want CREATED", order.StatusHistory[0].Status)
	}
	if order.OrderNumber != "DC-001001" {
		t.Errorf("OrderNumber = %s; want DC-001001", order.OrderNumber)
	}

	// Booking enqueues the order.created side effect.
	if len(fr.events) != 1 || fr.events[0].Topic != outbox.TopicOrderCreated {
		t.Errorf("events = %+v; want one order.created", fr.events)
	}
}

func TestCreateOrderRejectsMissingAddress(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)

	req := validBooking()
	req.Customer.Address = ""

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, models.ErrMissingCustomerFields) {
		t.Fatalf("err = %v; want ErrMissingCustomerFields", err)
	}
	if err.Error() != "Customer name, phone, and address are required" {
		t.Errorf("message = %q", err.Error())
	}
	if len(fr.orders) != 0 {
		t.Errorf("order was persisted despite validation failure")
	}
}

func TestUpdateOrderAppendsExactlyOneHistoryEntry(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	admin := policy.Actor{ID: "a1", Role: models.RoleAdmin, Name: "Admin"}

	created, _ := svc.CreateOrder(context.Background(), validBooking())

	status := models.StatusPickedUp
	updated, err := svc.UpdateOrder(context.Background(), admin, created.ID, models.UpdateOrderRequest{Status: &status})
	if err != nil {
		t.Fatalf("UpdateOrder error: %v", err)
	}

	if len(updated.StatusHistory) != 2 {
		t.Fatalf("history length = %d; want 2", len(updated.StatusHistory))
	}
	last := updated.StatusHistory[1]
	if last.Status != models.StatusPickedUp || last.UpdatedBy != "Admin" {
		t.Errorf("last entry = %+v", last)
	}
	if last.Note != "Status updated to PICKED_UP" {
		t.Errorf("default note = %q", last.Note)
	}
}

func TestUpdateWithoutStatusLeavesHistoryUntouched(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	admin := policy.Actor{ID: "a1", Role: models.RoleAdmin, Name: "Admin"}

	created, _ := svc.CreateOrder(context.Background(), validBooking())

	total := 999.0
	notes := "customer called"
	updated, err := svc.UpdateOrder(context.Background(), admin, created.ID, models.UpdateOrderRequest{
		TotalAmount: &total,
		Notes:       &notes,
	})
	if err != nil {
		t.Fatalf("UpdateOrder error: %v", err)
	}
	if len(updated.StatusHistory) != 1 {
		t.Errorf("history length = %d; want 1", len(updated.StatusHistory))
	}
	if updated.TotalAmount != 999 || updated.Notes != "customer called" {
		t.Errorf("fields not applied: %+v", updated)
	}
}

func TestDeliveredEnqueuesInvoiceGeneration(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	admin := policy.Actor{ID: "a1", Role: models.RoleAdmin, Name: "Admin"}

	created, _ := svc.CreateOrder(context.Background(), validBooking())

	// Jumping straight from CREATED to DELIVERED is allowed; there is no
	// adjacency check on transitions.
	status := models.StatusDelivered
	if _, err := svc.UpdateOrder(context.Background(), admin, created.ID, models.UpdateOrderRequest{Status: &status}); err != nil {
		t.Fatalf("UpdateOrder error: %v", err)
	}

	var haveInvoiceEvent, haveStatusEvent bool
	for _, ev := range fr.events {
		switch ev.Topic {
		case outbox.TopicInvoiceGenerate:
			haveInvoiceEvent = true
			p := ev.Payload.(outbox.OrderEvent)
			if p.OrderID != created.ID {
				t.Errorf("invoice event orderId = %s; want %s", p.OrderID, created.ID)
			}
		case outbox.TopicStatusChanged:
			haveStatusEvent = true
		}
	}
	if !haveInvoiceEvent {
		t.Error("DELIVERED did not enqueue invoice.generate")
	}
	if !haveStatusEvent {
		t.Error("status change did not enqueue order.status_changed")
	}
}

func TestStaffCannotTouchUnassignedOrder(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	staff := policy.Actor{ID: "s1", Role: models.RoleStaff, Name: "Staff"}

	created, _ := svc.CreateOrder(context.Background(), validBooking())

	status := models.StatusInLaundry
	_, err := svc.UpdateOrder(context.Background(), staff, created.ID, models.UpdateOrderRequest{Status: &status})
	if !errors.Is(err, models.ErrForbidden) {
		t.Fatalf("err = %v; want ErrForbidden", err)
	}
	// The order document must be unchanged.
	stored := fr.orders[created.ID]
	if stored.Status != models.StatusCreated || len(stored.StatusHistory) != 1 {
		t.Errorf("order mutated after forbidden update: %+v", stored)
	}
}

func TestAssignedRiderMayTransition(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	admin := policy.Actor{ID: "a1", Role: models.RoleAdmin, Name: "Admin"}
	rider := policy.Actor{ID: "r1", Role: models.RoleRider, Name: "Rider One"}

	created, _ := svc.CreateOrder(context.Background(), validBooking())

	riderID := "r1"
	if _, err := svc.UpdateOrder(context.Background(), admin, created.ID, models.UpdateOrderRequest{AssignedRider: &riderID}); err != nil {
		t.Fatalf("assign rider: %v", err)
	}

	status := models.StatusOutForDelivery
	updated, err := svc.UpdateOrder(context.Background(), rider, created.ID, models.UpdateOrderRequest{Status: &status})
	if err != nil {
		t.Fatalf("rider transition error: %v", err)
	}
	if updated.Status != models.StatusOutForDelivery {
		t.Errorf("Status = %s; want OUT_FOR_DELIVERY", updated.Status)
	}
}

func TestListOrdersScopesByRole(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	admin := policy.Actor{ID: "a1", Role: models.RoleAdmin, Name: "Admin"}

	first, _ := svc.CreateOrder(context.Background(), validBooking())
	second, _ := svc.CreateOrder(context.Background(), validBooking())
	_ = second

	staffID := "s1"
	if _, err := svc.UpdateOrder(context.Background(), admin, first.ID, models.UpdateOrderRequest{AssignedStaff: &staffID}); err != nil {
		t.Fatalf("assign staff: %v", err)
	}

	all, total, err := svc.ListOrders(context.Background(), admin, "", 1, 20)
	if err != nil || total != 2 || len(all) != 2 {
		t.Fatalf("admin list = %d/%d (err %v); want 2/2", len(all), total, err)
	}

	staff := policy.Actor{ID: "s1", Role: models.RoleStaff}
	mine, total, err := svc.ListOrders(context.Background(), staff, "", 1, 20)
	if err != nil || total != 1 {
		t.Fatalf("staff list total = %d (err %v); want 1", total, err)
	}
	if mine[0].ID != first.ID {
		t.Errorf("staff sees %s; want %s", mine[0].ID, first.ID)
	}
}

func TestTrackByNumber(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)

	created, _ := svc.CreateOrder(context.Background(), validBooking())

	summary, err := svc.TrackByNumber(context.Background(), created.OrderNumber)
	if err != nil {
		t.Fatalf("TrackByNumber error: %v", err)
	}
	if summary.OrderNumber != created.OrderNumber || summary.Status != models.StatusCreated {
		t.Errorf("summary = %+v", summary)
	}

	if _, err := svc.TrackByNumber(context.Background(), "DC-999999"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown number err = %v; want ErrNotFound", err)
	}
}
