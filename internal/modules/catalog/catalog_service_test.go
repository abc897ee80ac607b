package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/policy"
)

type fakeRepo struct {
	services map[string]*models.Service
	nextID   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{services: make(map[string]*models.Service)}
}

func (f *fakeRepo) Create(ctx context.Context, svc *models.Service) (*models.Service, error) {
	f.nextID++
	cp := *svc
	cp.ID = fmt.Sprintf("svc-%d", f.nextID)
	f.services[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, serviceID string) (*models.Service, error) {
	svc, ok := f.services[serviceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *svc
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	var out []*models.Service
	for _, svc := range f.services {
		if activeOnly && !svc.Active {
			continue
		}
		cp := *svc
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeRepo) Update(ctx context.Context, svc *models.Service) (*models.Service, error) {
	if _, ok := f.services[svc.ID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *svc
	f.services[svc.ID] = &cp
	out := cp
	return &out, nil
}

var admin = policy.Actor{ID: "a1", Role: models.RoleAdmin}

func TestListServicesHidesInactiveByDefault(t *testing.T) {
	fr := newFakeRepo()
	svc := NewService(fr)

	if _, err := svc.CreateService(context.Background(), admin, models.CreateServiceRequest{
		Name: "Wash & Fold", Category: "laundry", Price: 400, Unit: "per 5kg",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	retired, err := svc.CreateService(context.Background(), admin, models.CreateServiceRequest{
		Name: "Curtain Wash", Category: "home", Price: 900, Unit: "per panel",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	off := false
	if _, err := svc.UpdateService(context.Background(), admin, retired.ID, models.UpdateServiceRequest{Active: &off}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	public, err := svc.ListServices(context.Background(), false)
	if err != nil {
		t.Fatalf("public list: %v", err)
	}
	if len(public) != 1 || public[0].Name != "Wash & Fold" {
		t.Errorf("public list = %+v; want only the active entry", public)
	}

	all, err := svc.ListServices(context.Background(), true)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin list has %d entries; want 2", len(all))
	}
}

func TestCatalogWritesRequireAdmin(t *testing.T) {
	fr := newFakeRepo()
	svc := NewService(fr)
	staff := policy.Actor{ID: "s1", Role: models.RoleStaff}

	if _, err := svc.CreateService(context.Background(), staff, models.CreateServiceRequest{
		Name: "Ironing", Category: "laundry", Price: 50, Unit: "per piece",
	}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("create err = %v; want ErrForbidden", err)
	}

	created, err := svc.CreateService(context.Background(), admin, models.CreateServiceRequest{
		Name: "Ironing", Category: "laundry", Price: 50, Unit: "per piece",
	})
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if !created.Active {
		t.Error("new entry should start active")
	}

	price := 60.0
	if _, err := svc.UpdateService(context.Background(), staff, created.ID, models.UpdateServiceRequest{Price: &price}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("update err = %v; want ErrForbidden", err)
	}
	updated, err := svc.UpdateService(context.Background(), admin, created.ID, models.UpdateServiceRequest{Price: &price})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if updated.Price != 60 {
		t.Errorf("Price = %v; want 60", updated.Price)
	}
}
