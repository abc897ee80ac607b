package catalog

import (
	"context"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/policy"
)

// ServiceInterface defines the contract for the catalog service.
type ServiceInterface interface {
	ListServices(ctx context.Context, includeInactive bool) ([]*models.Service, error)
	CreateService(ctx context.Context, actor policy.Actor, req models.CreateServiceRequest) (*models.Service, error)
	UpdateService(ctx context.Context, actor policy.Actor, serviceID string, req models.UpdateServiceRequest) (*models.Service, error)
}

// Service implements the ServiceInterface.
type Service struct {
	repo RepositoryInterface
}

// NewService creates a new catalog service.
func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

// ListServices returns the price list. The public booking form only sees
// active entries; the admin screen asks for everything.
func (s *Service) ListServices(ctx context.Context, includeInactive bool) ([]*models.Service, error) {
	return s.repo.List(ctx, !includeInactive)
}

// CreateService adds a catalog entry. Admin only.
func (s *Service) CreateService(ctx context.Context, actor policy.Actor, req models.CreateServiceRequest) (*models.Service, error) {
	if !policy.Allow(actor, policy.CatalogWrite, policy.Resource{}) {
		return nil, models.ErrForbidden
	}
	return s.repo.Create(ctx, &models.Service{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Unit:     req.Unit,
		Active:   true,
	})
}

// UpdateService edits a catalog entry, including deactivation. Admin only.
func (s *Service) UpdateService(ctx context.Context, actor policy.Actor, serviceID string, req models.UpdateServiceRequest) (*models.Service, error) {
	if !policy.Allow(actor, policy.CatalogWrite, policy.Resource{}) {
		return nil, models.ErrForbidden
	}

	svc, err := s.repo.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Category != nil {
		svc.Category = *req.Category
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Unit != nil {
		svc.Unit = *req.Unit
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	return s.repo.Update(ctx, svc)
}
