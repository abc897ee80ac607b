package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doorstep-clean/internal/models"
)

// RepositoryInterface defines the contract for the service catalog repository.
type RepositoryInterface interface {
	Create(ctx context.Context, svc *models.Service) (*models.Service, error)
	FindByID(ctx context.Context, serviceID string) (*models.Service, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Service, error)
	Update(ctx context.Context, svc *models.Service) (*models.Service, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new catalog repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const serviceColumns = `id, name, category, price, unit, active, created_at, updated_at`

func scanService(row pgx.Row) (*models.Service, error) {
	var svc models.Service
	err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.Category,
		&svc.Price,
		&svc.Unit,
		&svc.Active,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan service: %w", err)
	}
	return &svc, nil
}

// Create inserts a new catalog entry.
func (r *Repository) Create(ctx context.Context, svc *models.Service) (*models.Service, error) {
	query := `
		INSERT INTO services (name, category, price, unit, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + serviceColumns

	row := r.db.QueryRow(ctx, query, svc.Name, svc.Category, svc.Price, svc.Unit, svc.Active)
	created, err := scanService(row)
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single catalog entry.
func (r *Repository) FindByID(ctx context.Context, serviceID string) (*models.Service, error) {
	if uuid.Validate(serviceID) != nil {
		return nil, models.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, serviceID)
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return svc, nil
}

// List retrieves the catalog, grouped for the public price list.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY category, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.List: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.List: %w", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.List: %w", err)
	}
	return services, nil
}

// Update persists the catalog entry's mutable fields.
func (r *Repository) Update(ctx context.Context, svc *models.Service) (*models.Service, error) {
	query := `
		UPDATE services
		SET name = $1, category = $2, price = $3, unit = $4, active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + serviceColumns

	row := r.db.QueryRow(ctx, query, svc.Name, svc.Category, svc.Price, svc.Unit, svc.Active, svc.ID)
	updated, err := scanService(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update: %w", err)
	}
	return updated, nil
}
