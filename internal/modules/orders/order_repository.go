package orders

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/outbox"
)

// Message is a side-effect event appended in the same transaction as the
// order write.
type Message struct {
	Topic   string
	Payload any
}

// Filter narrows list queries to the actor's scope.
type Filter struct {
	Status        string
	AssignedStaff string
	AssignedRider string
	CustomerEmail string
}

// RepositoryInterface defines the contract for the order repository.
type RepositoryInterface interface {
	Create(ctx context.Context, order *models.Order, events []Message) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, f Filter, page, limit int) ([]*models.Order, int, error)
	Update(ctx context.Context, order *models.Order, events []Message) (*models.Order, error)
	ListDeliveredWithoutInvoice(ctx context.Context, limit int) ([]*models.Order, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db     *pgxpool.Pool
	events outbox.RepositoryInterface
}

// NewRepository creates a new order repository.
func NewRepository(db *pgxpool.Pool, events outbox.RepositoryInterface) RepositoryInterface {
	return &Repository{db: db, events: events}
}

const orderColumns = `id, order_number, customer, items, status, status_history,
	pickup_date, pickup_slot, delivery_date, assigned_staff, assigned_rider,
	total_amount, notes, created_at, updated_at`

// Create inserts a new order and its side-effect events in one transaction.
func (r *Repository) Create(ctx context.Context, order *models.Order, events []Message) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (order_number, customer, items, status, status_history,
			pickup_date, pickup_slot, delivery_date, assigned_staff, assigned_rider,
			total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + orderColumns

	row := tx.QueryRow(ctx, query,
		order.OrderNumber, order.Customer, order.Items, order.Status, order.StatusHistory,
		order.PickupDate, order.PickupSlot, order.DeliveryDate, order.AssignedStaff,
		order.AssignedRider, order.TotalAmount, order.Notes,
	)
	created, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}

	for _, ev := range events {
		// The order id only exists after the insert; stamp it onto payloads
		// built before the save.
		if p, ok := ev.Payload.(outbox.OrderEvent); ok && p.OrderID == "" {
			p.OrderID = created.ID
			ev.Payload = p
		}
		if err := r.events.Enqueue(ctx, tx, ev.Topic, ev.Payload); err != nil {
			return nil, fmt.Errorf("repository.Create: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.Create: commit: %w", err)
	}
	return created, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.Customer,
		&order.Items,
		&order.Status,
		&order.StatusHistory,
		&order.PickupDate,
		&order.PickupSlot,
		&order.DeliveryDate,
		&order.AssignedStaff,
		&order.AssignedRider,
		&order.TotalAmount,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}
	return &order, nil
}

// FindByID retrieves a single order by its ID. A malformed ID is a plain
// not-found, not a database error.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	if uuid.Validate(orderID) != nil {
		return nil, models.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return order, nil
}

// FindByNumber retrieves a single order by its public DC- number.
func (r *Repository) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, orderNumber)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByNumber: %w", err)
	}
	return order, nil
}

// List retrieves orders matching the filter, newest first, with pagination.
func (r *Repository) List(ctx context.Context, f Filter, page, limit int) ([]*models.Order, int, error) {
	offset := (page - 1) * limit

	base := sq.Select(orderColumns).
		From("orders").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar)
	countBase := sq.Select("COUNT(*)").From("orders").PlaceholderFormat(sq.Dollar)

	if f.Status != "" {
		base = base.Where(sq.Eq{"status": f.Status})
		countBase = countBase.Where(sq.Eq{"status": f.Status})
	}
	if f.AssignedStaff != "" {
		base = base.Where(sq.Eq{"assigned_staff": f.AssignedStaff})
		countBase = countBase.Where(sq.Eq{"assigned_staff": f.AssignedStaff})
	}
	if f.AssignedRider != "" {
		base = base.Where(sq.Eq{"assigned_rider": f.AssignedRider})
		countBase = countBase.Where(sq.Eq{"assigned_rider": f.AssignedRider})
	}
	if f.CustomerEmail != "" {
		base = base.Where(sq.Expr("customer->>'email' = ?", f.CustomerEmail))
		countBase = countBase.Where(sq.Expr("customer->>'email' = ?", f.CustomerEmail))
	}

	query, args, err := base.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repository.List: build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.List: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.List: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.List: %w", err)
	}

	countQuery, countArgs, err := countBase.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("repository.List: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.List: count: %w", err)
	}

	return orders, total, nil
}

// Update persists the order's mutable fields, the appended history, and the
// side-effect events as one transaction.
func (r *Repository) Update(ctx context.Context, order *models.Order, events []Message) (*models.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository.Update: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE orders
		SET status = $1, status_history = $2, pickup_date = $3, pickup_slot = $4,
			delivery_date = $5, assigned_staff = $6, assigned_rider = $7,
			total_amount = $8, notes = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING ` + orderColumns

	row := tx.QueryRow(ctx, query,
		order.Status, order.StatusHistory, order.PickupDate, order.PickupSlot,
		order.DeliveryDate, order.AssignedStaff, order.AssignedRider,
		order.TotalAmount, order.Notes, order.ID,
	)
	updated, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update: %w", err)
	}

	for _, ev := range events {
		if err := r.events.Enqueue(ctx, tx, ev.Topic, ev.Payload); err != nil {
			return nil, fmt.Errorf("repository.Update: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("repository.Update: commit: %w", err)
	}
	return updated, nil
}

// ListDeliveredWithoutInvoice finds delivered orders that no invoice
// references. The reconciliation job uses it to re-enqueue lost invoice
// generation.
func (r *Repository) ListDeliveredWithoutInvoice(ctx context.Context, limit int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.status = $1
		  AND NOT EXISTS (SELECT 1 FROM invoices i WHERE i.order_id = o.id)
		ORDER BY o.updated_at ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, models.StatusDelivered, limit)
	if err != nil {
		return nil, fmt.Errorf("repository.ListDeliveredWithoutInvoice: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListDeliveredWithoutInvoice: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListDeliveredWithoutInvoice: %w", err)
	}
	return orders, nil
}
