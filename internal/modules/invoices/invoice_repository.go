package invoices

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"doorstep-clean/internal/models"
)

// RepositoryInterface defines the contract for the invoice repository.
type RepositoryInterface interface {
	Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error)
	FindByID(ctx context.Context, invoiceID string) (*models.Invoice, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Invoice, error)
	List(ctx context.Context, status string, page, limit int) ([]*models.Invoice, int, error)
	SetStatus(ctx context.Context, invoiceID, status string) (*models.Invoice, error)
	RevenueByStatus(ctx context.Context) ([]models.RevenueSummary, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new invoice repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const invoiceColumns = `id, invoice_number, customer, items, subtotal, tax,
	discount, total, status, order_id, created_at, updated_at`

// Create inserts a new invoice. A second invoice for the same order trips the
// unique index and comes back as ErrConflict.
func (r *Repository) Create(ctx context.Context, inv *models.Invoice) (*models.Invoice, error) {
	query := `
		INSERT INTO invoices (invoice_number, customer, items, subtotal, tax,
			discount, total, status, order_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + invoiceColumns

	row := r.db.QueryRow(ctx, query,
		inv.InvoiceNumber, inv.Customer, inv.Items, inv.Subtotal, inv.Tax,
		inv.Discount, inv.Total, inv.Status, inv.OrderID,
	)
	created, err := scanInvoice(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return created, nil
}

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	var inv models.Invoice
	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.Customer,
		&inv.Items,
		&inv.Subtotal,
		&inv.Tax,
		&inv.Discount,
		&inv.Total,
		&inv.Status,
		&inv.OrderID,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindByID retrieves a single invoice.
func (r *Repository) FindByID(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	if uuid.Validate(invoiceID) != nil {
		return nil, models.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, invoiceID)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return inv, nil
}

// FindByOrderID retrieves the invoice referencing an order, if any.
func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*models.Invoice, error) {
	row := r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE order_id = $1`, orderID)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByOrderID: %w", err)
	}
	return inv, nil
}

// List retrieves invoices, newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string, page, limit int) ([]*models.Invoice, int, error) {
	offset := (page - 1) * limit

	base := sq.Select(invoiceColumns).
		From("invoices").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar)
	countBase := sq.Select("COUNT(*)").From("invoices").PlaceholderFormat(sq.Dollar)

	if status != "" {
		base = base.Where(sq.Eq{"status": status})
		countBase = countBase.Where(sq.Eq{"status": status})
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

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.List: %w", err)
		}
		invoices = append(invoices, inv)
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

	return invoices, total, nil
}

// SetStatus updates an invoice's status.
func (r *Repository) SetStatus(ctx context.Context, invoiceID, status string) (*models.Invoice, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+invoiceColumns,
		status, invoiceID,
	)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.SetStatus: %w", err)
	}
	return inv, nil
}

// RevenueByStatus sums invoice totals grouped by status.
func (r *Repository) RevenueByStatus(ctx context.Context) ([]models.RevenueSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total), 0) FROM invoices GROUP BY status`,
	)
	if err != nil {
		return nil, fmt.Errorf("repository.RevenueByStatus: %w", err)
	}
	defer rows.Close()

	var out []models.RevenueSummary
	for rows.Next() {
		var s models.RevenueSummary
		if err := rows.Scan(&s.Status, &s.Count, &s.Total); err != nil {
			return nil, fmt.Errorf("repository.RevenueByStatus: scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.RevenueByStatus: %w", err)
	}
	return out, nil
}
