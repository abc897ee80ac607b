// Package sequence issues the human-readable sequential identifiers used by
// orders (DC-NNNNNN) and invoices (INV-NNNNNN). Numbers come from an atomic
// counter row, so concurrent creations never collide.
package sequence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	orderCounter   = "order"
	invoiceCounter = "invoice"
)

// Store supplies the next value of a named counter.
type Store interface {
	Next(ctx context.Context, name string) (int64, error)
}

// PostgresStore implements Store on the counters table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Next atomically increments and returns the named counter.
func (s *PostgresStore) Next(ctx context.Context, name string) (int64, error) {
	var value int64
	err := s.db.QueryRow(ctx,
		`UPDATE counters SET value = value + 1 WHERE name = $1 RETURNING value`,
		name,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("sequence.Next(%s): %w", name, err)
	}
	return value, nil
}

// Generator formats counter values into entity identifiers.
type Generator struct {
	store Store
}

func NewGenerator(store Store) *Generator {
	return &Generator{store: store}
}

// OrderNumber returns the next DC- order number.
func (g *Generator) OrderNumber(ctx context.Context) string {
	return g.next(ctx, orderCounter, "DC")
}

// InvoiceNumber returns the next INV- invoice number.
func (g *Generator) InvoiceNumber(ctx context.Context) string {
	return g.next(ctx, invoiceCounter, "INV")
}

func (g *Generator) next(ctx context.Context, name, prefix string) string {
	value, err := g.store.Next(ctx, name)
	if err != nil {
		// Fall back to a timestamp: unique, just not pretty.
		slog.Error("sequence counter failed, falling back to timestamp", "counter", name, "error", err)
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli())
	}
	return fmt.Sprintf("%s-%06d", prefix, value)
}
