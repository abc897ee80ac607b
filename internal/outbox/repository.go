package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so events can be
// enqueued inside the caller's transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RepositoryInterface defines the contract for the outbox repository.
type RepositoryInterface interface {
	Enqueue(ctx context.Context, q Querier, topic string, payload any) error
	GetPending(ctx context.Context, limit int) ([]Event, error)
	Delete(ctx context.Context, id int64) error
	UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextAttemptAt time.Time) error
	HasPending(ctx context.Context, topic, orderID string) (bool, error)
}

// Repository implements the RepositoryInterface on the outbox_events table.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Enqueue appends an event through q, which is the enclosing transaction when
// the event must be atomic with the primary write.
func (r *Repository) Enqueue(ctx context.Context, q Querier, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("outbox.Enqueue: marshal payload: %w", err)
	}
	if q == nil {
		q = r.db
	}
	_, err = q.Exec(ctx,
		`INSERT INTO outbox_events (topic, payload) VALUES ($1, $2)`,
		topic, body,
	)
	if err != nil {
		return fmt.Errorf("outbox.Enqueue: %w", err)
	}
	return nil
}

// GetPending retrieves events that are due for an attempt.
func (r *Repository) GetPending(ctx context.Context, limit int) ([]Event, error) {
	query, args, err := sq.Select(
		"id", "topic", "payload", "retry_count", "max_retries",
		"last_error", "created_at", "updated_at", "next_attempt_at",
	).
		From("outbox_events").
		Where(sq.LtOrEq{"next_attempt_at": time.Now()}).
		Where(sq.Expr("retry_count < max_retries")).
		OrderBy("next_attempt_at ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("outbox.GetPending: build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("outbox.GetPending: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		err := rows.Scan(
			&e.ID, &e.Topic, &e.Payload, &e.RetryCount, &e.MaxRetries,
			&e.LastError, &e.CreatedAt, &e.UpdatedAt, &e.NextAttemptAt,
		)
		if err != nil {
			return nil, fmt.Errorf("outbox.GetPending: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("outbox.GetPending: %w", err)
	}
	return events, nil
}

// Delete removes an event after it was applied.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM outbox_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("outbox.Delete: %w", err)
	}
	return nil
}

// UpdateRetry records a failed attempt and schedules the next one.
func (r *Repository) UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextAttemptAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE outbox_events
		 SET retry_count = $1, last_error = $2, next_attempt_at = $3, updated_at = NOW()
		 WHERE id = $4`,
		retryCount, lastError, nextAttemptAt, id,
	)
	if err != nil {
		return fmt.Errorf("outbox.UpdateRetry: %w", err)
	}
	return nil
}

// HasPending reports whether an event of the given topic is still dispatchable
// for the order. Rows with exhausted retries do not count; GetPending will
// never pick them up again, so the reconciliation sweep must not treat them
// as coverage.
func (r *Repository) HasPending(ctx context.Context, topic, orderID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM outbox_events
			WHERE topic = $1 AND payload->>'orderId' = $2 AND retry_count < max_retries
		)`,
		topic, orderID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("outbox.HasPending: %w", err)
	}
	return exists, nil
}
