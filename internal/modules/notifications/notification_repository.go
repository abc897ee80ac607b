package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doorstep-clean/internal/models"
)

// RepositoryInterface defines the contract for the notification repository.
type RepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	List(ctx context.Context, unreadOnly bool, page, limit int) ([]*models.Notification, int, error)
	MarkRead(ctx context.Context, notificationID string) (*models.Notification, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new notification repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const notificationColumns = `id, type, title, body, order_id, read, created_at`

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.ID,
		&n.Type,
		&n.Title,
		&n.Body,
		&n.OrderID,
		&n.Read,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return &n, nil
}

// Create inserts a new notification.
func (r *Repository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (type, title, body, order_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + notificationColumns

	row := r.db.QueryRow(ctx, query, n.Type, n.Title, n.Body, n.OrderID)
	created, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return created, nil
}

// List retrieves notifications, newest first.
func (r *Repository) List(ctx context.Context, unreadOnly bool, page, limit int) ([]*models.Notification, int, error) {
	offset := (page - 1) * limit

	query := `SELECT ` + notificationColumns + ` FROM notifications`
	countQuery := `SELECT COUNT(*) FROM notifications`
	if unreadOnly {
		query += ` WHERE read = FALSE`
		countQuery += ` WHERE read = FALSE`
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.List: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.List: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository.List: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.List: count: %w", err)
	}
	return notifications, total, nil
}

// MarkRead flags a notification as read.
func (r *Repository) MarkRead(ctx context.Context, notificationID string) (*models.Notification, error) {
	if uuid.Validate(notificationID) != nil {
		return nil, models.ErrNotFound
	}
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 RETURNING ` + notificationColumns

	row := r.db.QueryRow(ctx, query, notificationID)
	updated, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.MarkRead: %w", err)
	}
	return updated, nil
}
