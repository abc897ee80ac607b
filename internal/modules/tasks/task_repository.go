package tasks

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"doorstep-clean/internal/models"
)

// Filter narrows task list queries to the actor's scope.
type Filter struct {
	RiderID string
	Status  string
	OrderID string
}

// RepositoryInterface defines the contract for the rider task repository.
type RepositoryInterface interface {
	Create(ctx context.Context, task *models.RiderTask) (*models.RiderTask, error)
	FindByID(ctx context.Context, taskID string) (*models.RiderTask, error)
	List(ctx context.Context, f Filter, page, limit int) ([]*models.RiderTask, int, error)
	Update(ctx context.Context, task *models.RiderTask) (*models.RiderTask, error)
}

// Repository implements the RepositoryInterface.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new rider task repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const taskColumns = `id, rider_id, order_id, order_number, task_type, status,
	scheduled_at, completed_at, proof_image, notes, created_at, updated_at`

func scanTask(row pgx.Row) (*models.RiderTask, error) {
	var task models.RiderTask
	err := row.Scan(
		&task.ID,
		&task.RiderID,
		&task.OrderID,
		&task.OrderNumber,
		&task.TaskType,
		&task.Status,
		&task.ScheduledAt,
		&task.CompletedAt,
		&task.ProofImage,
		&task.Notes,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan rider task: %w", err)
	}
	return &task, nil
}

// Create inserts a new rider task.
func (r *Repository) Create(ctx context.Context, task *models.RiderTask) (*models.RiderTask, error) {
	query := `
		INSERT INTO rider_tasks (rider_id, order_id, order_number, task_type, status,
			scheduled_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + taskColumns

	row := r.db.QueryRow(ctx, query,
		task.RiderID, task.OrderID, task.OrderNumber, task.TaskType, task.Status,
		task.ScheduledAt, task.Notes,
	)
	created, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("repository.Create: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single rider task by its ID.
func (r *Repository) FindByID(ctx context.Context, taskID string) (*models.RiderTask, error) {
	if uuid.Validate(taskID) != nil {
		return nil, models.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM rider_tasks WHERE id = $1`, taskID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return task, nil
}

// List retrieves tasks matching the filter, soonest scheduled first.
func (r *Repository) List(ctx context.Context, f Filter, page, limit int) ([]*models.RiderTask, int, error) {
	offset := (page - 1) * limit

	base := sq.Select(taskColumns).
		From("rider_tasks").
		OrderBy("scheduled_at ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(sq.Dollar)
	countBase := sq.Select("COUNT(*)").From("rider_tasks").PlaceholderFormat(sq.Dollar)

	if f.RiderID != "" {
		base = base.Where(sq.Eq{"rider_id": f.RiderID})
		countBase = countBase.Where(sq.Eq{"rider_id": f.RiderID})
	}
	if f.Status != "" {
		base = base.Where(sq.Eq{"status": f.Status})
		countBase = countBase.Where(sq.Eq{"status": f.Status})
	}
	if f.OrderID != "" {
		base = base.Where(sq.Eq{"order_id": f.OrderID})
		countBase = countBase.Where(sq.Eq{"order_id": f.OrderID})
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

	var tasks []*models.RiderTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.List: %w", err)
		}
		tasks = append(tasks, task)
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

	return tasks, total, nil
}

// Update persists the task's mutable fields.
func (r *Repository) Update(ctx context.Context, task *models.RiderTask) (*models.RiderTask, error) {
	query := `
		UPDATE rider_tasks
		SET status = $1, completed_at = $2, proof_image = $3, notes = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING ` + taskColumns

	row := r.db.QueryRow(ctx, query,
		task.Status, task.CompletedAt, task.ProofImage, task.Notes, task.ID,
	)
	updated, err := scanTask(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update: %w", err)
	}
	return updated, nil
}
