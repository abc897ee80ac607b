package tasks

import (
	"context"
	"time"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/policy"
)

// OrderFinder is the slice of the order repository task assignment needs.
type OrderFinder interface {
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
}

// ServiceInterface defines the contract for the rider task service.
type ServiceInterface interface {
	CreateTask(ctx context.Context, actor policy.Actor, req models.CreateTaskRequest) (*models.RiderTask, error)
	GetTask(ctx context.Context, actor policy.Actor, taskID string) (*models.RiderTask, error)
	ListTasks(ctx context.Context, actor policy.Actor, status string, page, limit int) ([]*models.RiderTask, int, error)
	UpdateTask(ctx context.Context, actor policy.Actor, taskID string, req models.UpdateTaskRequest) (*models.RiderTask, error)
}

// Service implements the ServiceInterface.
type Service struct {
	repo   RepositoryInterface
	orders OrderFinder
	now    func() time.Time
}

// NewService creates a new rider task service.
func NewService(repo RepositoryInterface, orders OrderFinder) *Service {
	return &Service{repo: repo, orders: orders, now: time.Now}
}

func resourceOf(task *models.RiderTask) policy.Resource {
	return policy.Resource{AssignedRider: task.RiderID}
}

// CreateTask assigns a pickup or delivery to a rider. The order number is
// denormalized onto the task so the rider app never joins back to orders.
func (s *Service) CreateTask(ctx context.Context, actor policy.Actor, req models.CreateTaskRequest) (*models.RiderTask, error) {
	if !policy.Allow(actor, policy.TaskCreate, policy.Resource{}) {
		return nil, models.ErrForbidden
	}

	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	task := &models.RiderTask{
		RiderID:     req.RiderID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		TaskType:    req.TaskType,
		Status:      models.TaskAssigned,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
	}
	return s.repo.Create(ctx, task)
}

// GetTask returns a single task if the actor may see it.
func (s *Service) GetTask(ctx context.Context, actor policy.Actor, taskID string) (*models.RiderTask, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(actor, policy.TaskRead, resourceOf(task)) {
		return nil, models.ErrForbidden
	}
	return task, nil
}

// ListTasks returns the actor's slice of the task queue. Admins see every
// task, riders only their own assignments.
func (s *Service) ListTasks(ctx context.Context, actor policy.Actor, status string, page, limit int) ([]*models.RiderTask, int, error) {
	f := Filter{Status: status}
	switch policy.ScopeFor(actor, policy.TaskRead) {
	case policy.ScopeAny:
	case policy.ScopeAssigned:
		f.RiderID = actor.ID
	default:
		return nil, 0, models.ErrForbidden
	}
	return s.repo.List(ctx, f, page, limit)
}

// UpdateTask applies the rider's (or admin's) progress update. The completion
// timestamp is written once, on the first transition to completed, and is
// never cleared or rewritten afterward.
func (s *Service) UpdateTask(ctx context.Context, actor policy.Actor, taskID string, req models.UpdateTaskRequest) (*models.RiderTask, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.Allow(actor, policy.TaskUpdate, resourceOf(task)) {
		return nil, models.ErrForbidden
	}

	if req.Status != nil && *req.Status != task.Status {
		if task.CompletedAt != nil {
			return nil, models.ErrInvalidStatus
		}
		task.Status = *req.Status
		if task.Status == models.TaskCompleted {
			completedAt := s.now()
			task.CompletedAt = &completedAt
		}
	}
	if req.ProofImage != nil {
		task.ProofImage = req.ProofImage
	}
	if req.Notes != nil {
		task.Notes = *req.Notes
	}

	return s.repo.Update(ctx, task)
}
