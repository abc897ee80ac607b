package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/policy"
)

type fakeRepo struct {
	tasks  map[string]*models.RiderTask
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: make(map[string]*models.RiderTask)}
}

func (f *fakeRepo) Create(ctx context.Context, task *models.RiderTask) (*models.RiderTask, error) {
	f.nextID++
	cp := *task
	cp.ID = fmt.Sprintf("task-%d", f.nextID)
	cp.CreatedAt = time.Now()
	f.tasks[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, taskID string) (*models.RiderTask, error) {
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (f *fakeRepo) List(ctx context.Context, filter Filter, page, limit int) ([]*models.RiderTask, int, error) {
	var out []*models.RiderTask
	for _, task := range f.tasks {
		if filter.RiderID != "" && task.RiderID != filter.RiderID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		cp := *task
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(ctx context.Context, task *models.RiderTask) (*models.RiderTask, error) {
	if _, ok := f.tasks[task.ID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *task
	f.tasks[task.ID] = &cp
	out := cp
	return &out, nil
}

type fakeOrders struct {
	orders map[string]*models.Order
}

func (f *fakeOrders) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

var (
	admin  = policy.Actor{ID: "a1", Role: models.RoleAdmin}
	riderA = policy.Actor{ID: "rider-a", Role: models.RoleRider}
	riderB = policy.Actor{ID: "rider-b", Role: models.RoleRider}
)

func newTestService(fr *fakeRepo) *Service {
	fo := &fakeOrders{orders: map[string]*models.Order{
		"order-1": {ID: "order-1", OrderNumber: "DC-001001", Status: models.StatusReady},
	}}
	svc := NewService(fr, fo)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return svc
}

func seedTask(fr *fakeRepo, riderID string) *models.RiderTask {
	task, _ := fr.Create(context.Background(), &models.RiderTask{
		RiderID:     riderID,
		OrderID:     "order-1",
		OrderNumber: "DC-001001",
		TaskType:    models.TaskDelivery,
		Status:      models.TaskAssigned,
		ScheduledAt: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	})
	return task
}

func TestCreateTaskDenormalizesOrderNumber(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)

	task, err := svc.CreateTask(context.Background(), admin, models.CreateTaskRequest{
		RiderID:     "rider-a",
		OrderID:     "order-1",
		TaskType:    models.TaskPickup,
		ScheduledAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	if task.OrderNumber != "DC-001001" {
		t.Errorf("OrderNumber = %s; want DC-001001", task.OrderNumber)
	}
	if task.Status != models.TaskAssigned {
		t.Errorf("Status = %s; want assigned", task.Status)
	}
}

func TestCreateTaskDeniedForRider(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)

	_, err := svc.CreateTask(context.Background(), riderA, models.CreateTaskRequest{
		RiderID: "rider-a", OrderID: "order-1", TaskType: models.TaskPickup,
		ScheduledAt: time.Now(),
	})
	if !errors.Is(err, models.ErrForbidden) {
		t.Errorf("err = %v; want ErrForbidden", err)
	}
	if len(fr.tasks) != 0 {
		t.Errorf("task was persisted despite denial")
	}
}

func TestListTasksScopedToRider(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	seedTask(fr, "rider-a")
	seedTask(fr, "rider-b")

	mine, _, err := svc.ListTasks(context.Background(), riderA, "", 1, 20)
	if err != nil {
		t.Fatalf("rider list error: %v", err)
	}
	if len(mine) != 1 || mine[0].RiderID != "rider-a" {
		t.Errorf("rider sees %d tasks; want only their own 1", len(mine))
	}

	all, _, err := svc.ListTasks(context.Background(), admin, "", 1, 20)
	if err != nil {
		t.Fatalf("admin list error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d tasks; want 2", len(all))
	}

	if _, _, err := svc.ListTasks(context.Background(), policy.Actor{ID: "c1", Role: models.RoleCustomer}, "", 1, 20); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("customer list err = %v; want ErrForbidden", err)
	}
}

func TestGetTaskForbiddenForOtherRider(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	task := seedTask(fr, "rider-a")

	if _, err := svc.GetTask(context.Background(), riderB, task.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("err = %v; want ErrForbidden", err)
	}
	if _, err := svc.GetTask(context.Background(), riderA, task.ID); err != nil {
		t.Errorf("assigned rider denied: %v", err)
	}
}

func TestUpdateTaskSetsCompletedAtOnce(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	task := seedTask(fr, "rider-a")

	completed := models.TaskCompleted
	proof := "https://cdn.example.com/proof/1.jpg"
	updated, err := svc.UpdateTask(context.Background(), riderA, task.ID, models.UpdateTaskRequest{
		Status:     &completed,
		ProofImage: &proof,
	})
	if err != nil {
		t.Fatalf("UpdateTask error: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("CompletedAt not set on completion")
	}
	first := *updated.CompletedAt

	// A completed task rejects further status changes and keeps its timestamp.
	inProgress := models.TaskInProgress
	if _, err := svc.UpdateTask(context.Background(), riderA, task.ID, models.UpdateTaskRequest{Status: &inProgress}); !errors.Is(err, models.ErrInvalidStatus) {
		t.Errorf("reopen err = %v; want ErrInvalidStatus", err)
	}
	stored, _ := fr.FindByID(context.Background(), task.ID)
	if stored.CompletedAt == nil || !stored.CompletedAt.Equal(first) {
		t.Errorf("CompletedAt changed after completion: %v", stored.CompletedAt)
	}
}

func TestUpdateTaskDeniedForOtherRider(t *testing.T) {
	fr := newFakeRepo()
	svc := newTestService(fr)
	task := seedTask(fr, "rider-a")

	inProgress := models.TaskInProgress
	if _, err := svc.UpdateTask(context.Background(), riderB, task.ID, models.UpdateTaskRequest{Status: &inProgress}); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("err = %v; want ErrForbidden", err)
	}
	stored, _ := fr.FindByID(context.Background(), task.ID)
	if stored.Status != models.TaskAssigned {
		t.Errorf("task mutated despite denial: %s", stored.Status)
	}
}
