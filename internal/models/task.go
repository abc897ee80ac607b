package models

import "time"

// Rider task types.
const (
	TaskPickup   = "pickup"
	TaskDelivery = "delivery"
)

// Rider task statuses.
const (
	TaskAssigned   = "assigned"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
)

// RiderTask is one unit of pickup or delivery work assigned to a rider for a
// specific order. Once CompletedAt is set it is never changed.
type RiderTask struct {
	ID          string     `json:"id"`
	RiderID     string     `json:"riderId"`
	OrderID     string     `json:"orderId"`
	OrderNumber string     `json:"orderNumber"`
	TaskType    string     `json:"taskType"`
	Status      string     `json:"status"`
	ScheduledAt time.Time  `json:"scheduledAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ProofImage  *string    `json:"proofImage,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTaskRequest is the admin body for assigning a rider.
type CreateTaskRequest struct {
	RiderID     string    `json:"riderId" validate:"required"`
	OrderID     string    `json:"orderId" validate:"required"`
	TaskType    string    `json:"taskType" validate:"required,oneof=pickup delivery"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Notes       string    `json:"notes,omitempty"`
}

// UpdateTaskRequest is the PATCH body used by the assigned rider (or admin).
type UpdateTaskRequest struct {
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=assigned in_progress completed"`
	ProofImage *string `json:"proofImage,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}
