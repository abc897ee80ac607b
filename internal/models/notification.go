package models

import "time"

// Notification types.
const (
	NotifyNewOrder     = "new_order"
	NotifyStatusChange = "status_change"
)

// Notification is a lightweight in-app event record shown on the admin
// dashboard. Purely informational: creation is best-effort and there is no
// delivery guarantee beyond the outbox retry.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	OrderID   *string   `json:"orderId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
