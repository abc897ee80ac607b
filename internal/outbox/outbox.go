// Package outbox persists side-effect events in the same transaction as the
// primary write and applies them asynchronously. The triggering operation
// always succeeds regardless of side-effect outcome; failures stay visible
// and retryable here instead of being silently swallowed.
package outbox

import "time"

// Topics dispatched by the worker.
const (
	// TopicOrderCreated fans out to the in-app notification and the
	// confirmation email.
	TopicOrderCreated = "order.created"
	// TopicInvoiceGenerate asks the invoice module to auto-generate an
	// invoice for a delivered order. Handlers must be idempotent.
	TopicInvoiceGenerate = "invoice.generate"
	// TopicStatusChanged records a status-change notification.
	TopicStatusChanged = "order.status_changed"
)

// Event is one pending side effect.
type Event struct {
	ID            int64
	Topic         string
	Payload       []byte
	RetryCount    int
	MaxRetries    int
	LastError     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	NextAttemptAt time.Time
}

// OrderEvent is the payload for all order-related topics.
type OrderEvent struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status,omitempty"`
}
