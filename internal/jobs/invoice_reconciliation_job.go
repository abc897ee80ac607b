package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"doorstep-clean/internal/models"
	"doorstep-clean/internal/outbox"
)

const reconcileBatchSize = 50

// DeliveredOrderSource is the slice of the order repository the
// reconciliation job reads from.
type DeliveredOrderSource interface {
	ListDeliveredWithoutInvoice(ctx context.Context, limit int) ([]*models.Order, error)
}

// EventQueue is the slice of the outbox the job writes to.
type EventQueue interface {
	Enqueue(ctx context.Context, q outbox.Querier, topic string, payload any) error
	HasPending(ctx context.Context, topic, orderID string) (bool, error)
}

// InvoiceReconciliationJob sweeps for delivered orders with no invoice and
// re-enqueues their generation events. Covers events lost to exhausted
// retries; normally the sweep finds nothing.
type InvoiceReconciliationJob struct {
	orders DeliveredOrderSource
	events EventQueue
	cron   *cron.Cron
	logger *slog.Logger
}

// NewInvoiceReconciliationJob creates the hourly reconciliation sweep.
func NewInvoiceReconciliationJob(orders DeliveredOrderSource, events EventQueue, logger *slog.Logger) *InvoiceReconciliationJob {
	return &InvoiceReconciliationJob{
		orders: orders,
		events: events,
		cron:   cron.New(),
		logger: logger.With("component", "invoice_reconciliation_job"),
	}
}

// Run performs one sweep. Exported so tests and the startup hook can invoke
// it outside the schedule.
func (j *InvoiceReconciliationJob) Run(ctx context.Context) error {
	orders, err := j.orders.ListDeliveredWithoutInvoice(ctx, reconcileBatchSize)
	if err != nil {
		return err
	}

	for _, order := range orders {
		// An event already waiting in the queue will cover this order.
		pending, err := j.events.HasPending(ctx, outbox.TopicInvoiceGenerate, order.ID)
		if err != nil {
			return err
		}
		if pending {
			continue
		}

		payload := outbox.OrderEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			Status:      order.Status,
		}
		if err := j.events.Enqueue(ctx, nil, outbox.TopicInvoiceGenerate, payload); err != nil {
			return err
		}
		j.logger.WarnContext(ctx, "re-enqueued lost invoice generation",
			"orderId", order.ID, "orderNumber", order.OrderNumber)
	}
	return nil
}

// Start schedules the hourly sweep.
func (j *InvoiceReconciliationJob) Start() error {
	_, err := j.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := j.Run(ctx); err != nil {
			j.logger.ErrorContext(ctx, "invoice reconciliation sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("invoice reconciliation job started (hourly)")
	return nil
}

// Stop stops the scheduled sweep.
func (j *InvoiceReconciliationJob) Stop() {
	j.cron.Stop()
	j.logger.Info("invoice reconciliation job stopped")
}
