package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates the scheduled jobs in the application. One place to
// start and stop every background schedule.
type JobManager struct {
	invoiceReconciliation *InvoiceReconciliationJob
}

// NewJobManager wires up all scheduled jobs.
func NewJobManager(orders DeliveredOrderSource, events EventQueue, logger *slog.Logger) *JobManager {
	return &JobManager{
		invoiceReconciliation: NewInvoiceReconciliationJob(orders, events, logger),
	}
}

// StartAll starts every scheduled job.
func (jm *JobManager) StartAll() error {
	if err := jm.invoiceReconciliation.Start(); err != nil {
		return fmt.Errorf("failed to start invoice reconciliation job: %w", err)
	}
	return nil
}

// StopAll stops every scheduled job gracefully.
func (jm *JobManager) StopAll() {
	jm.invoiceReconciliation.Stop()
}
