package outbox

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Handler applies one event. Handlers must be idempotent: the same event may
// be attempted more than once.
type Handler func(ctx context.Context, e Event) error

// Worker polls the outbox and dispatches pending events to the handler
// registered for their topic.
type Worker struct {
	repo         RepositoryInterface
	handlers     map[string]Handler
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a worker with no handlers registered.
func NewWorker(repo RepositoryInterface, pollInterval time.Duration, batchSize int) *Worker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		pollInterval: pollInterval,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Register binds a handler to a topic. Must be called before Start.
func (w *Worker) Register(topic string, h Handler) {
	w.handlers[topic] = h
}

// Start runs the poll loop until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("outbox worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("outbox worker shutting down")
			return
		case <-w.stopCh:
			slog.Info("outbox worker stopped")
			return
		case <-ticker.C:
			w.processEvents(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) processEvents(ctx context.Context) {
	events, err := w.repo.GetPending(ctx, w.batchSize)
	if err != nil {
		slog.Error("failed to get pending outbox events", "error", err)
		return
	}
	if len(events) == 0 {
		return
	}

	for _, e := range events {
		w.Dispatch(ctx, e)
	}
}

// Dispatch applies one event and updates its outbox record. Exported so the
// reconciliation job and tests can drive a single event synchronously.
func (w *Worker) Dispatch(ctx context.Context, e Event) {
	handler, ok := w.handlers[e.Topic]
	if !ok {
		w.fail(ctx, e, "no handler registered for topic "+e.Topic)
		return
	}

	if err := handler(ctx, e); err != nil {
		w.fail(ctx, e, err.Error())
		return
	}

	if err := w.repo.Delete(ctx, e.ID); err != nil {
		slog.Error("failed to delete applied outbox event", "outbox_id", e.ID, "error", err)
	}
}

func (w *Worker) fail(ctx context.Context, e Event, reason string) {
	newRetryCount := e.RetryCount + 1
	// 60s, 120s, 240s, ...
	backoff := time.Duration(math.Pow(2, float64(newRetryCount))*30) * time.Second
	nextAttemptAt := time.Now().Add(backoff)

	slog.Warn("outbox event failed, will retry",
		"outbox_id", e.ID,
		"topic", e.Topic,
		"retry_count", newRetryCount,
		"next_attempt", nextAttemptAt,
		"error", reason,
	)

	if err := w.repo.UpdateRetry(ctx, e.ID, newRetryCount, reason, nextAttemptAt); err != nil {
		slog.Error("failed to update outbox retry state", "outbox_id", e.ID, "error", err)
	}
}
