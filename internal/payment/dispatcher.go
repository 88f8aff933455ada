package payment

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/zerowaste/payment-service/internal/domain"
)

// NotificationProcessor applies one webhook. Service satisfies it.
type NotificationProcessor interface {
	ProcessNotification(ctx context.Context, n domain.WebhookNotification) error
}

// DispatcherStats are the counters exposed on the health endpoint.
type DispatcherStats struct {
	Queued    int64 `json:"queued"`
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	Pending   int   `json:"pending"`
}

// Dispatcher processes acknowledged webhooks in the background.
// Failures are logged and counted, never reported to the webhook caller.
type Dispatcher struct {
	processor NotificationProcessor
	queue     chan domain.WebhookNotification
	workers   int
	timeout   time.Duration
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	queued    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewDispatcher creates a dispatcher with a bounded queue.
func NewDispatcher(processor NotificationProcessor, workers, queueSize int, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		processor: processor,
		queue:     make(chan domain.WebhookNotification, queueSize),
		workers:   workers,
		timeout:   timeout,
		logger:    logger.With(zap.String("component", "webhook_dispatcher")),
	}
}

// Start launches the workers. They run until Stop is called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.logger.Info("starting webhook dispatcher", zap.Int("workers", d.workers))
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run(ctx)
	}
}

// Submit enqueues a notification without blocking.
// It returns false when the queue is full or the dispatcher is stopped.
func (d *Dispatcher) Submit(n domain.WebhookNotification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.dropped.Add(1)
		return false
	}

	select {
	case d.queue <- n:
		d.queued.Add(1)
		return true
	default:
		d.dropped.Add(1)
		d.logger.Warn("webhook queue full, dropping notification",
			zap.String("type", n.Type),
			zap.String("data_id", n.Data.ID))
		return false
	}
}

// Stop closes the queue and waits for queued notifications to drain.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped",
		zap.Int64("processed", d.processed.Load()),
		zap.Int64("failed", d.failed.Load()))
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() DispatcherStats {
	return DispatcherStats{
		Queued:    d.queued.Load(),
		Processed: d.processed.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
		Pending:   len(d.queue),
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	defer d.wg.Done()
	for n := range d.queue {
		d.handle(ctx, n)
	}
}

func (d *Dispatcher) handle(parent context.Context, n domain.WebhookNotification) {
	ctx := context.WithoutCancel(parent)
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.failed.Add(1)
			d.logger.Error("panic while processing webhook", zap.Any("panic", r))
		}
	}()

	if err := d.processor.ProcessNotification(ctx, n); err != nil {
		d.failed.Add(1)
		d.logger.Error("webhook processing failed",
			zap.String("data_id", n.Data.ID),
			zap.String("order_id", n.Data.OrderID),
			zap.Error(err))
		return
	}
	d.processed.Add(1)
}
