package progress

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/metrics"
)

// AsyncNotifier decouples the pipeline from slow sinks. Events are queued in
// a bounded buffer and delivered in order by a single goroutine; when the
// buffer is full the event is dropped. Notify never blocks.
type AsyncNotifier struct {
	next    domain.ProgressNotifier
	events  chan domain.ProgressEvent
	timeout time.Duration
	logger  *logrus.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsyncNotifier starts the delivery goroutine. Each delivery to next is
// bounded by timeout when it is positive.
func NewAsyncNotifier(next domain.ProgressNotifier, bufferSize int, timeout time.Duration, logger *logrus.Logger, m *metrics.Metrics) *AsyncNotifier {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	n := &AsyncNotifier{
		next:    next,
		events:  make(chan domain.ProgressEvent, bufferSize),
		timeout: timeout,
		logger:  logger,
		metrics: m,
		done:    make(chan struct{}),
	}
	go n.run()
	return n
}

// Notify enqueues the event, dropping it when the buffer is full or the
// notifier is closed.
func (n *AsyncNotifier) Notify(_ context.Context, event domain.ProgressEvent) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		n.drop(event, "closed")
		return nil
	}

	select {
	case n.events <- event:
	default:
		n.drop(event, "buffer_full")
	}
	return nil
}

func (n *AsyncNotifier) drop(event domain.ProgressEvent, reason string) {
	n.metrics.IncrementNotifierFailure("async", reason)
	n.logger.WithFields(logrus.Fields{
		"job_id":  event.JobID,
		"message": event.Message,
		"reason":  reason,
	}).Debug("Dropped progress event")
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for event := range n.events {
		n.deliver(event)
	}
}

func (n *AsyncNotifier) deliver(event domain.ProgressEvent) {
	ctx := context.Background()
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	if err := n.next.Notify(ctx, event); err != nil {
		n.metrics.IncrementNotifierFailure("async", "delivery")
		n.logger.WithError(err).WithField("job_id", event.JobID).Warn("Failed to deliver progress event")
	}
}

// Close stops accepting events and waits for queued ones to be delivered
// or for ctx to expire.
func (n *AsyncNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.events)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
