package job

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/labelpress/labelpress/internal/domain"
)

// Common errors returned by the Queue.
var (
	ErrQueueClosed = errors.New("job queue is closed")
	ErrQueueFull   = errors.New("job queue is full")
)

// queueItem carries everything a worker needs to process one job. Each item
// is delivered to exactly one worker.
type queueItem struct {
	jobID      uuid.UUID
	request    domain.PrintRequest
	outputName string
}

// Queue is a bounded FIFO submission queue. Enqueue never blocks: when the
// buffer is full it returns ErrQueueFull instead of applying backpressure.
type Queue struct {
	mu     sync.Mutex
	items  chan queueItem
	closed bool
	logger *slog.Logger
}

// NewQueue creates a queue with the given buffer capacity.
func NewQueue(size int, logger *slog.Logger) *Queue {
	return &Queue{
		items:  make(chan queueItem, size),
		logger: logger,
	}
}

// Enqueue appends an item for processing. Returns ErrQueueClosed after Close,
// or ErrQueueFull when the buffer is at capacity.
func (q *Queue) Enqueue(item queueItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- item:
		q.logger.Debug("job enqueued",
			slog.String("job_id", item.jobID.String()),
			slog.Int("queue_len", len(q.items)),
			slog.Int("queue_cap", cap(q.items)))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.items))
	}
}

// Close closes the queue, preventing further submission. Idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.items)
		q.logger.Info("job queue closed")
	}
}

// Chan returns the read side of the queue for workers.
func (q *Queue) Chan() <-chan queueItem {
	return q.items
}

// Len returns the number of queued items not yet picked up.
func (q *Queue) Len() int {
	return len(q.items)
}
