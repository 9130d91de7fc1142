// Package queue defines the contract for admitting and consuming transit
// queries awaiting evaluation.
//
// The in-memory implementation is a bounded channel: admission never
// blocks, so the HTTP layer can translate a full queue straight into
// backpressure.
package queue

import (
	"context"
	"sync"

	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/pkg/metrics"
)

// defaultCapacity bounds the queue when no option overrides it.
const defaultCapacity = 100000

// Query is the payload type flowing through the queue.
type Query = model.Query

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue admits a query. It returns false when the queue is full or
	// closed; the query was not admitted and the caller owns the retry.
	Enqueue(ctx context.Context, q Query) bool

	// Dequeue returns a channel delivering queries as they become
	// available. The channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan Query

	// Len returns the current number of waiting queries.
	Len(ctx context.Context) int

	// Close shuts the queue down. Queries already admitted still drain.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	queries  chan Query
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}

	for _, opt := range opts {
		opt(q)
	}

	q.queries = make(chan Query, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue admits a query without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, item Query) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.queries <- item:
		metrics.RecordQueueEnqueue()
		q.publishSize()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel delivering queries until the queue closes or
// the context is cancelled.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Query {
	out := make(chan Query)
	go func() {
		defer close(out)
		for item := range q.queries {
			select {
			case out <- item:
				metrics.RecordQueueDequeue()
				q.publishSize()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of waiting queries.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.queries)
	q.publishSize()
	return size
}

// Close shuts down the queue. It is idempotent.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	close(q.queries)
	q.closed = true

	return nil
}

// IsClosed reports whether the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) publishSize() {
	size := len(q.queries)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
