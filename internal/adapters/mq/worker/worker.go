// Package worker defines the contracts for asynchronous query evaluation
// and report persistence.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/internal/domain/types"
	"github.com/ecliptiq/transits/pkg/logger"
	"github.com/ecliptiq/transits/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Query abstracts what workers read off the queue.
type Query = model.Query

// Evaluator runs the rule engine over a query and builds its report.
type Evaluator interface {
	Evaluate(ctx context.Context, q Query) (types.Report, error)
}

// Sink persists finished reports for later retrieval.
type Sink interface {
	Put(ctx context.Context, id string, report types.Report) error
}

// Queue defines how workers receive queries.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Query
}

// Worker evaluates queries and writes their reports.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker. Queries already picked up
	// are finished first.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for evaluating queries.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	sink      Sink
	name      string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, evaluator Evaluator, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		evaluator: evaluator,
		sink:      sink,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	queries := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case q, ok := <-queries:
			if !ok {
				return
			}
			if err := w.processQuery(ctx, q); err != nil {
				w.logger.Error(ctx, "error processing query", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processQuery evaluates one query and persists its report. Evaluation
// failures still produce a stored report, so the client polling the query
// ID learns the outcome instead of getting an eternal 404.
func (w *InMemoryWorker) processQuery(ctx context.Context, q Query) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	report, err := w.evaluator.Evaluate(ctx, q)
	if err != nil {
		metrics.RecordQueryFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "evaluation_error")
		w.logger.Error(ctx, "evaluation failed for query",
			logger.String("queryID", q.ID),
			logger.Error(err),
		)

		failed := types.Report{
			ID:     q.ID,
			Status: types.StatusFailed,
			Error:  err.Error(),
			Mode:   q.Mode,
		}
		if putErr := w.sink.Put(ctx, q.ID, failed); putErr != nil {
			return fmt.Errorf("storing failure report for query %s: %w", q.ID, putErr)
		}
		return fmt.Errorf("evaluating query %s: %w", q.ID, err)
	}

	report.ID = q.ID
	report.Status = types.StatusCompleted
	if err := w.sink.Put(ctx, q.ID, report); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "store_error")
		return fmt.Errorf("storing report for query %s: %w", q.ID, err)
	}

	metrics.RecordQueryProcessed()
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	evaluator Evaluator
	sink      Sink

	logger logger.Logger
}

// NewPool creates a worker pool. A non-positive count scales with the
// number of CPUs.
func NewPool(workerCount int, queue Queue, evaluator Evaluator, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     queue,
		evaluator: evaluator,
		sink:      sink,
		logger:    logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			evaluator,
			sink,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerIdleCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals every worker to stop and waits briefly for each.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
}

// Shutdown closes the queue and waits for every worker to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
