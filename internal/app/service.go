// Package service wires the transit evaluation pipeline together and
// implements the dependencies required by the HTTP API: synchronous
// evaluation, query admission, and report retrieval.
package service

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	queryqueue "github.com/ecliptiq/transits/internal/adapters/mq/queue"
	workerpool "github.com/ecliptiq/transits/internal/adapters/mq/worker"
	repository "github.com/ecliptiq/transits/internal/adapters/repository"
	"github.com/ecliptiq/transits/internal/domain/chart"
	"github.com/ecliptiq/transits/internal/domain/dedupe"
	"github.com/ecliptiq/transits/internal/domain/engine"
	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/internal/domain/rules"
	"github.com/ecliptiq/transits/internal/domain/types"
	"github.com/ecliptiq/transits/pkg/logger"
	"github.com/ecliptiq/transits/pkg/metrics"
)

// Service runs the transit evaluation pipeline. It owns the rule table,
// the report store, the query queue, the dedupe cache, and the worker
// pool, and it is itself the evaluator the workers call back into.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   queryqueue.Queue
	table   *rules.Table
	pool    *workerpool.Pool

	workerCount   int
	queueSize     int
	dedupeSize    int
	shardCount    int
	storeCapacity int

	minuteTol      float64
	marsDominance  bool
	defaultSect    string
	applyingOrbs   map[string]float64
	separatingOrbs map[string]float64

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the in-memory query queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the query ID deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of shards in the report store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithStoreCapacity bounds the total number of retained reports.
func WithStoreCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.storeCapacity = capacity
		}
	}
}

// WithMinuteTolerance sets the default minute-exactness tolerance in
// arcminutes. Individual queries may still override it.
func WithMinuteTolerance(arcmin float64) Option {
	return func(s *Service) {
		if arcmin > 0 {
			s.minuteTol = arcmin
		}
	}
}

// WithMarsDominance toggles the diurnal Mars dominance pass.
func WithMarsDominance(enabled bool) Option {
	return func(s *Service) {
		s.marsDominance = enabled
	}
}

// WithDefaultSect sets the sect used when a query does not name one:
// "auto", "diurnal", or "nocturnal".
func WithDefaultSect(sect string) Option {
	return func(s *Service) {
		if sect != "" {
			s.defaultSect = sect
		}
	}
}

// WithApplyingOrbs overrides per-body applying orbs, keyed by canonical
// body name.
func WithApplyingOrbs(orbs map[string]float64) Option {
	return func(s *Service) {
		s.applyingOrbs = orbs
	}
}

// WithSeparatingOrbs overrides per-body separating orbs, keyed by
// canonical body name.
func WithSeparatingOrbs(orbs map[string]float64) Option {
	return func(s *Service) {
		s.separatingOrbs = orbs
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 4,
		queueSize:     100_000,
		dedupeSize:    500_000,
		shardCount:    16,
		storeCapacity: 100_000,
		minuteTol:     1.59,
		marsDominance: true,
		defaultSect:   model.SectAuto,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the rule table and pipeline components and launches the
// worker pool. Calling Start on a started service is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.table = rules.New(
		rules.WithMinuteTolerance(s.minuteTol),
		rules.WithApplyingOrbOverrides(s.applyingOrbs),
		rules.WithSeparatingOrbOverrides(s.separatingOrbs),
		rules.WithMarsDominance(s.marsDominance),
	)

	s.store = repository.NewShardStore(
		repository.WithShardCount(s.shardCount),
		repository.WithCapacity(s.storeCapacity),
	)
	s.deduper = dedupe.NewInMemory(
		dedupe.WithCapacity(s.dedupeSize),
	)
	s.queue = queryqueue.NewInMemoryQueue(
		queryqueue.WithCapacity(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "transit service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("shards", s.shardCount),
		logger.String("defaultSect", s.defaultSect),
	)

	return nil
}

// Stop gracefully shuts down the pipeline: the queue closes, admitted
// queries drain, and the workers exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping transit service...")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}

	s.started = false
	s.logger.Info(ctx, "transit service stopped")
}

// Evaluate runs one query through the rule engine and builds its report.
// It resolves the effective sect, canonicalizes both position sets,
// completes the natal chart with derived points, and dispatches on mode.
func (s *Service) Evaluate(ctx context.Context, q model.Query) (types.Report, error) {
	start := time.Now()

	mode, err := model.ParseMode(string(q.Mode))
	if err != nil {
		return types.Report{}, err
	}

	transits := chart.NormalizeSet(q.Transits)
	natal := chart.NormalizeSet(q.Natal)

	raw := q.Sect
	if strings.TrimSpace(raw) == "" {
		raw = s.defaultSect
	}
	sect, err := chart.ResolveSect(raw, natal)
	if err != nil {
		return types.Report{}, err
	}

	natal, err = chart.EnrichNatal(natal, sect, q.IncludePoF)
	if err != nil {
		return types.Report{}, err
	}

	eng, err := engine.New(string(sect),
		engine.WithTable(s.table),
		engine.WithMinuteTolerance(q.MinuteTolArcmin),
	)
	if err != nil {
		return types.Report{}, err
	}

	report := types.Report{
		Mode: mode,
		Rules: types.RulesView{
			Sect:            string(sect),
			MinuteTolArcmin: eng.MinuteTolArcmin(),
		},
		Transits: types.PositionViews(transits),
	}

	switch mode {
	case model.ModeAll:
		hits := eng.RunAll(transits, natal)
		report.Hits = types.HitViews(hits)
		metrics.RecordHitsPerQuery(len(hits))

	case model.ModeBoth:
		all := eng.RunAll(transits, natal)
		qualifying := eng.RunQualifying(transits, natal)
		report.AllHits = types.HitViews(all)
		report.QualifyingHits = types.HitViews(qualifying)
		metrics.RecordHitsPerQuery(len(all))
		if len(all) > 0 {
			metrics.RecordQualifyingRatio(float64(len(qualifying)) / float64(len(all)))
		}

	default:
		hits := eng.RunQualifying(transits, natal)
		report.Hits = types.HitViews(hits)
		metrics.RecordHitsPerQuery(len(hits))
	}

	metrics.RecordEvaluationLatency(float64(time.Since(start).Microseconds()) / 1000.0)

	return report, nil
}

// SeenAndRecord atomically checks whether a query ID was already accepted
// and records it if not. True means duplicate.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordQueryDuplicate()
	}
	return seen
}

// Unrecord forgets a query ID so it may be resubmitted. The admission
// path calls it when the queue refuses a query already recorded.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a query for asynchronous evaluation. It returns false
// when the queue is full or closed; the caller owns the retry.
func (s *Service) Enqueue(ctx context.Context, q model.Query) bool {
	ok := s.queue.Enqueue(ctx, q)
	if !ok {
		s.logger.Warn(ctx, "queue refused query",
			logger.String("queryID", q.ID),
		)
	}
	return ok
}

// Report returns the stored report for a query ID. Unknown or evicted
// IDs surface repository.ErrNotFound.
func (s *Service) Report(ctx context.Context, id string) (types.Report, error) {
	return s.store.Get(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		ctx := context.Background()
		queueLen := s.queue.Len(ctx)
		storedReports := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["storedReports"] = storedReports
		stats["dedupedIDs"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredReports(storedReports)
	}

	return stats
}

// PublishMetrics pushes the store's gauge metrics. The metrics updater
// loop calls it periodically.
func (s *Service) PublishMetrics() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return
	}
	if publisher, ok := s.store.(interface{ PublishMetrics() }); ok {
		publisher.PublishMetrics()
	}
}

// Size returns the number of query IDs currently remembered by the
// deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
