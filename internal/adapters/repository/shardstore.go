package repository

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/ecliptiq/transits/internal/domain/types"
	"github.com/ecliptiq/transits/pkg/metrics"
)

// Sharded, in-memory Store implementation.
//
// Reports are spread across shards by an FNV-1a hash of the query ID, so
// concurrent readers and writers rarely contend on the same lock. Each
// shard keeps insertion order and evicts its oldest report once the
// per-shard capacity is reached. The total bound is therefore approximate:
// capacity is divided evenly across shards.

const (
	defaultShardCount = 16
	defaultCapacity   = 100000
)

// ShardStore is the in-memory sharded report store.
type ShardStore struct {
	shards   []*shard
	shardCap int
}

type shard struct {
	mu      sync.RWMutex
	reports map[string]types.Report
	order   []string // insertion order for FIFO eviction
}

// NewShardStore builds a sharded store with the default shard count and
// capacity, then applies options.
func NewShardStore(opts ...Option) *ShardStore {
	s := &ShardStore{shardCap: -1}

	cfg := storeConfig{shardCount: defaultShardCount, capacity: defaultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.shardCount < 1 {
		cfg.shardCount = 1
	}

	s.shards = make([]*shard, cfg.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{reports: make(map[string]types.Report)}
	}
	if cfg.capacity > 0 {
		s.shardCap = (cfg.capacity + cfg.shardCount - 1) / cfg.shardCount
	}

	metrics.UpdateStoreShardCount(cfg.shardCount)

	return s
}

// Put saves a report, evicting the shard's oldest entry if it is full.
func (s *ShardStore) Put(_ context.Context, id string, report types.Report) error {
	start := time.Now()
	sh := s.shardFor(id)

	sh.mu.Lock()
	if _, exists := sh.reports[id]; exists {
		sh.reports[id] = report
		sh.mu.Unlock()
		metrics.RecordStorePutLatency(float64(time.Since(start).Microseconds()) / 1000.0)
		return nil
	}

	evicted := false
	if s.shardCap > 0 && len(sh.order) >= s.shardCap {
		oldest := sh.order[0]
		sh.order = sh.order[1:]
		delete(sh.reports, oldest)
		evicted = true
	}
	sh.reports[id] = report
	sh.order = append(sh.order, id)
	sh.mu.Unlock()

	if evicted {
		metrics.RecordStoreEviction()
	}
	metrics.RecordStorePutLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	return nil
}

// Get returns the report for a query ID, or ErrNotFound.
func (s *ShardStore) Get(_ context.Context, id string) (types.Report, error) {
	start := time.Now()
	sh := s.shardFor(id)

	sh.mu.RLock()
	report, ok := sh.reports[id]
	sh.mu.RUnlock()

	metrics.RecordStoreGetLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	if !ok {
		return types.Report{}, ErrNotFound
	}
	return report, nil
}

// Count returns the number of retained reports across all shards.
func (s *ShardStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.reports)
		sh.mu.RUnlock()
	}
	return total
}

// PublishMetrics pushes per-shard gauges. Callers run it on a ticker; it is
// not part of the hot path.
func (s *ShardStore) PublishMetrics() {
	total := 0
	for i, sh := range s.shards {
		sh.mu.RLock()
		n := len(sh.reports)
		sh.mu.RUnlock()
		total += n
		metrics.UpdateStoreRecordsByShard(strconv.Itoa(i), n)
	}
	metrics.UpdateStoreRecordsTotal(total)
	metrics.UpdateStoredReports(total)
}

func (s *ShardStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[int(h.Sum32())%len(s.shards)]
}
