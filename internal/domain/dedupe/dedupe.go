// Package dedupe tracks already-accepted query IDs so resubmissions of the
// same query are rejected instead of evaluated twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records accepted query IDs for at-most-once admission.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was already accepted and
	// records it if not. It returns true for a duplicate, false for a
	// newly recorded id.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets an id so it may be resubmitted. It exists for the
	// admission path only: a query recorded here but then refused by the
	// queue must not poison its id.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// ringDeduper is an in-memory Deduper. With a positive capacity it keeps
// the ids in a fixed ring and overwrites the oldest entry once full; with
// capacity <= 0 it degrades to an unbounded map.
type ringDeduper struct {
	mu       sync.Mutex
	slot     map[string]int // id -> ring index, or -1 in unbounded mode
	ring     []string
	next     int
	capacity int
	size     atomic.Int64
}

// NewInMemory builds an in-memory deduper. The default capacity bounds
// memory at 50000 ids.
func NewInMemory(opts ...Option) Deduper {
	d := &ringDeduper{capacity: 50000}

	for _, opt := range opts {
		opt(d)
	}

	d.slot = make(map[string]int)
	if d.capacity > 0 {
		d.ring = make([]string, d.capacity)
	}

	return d
}

func (d *ringDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.slot[id]; exists {
		return true
	}

	if d.capacity > 0 {
		// The write position may hold the oldest live id; evict it. A
		// stale entry (unrecorded, or re-added at a newer slot) is just
		// overwritten.
		if old := d.ring[d.next]; old != "" {
			if idx, ok := d.slot[old]; ok && idx == d.next {
				delete(d.slot, old)
				d.size.Add(-1)
			}
		}
		d.ring[d.next] = id
		d.slot[id] = d.next
		d.next = (d.next + 1) % d.capacity
	} else {
		d.slot[id] = -1
	}

	d.size.Add(1)
	return false
}

func (d *ringDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, exists := d.slot[id]
	if !exists {
		return
	}
	delete(d.slot, id)
	if idx >= 0 {
		d.ring[idx] = ""
	}
	d.size.Add(-1)
}

// Size returns the number of ids currently recorded.
func (d *ringDeduper) Size() int64 {
	return d.size.Load()
}
