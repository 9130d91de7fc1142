// Package repository defines the query report store interface and its
// in-memory implementation.
package repository

import (
	"context"

	"github.com/ecliptiq/transits/internal/domain/types"
)

// Store provides read/write access to evaluated query reports.
type Store interface {
	// Put saves the report for a query ID, replacing any previous one.
	Put(ctx context.Context, id string, report types.Report) error

	// Get returns the report for a query ID.
	// Returns ErrNotFound if the query is unknown or already evicted.
	Get(ctx context.Context, id string) (types.Report, error)

	// Count returns the number of reports currently retained.
	Count(ctx context.Context) int
}
