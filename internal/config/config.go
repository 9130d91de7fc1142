// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() building a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory query queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the query ID deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the report store.
	ShardCount int `koanf:"shard_count"`

	// StoreCapacity bounds the total number of retained reports.
	StoreCapacity int `koanf:"store_capacity"`

	// MinuteTolArcmin is the minute-exactness tolerance in arcminutes.
	MinuteTolArcmin float64 `koanf:"minute_tol_arcmin"`

	// MarsDominance toggles the diurnal Mars dominance pass.
	MarsDominance bool `koanf:"mars_dominance"`

	// DefaultSect is used when a query does not name one: "auto",
	// "diurnal", or "nocturnal".
	DefaultSect string `koanf:"default_sect"`

	// ApplyingOrbs and SeparatingOrbs override per-body orbs, keyed by
	// canonical body name. Bodies absent here keep the built-in values.
	ApplyingOrbs   map[string]float64 `koanf:"applying_orbs"`
	SeparatingOrbs map[string]float64 `koanf:"separating_orbs"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		QueueSize:       100_000,
		WorkerCount:     runtime.NumCPU() * 4,
		DedupeSize:      500_000,
		ShardCount:      16,
		StoreCapacity:   100_000,
		MinuteTolArcmin: 1.59,
		MarsDominance:   true,
		DefaultSect:     "auto",
	}
}
