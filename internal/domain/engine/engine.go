// Package engine implements the daily transit rule engine: it classifies
// transit-to-natal angular contacts against the rule table, applies the
// diurnal Mars dominance pass, and ranks the surviving hits.
//
// The engine is pure and synchronous: no shared mutable state, no I/O.
// Instances are cheap; one per query is the expected usage, and any number
// of instances may share one rules.Table by reference.
package engine

import (
	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/internal/domain/rules"
)

// Engine evaluates transit queries under a fixed sect and tolerance.
type Engine struct {
	table     *rules.Table
	sect      model.Sect
	minuteTol float64
}

// Option applies a configuration option to an Engine under construction.
type Option func(*Engine)

// WithTable injects a rule table. Defaults to the reference rule set.
func WithTable(t *rules.Table) Option {
	return func(e *Engine) {
		if t != nil {
			e.table = t
		}
	}
}

// WithMinuteTolerance overrides the minute-exactness tolerance, in
// arcminutes. Non-positive values are ignored in favor of the table's
// default.
func WithMinuteTolerance(arcmin float64) Option {
	return func(e *Engine) {
		if arcmin > 0 {
			e.minuteTol = arcmin
		}
	}
}

// New validates the sect and builds an engine. The sect must parse as
// diurnal or nocturnal; anything else fails before any work begins.
func New(sect string, opts ...Option) (*Engine, error) {
	parsed, err := model.ParseSect(sect)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		table: rules.New(),
		sect:  parsed,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.minuteTol <= 0 {
		e.minuteTol = e.table.MinuteTolArcmin()
	}

	return e, nil
}

// Sect returns the engine's sect.
func (e *Engine) Sect() model.Sect {
	return e.sect
}

// MinuteTolArcmin returns the effective minute-exactness tolerance.
func (e *Engine) MinuteTolArcmin() float64 {
	return e.minuteTol
}

// RunQualifying returns the qualifying hits: classified, filtered to
// qualifying only, passed through Mars dominance, and ranked.
func (e *Engine) RunQualifying(transits, natal model.PositionSet) []model.Hit {
	hits := e.findAspects(transits, natal, true)
	hits = e.applyMarsDominance(hits)
	return e.rankHits(hits)
}

// RunAll returns every computed hit regardless of qualification, ranked.
// Mars dominance is deliberately skipped: the "all" view reflects geometry
// only, unmodified by interpretation rules.
func (e *Engine) RunAll(transits, natal model.PositionSet) []model.Hit {
	hits := e.findAspects(transits, natal, false)
	return e.rankHits(hits)
}
