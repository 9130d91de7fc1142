// Package rules holds the static transit rule table: which bodies may
// transit, which natal points may receive, the aspect set, per-body orbs,
// and the minute-exactness group. A Table is built once, never mutated,
// and shared by reference between engine instances.
package rules

import "sort"

// Canonical body and point names. Position-set keys must match these.
const (
	Sun           = "Sun"
	Moon          = "Moon"
	Mercury       = "Mercury"
	Venus         = "Venus"
	Mars          = "Mars"
	Jupiter       = "Jupiter"
	Saturn        = "Saturn"
	Uranus        = "Uranus"
	Neptune       = "Neptune"
	Pluto         = "Pluto"
	Chiron        = "Chiron"
	NorthNode     = "North Node"
	SouthNode     = "South Node"
	Ascendant     = "Ascendant"
	Midheaven     = "Midheaven"
	PartOfFortune = "Part of Fortune"
)

// Aspect angle constants, in degrees.
const (
	AngleConjunction = 0.0
	AngleSextile     = 60.0
	AngleSquare      = 90.0
	AngleTrine       = 120.0
	AngleQuincunx    = 150.0
	AngleOpposition  = 180.0
)

// DefaultMinuteTolArcmin is the default minute-exactness tolerance.
const DefaultMinuteTolArcmin = 1.59

// Orbs is a pair of maximum deviations for the orb regime. Applying orbs
// are conventionally wider: a closing aspect is weighted more heavily than
// an opening one.
type Orbs struct {
	Applying   float64
	Separating float64
}

// Tighter returns the smaller of the two orbs, the conservative choice
// when the direction of motion is unknown.
func (o Orbs) Tighter() float64 {
	if o.Separating < o.Applying {
		return o.Separating
	}
	return o.Applying
}

// Aspect pairs an aspect name with its exact angle.
type Aspect struct {
	Name  string
	Angle float64
}

// Table is the immutable rule configuration consulted by the engine.
type Table struct {
	transitIncluded map[string]struct{}
	transitExcluded map[string]struct{}
	natalEligible   map[string]struct{}
	aspects         []Aspect
	orbs            map[string]Orbs
	minuteExact     map[string]struct{}
	minuteTolArcmin float64
	outerNatal      map[string]struct{}
	outerAllowed    map[string]struct{}
	marsDominance   bool
}

// New builds a Table from the default rule set, then applies options.
func New(opts ...Option) *Table {
	t := &Table{
		transitIncluded: toSet(
			Sun, Mercury, Venus, Mars, Jupiter,
			Saturn, Uranus, Neptune, Pluto,
			Chiron, NorthNode,
		),
		transitExcluded: toSet(Moon, SouthNode),
		natalEligible: toSet(
			Sun, Moon, Mercury, Venus, Mars, Jupiter,
			Saturn, Uranus, Neptune, Pluto,
			Chiron, NorthNode,
			Ascendant, Midheaven, PartOfFortune,
		),
		aspects: []Aspect{
			{Name: "conjunction", Angle: AngleConjunction},
			{Name: "sextile", Angle: AngleSextile},
			{Name: "square", Angle: AngleSquare},
			{Name: "trine", Angle: AngleTrine},
			{Name: "quincunx", Angle: AngleQuincunx},
			{Name: "opposition", Angle: AngleOpposition},
		},
		orbs: map[string]Orbs{
			Sun:     {Applying: 2.0, Separating: 1.0},
			Venus:   {Applying: 2.0, Separating: 1.0},
			Mars:    {Applying: 2.0, Separating: 1.0},
			Jupiter: {Applying: 2.0, Separating: 1.0},
			Mercury: {Applying: 2.5, Separating: 1.0},
		},
		minuteExact:     toSet(Saturn, Uranus, Neptune, Pluto, Chiron, NorthNode),
		minuteTolArcmin: DefaultMinuteTolArcmin,
		outerNatal:      toSet(Saturn, Uranus, Neptune, Pluto),
		outerAllowed:    toSet(Sun, Mercury, Venus, Mars, Jupiter),
		marsDominance:   true,
	}

	for _, opt := range opts {
		opt(t)
	}

	sort.Slice(t.aspects, func(i, j int) bool { return t.aspects[i].Angle < t.aspects[j].Angle })

	return t
}

// EligibleTransit reports whether a body may act as the transiting role.
// Exclusion wins: a body in both sets is ineligible.
func (t *Table) EligibleTransit(body string) bool {
	if _, excluded := t.transitExcluded[body]; excluded {
		return false
	}
	_, included := t.transitIncluded[body]
	return included
}

// EligibleNatal reports whether a point may receive aspects.
func (t *Table) EligibleNatal(point string) bool {
	_, ok := t.natalEligible[point]
	return ok
}

// OuterReceivingAllowed reports whether a transiting body may aspect a
// natal point. Outer natal points only receive from the whitelisted
// transits; everything else receives from any eligible body.
func (t *Table) OuterReceivingAllowed(transitBody, natalPoint string) bool {
	if _, outer := t.outerNatal[natalPoint]; !outer {
		return true
	}
	_, allowed := t.outerAllowed[transitBody]
	return allowed
}

// MinuteExactRequired reports whether a transiting body is gated by the
// minute-exactness regime instead of orbs.
func (t *Table) MinuteExactRequired(body string) bool {
	_, ok := t.minuteExact[body]
	return ok
}

// OrbsFor returns the applying/separating orb pair for a body. Bodies
// absent from the orb table get no orb regime; without a minute-exact
// flag either, they produce no hits at all.
func (t *Table) OrbsFor(body string) (Orbs, bool) {
	o, ok := t.orbs[body]
	return o, ok
}

// Aspects returns the aspect set ordered by angle. The returned slice is
// shared; callers must not modify it.
func (t *Table) Aspects() []Aspect {
	return t.aspects
}

// MinuteTolArcmin returns the table's default minute-exactness tolerance.
func (t *Table) MinuteTolArcmin() float64 {
	return t.minuteTolArcmin
}

// MarsDominanceDiurnalOnly reports whether the Mars dominance pass is
// enabled for diurnal charts.
func (t *Table) MarsDominanceDiurnalOnly() bool {
	return t.marsDominance
}

func toSet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}
