package rules

// Option applies a configuration option to a Table under construction.
type Option func(*Table)

// WithTransitBodies replaces the set of eligible transiting bodies.
func WithTransitBodies(bodies ...string) Option {
	return func(t *Table) {
		t.transitIncluded = toSet(bodies...)
	}
}

// WithExcludedTransits replaces the set of excluded transiting bodies.
// Exclusion always wins over inclusion.
func WithExcludedTransits(bodies ...string) Option {
	return func(t *Table) {
		t.transitExcluded = toSet(bodies...)
	}
}

// WithNatalPoints replaces the set of natal points eligible to receive.
func WithNatalPoints(points ...string) Option {
	return func(t *Table) {
		t.natalEligible = toSet(points...)
	}
}

// WithAspects replaces the aspect set.
func WithAspects(aspects ...Aspect) Option {
	return func(t *Table) {
		if len(aspects) > 0 {
			t.aspects = append([]Aspect(nil), aspects...)
		}
	}
}

// WithOrbs sets the orb pair for one transiting body.
func WithOrbs(body string, applying, separating float64) Option {
	return func(t *Table) {
		if applying > 0 && separating > 0 {
			t.orbs[body] = Orbs{Applying: applying, Separating: separating}
		}
	}
}

// WithoutOrbs removes a body from the orb table, leaving it regime-less
// unless it is also minute-exact.
func WithoutOrbs(body string) Option {
	return func(t *Table) {
		delete(t.orbs, body)
	}
}

// WithApplyingOrbOverrides adjusts applying orbs from a configuration map.
// Bodies without an existing orb entry gain one mirroring the override.
func WithApplyingOrbOverrides(overrides map[string]float64) Option {
	return func(t *Table) {
		for body, orb := range overrides {
			if orb <= 0 {
				continue
			}
			o := t.orbs[body]
			o.Applying = orb
			if o.Separating <= 0 {
				o.Separating = orb
			}
			t.orbs[body] = o
		}
	}
}

// WithSeparatingOrbOverrides adjusts separating orbs from a configuration map.
func WithSeparatingOrbOverrides(overrides map[string]float64) Option {
	return func(t *Table) {
		for body, orb := range overrides {
			if orb <= 0 {
				continue
			}
			o := t.orbs[body]
			o.Separating = orb
			if o.Applying <= 0 {
				o.Applying = orb
			}
			t.orbs[body] = o
		}
	}
}

// WithMinuteExactBodies replaces the minute-exactness group.
func WithMinuteExactBodies(bodies ...string) Option {
	return func(t *Table) {
		t.minuteExact = toSet(bodies...)
	}
}

// WithMinuteTolerance sets the default minute-exactness tolerance in
// arcminutes.
func WithMinuteTolerance(arcmin float64) Option {
	return func(t *Table) {
		if arcmin > 0 {
			t.minuteTolArcmin = arcmin
		}
	}
}

// WithOuterNatalPoints replaces the set of natal points restricted to the
// outer-receiving whitelist.
func WithOuterNatalPoints(points ...string) Option {
	return func(t *Table) {
		t.outerNatal = toSet(points...)
	}
}

// WithOuterAllowedTransits replaces the whitelist of transits allowed to
// aspect outer natal points.
func WithOuterAllowedTransits(bodies ...string) Option {
	return func(t *Table) {
		t.outerAllowed = toSet(bodies...)
	}
}

// WithMarsDominance toggles the diurnal Mars dominance pass.
func WithMarsDominance(enabled bool) Option {
	return func(t *Table) {
		t.marsDominance = enabled
	}
}
