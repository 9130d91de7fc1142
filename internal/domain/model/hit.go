package model

import "math"

// Hit is one classified transit-to-natal aspect contact. Hits are immutable
// values produced once by the engine and consumed by the dominance filter,
// the ranker, and serialization; nothing mutates a Hit after creation.
type Hit struct {
	TransitBody string
	NatalPoint  string
	AspectName  string
	AspectAngle float64

	// ErrorDeg is the signed deviation from the exact aspect angle, in
	// (-180, 180]. The sign feeds the applying/separating projection; for
	// display ordering only the magnitude matters.
	ErrorDeg float64

	// Motion is only determined for orb-regime hits with known speed;
	// minute-exact hits always carry MotionUnknown.
	Motion Motion

	// OrbUsed and WithinOrb are set if and only if the hit went through
	// the orb regime.
	OrbUsed   *float64
	WithinOrb *bool

	MinuteExactRequired bool
	// MinuteExactPassed stays true for orb-regime hits. That is an output
	// compatibility artifact, not a real pass: the field is only
	// meaningful when MinuteExactRequired is set.
	MinuteExactPassed bool

	Qualifies bool
	Notes     string
}

// AbsError returns the magnitude of the aspect error.
func (h Hit) AbsError() float64 {
	return math.Abs(h.ErrorDeg)
}
