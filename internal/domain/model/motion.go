package model

// Motion classifies whether a transiting body is closing on an aspect or
// pulling away from it. It is a three-way value on purpose: "unknown" (no
// speed data) must never collapse into "separating".
type Motion int8

// Motion states.
const (
	MotionUnknown Motion = iota
	MotionApplying
	MotionSeparating
)

// Known reports whether the motion was determined from speed data.
func (m Motion) Known() bool {
	return m != MotionUnknown
}

// Label returns the display label used in serialized hits.
func (m Motion) Label() string {
	switch m {
	case MotionApplying:
		return "applying"
	case MotionSeparating:
		return "separating"
	default:
		return "n/a"
	}
}

// String implements fmt.Stringer.
func (m Motion) String() string {
	return m.Label()
}
