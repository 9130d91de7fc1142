package model

import "strings"

// Mode selects which hit sets an evaluation returns.
type Mode string

// Evaluation modes. Qualifying applies the dominance filter; All reflects
// geometry only and skips it by design; Both returns the two lists side by
// side.
const (
	ModeQualifying Mode = "qualifying"
	ModeAll        Mode = "all"
	ModeBoth       Mode = "both"
)

// ParseMode validates a mode string. Empty defaults to qualifying.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeQualifying:
		return ModeQualifying, nil
	case ModeAll:
		return ModeAll, nil
	case ModeBoth:
		return ModeBoth, nil
	default:
		return "", ErrInvalidMode
	}
}

// Query is one transit evaluation request as it flows through the service:
// submitted over HTTP, carried on the queue, and evaluated by a worker.
type Query struct {
	ID string

	// Sect is the raw requested sect: "diurnal", "nocturnal", or "auto"
	// (resolve from the natal chart). Validation happens at evaluation.
	Sect string

	// MinuteTolArcmin overrides the engine's minute-exactness tolerance
	// when positive; zero means "use the configured default".
	MinuteTolArcmin float64

	Mode       Mode
	IncludePoF bool

	Transits PositionSet
	Natal    PositionSet
}
