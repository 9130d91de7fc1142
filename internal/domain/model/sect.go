package model

import (
	"fmt"
	"strings"
)

// Sect is the day/night classification of a chart. It gates Mars dominance
// and flips the Part of Fortune formula.
type Sect string

// Recognized sect values.
const (
	SectDiurnal   Sect = "diurnal"
	SectNocturnal Sect = "nocturnal"
)

// SectAuto is the request-level placeholder asking the service to derive
// the sect from the natal chart. It is never a valid engine sect.
const SectAuto = "auto"

// ParseSect validates a sect string (case-insensitive, trimmed). Anything
// other than "diurnal" or "nocturnal" is an error.
func ParseSect(s string) (Sect, error) {
	switch Sect(strings.ToLower(strings.TrimSpace(s))) {
	case SectDiurnal:
		return SectDiurnal, nil
	case SectNocturnal:
		return SectNocturnal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSect, s)
	}
}
