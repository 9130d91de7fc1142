// Package chart derives the chart-level facts the transit engine does not
// compute itself: sect resolution, the Part of Fortune, the South Node,
// the derived angles, and the canonicalization of ephemeris-style position
// keys into rule-table names.
package chart

import (
	"fmt"
	"strings"

	"github.com/ecliptiq/transits/internal/domain/geometry"
	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/internal/domain/rules"
)

// keyAliases maps the lowercase ephemeris-style keys seen in chart payloads
// to the canonical rule-table names. Canonical names pass through untouched,
// so callers may mix conventions freely.
var keyAliases = map[string]string{
	"sun":             rules.Sun,
	"moon":            rules.Moon,
	"mercury":         rules.Mercury,
	"venus":           rules.Venus,
	"mars":            rules.Mars,
	"jupiter":         rules.Jupiter,
	"saturn":          rules.Saturn,
	"uranus":          rules.Uranus,
	"neptune":         rules.Neptune,
	"pluto":           rules.Pluto,
	"chiron":          rules.Chiron,
	"north_node":      rules.NorthNode,
	"north_node_mean": rules.NorthNode,
	"south_node":      rules.SouthNode,
	"south_node_mean": rules.SouthNode,
	"asc":             rules.Ascendant,
	"ascendant":       rules.Ascendant,
	"mc":              rules.Midheaven,
	"midheaven":       rules.Midheaven,
	"part_of_fortune": rules.PartOfFortune,
}

var canonicalNames = func() map[string]struct{} {
	s := make(map[string]struct{})
	for _, n := range []string{
		rules.Sun, rules.Moon, rules.Mercury, rules.Venus, rules.Mars,
		rules.Jupiter, rules.Saturn, rules.Uranus, rules.Neptune,
		rules.Pluto, rules.Chiron, rules.NorthNode, rules.SouthNode,
		rules.Ascendant, rules.Midheaven, rules.PartOfFortune,
	} {
		s[n] = struct{}{}
	}
	return s
}()

// CanonicalName resolves a position-set key to its canonical rule-table
// name. The second result reports whether the key was recognized.
func CanonicalName(key string) (string, bool) {
	key = strings.TrimSpace(key)
	if _, ok := canonicalNames[key]; ok {
		return key, true
	}
	name, ok := keyAliases[strings.ToLower(key)]
	return name, ok
}

// NormalizeSet rewrites a position set onto canonical names. Unrecognized
// keys are carried through unchanged; the engine skips them silently, which
// keeps callers free to include extra points. When an alias and its
// canonical form both appear, the canonical entry wins.
func NormalizeSet(in model.PositionSet) model.PositionSet {
	out := make(model.PositionSet, len(in))
	for key, pos := range in {
		name, ok := CanonicalName(key)
		if !ok {
			out[key] = pos
			continue
		}
		if _, exists := out[name]; exists && name != strings.TrimSpace(key) {
			continue
		}
		out[name] = pos
	}
	return out
}

// PartOfFortune computes the Part of Fortune longitude for the given sect.
// Diurnal charts use Asc + (Moon - Sun); nocturnal charts reverse the
// luminaries.
func PartOfFortune(ascLon, sunLon, moonLon float64, sect model.Sect) float64 {
	asc := geometry.Normalize(ascLon)
	sun := geometry.Normalize(sunLon)
	moon := geometry.Normalize(moonLon)
	if sect == model.SectDiurnal {
		return geometry.Normalize(asc + moon - sun)
	}
	return geometry.Normalize(asc + sun - moon)
}

// Angles holds the four chart angles. Descendant and Imum Coeli are always
// derived as the opposite points of the Ascendant and Midheaven.
type Angles struct {
	Ascendant  float64
	Midheaven  float64
	Descendant float64
	ImumCoeli  float64
}

// DeriveAngles completes the angle set from the two measured angles.
func DeriveAngles(ascLon, mcLon float64) Angles {
	asc := geometry.Normalize(ascLon)
	mc := geometry.Normalize(mcLon)
	return Angles{
		Ascendant:  asc,
		Midheaven:  mc,
		Descendant: geometry.Normalize(asc + 180.0),
		ImumCoeli:  geometry.Normalize(mc + 180.0),
	}
}

// SectFromSunHouse derives the chart's sect from the natal Sun's whole-sign
// house: houses 1 through 6 put the Sun below the horizon (nocturnal),
// houses 7 through 12 above it (diurnal).
func SectFromSunHouse(ascLon, sunLon float64) model.Sect {
	if geometry.WholeSignHouse(ascLon, sunLon) <= 6 {
		return model.SectNocturnal
	}
	return model.SectDiurnal
}

// ResolveSect turns a request's sect field into a concrete sect. Empty and
// "auto" both derive the sect from the natal chart, which requires the
// Ascendant and Sun; an explicit value is parsed strictly.
func ResolveSect(raw string, natal model.PositionSet) (model.Sect, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed != "" && trimmed != model.SectAuto {
		return model.ParseSect(raw)
	}

	asc, ok := natal[rules.Ascendant]
	if !ok {
		return "", fmt.Errorf("resolve sect: %s: %w", rules.Ascendant, ErrMissingPoint)
	}
	sun, ok := natal[rules.Sun]
	if !ok {
		return "", fmt.Errorf("resolve sect: %s: %w", rules.Sun, ErrMissingPoint)
	}
	return SectFromSunHouse(asc.Longitude, sun.Longitude), nil
}

// EnrichNatal returns a copy of the natal set completed with the derived
// points: the South Node opposite a present North Node, and, when
// requested, the Part of Fortune. Points already present are never
// overwritten. Computing the Part of Fortune requires the Ascendant, Sun,
// and Moon; their absence is an error rather than a silent omission.
func EnrichNatal(natal model.PositionSet, sect model.Sect, includePoF bool) (model.PositionSet, error) {
	out := make(model.PositionSet, len(natal)+2)
	for name, pos := range natal {
		out[name] = pos
	}

	if nn, ok := out[rules.NorthNode]; ok {
		if _, have := out[rules.SouthNode]; !have {
			out[rules.SouthNode] = model.Position{
				Longitude: geometry.Normalize(nn.Longitude + 180.0),
				Speed:     nn.Speed,
			}
		}
	}

	if !includePoF {
		return out, nil
	}
	if _, have := out[rules.PartOfFortune]; have {
		return out, nil
	}

	asc, ok := out[rules.Ascendant]
	if !ok {
		return nil, fmt.Errorf("part of fortune: %s: %w", rules.Ascendant, ErrMissingPoint)
	}
	sun, ok := out[rules.Sun]
	if !ok {
		return nil, fmt.Errorf("part of fortune: %s: %w", rules.Sun, ErrMissingPoint)
	}
	moon, ok := out[rules.Moon]
	if !ok {
		return nil, fmt.Errorf("part of fortune: %s: %w", rules.Moon, ErrMissingPoint)
	}

	out[rules.PartOfFortune] = model.Fixed(PartOfFortune(asc.Longitude, sun.Longitude, moon.Longitude, sect))
	return out, nil
}
