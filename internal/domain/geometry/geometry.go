// Package geometry provides the ecliptic-angle arithmetic used by the
// transit engine: normalization, shortest-arc separation, aspect error,
// and minute-exactness checks.
package geometry

import "math"

// Angle constants.
const (
	fullCircle      = 360.0
	halfCircle      = 180.0
	degreesPerSign  = 30.0
	arcminPerDegree = 60.0
)

// Normalize reduces an angle in degrees to [0, 360). It is idempotent and
// handles negative inputs and values far outside one revolution.
func Normalize(x float64) float64 {
	x = math.Mod(x, fullCircle)
	if x < 0 {
		x += fullCircle
	}
	return x
}

// AngularDistance returns the shortest-arc separation between two angles,
// in [0, 180]. It is symmetric in its arguments.
func AngularDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(Normalize(a)-Normalize(b)), fullCircle)
	if d > halfCircle {
		return fullCircle - d
	}
	return d
}

// AspectError measures the deviation of the unsigned separation between a
// transiting and a natal longitude from an aspect's exact angle. The result
// is in (-180, 180]; its sign says whether the separation is wider (+) or
// narrower (-) than the aspect angle. It does NOT indicate applying or
// separating motion.
func AspectError(transitLon, natalLon, aspectAngle float64) float64 {
	return AngularDistance(transitLon, natalLon) - aspectAngle
}

// IsMinuteExact reports whether an aspect error qualifies under the
// minute-exactness regime. The boundary is inclusive: an error of exactly
// tolerance/60 degrees still passes.
func IsMinuteExact(errorDeg, toleranceArcmin float64) bool {
	return math.Abs(errorDeg) <= toleranceArcmin/arcminPerDegree
}

// SignIndex returns the zodiac sign index (0 = Aries) for a longitude.
func SignIndex(lon float64) int {
	return int(Normalize(lon) / degreesPerSign)
}

// DegreesInSign returns the longitude's offset within its sign, in [0, 30).
func DegreesInSign(lon float64) float64 {
	return math.Mod(Normalize(lon), degreesPerSign)
}

// WholeSignHouse returns the 1-based whole-sign house of a point relative
// to the Ascendant: each sign is one house, house 1 starts at the
// Ascendant's sign.
func WholeSignHouse(ascLon, pointLon float64) int {
	const housesPerChart = 12
	ascSign := SignIndex(ascLon)
	pointSign := SignIndex(pointLon)
	return ((pointSign-ascSign)%housesPerChart+housesPerChart)%housesPerChart + 1
}
