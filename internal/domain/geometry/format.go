package geometry

import (
	"fmt"
	"math"
)

// Zodiac sign names indexed by SignIndex.
var signs = [...]string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// SignName returns the zodiac sign name for a longitude.
func SignName(lon float64) string {
	return signs[SignIndex(lon)]
}

// FormatSignDegree renders a longitude as sign name plus degree and
// arcminute within the sign, e.g. "Aries 14°07′". The fractional minute is
// TRUNCATED, never rounded; astrological convention treats 14°07.9′ as
// 14°07′.
func FormatSignDegree(lon float64) string {
	lon = Normalize(lon)
	inSign := DegreesInSign(lon)
	deg := int(math.Floor(inSign))
	minutes := int((inSign - float64(deg)) * arcminPerDegree)
	return fmt.Sprintf("%s %d°%02d′", SignName(lon), deg, minutes)
}

// FormatErrorMinutes renders a signed aspect error as a sign-prefixed
// degree/arcminute string, e.g. "+1°23′". Minutes are truncated.
func FormatErrorMinutes(errorDeg float64) string {
	sign := "+"
	if errorDeg < 0 {
		sign = "-"
	}
	abs := math.Abs(errorDeg)
	deg := int(math.Floor(abs))
	minutes := int((abs - float64(deg)) * arcminPerDegree)
	return fmt.Sprintf("%s%d°%02d′", sign, deg, minutes)
}
