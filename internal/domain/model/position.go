// Package model contains domain values passed between layers.
package model

// Position is a celestial point: an ecliptic longitude in degrees and an
// optional signed angular speed in degrees per day. A present speed unlocks
// applying/separating determination; angles and derived points carry none.
type Position struct {
	Longitude float64
	Speed     *float64
}

// Fixed builds a Position without speed data.
func Fixed(longitude float64) Position {
	return Position{Longitude: longitude}
}

// Moving builds a Position with a known angular speed.
func Moving(longitude, speed float64) Position {
	return Position{Longitude: longitude, Speed: &speed}
}

// PositionSet maps canonical body or point names to positions. Keys are
// case-sensitive and must match the rule table's names; unknown keys are
// ignored by the engine rather than rejected.
type PositionSet map[string]Position
