// Package types contains the wire-level views shared across the
// application: serialized hits, positions, and the query report envelope.
package types

import (
	"github.com/ecliptiq/transits/internal/domain/geometry"
	"github.com/ecliptiq/transits/internal/domain/model"
)

// Report statuses for asynchronously evaluated queries.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// HitView is the serialized form of a classified aspect hit.
type HitView struct {
	TransitBody string  `json:"transit_body"`
	NatalPoint  string  `json:"natal_point"`
	AspectName  string  `json:"aspect_name"`
	AspectAngle float64 `json:"aspect_angle"`
	ErrorDeg    float64 `json:"error_deg"`
	ErrorAbsDeg float64 `json:"error_abs_deg"`
	ErrorFmt    string  `json:"error_fmt"`

	// Applying is tri-state: true, false, or null for unknown motion.
	Applying      *bool  `json:"applying"`
	ApplyingLabel string `json:"applying_label"`

	OrbUsed   *float64 `json:"orb_used"`
	WithinOrb *bool    `json:"within_orb"`

	MinuteExactRequired bool `json:"minute_exact_required"`
	MinuteExactPassed   bool `json:"minute_exact_passed"`

	Qualifies bool   `json:"qualifies"`
	Notes     string `json:"notes"`
}

// NewHitView serializes a hit, deriving the display-only fields.
func NewHitView(h model.Hit) HitView {
	var applying *bool
	switch h.Motion {
	case model.MotionApplying:
		v := true
		applying = &v
	case model.MotionSeparating:
		v := false
		applying = &v
	}

	return HitView{
		TransitBody:         h.TransitBody,
		NatalPoint:          h.NatalPoint,
		AspectName:          h.AspectName,
		AspectAngle:         h.AspectAngle,
		ErrorDeg:            h.ErrorDeg,
		ErrorAbsDeg:         h.AbsError(),
		ErrorFmt:            geometry.FormatErrorMinutes(h.ErrorDeg),
		Applying:            applying,
		ApplyingLabel:       h.Motion.Label(),
		OrbUsed:             h.OrbUsed,
		WithinOrb:           h.WithinOrb,
		MinuteExactRequired: h.MinuteExactRequired,
		MinuteExactPassed:   h.MinuteExactPassed,
		Qualifies:           h.Qualifies,
		Notes:               h.Notes,
	}
}

// HitViews serializes a ranked hit slice, preserving order. The result is
// never nil, so an empty hit list serializes as an empty array.
func HitViews(hits []model.Hit) []HitView {
	out := make([]HitView, 0, len(hits))
	for _, h := range hits {
		out = append(out, NewHitView(h))
	}
	return out
}

// PositionView is the serialized form of an ecliptic position.
type PositionView struct {
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed,omitempty"`
	Display   string   `json:"display"`
}

// PositionViews serializes a position set with sign-degree displays.
func PositionViews(set model.PositionSet) map[string]PositionView {
	out := make(map[string]PositionView, len(set))
	for name, pos := range set {
		out[name] = PositionView{
			Longitude: pos.Longitude,
			Speed:     pos.Speed,
			Display:   geometry.FormatSignDegree(pos.Longitude),
		}
	}
	return out
}

// RulesView echoes the effective rule parameters back on every report.
type RulesView struct {
	Sect            string  `json:"sect"`
	MinuteTolArcmin float64 `json:"minute_tol_arcmin"`
}

// Report is the evaluation result envelope. Synchronous responses carry it
// directly; asynchronous queries store it for later retrieval, with ID and
// Status set. Exactly one hit-list shape is populated: Hits for the
// qualifying and all modes, the pair for the both mode.
type Report struct {
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`

	Mode     model.Mode              `json:"mode"`
	Rules    RulesView               `json:"rules"`
	Transits map[string]PositionView `json:"transits,omitempty"`

	Hits           []HitView `json:"hits,omitempty"`
	QualifyingHits []HitView `json:"qualifying_hits,omitempty"`
	AllHits        []HitView `json:"all_hits,omitempty"`
}
