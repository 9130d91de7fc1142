package engine

import (
	"math"

	"github.com/ecliptiq/transits/internal/domain/geometry"
	"github.com/ecliptiq/transits/internal/domain/model"
)

// projectionStepDays is the forward-projection step used to decide
// applying versus separating from angular speed.
const projectionStepDays = 0.1

// Classifier notes carried on hits.
const (
	noteMinuteExact       = "minute-exact transit"
	noteMinuteExactFailed = "minute-exact required (did not pass)"
	noteWithinOrb         = "within orb"
	noteOutsideOrb        = "outside orb"
)

// findAspects enumerates every eligible (transiting body, natal point,
// aspect) triple and classifies it. With qualifyOnly set, non-qualifying
// candidates are dropped; otherwise every computed candidate becomes a hit
// with its Qualifies flag reflecting the outcome.
//
// Position-set keys unknown to the rule table are skipped silently, as are
// bodies that carry neither an orb entry nor a minute-exact flag. Both are
// intentional permissiveness, not errors.
func (e *Engine) findAspects(transits, natal model.PositionSet, qualifyOnly bool) []model.Hit {
	var hits []model.Hit

	for tBody, tPos := range transits {
		if !e.table.EligibleTransit(tBody) {
			continue
		}
		minuteRequired := e.table.MinuteExactRequired(tBody)

		for nPoint, nPos := range natal {
			if !e.table.EligibleNatal(nPoint) {
				continue
			}
			if !e.table.OuterReceivingAllowed(tBody, nPoint) {
				continue
			}

			for _, aspect := range e.table.Aspects() {
				err := geometry.AspectError(tPos.Longitude, nPos.Longitude, aspect.Angle)
				absErr := math.Abs(err)

				if minuteRequired {
					passed := geometry.IsMinuteExact(absErr, e.minuteTol)
					if qualifyOnly && !passed {
						continue
					}
					note := noteMinuteExact
					if !passed {
						note = noteMinuteExactFailed
					}
					hits = append(hits, model.Hit{
						TransitBody:         tBody,
						NatalPoint:          nPoint,
						AspectName:          aspect.Name,
						AspectAngle:         aspect.Angle,
						ErrorDeg:            err,
						Motion:              model.MotionUnknown,
						MinuteExactRequired: true,
						MinuteExactPassed:   passed,
						Qualifies:           passed,
						Notes:               note,
					})
					continue
				}

				motion := e.motionOf(tPos, nPos.Longitude, aspect.Angle)
				orb, ok := e.orbFor(tBody, motion)
				if !ok {
					// No regime at all for this body: no hit, no error.
					continue
				}

				withinOrb := absErr <= orb
				if qualifyOnly && !withinOrb {
					continue
				}
				note := noteWithinOrb
				if !withinOrb {
					note = noteOutsideOrb
				}
				orbUsed := orb
				within := withinOrb
				hits = append(hits, model.Hit{
					TransitBody:         tBody,
					NatalPoint:          nPoint,
					AspectName:          aspect.Name,
					AspectAngle:         aspect.Angle,
					ErrorDeg:            err,
					Motion:              motion,
					OrbUsed:             &orbUsed,
					WithinOrb:           &within,
					MinuteExactRequired: false,
					MinuteExactPassed:   true,
					Qualifies:           withinOrb,
					Notes:               note,
				})
			}
		}
	}

	return hits
}

// motionOf decides applying versus separating by projecting the transiting
// longitude forward by a small fixed step and comparing absolute aspect
// errors. A strictly shrinking error is applying; strictly growing is
// separating; the degenerate equal case counts as applying. Without speed
// data the motion stays unknown.
func (e *Engine) motionOf(transit model.Position, natalLon, aspectAngle float64) model.Motion {
	if transit.Speed == nil {
		return model.MotionUnknown
	}

	errNow := math.Abs(geometry.AspectError(transit.Longitude, natalLon, aspectAngle))
	futureLon := geometry.Normalize(transit.Longitude + *transit.Speed*projectionStepDays)
	errFuture := math.Abs(geometry.AspectError(futureLon, natalLon, aspectAngle))

	if errFuture > errNow {
		return model.MotionSeparating
	}
	return model.MotionApplying
}

// orbFor selects the allowed orb for an orb-regime body. With known motion
// the matching directional orb applies; with unknown motion the tighter of
// the pair is used so an unknown-motion hit is never over-qualified.
func (e *Engine) orbFor(body string, motion model.Motion) (float64, bool) {
	orbs, ok := e.table.OrbsFor(body)
	if !ok {
		return 0, false
	}
	switch motion {
	case model.MotionApplying:
		return orbs.Applying, true
	case model.MotionSeparating:
		return orbs.Separating, true
	default:
		return orbs.Tighter(), true
	}
}
