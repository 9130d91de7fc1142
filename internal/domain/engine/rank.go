package engine

import (
	"sort"

	"github.com/ecliptiq/transits/internal/domain/model"
)

// Ranking buckets. Minute-exact hits always sort after every orb-regime
// hit, regardless of tightness: the two regimes are separate categories,
// not points on one scale.
const (
	bucketOrbRegime   = 0
	bucketMinuteExact = 3
)

// Motion ranks within the orb-regime bucket.
const (
	motionRankApplying   = 0
	motionRankUnknown    = 1
	motionRankSeparating = 2
)

// rankHits orders hits ascending by significance: regime bucket, then
// motion (applying < unknown < separating), then error magnitude, then
// transiting body, natal point, and aspect angle as deterministic
// tie-breaks. The comparator is total, so equal-tightness hits always land
// in the same order regardless of input order.
func (e *Engine) rankHits(hits []model.Hit) []model.Hit {
	sort.Slice(hits, func(i, j int) bool {
		return hitLess(hits[i], hits[j])
	})
	return hits
}

func hitLess(a, b model.Hit) bool {
	ab, bb := rankBucket(a), rankBucket(b)
	if ab != bb {
		return ab < bb
	}
	am, bm := motionRank(a), motionRank(b)
	if am != bm {
		return am < bm
	}
	if a.AbsError() != b.AbsError() {
		return a.AbsError() < b.AbsError()
	}
	if a.TransitBody != b.TransitBody {
		return a.TransitBody < b.TransitBody
	}
	if a.NatalPoint != b.NatalPoint {
		return a.NatalPoint < b.NatalPoint
	}
	return a.AspectAngle < b.AspectAngle
}

func rankBucket(h model.Hit) int {
	if h.MinuteExactRequired {
		return bucketMinuteExact
	}
	return bucketOrbRegime
}

func motionRank(h model.Hit) int {
	if h.MinuteExactRequired {
		return motionRankApplying
	}
	switch h.Motion {
	case model.MotionApplying:
		return motionRankApplying
	case model.MotionSeparating:
		return motionRankSeparating
	default:
		return motionRankUnknown
	}
}
