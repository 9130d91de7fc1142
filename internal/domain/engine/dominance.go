package engine

import (
	"github.com/ecliptiq/transits/internal/domain/model"
	"github.com/ecliptiq/transits/internal/domain/rules"
)

// applyMarsDominance suppresses non-Mars hits to natal points that Mars
// itself is hitting. The pass only runs for diurnal charts with the
// table's dominance toggle enabled, and it must see the already-qualified
// hit list: dominance is an interpretation rule layered on results, never
// a geometric gate.
func (e *Engine) applyMarsDominance(hits []model.Hit) []model.Hit {
	if !e.table.MarsDominanceDiurnalOnly() || e.sect != model.SectDiurnal {
		return hits
	}

	dominated := make(map[string]struct{})
	for _, h := range hits {
		if h.TransitBody == rules.Mars {
			dominated[h.NatalPoint] = struct{}{}
		}
	}
	if len(dominated) == 0 {
		return hits
	}

	kept := make([]model.Hit, 0, len(hits))
	for _, h := range hits {
		if h.TransitBody == rules.Mars {
			kept = append(kept, h)
			continue
		}
		if _, ok := dominated[h.NatalPoint]; ok {
			continue
		}
		kept = append(kept, h)
	}
	return kept
}
