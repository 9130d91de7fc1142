package testqueries

import (
	"fmt"
	"log"
)

// verifyReports checks the retrieved reports for internal consistency and
// accumulates hit statistics.
func verifyReports(config *Config, reports []Report, stats *Stats) error {
	log.Println("verifying reports...")

	if len(reports) == 0 {
		return fmt.Errorf("no reports to verify")
	}

	warnings := 0
	for _, report := range reports {
		switch report.Status {
		case "completed":
			stats.ReportsCompleted++
		case "failed":
			stats.ReportsFailed++
			continue
		default:
			warnings++
			log.Printf("report %s has unexpected status %q", report.ID, report.Status)
			continue
		}

		if err := verifySingleReport(report); err != nil {
			warnings++
			log.Printf("report %s inconsistency: %v", report.ID, err)
		}

		all := report.Hits
		if len(report.AllHits) > 0 {
			all = report.AllHits
		}
		stats.HitsObserved += len(all)
		stats.QualifyingHits += countQualifying(report)
	}

	if warnings > 0 {
		log.Printf("verification completed with %d warnings", warnings)
	} else {
		log.Println("verification completed, all reports consistent")
	}

	if config.Verbose {
		displayHitStats(reports)
	}

	return nil
}

// verifySingleReport checks one completed report's invariants.
func verifySingleReport(report Report) error {
	if report.Rules.Sect != "diurnal" && report.Rules.Sect != "nocturnal" {
		return fmt.Errorf("unresolved sect %q", report.Rules.Sect)
	}
	if report.Rules.MinuteTolArcmin <= 0 {
		return fmt.Errorf("non-positive minute tolerance %f", report.Rules.MinuteTolArcmin)
	}

	for _, hit := range report.QualifyingHits {
		if !hit.Qualifies {
			return fmt.Errorf("non-qualifying hit %s %s %s in the qualifying list",
				hit.TransitBody, hit.AspectName, hit.NatalPoint)
		}
	}
	if len(report.AllHits) < len(report.QualifyingHits) {
		return fmt.Errorf("qualifying list (%d) larger than the all list (%d)",
			len(report.QualifyingHits), len(report.AllHits))
	}

	// Ranked lists keep |error| ascending within one motion group; check
	// the leading applying run, which ranks ahead of everything else.
	for _, hits := range [][]Hit{report.Hits, report.QualifyingHits} {
		prev := -1.0
		for _, hit := range hits {
			if hit.ApplyingLabel != "applying" {
				break
			}
			if hit.ErrorAbsDeg < prev {
				return fmt.Errorf("applying hits out of order: %.4f after %.4f", hit.ErrorAbsDeg, prev)
			}
			prev = hit.ErrorAbsDeg
		}
	}

	return nil
}

// countQualifying counts the qualifying hits regardless of report mode.
func countQualifying(report Report) int {
	if len(report.QualifyingHits) > 0 || len(report.AllHits) > 0 {
		return len(report.QualifyingHits)
	}
	n := 0
	for _, hit := range report.Hits {
		if hit.Qualifies {
			n++
		}
	}
	return n
}

// displayHitStats prints aggregate hit statistics.
func displayHitStats(reports []Report) {
	totalHits := 0
	maxHits := 0
	empty := 0

	for _, report := range reports {
		n := len(report.Hits)
		if len(report.AllHits) > 0 {
			n = len(report.AllHits)
		}
		totalHits += n
		if n > maxHits {
			maxHits = n
		}
		if n == 0 {
			empty++
		}
	}

	avg := 0.0
	if len(reports) > 0 {
		avg = float64(totalHits) / float64(len(reports))
	}

	log.Printf(`hit statistics:
   Reports: %d
   Total hits: %d
   Average per report: %.2f
   Maximum: %d
   Empty: %d
`, len(reports), totalHits, avg, maxHits, empty)
}
