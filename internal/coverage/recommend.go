package coverage

import (
	"fmt"
	"math"

	"github.com/materialerosion/PACK2/internal/bottle"
)

// Recommendation rule thresholds. The output is advisory text for the UI,
// not a decision the analyzer enforces.
const (
	efficiencyWarnPercent = 80
	coverageWarnPercent   = 80
	imbalancePoints       = 10
	overlapWarnCount      = 3
)

// recommendations evaluates the fixed rule order: per-series major gaps,
// per-series efficiency, combined major gaps, combined moderate gaps,
// overlap redundancy, combined coverage, coverage imbalance, and finally a
// well-optimized message when nothing else triggered.
func (a *Analyzer) recommendations(
	analysis1, analysis2 bottle.IntraSeriesAnalysis,
	combinedGaps []bottle.CoverageGap,
	combinedOverlaps []bottle.CoverageOverlap,
	coverage1, coverage2, combinedCoverage float64,
) []string {
	recs := []string{}

	perSeries := []struct {
		label    string
		analysis bottle.IntraSeriesAnalysis
	}{
		{"Series 1", analysis1},
		{"Series 2", analysis2},
	}

	for _, s := range perSeries {
		for _, gap := range s.analysis.Gaps {
			if gap.Severity == bottle.SeverityMajor {
				recs = append(recs, fmt.Sprintf(
					"%s: add a ~%.0f mL bottle to close the %.0f–%.0f mL gap",
					s.label, gapMidpoint(gap), gap.Start, gap.End))
			}
		}
	}

	for _, s := range perSeries {
		if s.analysis.CoverageEfficiency < efficiencyWarnPercent {
			recs = append(recs, fmt.Sprintf(
				"%s covers only %.0f%% of its fill span, leaving %.0f mL uncovered; consider tightening the volume progression",
				s.label, s.analysis.CoverageEfficiency, totalGapSize(s.analysis.Gaps)))
		}
	}

	for _, gap := range combinedGaps {
		if gap.Severity == bottle.SeverityMajor {
			recs = append(recs, fmt.Sprintf(
				"Neither series covers %.0f–%.0f mL; add a ~%.0f mL bottle to either series",
				gap.Start, gap.End, gapMidpoint(gap)))
		}
	}

	for _, gap := range combinedGaps {
		if gap.Severity == bottle.SeverityModerate {
			recs = append(recs, fmt.Sprintf(
				"Consider a bottle near %.0f mL to improve coverage between %.0f and %.0f mL",
				gapMidpoint(gap), gap.Start, gap.End))
		}
	}

	if len(combinedOverlaps) > overlapWarnCount {
		recs = append(recs, fmt.Sprintf(
			"The series overlap in %d places; some bottle sizes may be redundant",
			len(combinedOverlaps)))
	}

	if combinedCoverage < coverageWarnPercent {
		recs = append(recs, fmt.Sprintf(
			"Combined coverage is %.0f%%; the two series leave notable volume ranges unserved",
			combinedCoverage))
	}

	if diff := coverage1 - coverage2; math.Abs(diff) > imbalancePoints {
		weaker := "Series 1"
		if diff > 0 {
			weaker = "Series 2"
		}
		recs = append(recs, fmt.Sprintf(
			"%s trails the other by %.0f coverage points; consider adding bottles to it",
			weaker, math.Abs(diff)))
	}

	if len(recs) == 0 {
		recs = append(recs, "Both series are well optimized; no coverage changes recommended")
	}
	return recs
}

func gapMidpoint(gap bottle.CoverageGap) float64 {
	return (gap.Start + gap.End) / 2
}

func totalGapSize(gaps []bottle.CoverageGap) float64 {
	total := 0.0
	for _, g := range gaps {
		total += g.Size
	}
	return total
}
