// Package coverage analyzes the fill ranges of one or two bottle series for
// gaps, overlaps, and derived coverage metrics, and generates advisory
// recommendations. Every operation is an independent pure computation over
// its inputs; the analyzer holds configuration only.
package coverage

import (
	"sort"

	"github.com/materialerosion/PACK2/internal/bottle"
	"github.com/materialerosion/PACK2/internal/fillrange"
)

// Thresholds classifies gap severity by size in mL: gaps up to Minor are
// minor, up to Moderate are moderate, larger ones major.
type Thresholds struct {
	Minor    float64
	Moderate float64
}

// DefaultThresholds returns the production severity thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Minor: 20, Moderate: 50}
}

// Analyzer detects coverage gaps and overlaps across fill ranges.
type Analyzer struct {
	thresholds Thresholds
}

// New constructs an Analyzer with the given severity thresholds.
func New(thresholds Thresholds) *Analyzer {
	return &Analyzer{thresholds: thresholds}
}

func (a *Analyzer) severity(size float64) bottle.GapSeverity {
	switch {
	case size <= a.thresholds.Minor:
		return bottle.SeverityMinor
	case size <= a.thresholds.Moderate:
		return bottle.SeverityModerate
	default:
		return bottle.SeverityMajor
	}
}

// IntraSeriesGaps finds the uncovered intervals between one series' fill
// ranges. Empty and singleton inputs yield no gaps.
func (a *Analyzer) IntraSeriesGaps(ranges []bottle.FillRange) []bottle.CoverageGap {
	return a.sweepGaps(ranges)
}

// Gaps finds the uncovered intervals across two series by pooling both
// sets of fill ranges before sweeping, so one series' range can bridge a
// gap internal to the other.
func (a *Analyzer) Gaps(ranges1, ranges2 []bottle.FillRange) []bottle.CoverageGap {
	pooled := make([]bottle.FillRange, 0, len(ranges1)+len(ranges2))
	pooled = append(pooled, ranges1...)
	pooled = append(pooled, ranges2...)
	return a.sweepGaps(pooled)
}

func (a *Analyzer) sweepGaps(ranges []bottle.FillRange) []bottle.CoverageGap {
	gaps := []bottle.CoverageGap{}
	if len(ranges) <= 1 {
		return gaps
	}

	sorted := make([]bottle.FillRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinFill < sorted[j].MinFill
	})

	runningMax := sorted[0].MaxFill
	for _, r := range sorted[1:] {
		if r.MinFill > runningMax {
			size := r.MinFill - runningMax
			gaps = append(gaps, bottle.CoverageGap{
				Start:    runningMax,
				End:      r.MinFill,
				Size:     size,
				Severity: a.severity(size),
			})
		}
		if r.MaxFill > runningMax {
			runningMax = r.MaxFill
		}
	}
	return gaps
}

// IntraSeriesOverlaps checks every unordered pair of fill ranges within one
// series for overlapping intervals.
func (a *Analyzer) IntraSeriesOverlaps(ranges []bottle.FillRange) []bottle.CoverageOverlap {
	overlaps := []bottle.CoverageOverlap{}
	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			if o, ok := pairOverlap(ranges[i], ranges[j]); ok {
				overlaps = append(overlaps, o)
			}
		}
	}
	return overlaps
}

// Overlaps checks every cross pair (one range from each series). Pairs
// within a single series are deliberately not checked here.
func (a *Analyzer) Overlaps(ranges1, ranges2 []bottle.FillRange) []bottle.CoverageOverlap {
	overlaps := []bottle.CoverageOverlap{}
	for _, r1 := range ranges1 {
		for _, r2 := range ranges2 {
			if o, ok := pairOverlap(r1, r2); ok {
				overlaps = append(overlaps, o)
			}
		}
	}
	return overlaps
}

func pairOverlap(a, b bottle.FillRange) (bottle.CoverageOverlap, bool) {
	start := a.MinFill
	if b.MinFill > start {
		start = b.MinFill
	}
	end := a.MaxFill
	if b.MaxFill < end {
		end = b.MaxFill
	}
	if start >= end {
		return bottle.CoverageOverlap{}, false
	}
	return bottle.CoverageOverlap{Start: start, End: end, Size: end - start}, true
}

// AnalyzeSeries computes the gaps, overlaps, and coverage metrics internal
// to one series. Pass precomputed fill ranges to avoid rederiving them; a
// nil slice derives them from the series config's fill percentages.
func (a *Analyzer) AnalyzeSeries(s bottle.Series, ranges []bottle.FillRange) bottle.IntraSeriesAnalysis {
	if ranges == nil {
		ranges = fillrange.ForSeries(s)
	}

	analysis := bottle.IntraSeriesAnalysis{
		Gaps:     a.IntraSeriesGaps(ranges),
		Overlaps: a.IntraSeriesOverlaps(ranges),
	}
	if len(ranges) == 0 {
		analysis.CoverageEfficiency = 100
		analysis.SpaceUtilization = 100
		return analysis
	}

	minFill := ranges[0].MinFill
	maxFill := ranges[0].MaxFill
	minVolume := ranges[0].BottleVolume
	maxVolume := ranges[0].BottleVolume
	for _, r := range ranges[1:] {
		if r.MinFill < minFill {
			minFill = r.MinFill
		}
		if r.MaxFill > maxFill {
			maxFill = r.MaxFill
		}
		if r.BottleVolume < minVolume {
			minVolume = r.BottleVolume
		}
		if r.BottleVolume > maxVolume {
			maxVolume = r.BottleVolume
		}
	}

	analysis.CoverageSpan = maxFill - minFill
	analysis.CoveredRange = fillrange.TotalCoverage(ranges)

	if analysis.CoverageSpan == 0 {
		analysis.CoverageEfficiency = 100
	} else {
		analysis.CoverageEfficiency = analysis.CoveredRange / analysis.CoverageSpan * 100
	}

	if spread := maxVolume - minVolume; spread == 0 {
		analysis.SpaceUtilization = 100
	} else {
		util := analysis.CoveredRange / spread * 100
		if util > 100 {
			util = 100
		}
		analysis.SpaceUtilization = util
	}
	return analysis
}

// Compare produces the full two-series comparison snapshot: both internal
// analyses, pooled inter-series gaps, cross-series overlaps, coverage
// percentages, and recommendations.
func (a *Analyzer) Compare(s1, s2 bottle.Series) bottle.SeriesComparison {
	ranges1 := fillrange.ForSeries(s1)
	ranges2 := fillrange.ForSeries(s2)

	analysis1 := a.AnalyzeSeries(s1, ranges1)
	analysis2 := a.AnalyzeSeries(s2, ranges2)
	combinedGaps := a.Gaps(ranges1, ranges2)
	combinedOverlaps := a.Overlaps(ranges1, ranges2)
	p1, p2, combined := a.coveragePercentages(ranges1, ranges2, combinedGaps)

	return bottle.SeriesComparison{
		Series1:          analysis1,
		Series2:          analysis2,
		CombinedGaps:     combinedGaps,
		CombinedOverlaps: combinedOverlaps,
		Series1Coverage:  p1,
		Series2Coverage:  p2,
		CombinedCoverage: combined,
		Recommendations:  a.recommendations(analysis1, analysis2, combinedGaps, combinedOverlaps, p1, p2, combined),
	}
}

// coveragePercentages measures each series' union coverage against the
// combined total range (min of all MinFills to max of all MaxFills across
// both series); combined coverage subtracts the pooled gap sizes from the
// total range, clamped to [0, 100]. A zero total range counts as fully
// covered, mirroring the single-bottle efficiency rule.
func (a *Analyzer) coveragePercentages(ranges1, ranges2 []bottle.FillRange, gaps []bottle.CoverageGap) (float64, float64, float64) {
	all := make([]bottle.FillRange, 0, len(ranges1)+len(ranges2))
	all = append(all, ranges1...)
	all = append(all, ranges2...)
	if len(all) == 0 {
		return 100, 100, 100
	}

	totalMin := all[0].MinFill
	totalMax := all[0].MaxFill
	for _, r := range all[1:] {
		if r.MinFill < totalMin {
			totalMin = r.MinFill
		}
		if r.MaxFill > totalMax {
			totalMax = r.MaxFill
		}
	}
	totalRange := totalMax - totalMin
	if totalRange <= 0 {
		return 100, 100, 100
	}

	p1 := fillrange.TotalCoverage(ranges1) / totalRange * 100
	p2 := fillrange.TotalCoverage(ranges2) / totalRange * 100

	gapTotal := 0.0
	for _, g := range gaps {
		gapTotal += g.Size
	}
	combined := (totalRange - gapTotal) / totalRange * 100
	if combined < 0 {
		combined = 0
	}
	if combined > 100 {
		combined = 100
	}
	return p1, p2, combined
}
