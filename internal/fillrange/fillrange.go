// Package fillrange derives the operationally usable fill interval of a
// container from its volume and two percentage bounds, and provides the
// interval-union routine used for total-coverage figures.
package fillrange

import (
	"sort"

	"github.com/materialerosion/PACK2/internal/bottle"
)

// Default fill percentage bounds applied when a caller supplies none.
const (
	DefaultMinPercent = 65
	DefaultMaxPercent = 85
)

// Calculate derives a container's fill range. Pure arithmetic: whatever
// volume the container carries is propagated, including zero or negative
// values the caller should have prevented upstream.
func Calculate(c bottle.Container, minPct, maxPct float64) bottle.FillRange {
	return bottle.FillRange{
		BottleID:     c.ID,
		BottleVolume: c.Volume,
		MinFill:      c.Volume * minPct / 100,
		TargetFill:   c.Volume * (minPct + maxPct) / 2 / 100,
		MaxFill:      c.Volume * maxPct / 100,
		MinPercent:   minPct,
		MaxPercent:   maxPct,
	}
}

// ForSeries derives fill ranges for every bottle in a series, using the
// series config's percentages when set and the defaults otherwise.
func ForSeries(s bottle.Series) []bottle.FillRange {
	minPct := s.Config.MinFillPercent
	maxPct := s.Config.MaxFillPercent
	if minPct <= 0 && maxPct <= 0 {
		minPct = DefaultMinPercent
		maxPct = DefaultMaxPercent
	}
	ranges := make([]bottle.FillRange, 0, len(s.Bottles))
	for _, b := range s.Bottles {
		ranges = append(ranges, Calculate(b, minPct, maxPct))
	}
	return ranges
}

// TotalCoverage returns the union length in mL of the given fill ranges:
// ranges are sorted by MinFill and swept with a running maximum, counting
// only the portion of each range beyond what is already covered.
func TotalCoverage(ranges []bottle.FillRange) float64 {
	if len(ranges) == 0 {
		return 0
	}

	sorted := sortByMinFill(ranges)
	total := 0.0
	runningMax := sorted[0].MinFill
	for _, r := range sorted {
		if r.MaxFill <= runningMax {
			continue
		}
		start := r.MinFill
		if start < runningMax {
			start = runningMax
		}
		total += r.MaxFill - start
		runningMax = r.MaxFill
	}
	return total
}

// sortByMinFill returns a copy sorted ascending by MinFill, leaving the
// caller's slice untouched.
func sortByMinFill(ranges []bottle.FillRange) []bottle.FillRange {
	sorted := make([]bottle.FillRange, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinFill < sorted[j].MinFill
	})
	return sorted
}
