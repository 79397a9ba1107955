package fillrange

import (
	"math"
	"testing"

	"github.com/materialerosion/PACK2/internal/bottle"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	c := bottle.Container{ID: "b-1", Volume: 100}
	r := Calculate(c, 65, 85)

	if r.BottleID != "b-1" {
		t.Fatalf("expected bottle id propagated, got %q", r.BottleID)
	}
	if r.BottleVolume != 100 {
		t.Fatalf("expected bottle volume 100, got %f", r.BottleVolume)
	}
	if r.MinFill != 65 || r.MaxFill != 85 {
		t.Fatalf("expected fill range [65, 85], got [%f, %f]", r.MinFill, r.MaxFill)
	}
	if r.TargetFill != 75 {
		t.Fatalf("expected target fill 75, got %f", r.TargetFill)
	}
	if r.MinPercent != 65 || r.MaxPercent != 85 {
		t.Fatalf("expected percents recorded, got %f and %f", r.MinPercent, r.MaxPercent)
	}
}

func TestCalculateZeroVolume(t *testing.T) {
	t.Parallel()

	r := Calculate(bottle.Container{Volume: 0}, 65, 85)
	if r.MinFill != 0 || r.MaxFill != 0 || r.TargetFill != 0 {
		t.Fatalf("expected degenerate range for zero volume, got %+v", r)
	}
}

func TestForSeriesUsesConfigPercentages(t *testing.T) {
	t.Parallel()

	s := bottle.Series{
		Bottles: []bottle.Container{{ID: "a", Volume: 200}},
		Config:  bottle.GenerationConfig{MinFillPercent: 50, MaxFillPercent: 90},
	}
	ranges := ForSeries(s)
	if len(ranges) != 1 {
		t.Fatalf("expected one range, got %d", len(ranges))
	}
	if ranges[0].MinFill != 100 || ranges[0].MaxFill != 180 {
		t.Fatalf("expected [100, 180], got [%f, %f]", ranges[0].MinFill, ranges[0].MaxFill)
	}
}

func TestForSeriesFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	s := bottle.Series{Bottles: []bottle.Container{{ID: "a", Volume: 100}}}
	ranges := ForSeries(s)
	if ranges[0].MinPercent != DefaultMinPercent || ranges[0].MaxPercent != DefaultMaxPercent {
		t.Fatalf("expected default percents %d/%d, got %f/%f",
			DefaultMinPercent, DefaultMaxPercent, ranges[0].MinPercent, ranges[0].MaxPercent)
	}
	if ranges[0].MinFill != 65 || ranges[0].MaxFill != 85 {
		t.Fatalf("expected [65, 85], got [%f, %f]", ranges[0].MinFill, ranges[0].MaxFill)
	}
}

func fr(min, max float64) bottle.FillRange {
	return bottle.FillRange{MinFill: min, MaxFill: max}
}

func TestTotalCoverage(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		ranges []bottle.FillRange
		want   float64
	}{
		"Empty":             {nil, 0},
		"Single":            {[]bottle.FillRange{fr(10, 30)}, 20},
		"OverlappingUnion":  {[]bottle.FillRange{fr(0, 10), fr(5, 15)}, 15},
		"Disjoint":          {[]bottle.FillRange{fr(0, 10), fr(20, 30)}, 20},
		"NestedSubsumed":    {[]bottle.FillRange{fr(0, 100), fr(10, 20)}, 100},
		"UnsortedInput":     {[]bottle.FillRange{fr(20, 30), fr(0, 10), fr(5, 25)}, 30},
		"TouchingEndpoints": {[]bottle.FillRange{fr(0, 10), fr(10, 20)}, 20},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := TotalCoverage(tc.ranges); math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected coverage %f, got %f", tc.want, got)
			}
		})
	}
}

func TestTotalCoverageDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	ranges := []bottle.FillRange{fr(20, 30), fr(0, 10)}
	TotalCoverage(ranges)
	if ranges[0].MinFill != 20 || ranges[1].MinFill != 0 {
		t.Fatalf("input slice was reordered: %+v", ranges)
	}
}

func BenchmarkTotalCoverage(b *testing.B) {
	ranges := make([]bottle.FillRange, 0, 50)
	for i := 0; i < 50; i++ {
		start := float64((i * 37) % 500)
		ranges = append(ranges, fr(start, start+25))
	}
	for i := 0; i < b.N; i++ {
		TotalCoverage(ranges)
	}
}
