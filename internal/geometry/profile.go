package geometry

import (
	"math"

	"gonum.org/v1/gonum/integrate"
)

// DefaultProfileSegments is the integration resolution used when callers
// pass a non-positive segment count.
const DefaultProfileSegments = 100

// ProfileVolume computes the volume in mL of a solid of revolution whose
// radius at height h (both in mm) is given by radiusAt, for h in [0, height].
// It integrates π·r(h)² with Simpson's rule over the given number of equal
// segments. The petaloid base indent is computed this way; it also serves as
// a building block for irregular bottle profiles.
func ProfileVolume(radiusAt func(h float64) float64, height float64, segments int) float64 {
	if height <= 0 {
		return 0
	}
	if segments <= 0 {
		segments = DefaultProfileSegments
	}
	if segments%2 != 0 {
		segments++
	}

	xs := make([]float64, segments+1)
	ys := make([]float64, segments+1)
	step := height / float64(segments)
	for i := 0; i <= segments; i++ {
		h := float64(i) * step
		r := radiusAt(h)
		xs[i] = h
		ys[i] = math.Pi * r * r
	}

	ml := integrate.Simpsons(xs, ys) / 1000 // mm³ -> mL
	if ml < 0 {
		return 0
	}
	return ml
}
