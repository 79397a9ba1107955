package geometry

import "math"

// Converge drives an iterative refinement loop toward target. On each pass
// it calls evaluate; if the result is within tolerance of target it stops,
// otherwise it calls adjust with the current value and tries again, up to
// maxIterations passes. It returns the last evaluated value and whether
// tolerance was met, so callers can flag non-convergence instead of having
// it silently swallowed.
func Converge(target, tolerance float64, maxIterations int, evaluate func() float64, adjust func(current float64)) (float64, bool) {
	current := evaluate()
	for i := 0; i < maxIterations; i++ {
		if math.Abs(current-target) <= tolerance {
			return current, true
		}
		adjust(current)
		current = evaluate()
	}
	return current, math.Abs(current-target) <= tolerance
}
