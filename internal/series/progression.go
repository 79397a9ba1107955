package series

import (
	"math"

	"github.com/materialerosion/PACK2/internal/bottle"
)

// Volumes returns the ordered target volumes for a generation config. Any
// count of one or less yields a single-element list at the minimum volume,
// sidestepping the (n−1) divisor in every progression.
func (g *Generator) Volumes(cfg bottle.GenerationConfig) ([]float64, error) {
	switch cfg.Algorithm {
	case bottle.AlgorithmLinear:
		return linearVolumes(cfg.MinVolume, cfg.MaxVolume, cfg.BottleCount), nil
	case bottle.AlgorithmGoldenRatio:
		return goldenRatioVolumes(cfg.MinVolume, cfg.MaxVolume, cfg.BottleCount), nil
	case bottle.AlgorithmLogarithmic:
		if cfg.MinVolume <= 0 || cfg.MaxVolume <= 0 {
			return nil, ErrInvalidVolumeBounds
		}
		return logarithmicVolumes(cfg.MinVolume, cfg.MaxVolume, cfg.BottleCount), nil
	default:
		return nil, ErrUnknownAlgorithm
	}
}

func linearVolumes(min, max float64, n int) []float64 {
	if n <= 1 {
		return []float64{min}
	}
	vols := make([]float64, 0, n)
	step := (max - min) / float64(n-1)
	for i := 0; i < n; i++ {
		vols = append(vols, math.Round(min+step*float64(i)))
	}
	return vols
}

// goldenRatioVolumes produces a geometric progression whose ratio is the
// larger of the golden ratio and the ratio needed to reach max in n−1 steps.
// The second-to-last element is forced to exactly max before the last is
// computed by one more ratio multiplication, so the final element can exceed
// max; that behaviour is intentional and kept pending product clarification.
func goldenRatioVolumes(min, max float64, n int) []float64 {
	if n <= 1 {
		return []float64{min}
	}
	needed := math.Pow(max/min, 1/float64(n-1))
	ratio := math.Max(needed, math.Phi)

	vols := make([]float64, 0, n)
	v := min
	for i := 0; i < n; i++ {
		if i == n-2 {
			v = max
		}
		vols = append(vols, v)
		v *= ratio
	}
	return vols
}

func logarithmicVolumes(min, max float64, n int) []float64 {
	if n <= 1 {
		return []float64{min}
	}
	logMin := math.Log(min)
	logMax := math.Log(max)
	step := (logMax - logMin) / float64(n-1)

	vols := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		vols = append(vols, math.Exp(logMin+step*float64(i)))
	}
	return vols
}
