package geometry

import (
	"math"

	"github.com/materialerosion/PACK2/internal/bottle"
)

const (
	estimateTolerance     = 0.5 // mL
	estimateMaxIterations = 20
)

// EstimateDimensions inverts the volume formula for a single container:
// starting from base, it repeatedly scales the diameter and heights by the
// cube root of target/current until the computed volume is within 0.5 mL of
// targetVolume or 20 iterations have passed. Non-convergence returns the
// best approximation reached. This is the arbitrary-shape fitter; series
// generation uses the standards-snapped strategy in the series package.
func (e *engine) EstimateDimensions(targetVolume float64, shape bottle.Shape, base bottle.Dimensions) bottle.Dimensions {
	dims := base
	Converge(targetVolume, estimateTolerance, estimateMaxIterations,
		func() float64 { return e.Volume(shape, dims) },
		func(current float64) {
			if current <= 0 {
				return
			}
			factor := math.Cbrt(targetVolume / current)
			dims.BodyDiameter *= factor
			dims.BodyHeight *= factor
			dims.Height *= factor
			dims.BaseDiameter *= factor
		},
	)
	return RoundDimensions(dims)
}

// RoundDimensions rounds every linear dimension to one decimal place.
func RoundDimensions(d bottle.Dimensions) bottle.Dimensions {
	d.Height = round1(d.Height)
	d.BodyHeight = round1(d.BodyHeight)
	d.BodyDiameter = round1(d.BodyDiameter)
	d.NeckHeight = round1(d.NeckHeight)
	d.NeckDiameter = round1(d.NeckDiameter)
	d.ShoulderRadius = round1(d.ShoulderRadius)
	d.BaseDiameter = round1(d.BaseDiameter)
	d.BaseIndentDepth = round1(d.BaseIndentDepth)
	d.WallThickness = round1(d.WallThickness)
	return d
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
