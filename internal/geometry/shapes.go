package geometry

import (
	"math"

	"github.com/materialerosion/PACK2/internal/bottle"
)

// cylinderTransitionMax caps the body-to-neck transition height for shapes
// without a pronounced shoulder.
const cylinderTransitionMax = 5.0

// innerRadius converts an outer diameter to the radius bounding internal
// (liquid-holding) volume.
func innerRadius(diameter, wall float64) float64 {
	return diameter/2 - wall
}

// shoulderHeight is the vertical extent of a curved shoulder: the sagitta of
// an arc of the given radius swept through the shoulder angle.
func shoulderHeight(d bottle.Dimensions) float64 {
	return d.ShoulderRadius * (1 - math.Cos(d.ShoulderAngle*math.Pi/180))
}

// cylinderVolume is π r² h.
func cylinderVolume(r, h float64) float64 {
	return math.Pi * r * r * h
}

// frustumVolume is the truncated-cone volume between radii r1 and r2.
func frustumVolume(r1, r2, h float64) float64 {
	return math.Pi * h * (r1*r1 + r1*r2 + r2*r2) / 3
}

// sphericalCapVolume approximates a dome of height h on a sphere of radius r.
func sphericalCapVolume(r, h float64) float64 {
	return math.Pi * h * h * (3*r - h) / 3
}

// petaloidIndentVolume integrates the displaced volume of a petaloid base.
// The valleys between the feet taper from the base radius to zero over the
// indent depth steeper than a cone; a quadratic radius profile matches the
// usual five-foot geometry closely enough for capacity work.
func petaloidIndentVolume(baseR, depth float64) float64 {
	if baseR <= 0 || depth <= 0 {
		return 0
	}
	ml := ProfileVolume(func(z float64) float64 {
		t := 1 - z/depth
		return baseR * t * t
	}, depth, DefaultProfileSegments)
	return ml * 1000 // back to mm³
}

func widthRatio(d bottle.Dimensions) float64 {
	if d.WidthRatio <= 0 {
		return 1
	}
	return d.WidthRatio
}

// bostonRound: cylindrical body, arc shoulder frustum, cylindrical neck,
// minus a spherical-cap indent when the base profile is concave and a
// profiled indent when it is petaloid.
type bostonRound struct{}

func (bostonRound) volume(d bottle.Dimensions) float64 {
	bodyR := innerRadius(d.BodyDiameter, d.WallThickness)
	neckR := innerRadius(d.NeckDiameter, d.WallThickness)
	shoulderH := shoulderHeight(d)
	bodyH := d.BodyHeight - d.NeckHeight - shoulderH - d.BaseIndentDepth

	v := cylinderVolume(bodyR, bodyH)
	v += frustumVolume(bodyR, neckR, shoulderH)
	v += cylinderVolume(neckR, d.NeckHeight)
	switch d.BaseProfile {
	case bottle.BaseConcave:
		baseR := innerRadius(d.BaseDiameter, d.WallThickness)
		v -= sphericalCapVolume(baseR, d.BaseIndentDepth)
	case bottle.BasePetaloid:
		baseR := innerRadius(d.BaseDiameter, d.WallThickness)
		v -= petaloidIndentVolume(baseR, d.BaseIndentDepth)
	}
	return v
}

// cylinder: body and neck cylinders joined by a short frustum transition.
type cylinder struct{}

func (cylinder) volume(d bottle.Dimensions) float64 {
	bodyR := innerRadius(d.BodyDiameter, d.WallThickness)
	neckR := innerRadius(d.NeckDiameter, d.WallThickness)
	transitionH := math.Min(cylinderTransitionMax, d.ShoulderRadius)
	bodyH := d.BodyHeight - d.NeckHeight - transitionH

	v := cylinderVolume(bodyR, bodyH)
	v += frustumVolume(bodyR, neckR, transitionH)
	v += cylinderVolume(neckR, d.NeckHeight)
	return v
}

// oval: elliptical body cylinder bridged to a circular neck through a
// frustum on the equivalent radius sqrt(a·b).
type oval struct{}

func (oval) volume(d bottle.Dimensions) float64 {
	a := innerRadius(d.BodyDiameter, d.WallThickness)
	b := a * widthRatio(d)
	neckR := innerRadius(d.NeckDiameter, d.WallThickness)
	transitionH := math.Min(cylinderTransitionMax, d.ShoulderRadius)
	bodyH := d.BodyHeight - d.NeckHeight - transitionH

	v := math.Pi * a * b * bodyH
	equivR := math.Sqrt(a * b)
	v += frustumVolume(equivR, neckR, transitionH)
	v += cylinderVolume(neckR, d.NeckHeight)
	return v
}

// modernPharma: rounded-rectangle prism corrected for corner rounding,
// circular neck, frustum transition on the equivalent radius
// sqrt(width·depth/π). The corner radius is the shoulder curve radius,
// capped at half the smaller side.
type modernPharma struct{}

func (modernPharma) volume(d bottle.Dimensions) float64 {
	wall := d.WallThickness
	width := d.BodyDiameter - 2*wall
	depth := width * widthRatio(d)
	neckR := innerRadius(d.NeckDiameter, wall)
	transitionH := math.Min(cylinderTransitionMax, d.ShoulderRadius)
	bodyH := d.BodyHeight - d.NeckHeight - transitionH

	cornerR := math.Min(d.ShoulderRadius, math.Min(width, depth)/2)
	v := width*depth*bodyH - (4-math.Pi)*cornerR*cornerR*bodyH
	equivR := math.Sqrt(width * depth / math.Pi)
	v += frustumVolume(equivR, neckR, transitionH)
	v += cylinderVolume(neckR, d.NeckHeight)
	return v
}

// packer: like the Boston round but with half the shoulder rise and no base
// indent term. Wide-mouth jars reuse this decomposition verbatim.
type packer struct{}

func (packer) volume(d bottle.Dimensions) float64 {
	bodyR := innerRadius(d.BodyDiameter, d.WallThickness)
	neckR := innerRadius(d.NeckDiameter, d.WallThickness)
	shoulderH := shoulderHeight(d) / 2
	bodyH := d.BodyHeight - d.NeckHeight - shoulderH

	v := cylinderVolume(bodyR, bodyH)
	v += frustumVolume(bodyR, neckR, shoulderH)
	v += cylinderVolume(neckR, d.NeckHeight)
	return v
}
