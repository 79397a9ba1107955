// Package geometry computes internal bottle volumes and surface areas from
// shape families and dimension sets. Each shape family decomposes the bottle
// into primitive solids (cylinders, frustums, spherical caps) and sums their
// volumes; results are reported in milliliters.
package geometry

import (
	"math"

	"github.com/materialerosion/PACK2/internal/bottle"
)

// Engine computes derived geometric quantities for containers.
type Engine interface {
	// Volume returns the internal volume in mL, clamped to >= 0.
	// Unknown shapes fall back to the plain cylinder formula.
	Volume(shape bottle.Shape, dims bottle.Dimensions) float64
	// SurfaceArea returns an approximate external surface area in cm²,
	// based on the body cylinder only. It is intentionally coarse and
	// meant for label sizing, not volume-accuracy-sensitive work.
	SurfaceArea(dims bottle.Dimensions) float64
	// EstimateDimensions scales base dimensions so that the shape's volume
	// approaches targetVolume, within 0.5 mL over at most 20 iterations.
	EstimateDimensions(targetVolume float64, shape bottle.Shape, base bottle.Dimensions) bottle.Dimensions
}

// shapeVolume is the sealed per-family volume strategy. Adding a shape means
// adding one variant type and one registry entry.
type shapeVolume interface {
	volume(d bottle.Dimensions) float64 // mm³
}

type engine struct {
	shapes map[bottle.Shape]shapeVolume
}

// New creates the production geometry engine with all six shape families
// registered. Wide-mouth shares the packer decomposition.
func New() Engine {
	pack := packer{}
	return &engine{
		shapes: map[bottle.Shape]shapeVolume{
			bottle.ShapeBostonRound:  bostonRound{},
			bottle.ShapeCylinder:     cylinder{},
			bottle.ShapeOval:         oval{},
			bottle.ShapeModernPharma: modernPharma{},
			bottle.ShapePacker:       pack,
			bottle.ShapeWideMouth:    pack,
		},
	}
}

func (e *engine) Volume(shape bottle.Shape, dims bottle.Dimensions) float64 {
	sv, ok := e.shapes[shape]
	if !ok {
		sv = cylinder{}
	}
	ml := sv.volume(dims) / 1000 // mm³ -> mL
	if ml < 0 {
		return 0
	}
	return ml
}

func (e *engine) SurfaceArea(dims bottle.Dimensions) float64 {
	r := dims.BodyDiameter / 2
	h := dims.BodyHeight
	area := 2*math.Pi*r*h + 2*math.Pi*r*r // mm²
	if area < 0 {
		return 0
	}
	return area / 100 // mm² -> cm²
}
