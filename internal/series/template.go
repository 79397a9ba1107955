package series

import (
	"fmt"

	"github.com/materialerosion/PACK2/internal/bottle"
)

// Lookup resolves a container id to a stored container, typically backed by
// the caller's storage layer.
type Lookup func(id string) (bottle.Container, bool)

// Template resolves the base container a series is scaled from: an existing
// container by id if the lookup finds one, otherwise the default for the
// shape family named by the id, otherwise the Boston round default.
func (g *Generator) Template(cfg bottle.GenerationConfig, lookup Lookup) bottle.Container {
	if cfg.BaseTemplateID != "" && lookup != nil {
		if c, ok := lookup(cfg.BaseTemplateID); ok {
			return c.Clone()
		}
	}
	if shape, ok := bottle.ParseShape(cfg.BaseTemplateID); ok {
		return g.defaultTemplate(shape)
	}
	return g.defaultTemplate(bottle.ShapeBostonRound)
}

// defaultTemplate builds an unstored ~100 mL container for a shape family.
// Boston rounds get their customary short neck, pronounced shoulder curve,
// and a neck 8 mm narrower than the body.
func (g *Generator) defaultTemplate(shape bottle.Shape) bottle.Container {
	dims := bottle.Dimensions{
		Height:         105,
		BodyHeight:     90,
		BodyDiameter:   45,
		NeckHeight:     15,
		NeckDiameter:   24,
		NeckFinish:     "24-400",
		ShoulderRadius: 8,
		ShoulderAngle:  60,
		BaseProfile:    bottle.BaseFlat,
		BaseDiameter:   45,
		WallThickness:  1.2,
	}

	switch shape {
	case bottle.ShapeBostonRound:
		dims.NeckHeight = 10
		dims.ShoulderRadius = 12
		dims.NeckDiameter = dims.BodyDiameter - 8
	case bottle.ShapeOval:
		dims.WidthRatio = 0.6
	case bottle.ShapeModernPharma:
		dims.WidthRatio = 0.5
		dims.ShoulderRadius = 6
	case bottle.ShapeWideMouth:
		dims.NeckDiameter = 38
		dims.NeckFinish = "38-400"
		dims.NeckHeight = 12
	}
	dims.Height = dims.BodyHeight + dims.NeckHeight

	c := bottle.Container{
		Name:       fmt.Sprintf("Default %s", shape),
		Shape:      shape,
		Dimensions: dims,
	}
	c.Volume = g.engine.Volume(c.Shape, c.Dimensions)
	c.SurfaceArea = g.engine.SurfaceArea(c.Dimensions)
	return c
}
