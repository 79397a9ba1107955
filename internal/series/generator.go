// Package series generates ordered bottle series: a volume progression, a
// resolved base template, and a standards-snapped copy of the template
// scaled to each target volume. Scaling here deliberately differs from the
// geometry package's cube-root estimator: it first snaps the body and neck
// to manufacturable standard diameters, then fine-tunes only the height.
package series

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/materialerosion/PACK2/internal/bottle"
	"github.com/materialerosion/PACK2/internal/geometry"
	"github.com/materialerosion/PACK2/internal/standards"
)

// Limits bounds the scaled body proportions during series generation.
type Limits struct {
	// MinHeightRatio and MaxHeightRatio bound body height as a multiple of
	// body diameter.
	MinHeightRatio float64
	MaxHeightRatio float64
	// MinTemplateRatio and MaxTemplateRatio bound body height as a multiple
	// of the template's original body height.
	MinTemplateRatio float64
	MaxTemplateRatio float64
	// FineTuneIterations caps the height refinement loop per bottle.
	FineTuneIterations int
	// FineTuneTolerance is the acceptable volume deviation as a fraction of
	// the target.
	FineTuneTolerance float64
}

// DefaultLimits returns the production scaling limits.
func DefaultLimits() Limits {
	return Limits{
		MinHeightRatio:     1.2,
		MaxHeightRatio:     3.0,
		MinTemplateRatio:   0.3,
		MaxTemplateRatio:   3.0,
		FineTuneIterations: 15,
		FineTuneTolerance:  0.01,
	}
}

// Generator produces bottle series. It holds no per-call state; identity and
// time sources are injected so generation stays deterministic under test.
type Generator struct {
	engine geometry.Engine
	limits Limits
	newID  func() string
	now    func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithIDGenerator overrides the container id source.
func WithIDGenerator(fn func() string) Option {
	return func(g *Generator) {
		g.newID = fn
	}
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(g *Generator) {
		g.now = fn
	}
}

// New constructs a Generator around a geometry engine.
func New(engine geometry.Engine, limits Limits, opts ...Option) *Generator {
	g := &Generator{
		engine: engine,
		limits: limits,
		newID:  uuid.NewString,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces an ordered series: one container per target volume, each
// a scaled copy of the resolved template snapped to the given standards
// tables. The returned series carries the config that produced it; the
// caller owns storage and series identity.
func (g *Generator) Generate(cfg bottle.GenerationConfig, tables standards.Tables, lookup Lookup) (bottle.Series, error) {
	vols, err := g.Volumes(cfg)
	if err != nil {
		return bottle.Series{}, err
	}

	template := g.Template(cfg, lookup)
	bottles := make([]bottle.Container, 0, len(vols))
	for i, target := range vols {
		bottles = append(bottles, g.scaleToVolume(template, target, i, tables))
	}

	return bottle.Series{
		Bottles:   bottles,
		Config:    cfg,
		CreatedAt: g.now(),
	}, nil
}

// scaleToVolume scales a copy of the template to the target volume. A
// degenerate template (volume <= 0) short-circuits and is finalized
// unscaled rather than dividing by zero.
func (g *Generator) scaleToVolume(template bottle.Container, target float64, index int, tables standards.Tables) bottle.Container {
	scaled := template.Clone()
	if template.Volume <= 0 {
		return g.finalize(scaled, target, index)
	}

	dims := &scaled.Dimensions
	origBodyHeight := dims.BodyHeight
	origDiameter := dims.BodyDiameter

	diameter := tables.DiameterFor(target)
	neck := tables.NearestNeck(diameter)
	dims.BodyDiameter = diameter
	dims.BaseDiameter = diameter
	dims.NeckDiameter = neck.NeckDiameter
	dims.NeckFinish = neck.Finish
	if origDiameter > 0 {
		dims.ShoulderRadius *= diameter / origDiameter
	}

	// Invert the cylinder formula for an initial height guess.
	innerR := (diameter - 2*dims.WallThickness) / 2
	dims.BodyHeight = g.clampBodyHeight(target*1000/(math.Pi*innerR*innerR), diameter, origBodyHeight)
	dims.Height = dims.BodyHeight + dims.NeckHeight

	tolerance := g.limits.FineTuneTolerance * target
	_, converged := geometry.Converge(target, tolerance, g.limits.FineTuneIterations,
		func() float64 { return g.engine.Volume(scaled.Shape, scaled.Dimensions) },
		func(current float64) {
			if current <= 0 {
				return
			}
			dims.BodyHeight = g.clampBodyHeight(dims.BodyHeight*target/current, diameter, origBodyHeight)
			dims.Height = dims.BodyHeight + dims.NeckHeight
		},
	)
	_ = converged // non-convergence yields the best approximation reached

	// Tuning can push the ratio back out of range.
	dims.BodyHeight = g.clampBodyHeight(dims.BodyHeight, diameter, origBodyHeight)
	dims.Height = dims.BodyHeight + dims.NeckHeight

	return g.finalize(scaled, target, index)
}

// clampBodyHeight applies both the absolute height:diameter band and the
// band relative to the template's original body height.
func (g *Generator) clampBodyHeight(h, diameter, origBodyHeight float64) float64 {
	h = math.Max(g.limits.MinHeightRatio*diameter, math.Min(g.limits.MaxHeightRatio*diameter, h))
	if origBodyHeight > 0 {
		h = math.Max(g.limits.MinTemplateRatio*origBodyHeight, math.Min(g.limits.MaxTemplateRatio*origBodyHeight, h))
	}
	return h
}

// finalize assigns a fresh id and name, rounds the dimensions, and
// recomputes the derived volume and surface area.
func (g *Generator) finalize(c bottle.Container, target float64, index int) bottle.Container {
	c.ID = g.newID()
	c.Name = fmt.Sprintf("Bottle %d - %.0f mL", index+1, math.Round(target))
	c.CreatedAt = g.now()
	c.Dimensions = geometry.RoundDimensions(c.Dimensions)
	c.Volume = g.engine.Volume(c.Shape, c.Dimensions)
	c.SurfaceArea = g.engine.SurfaceArea(c.Dimensions)
	return c
}
