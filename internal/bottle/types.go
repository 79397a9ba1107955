// Package bottle defines the domain value types shared by the geometry,
// series, fill-range, and coverage packages. All types are plain value
// objects: "update" means replacing a value with a newly computed one.
package bottle

import "time"

// Shape identifies one of the supported bottle shape families.
type Shape string

const (
	ShapeBostonRound  Shape = "boston-round"
	ShapeCylinder     Shape = "cylinder"
	ShapeOval         Shape = "oval"
	ShapeModernPharma Shape = "modern-pharma"
	ShapePacker       Shape = "packer"
	ShapeWideMouth    Shape = "wide-mouth"
)

// Shapes lists every supported shape family.
func Shapes() []Shape {
	return []Shape{
		ShapeBostonRound,
		ShapeCylinder,
		ShapeOval,
		ShapeModernPharma,
		ShapePacker,
		ShapeWideMouth,
	}
}

// ParseShape reports whether s names a known shape family.
func ParseShape(s string) (Shape, bool) {
	for _, shape := range Shapes() {
		if string(shape) == s {
			return shape, true
		}
	}
	return "", false
}

// BaseProfile tags the bottom geometry of a bottle.
type BaseProfile string

const (
	BaseFlat     BaseProfile = "flat"
	BaseConcave  BaseProfile = "concave"
	BaseConvex   BaseProfile = "convex"
	BasePetaloid BaseProfile = "petaloid"
)

// Dimensions is a flat record of geometric parameters. All lengths are in
// millimeters, the shoulder angle in degrees. Lengths are expected to be
// non-negative; bodyHeight >= neckHeight is expected but not enforced here,
// since iterative callers may pass through transient invalid states.
type Dimensions struct {
	Height          float64     `json:"height" yaml:"height"`
	BodyHeight      float64     `json:"bodyHeight" yaml:"body_height"`
	BodyDiameter    float64     `json:"bodyDiameter" yaml:"body_diameter"`
	NeckHeight      float64     `json:"neckHeight" yaml:"neck_height"`
	NeckDiameter    float64     `json:"neckDiameter" yaml:"neck_diameter"`
	NeckFinish      string      `json:"neckFinish" yaml:"neck_finish"`
	ShoulderRadius  float64     `json:"shoulderRadius" yaml:"shoulder_radius"`
	ShoulderAngle   float64     `json:"shoulderAngle" yaml:"shoulder_angle"`
	BaseProfile     BaseProfile `json:"baseProfile" yaml:"base_profile"`
	BaseDiameter    float64     `json:"baseDiameter" yaml:"base_diameter"`
	BaseIndentDepth float64     `json:"baseIndentDepth" yaml:"base_indent_depth"`
	WallThickness   float64     `json:"wallThickness" yaml:"wall_thickness"`
	// WidthRatio is the depth:width ratio of non-circular cross-sections.
	// Zero means "unset" and is treated as 1 (circular/square).
	WidthRatio float64 `json:"widthRatio,omitempty" yaml:"width_ratio,omitempty"`
}

// Container is a bottle entity. Volume and SurfaceArea are derived fields:
// they must always equal the geometry engine's output for Shape and
// Dimensions, and any mutation of either obligates the caller to recompute
// them. Attributes carries non-geometric data (material, cap style, colors,
// label zones) that this core passes through untouched.
type Container struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Shape       Shape          `json:"shape"`
	Dimensions  Dimensions     `json:"dimensions"`
	Volume      float64        `json:"volume"`      // mL, derived
	SurfaceArea float64        `json:"surfaceArea"` // cm², derived
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// Clone returns a deep copy of the container.
func (c Container) Clone() Container {
	out := c
	if c.Attributes != nil {
		out.Attributes = make(map[string]any, len(c.Attributes))
		for k, v := range c.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// Algorithm selects the volume progression used when generating a series.
type Algorithm string

const (
	AlgorithmLinear      Algorithm = "linear"
	AlgorithmGoldenRatio Algorithm = "golden-ratio"
	AlgorithmLogarithmic Algorithm = "logarithmic"
)

// GenerationConfig describes a requested bottle series.
type GenerationConfig struct {
	Algorithm      Algorithm `json:"algorithm"`
	MinVolume      float64   `json:"minVolume"` // mL
	MaxVolume      float64   `json:"maxVolume"` // mL
	BottleCount    int       `json:"bottleCount"`
	BaseTemplateID string    `json:"baseTemplateId,omitempty"`
	MinFillPercent float64   `json:"minFillPercent"`
	MaxFillPercent float64   `json:"maxFillPercent"`
}

// Series is an ordered sequence of containers plus the configuration that
// produced them. For monotonic progressions the bottle volumes are
// non-decreasing in list order.
type Series struct {
	ID        string           `json:"id,omitempty"`
	Name      string           `json:"name,omitempty"`
	Bottles   []Container      `json:"bottles"`
	Config    GenerationConfig `json:"config"`
	CreatedAt time.Time        `json:"createdAt,omitempty"`
}

// FillRange is the usable fill interval derived from one container's volume.
// Invariant: MinFill <= TargetFill <= MaxFill <= BottleVolume whenever the
// percentages are within [0, 100].
type FillRange struct {
	BottleID     string  `json:"bottleId,omitempty"`
	BottleVolume float64 `json:"bottleVolume"` // mL
	MinFill      float64 `json:"minFill"`      // mL
	TargetFill   float64 `json:"targetFill"`   // mL
	MaxFill      float64 `json:"maxFill"`      // mL
	MinPercent   float64 `json:"minPercent"`
	MaxPercent   float64 `json:"maxPercent"`
}

// GapSeverity classifies a coverage gap by its size.
type GapSeverity string

const (
	SeverityMinor    GapSeverity = "minor"
	SeverityModerate GapSeverity = "moderate"
	SeverityMajor    GapSeverity = "major"
)

// CoverageGap is a volume interval [Start, End) that no fill range covers.
type CoverageGap struct {
	Start    float64     `json:"start"` // mL
	End      float64     `json:"end"`   // mL
	Size     float64     `json:"size"`  // mL
	Severity GapSeverity `json:"severity"`
}

// CoverageOverlap is a volume interval covered by more than one fill range.
type CoverageOverlap struct {
	Start float64 `json:"start"` // mL
	End   float64 `json:"end"`   // mL
	Size  float64 `json:"size"`  // mL
}

// IntraSeriesAnalysis reports gaps, overlaps, and derived coverage metrics
// for a single series.
type IntraSeriesAnalysis struct {
	Gaps               []CoverageGap     `json:"gaps"`
	Overlaps           []CoverageOverlap `json:"overlaps"`
	CoverageSpan       float64           `json:"coverageSpan"`       // mL
	CoveredRange       float64           `json:"coveredRange"`       // mL (union)
	CoverageEfficiency float64           `json:"coverageEfficiency"` // %
	SpaceUtilization   float64           `json:"spaceUtilization"`   // %
}

// SeriesComparison is the immutable snapshot produced by comparing two
// series: both internal analyses, the combined inter-series gaps and
// overlaps, three coverage percentages, and advisory recommendations.
type SeriesComparison struct {
	Series1          IntraSeriesAnalysis `json:"series1"`
	Series2          IntraSeriesAnalysis `json:"series2"`
	CombinedGaps     []CoverageGap       `json:"combinedGaps"`
	CombinedOverlaps []CoverageOverlap   `json:"combinedOverlaps"`
	Series1Coverage  float64             `json:"series1Coverage"`  // %
	Series2Coverage  float64             `json:"series2Coverage"`  // %
	CombinedCoverage float64             `json:"combinedCoverage"` // %
	Recommendations  []string            `json:"recommendations"`
}
