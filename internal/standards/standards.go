// Package standards holds the manufacturable-dimension lookup tables used by
// series scaling: body diameter brackets keyed by volume, and standard
// neck/cap diameters with their finish codes. Tables are plain data and are
// injected into the generator, so tests can supply synthetic tables and
// deployments can load their own from YAML.
package standards

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyTables is returned when a table has no entries.
	ErrEmptyTables = errors.New("standards tables must contain at least one bracket and one neck entry")
	// ErrUnorderedBrackets is returned when diameter brackets are not strictly ascending by max volume.
	ErrUnorderedBrackets = errors.New("diameter brackets must be strictly ascending by max volume")
	// ErrInvalidEntry is returned when a table entry carries a non-positive dimension or volume.
	ErrInvalidEntry = errors.New("standards entries must have positive volumes and diameters")
)

// DiameterBracket maps target volumes up to MaxVolume (mL) onto a standard
// body diameter (mm).
type DiameterBracket struct {
	MaxVolume float64 `yaml:"max_volume" json:"maxVolume"`
	Diameter  float64 `yaml:"diameter" json:"diameter"`
}

// NeckStandard pairs a body diameter (mm) with the neck diameter and finish
// code typically used at that size.
type NeckStandard struct {
	BodyDiameter float64 `yaml:"body_diameter" json:"bodyDiameter"`
	NeckDiameter float64 `yaml:"neck_diameter" json:"neckDiameter"`
	Finish       string  `yaml:"finish" json:"finish"`
}

// Tables is the injectable standards configuration. Treat values as
// immutable once constructed; replace the whole table set to change them.
type Tables struct {
	Brackets []DiameterBracket `yaml:"diameter_brackets" json:"diameterBrackets"`
	Necks    []NeckStandard    `yaml:"neck_standards" json:"neckStandards"`
}

// Default returns the production tables covering 30 mL through 2 L.
func Default() Tables {
	return Tables{
		Brackets: []DiameterBracket{
			{MaxVolume: 30, Diameter: 32},
			{MaxVolume: 60, Diameter: 38},
			{MaxVolume: 100, Diameter: 44},
			{MaxVolume: 150, Diameter: 49},
			{MaxVolume: 250, Diameter: 56},
			{MaxVolume: 500, Diameter: 69},
			{MaxVolume: 750, Diameter: 79},
			{MaxVolume: 1000, Diameter: 89},
			{MaxVolume: 2000, Diameter: 110},
		},
		Necks: []NeckStandard{
			{BodyDiameter: 32, NeckDiameter: 20, Finish: "20-400"},
			{BodyDiameter: 38, NeckDiameter: 24, Finish: "24-400"},
			{BodyDiameter: 44, NeckDiameter: 28, Finish: "28-400"},
			{BodyDiameter: 49, NeckDiameter: 28, Finish: "28-410"},
			{BodyDiameter: 56, NeckDiameter: 33, Finish: "33-400"},
			{BodyDiameter: 69, NeckDiameter: 38, Finish: "38-400"},
			{BodyDiameter: 79, NeckDiameter: 45, Finish: "45-400"},
			{BodyDiameter: 89, NeckDiameter: 53, Finish: "53-400"},
			{BodyDiameter: 110, NeckDiameter: 70, Finish: "70-400"},
		},
	}
}

// Load reads tables from a YAML file and validates them.
func Load(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read standards file: %w", err)
	}
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, fmt.Errorf("parse standards YAML: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// Validate checks that both tables are non-empty, all values are positive,
// and the diameter brackets ascend strictly by max volume.
func (t Tables) Validate() error {
	if len(t.Brackets) == 0 || len(t.Necks) == 0 {
		return ErrEmptyTables
	}
	prev := 0.0
	for _, b := range t.Brackets {
		if b.MaxVolume <= 0 || b.Diameter <= 0 {
			return ErrInvalidEntry
		}
		if b.MaxVolume <= prev {
			return ErrUnorderedBrackets
		}
		prev = b.MaxVolume
	}
	for _, n := range t.Necks {
		if n.BodyDiameter <= 0 || n.NeckDiameter <= 0 {
			return ErrInvalidEntry
		}
	}
	return nil
}

// DiameterFor returns the standard body diameter for a target volume: the
// first bracket whose MaxVolume covers the target, or the largest bracket's
// diameter beyond the end of the table.
func (t Tables) DiameterFor(volume float64) float64 {
	for _, b := range t.Brackets {
		if b.MaxVolume >= volume {
			return b.Diameter
		}
	}
	return t.Brackets[len(t.Brackets)-1].Diameter
}

// NearestNeck returns the neck standard whose body diameter is closest to
// the given one, by minimal absolute difference. Earlier entries win ties.
func (t Tables) NearestNeck(bodyDiameter float64) NeckStandard {
	best := t.Necks[0]
	bestDiff := math.Abs(best.BodyDiameter - bodyDiameter)
	for _, n := range t.Necks[1:] {
		if diff := math.Abs(n.BodyDiameter - bodyDiameter); diff < bestDiff {
			best = n
			bestDiff = diff
		}
	}
	return best
}

// Clone returns a deep copy so stored tables cannot be mutated by callers.
func (t Tables) Clone() Tables {
	out := Tables{
		Brackets: make([]DiameterBracket, len(t.Brackets)),
		Necks:    make([]NeckStandard, len(t.Necks)),
	}
	copy(out.Brackets, t.Brackets)
	copy(out.Necks, t.Necks)
	return out
}
