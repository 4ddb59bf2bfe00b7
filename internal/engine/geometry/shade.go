package geometry

import (
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// MaxDimLevel is the darkest legacy dimming level.
const MaxDimLevel = 31

// Fog blends toward Color between Start and End view depth.
type Fog struct {
	Enabled bool
	Start   float32
	End     float32
	Color   raster.Color
}

// Factor returns the fog amount in [0, 1] at depth.
func (f Fog) Factor(depth float32) float32 {
	if !f.Enabled || depth <= f.Start {
		return 0
	}
	if f.End <= f.Start || depth >= f.End {
		return 1
	}
	return (depth - f.Start) / (f.End - f.Start)
}

// Apply fogs c at depth. Alpha is kept.
func (f Fog) Apply(c raster.Color, depth float32) raster.Color {
	t := f.Factor(depth)
	if t == 0 {
		return c
	}
	return c.Lerp(f.Color, t).WithAlpha(c.A)
}

// Dimming darkens geometry with distance in legacy 0..31 steps.
type Dimming struct {
	// Distance is the view depth over which the full range is covered.
	// Zero disables distance dimming.
	Distance float32
	// MaxLevel caps the level reached by distance.
	MaxLevel int
}

// Level returns the dimming level at depth, never decreasing with depth.
func (d Dimming) Level(depth float32) int {
	if d.Distance <= 0 || depth <= 0 {
		return 0
	}
	level := int(depth / d.Distance * MaxDimLevel)
	maxLevel := d.MaxLevel
	if maxLevel <= 0 || maxLevel > MaxDimLevel {
		maxLevel = MaxDimLevel
	}
	return min(level, maxLevel)
}

// DimScale converts a dimming level to an intensity multiplier.
func DimScale(level int) float32 {
	return math.Clamp(float32(MaxDimLevel-level)/MaxDimLevel, 0, 1)
}

// Shade applies distance dimming then fog to c at view depth.
func Shade(c raster.Color, depth float32, dim Dimming, fog Fog) raster.Color {
	c = c.Scale(DimScale(dim.Level(depth)))
	return fog.Apply(c, depth)
}
