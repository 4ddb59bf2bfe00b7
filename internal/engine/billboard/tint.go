package billboard

import (
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// TintParams are the inputs of ActorTint.
type TintParams struct {
	// MaxDimming and MinDimming bound the legacy 0..31 dimming level.
	MaxDimming int
	MinDimming int
	// Distance from the camera; DimDistance is where MaxDimming is reached.
	// Zero DimDistance applies MaxDimming regardless of distance.
	Distance    float32
	DimDistance float32
	// NoLight draws the actor at full brightness.
	NoLight bool
	Indoor  bool
	// Tinting enables the outdoor ambient tint.
	Tinting bool
	Ambient raster.Color
}

// ActorTint returns the diffuse multiplier for an actor sprite. It depends
// only on p.
func ActorTint(p TintParams) raster.Color {
	if p.NoLight {
		return raster.ColorWhite
	}

	lo := clampLevel(p.MinDimming)
	hi := max(clampLevel(p.MaxDimming), lo)
	level := hi
	if p.DimDistance > 0 {
		t := math.Clamp(p.Distance/p.DimDistance, 0, 1)
		level = lo + int(float32(hi-lo)*t)
	}

	c := raster.ColorWhite.Scale(geometry.DimScale(level))
	if p.Tinting && !p.Indoor && p.Ambient != (raster.Color{}) {
		c = c.Mul(p.Ambient.WithAlpha(1))
	}
	return c.WithAlpha(1)
}

func clampLevel(l int) int {
	return min(max(l, 0), geometry.MaxDimLevel)
}
