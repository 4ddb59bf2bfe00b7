package compositor

import (
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

// Lightmap is a translucent lighting quad laid over a face.
type Lightmap struct {
	Vertices []geometry.Vertex
	// Texture is an optional falloff mask; empty draws a flat quad.
	Texture string
}

// LightmapDraw is a queued lightmap with its per-call parameters.
type LightmapDraw struct {
	Lightmap
	ColorMult raster.Color
	ZBias     float32
}

// Decal is a surface-aligned patch such as blood or a scorch mark.
type Decal struct {
	Vertices []geometry.Vertex
	Texture  string
	// Blend is multiply for stains and additive for glows.
	Blend raster.BlendMode
	Color raster.Color
}

// DecalDraw is a queued decal with its per-call bias.
type DecalDraw struct {
	Decal
	ZBias float32
}

// Batch names.
const (
	NameLightmaps  = "lightmaps"
	NameLightmaps2 = "lightmaps2"
	NameDecals     = "decals"
)

// Set is the three compositor brackets of a scene. They share one guard so
// batches of different kinds never interleave.
type Set struct {
	Guard      Exclusive
	Lightmaps  *Batch[LightmapDraw] // multiplicative
	Lightmaps2 *Batch[LightmapDraw] // additive glow
	Decals     *Batch[DecalDraw]
}

// NewSet wires the brackets to their flush functions. The lightmap flush
// receives the blend mode of the bracket it came from.
func NewSet(drawLightmap func(LightmapDraw, raster.BlendMode), drawDecal func(DecalDraw)) *Set {
	s := &Set{}
	s.Lightmaps = NewBatch(NameLightmaps, &s.Guard, func(d LightmapDraw) { drawLightmap(d, raster.BlendMultiply) })
	s.Lightmaps2 = NewBatch(NameLightmaps2, &s.Guard, func(d LightmapDraw) { drawLightmap(d, raster.BlendAdditive) })
	s.Decals = NewBatch(NameDecals, &s.Guard, drawDecal)
	return s
}

// CloseOpen flushes and closes whichever bracket is open. It returns the
// bracket name and the number of items flushed, or "" when none was open.
func (s *Set) CloseOpen() (string, int) {
	name := s.Guard.Open()
	var n int
	switch name {
	case NameLightmaps:
		n, _ = s.Lightmaps.End()
	case NameLightmaps2:
		n, _ = s.Lightmaps2.End()
	case NameDecals:
		n, _ = s.Decals.End()
	}
	return name, n
}
