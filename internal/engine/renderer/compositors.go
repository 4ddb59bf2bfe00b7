package renderer

import (
	"github.com/Faultbox/enroth-render/internal/engine/compositor"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

// BeginLightmaps opens the multiplicative lightmap bracket.
func (r *Renderer) BeginLightmaps() error {
	return r.begin("BeginLightmaps", r.comp.Lightmaps, StageLightmaps)
}

// EndLightmaps flushes the multiplicative lightmap bracket.
func (r *Renderer) EndLightmaps() error {
	return r.end("EndLightmaps", r.comp.Lightmaps)
}

// BeginLightmaps2 opens the additive lightmap bracket.
func (r *Renderer) BeginLightmaps2() error {
	return r.begin("BeginLightmaps2", r.comp.Lightmaps2, StageLightmaps)
}

// EndLightmaps2 flushes the additive lightmap bracket.
func (r *Renderer) EndLightmaps2() error {
	return r.end("EndLightmaps2", r.comp.Lightmaps2)
}

// BeginDecals opens the decal bracket.
func (r *Renderer) BeginDecals() error {
	return r.begin("BeginDecals", r.comp.Decals, StageDecals)
}

// EndDecals flushes the decal bracket.
func (r *Renderer) EndDecals() error {
	return r.end("EndDecals", r.comp.Decals)
}

// DrawLightmap queues l in whichever lightmap bracket is open.
func (r *Renderer) DrawLightmap(l compositor.Lightmap, colorMult raster.Color, zBias float32) error {
	const op = "DrawLightmap"
	if err := r.requireScene(op); err != nil {
		return err
	}
	d := compositor.LightmapDraw{Lightmap: l, ColorMult: colorMult, ZBias: zBias}
	switch r.comp.Guard.Open() {
	case compositor.NameLightmaps:
		return r.misuse(op, r.comp.Lightmaps.Add(d))
	case compositor.NameLightmaps2:
		return r.misuse(op, r.comp.Lightmaps2.Add(d))
	default:
		return r.invalid(op, "no lightmap bracket open")
	}
}

// DrawDecal queues d in the decal bracket.
func (r *Renderer) DrawDecal(d compositor.Decal, zBias float32) error {
	const op = "DrawDecal"
	if err := r.requireScene(op); err != nil {
		return err
	}
	return r.misuse(op, r.comp.Decals.Add(compositor.DecalDraw{Decal: d, ZBias: zBias}))
}

type bracket interface {
	Begin() error
	End() (int, error)
}

func (r *Renderer) begin(op string, b bracket, s Stage) error {
	if err := r.requireScene(op); err != nil {
		return err
	}
	if err := b.Begin(); err != nil {
		return r.misuse(op, err)
	}
	r.ctx.advance(s)
	return nil
}

func (r *Renderer) end(op string, b bracket) error {
	if err := r.requireScene(op); err != nil {
		return err
	}
	_, err := b.End()
	return r.misuse(op, err)
}

// flushLightmap draws one queued lightmap with the blend of its bracket.
func (r *Renderer) flushLightmap(d compositor.LightmapDraw, blend raster.BlendMode) {
	color := d.ColorMult
	if !r.coloredLights {
		l := color.Luminance()
		color = raster.Color{R: l, G: l, B: l, A: color.A}
	}
	if r.drawOverlay("DrawLightmap", d.Vertices, d.Texture, color, blend, d.ZBias) {
		r.stats.Lightmaps++
	}
}

// flushDecal draws one queued decal.
func (r *Renderer) flushDecal(d compositor.DecalDraw) {
	if r.drawOverlay("DrawDecal", d.Vertices, d.Texture, d.Color, d.Blend, d.ZBias) {
		r.stats.Decals++
	}
}

// drawOverlay projects a surface patch with the active camera and blends it
// over existing geometry without writing depth.
func (r *Renderer) drawOverlay(op string, verts []geometry.Vertex, texture string, color raster.Color, blend raster.BlendMode, zBias float32) bool {
	tex, ok := r.texture(op, texture)
	if !ok {
		return false
	}
	if color == (raster.Color{}) {
		color = raster.ColorWhite
	}
	sv := geometry.Project(r.ctx.Camera(), verts, geometry.Options{Diffuse: color, Unlit: true})
	if sv == nil || !r.drawable() {
		r.stats.Culled++
		return false
	}
	c := r.call(blend, tex, true)
	c.ZBias = zBias
	n := r.dev.DrawFan(sv, &c)
	r.stats.Pixels += n
	return n > 0
}
