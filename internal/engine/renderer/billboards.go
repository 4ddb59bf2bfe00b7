package renderer

import (
	"github.com/Faultbox/enroth-render/internal/engine/billboard"
	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

// Decoration is an outdoor decoration sprite such as a tree or a fountain.
type Decoration struct {
	billboard.Transform
	Sprite  string
	Diffuse raster.Color // zero value draws untinted
}

// ScreenEffect is a full-viewport color pass applied when the scene ends.
type ScreenEffect struct {
	Color raster.Color
	Blend raster.BlendMode
}

// MakeParticleBillboardAndPushIndoor queues an additive particle seen
// through the indoor camera.
func (r *Renderer) MakeParticleBillboardAndPushIndoor(t billboard.Transform, texture string, diffuse raster.Color, angle int) error {
	return r.push("MakeParticleBillboardAndPushIndoor", camera.Indoor, t, texture, diffuse, angle, raster.BlendAdditive)
}

// MakeParticleBillboardAndPushOutdoor queues an additive particle seen
// through the outdoor camera.
func (r *Renderer) MakeParticleBillboardAndPushOutdoor(t billboard.Transform, texture string, diffuse raster.Color, angle int) error {
	return r.push("MakeParticleBillboardAndPushOutdoor", camera.Outdoor, t, texture, diffuse, angle, raster.BlendAdditive)
}

// DrawBillboardIndoor queues an indoor sprite dimmed by t.Dimming.
func (r *Renderer) DrawBillboardIndoor(t billboard.Transform, sprite string) error {
	diffuse := raster.ColorWhite.Scale(geometry.DimScale(t.Dimming))
	return r.push("DrawBillboardIndoor", camera.Indoor, t, sprite, diffuse, 0, raster.BlendAlpha)
}

// PushDecorations queues outdoor decorations.
func (r *Renderer) PushDecorations(list []Decoration) error {
	const op = "PushDecorations"
	if err := r.requireScene(op); err != nil {
		return err
	}
	for _, d := range list {
		diffuse := d.Diffuse
		if diffuse == (raster.Color{}) {
			diffuse = raster.ColorWhite
		}
		diffuse = diffuse.Scale(geometry.DimScale(d.Dimming))
		if err := r.push(op, camera.Outdoor, d.Transform, d.Sprite, diffuse, 0, raster.BlendAlpha); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) push(op string, mode camera.Mode, t billboard.Transform, texture string, diffuse raster.Color, angle int, blend raster.BlendMode) error {
	if err := r.requireScene(op); err != nil {
		return err
	}
	if diffuse == (raster.Color{}) {
		diffuse = raster.ColorWhite
	}
	b, ok := billboard.Make(r.ctx.Cameras[mode], t, texture, diffuse, angle)
	if !ok {
		r.stats.Culled++
		return nil
	}
	b.Blend = blend
	r.billboards.Push(b)
	return nil
}

// TransformBillboards orders the queued billboards back to front.
func (r *Renderer) TransformBillboards() error {
	if err := r.requireScene("TransformBillboards"); err != nil {
		return err
	}
	r.billboards.Sort()
	return nil
}

// DrawBillboardList draws and drains the billboard queue.
func (r *Renderer) DrawBillboardList() error {
	if err := r.requireScene("DrawBillboardList"); err != nil {
		return err
	}
	r.flushBillboards()
	return nil
}

// QueueScreenEffect adds a pass applied at the end of the scene.
func (r *Renderer) QueueScreenEffect(e ScreenEffect) error {
	if err := r.requireScene("QueueScreenEffect"); err != nil {
		return err
	}
	r.effects = append(r.effects, e)
	return nil
}

// DrawBillboardsAndEndScene draws the billboard queue, applies queued
// screen effects and closes the scene. The queue is empty afterwards.
func (r *Renderer) DrawBillboardsAndEndScene() error {
	if err := r.requireScene("DrawBillboardsAndEndScene"); err != nil {
		return err
	}
	r.flushBillboards()
	return r.EndScene()
}

// ActorTintColor returns the sprite tint for an actor. The renderer's
// tinting switch gates p.Tinting.
func (r *Renderer) ActorTintColor(p billboard.TintParams) raster.Color {
	p.Tinting = p.Tinting && r.tinting
	return billboard.ActorTint(p)
}

// ToggleTint flips outdoor actor tinting and returns the new setting.
func (r *Renderer) ToggleTint() bool {
	r.tinting = !r.tinting
	return r.tinting
}

// ToggleColoredLights flips colored lightmaps and returns the new setting.
// With colored lights off, lightmap colors are reduced to their luminance.
func (r *Renderer) ToggleColoredLights() bool {
	r.coloredLights = !r.coloredLights
	return r.coloredLights
}

func (r *Renderer) flushBillboards() {
	items := r.billboards.Drain()
	if len(items) == 0 {
		return
	}
	r.ctx.advance(StageBillboards)
	if !r.drawable() {
		return
	}
	for _, b := range items {
		tex, ok := r.texture("DrawBillboardList", b.Texture)
		if !ok {
			continue
		}
		c := r.call(b.Blend, tex, true)
		if n := r.dev.DrawFan(b.Vertices(), &c); n > 0 {
			r.stats.Billboards++
			r.stats.Pixels += n
			r.drawn = append(r.drawn, b)
		}
	}
}

func (r *Renderer) applyEffects() {
	if !r.drawable() {
		r.effects = r.effects[:0]
		return
	}
	vp := r.ctx.Clip.Raster()
	for _, e := range r.effects {
		r.dev.FillRect(vp, e.Color, e.Blend, vp)
	}
	r.effects = r.effects[:0]
}
