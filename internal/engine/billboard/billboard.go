// Package billboard builds camera-facing sprite quads and orders them for
// drawing after opaque geometry.
package billboard

import (
	gomath "math"

	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// AngleUnits is the number of legacy angle units in a full turn.
const AngleUnits = 2048

// Radians converts a legacy angle to radians.
func Radians(angle int) float32 {
	return float32(angle) * 2 * gomath.Pi / AngleUnits
}

// Transform describes a sprite in the world.
type Transform struct {
	Position   math.Vec3 // world center of the sprite
	HalfWidth  float32   // world units
	HalfHeight float32
	ID         object.ID
	Dimming    int // legacy dimming level, 0 is full bright
}

// Billboard is a transformed screen-space quad.
type Billboard struct {
	X, Y         float32 // screen center in pixels
	HalfW, HalfH float32 // screen half extents in pixels
	Angle        float32 // rotation in radians, counter-clockwise on screen
	Diffuse      raster.Color
	Depth        float32 // view depth, the sort key
	Z            float32 // window depth for the depth test
	Texture      string
	Blend        raster.BlendMode
	ID           object.ID

	order int
}

// Make projects t into a billboard for cam. ok is false when the sprite is
// behind the near plane or entirely outside the viewport.
func Make(cam *camera.Camera, t Transform, texture string, diffuse raster.Color, angle int) (Billboard, bool) {
	depth := cam.ViewDepth(t.Position)
	if depth < cam.Near {
		return Billboard{}, false
	}
	x, y, z, ok := geometry.ProjectPoint(cam, t.Position)
	if !ok {
		return Billboard{}, false
	}

	scale := cam.Focal() / depth
	b := Billboard{
		X:       x,
		Y:       y,
		Z:       z,
		HalfW:   t.HalfWidth * scale,
		HalfH:   t.HalfHeight * scale,
		Angle:   Radians(angle),
		Diffuse: diffuse,
		Depth:   depth,
		Texture: texture,
		Blend:   raster.BlendAlpha,
		ID:      t.ID,
	}

	// Rotated quads never reach farther than the half diagonal.
	reach := float32(gomath.Hypot(float64(b.HalfW), float64(b.HalfH)))
	vp := cam.Viewport
	if x+reach < float32(vp.X) || x-reach > float32(vp.Z) || y+reach < float32(vp.Y) || y-reach > float32(vp.W) {
		return Billboard{}, false
	}
	return b, true
}

// Corners returns the quad corners in screen space, clockwise from top-left
// before rotation.
func (b Billboard) Corners() [4][2]float32 {
	local := [4][2]float32{
		{-b.HalfW, -b.HalfH},
		{b.HalfW, -b.HalfH},
		{b.HalfW, b.HalfH},
		{-b.HalfW, b.HalfH},
	}
	sin, cos := gomath.Sincos(float64(b.Angle))
	s, c := float32(sin), float32(cos)

	var out [4][2]float32
	for i, p := range local {
		// Screen y points down, so negate the angle to rotate counter-clockwise.
		out[i][0] = b.X + p[0]*c + p[1]*s
		out[i][1] = b.Y - p[0]*s + p[1]*c
	}
	return out
}

// Vertices returns the quad as a textured fan.
func (b Billboard) Vertices() []raster.Vertex {
	uv := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	corners := b.Corners()
	out := make([]raster.Vertex, 4)
	for i, p := range corners {
		out[i] = raster.Vertex{X: p[0], Y: p[1], Z: b.Z, InvW: 1, U: uv[i][0], V: uv[i][1], C: b.Diffuse}
	}
	return out
}
