package geometry

import (
	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// Options controls per-vertex shading during projection.
type Options struct {
	Diffuse raster.Color // zero value means white
	Fog     Fog
	Dimming Dimming
	// Unlit skips fog and dimming.
	Unlit bool
}

// clipVertex carries everything interpolated during frustum clipping.
type clipVertex struct {
	pos   math.Vec4
	u, v  float32
	depth float32 // view depth for shading
}

// frustum planes in clip space as distance functions; inside when >= 0.
var frustum = [...]func(p math.Vec4) float32{
	func(p math.Vec4) float32 { return p.Z + p.W }, // near
	func(p math.Vec4) float32 { return p.W - p.Z }, // far
	func(p math.Vec4) float32 { return p.X + p.W }, // left
	func(p math.Vec4) float32 { return p.W - p.X }, // right
	func(p math.Vec4) float32 { return p.Y + p.W }, // bottom
	func(p math.Vec4) float32 { return p.W - p.Y }, // top
}

// Project transforms a world polygon to screen space. The polygon is clipped
// against the view frustum with texture coordinates interpolated in the same
// step as position. It returns nil when nothing is visible.
func Project(cam *camera.Camera, verts []Vertex, opts Options) []raster.Vertex {
	if len(verts) < 3 {
		return nil
	}
	vp := cam.ViewProjection()

	poly := make([]clipVertex, len(verts))
	for i, v := range verts {
		poly[i] = clipVertex{pos: vp.Point(v.Pos), u: v.U, v: v.V, depth: cam.ViewDepth(v.Pos)}
	}

	scratch := make([]clipVertex, 0, len(poly)+len(frustum))
	for _, plane := range frustum {
		scratch = clipAgainst(poly, scratch[:0], plane)
		poly, scratch = scratch, poly
		if len(poly) < 3 {
			return nil
		}
	}

	return toScreen(cam, poly, opts)
}

// clipAgainst runs one Sutherland-Hodgman pass, appending the result to out.
func clipAgainst(in, out []clipVertex, dist func(math.Vec4) float32) []clipVertex {
	for i := range in {
		a := in[i]
		b := in[(i+1)%len(in)]
		da, db := dist(a.pos), dist(b.pos)

		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			out = append(out, lerpClip(a, b, da/(da-db)))
		}
	}
	return out
}

func lerpClip(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		pos:   a.pos.Lerp(b.pos, t),
		u:     a.u + (b.u-a.u)*t,
		v:     a.v + (b.v-a.v)*t,
		depth: a.depth + (b.depth-a.depth)*t,
	}
}

func toScreen(cam *camera.Camera, poly []clipVertex, opts Options) []raster.Vertex {
	diffuse := opts.Diffuse
	if diffuse == (raster.Color{}) {
		diffuse = raster.ColorWhite
	}

	out := make([]raster.Vertex, len(poly))
	for i, cv := range poly {
		w := cv.pos.W
		if w <= 0 {
			w = 1e-6
		}
		sx, sy, sz := viewport(cam, cv.pos.X/w, cv.pos.Y/w, cv.pos.Z/w)

		c := diffuse
		if !opts.Unlit {
			c = Shade(c, cv.depth, opts.Dimming, opts.Fog)
		}
		out[i] = raster.Vertex{X: sx, Y: sy, Z: sz, InvW: 1 / w, U: cv.u, V: cv.v, C: c}
	}
	return out
}

// viewport maps normalized device coordinates to screen pixels and window
// depth in [0, 1]. Screen y grows downward.
func viewport(cam *camera.Camera, x, y, z float32) (float32, float32, float32) {
	r := cam.Viewport
	sx := float32(r.X) + (x+1)*0.5*float32(r.Width())
	sy := float32(r.Y) + (1-y)*0.5*float32(r.Height())
	sz := math.Clamp((z+1)*0.5, 0, 1)
	return sx, sy, sz
}

// ProjectPoint maps a world point to the screen. ok is false when the point
// is behind the near plane.
func ProjectPoint(cam *camera.Camera, p math.Vec3) (x, y, z float32, ok bool) {
	h := cam.ViewProjection().Point(p)
	if h.Z < -h.W || h.W <= 0 {
		return 0, 0, 0, false
	}
	x, y, z = viewport(cam, h.X/h.W, h.Y/h.W, h.Z/h.W)
	return x, y, z, true
}

// ProjectSegment maps a world segment to the screen, clipped to the near
// plane. Colors are passed through.
func ProjectSegment(cam *camera.Camera, a, b math.Vec3, ca, cb raster.Color) (raster.Vertex, raster.Vertex, bool) {
	vp := cam.ViewProjection()
	pa, pb := vp.Point(a), vp.Point(b)
	da, db := pa.Z+pa.W, pb.Z+pb.W
	if da < 0 && db < 0 {
		return raster.Vertex{}, raster.Vertex{}, false
	}
	if da < 0 {
		t := da / (da - db)
		pa = pa.Lerp(pb, t)
		ca = ca.Lerp(cb, t)
	} else if db < 0 {
		t := db / (db - da)
		pb = pb.Lerp(pa, t)
		cb = cb.Lerp(ca, t)
	}

	toVertex := func(h math.Vec4, c raster.Color) raster.Vertex {
		w := max(h.W, 1e-6)
		x, y, z := viewport(cam, h.X/w, h.Y/w, h.Z/w)
		return raster.Vertex{X: x, Y: y, Z: z, InvW: 1 / w, C: c}
	}
	return toVertex(pa, ca), toVertex(pb, cb), true
}
