package raster

import (
	gomath "math"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
)

// Vertex is a screen-space vertex. X and Y are pixels, Z is depth in [0, 1],
// InvW is 1/w for perspective-correct texturing (1 for 2D geometry).
type Vertex struct {
	X, Y, Z float32
	InvW    float32
	U, V    float32
	C       Color
}

// DrawState is the per-draw pipeline state.
type DrawState struct {
	Clip       clip.Rect
	Blend      BlendMode
	DepthTest  bool
	DepthWrite bool
	ZBias      float32  // subtracted from depth before the test; positive pulls toward the viewer
	Sampler    *Sampler // nil draws vertex color only
	AlphaRef   float32  // fragments with alpha <= AlphaRef are discarded

	// Visit is called for every pixel written.
	Visit func(x, y int)
}

// DrawFan rasterizes a convex polygon as a triangle fan and returns the number
// of pixels written.
func (fb *FrameBuffer) DrawFan(verts []Vertex, st *DrawState) int {
	if len(verts) < 3 {
		return 0
	}
	written := 0
	for i := 1; i+1 < len(verts); i++ {
		written += fb.DrawTriangle(verts[0], verts[i], verts[i+1], st)
	}
	return written
}

// DrawTriangle rasterizes one triangle with depth testing, texturing and
// blending. Only pixels inside st.Clip and the buffer are touched.
//
// Coverage follows the top-left rule on 24.8 fixed-point edge functions, so
// triangles sharing an edge never write the same pixel twice and never leave
// a gap between them.
func (fb *FrameBuffer) DrawTriangle(v0, v1, v2 Vertex, st *DrawState) int {
	x0, y0 := fixed(v0.X), fixed(v0.Y)
	x1, y1 := fixed(v1.X), fixed(v1.Y)
	x2, y2 := fixed(v2.X), fixed(v2.Y)

	area := edge(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return 0 // Degenerate triangle
	}
	if area < 0 {
		v1, v2 = v2, v1
		x1, y1, x2, y2 = x2, y2, x1, y1
		area = -area
	}

	bounds := st.Clip.Intersect(fb.Bounds())
	if bounds.Empty() {
		return 0
	}
	minX := max(bounds.X, int(gomath.Floor(float64(min(v0.X, v1.X, v2.X)))))
	maxX := min(bounds.Z-1, int(gomath.Ceil(float64(max(v0.X, v1.X, v2.X)))))
	minY := max(bounds.Y, int(gomath.Floor(float64(min(v0.Y, v1.Y, v2.Y)))))
	maxY := min(bounds.W-1, int(gomath.Ceil(float64(max(v0.Y, v1.Y, v2.Y)))))
	if minX > maxX || minY > maxY {
		return 0
	}

	screenArea := float32(area) / (subOne * subOne)
	level := 0
	if st.Sampler != nil {
		level = st.Sampler.LevelFor(texelRatio(v0, v1, v2, screenArea, st.Sampler))
	}

	// Perspective-correct attributes
	iw0, iw1, iw2 := invW(v0), invW(v1), invW(v2)
	u0, u1, u2 := v0.U*iw0, v1.U*iw1, v2.U*iw2
	t0, t1, t2 := v0.V*iw0, v1.V*iw1, v2.V*iw2

	b0 := tieBias(x1, y1, x2, y2)
	b1 := tieBias(x2, y2, x0, y0)
	b2 := tieBias(x0, y0, x1, y1)

	invArea := 1 / float32(area)
	written := 0

	for y := minY; y <= maxY; y++ {
		py := int64(y)<<subBits + subOne/2
		row := y * fb.Width
		for x := minX; x <= maxX; x++ {
			px := int64(x)<<subBits + subOne/2

			e0 := edge(x1, y1, x2, y2, px, py)
			e1 := edge(x2, y2, x0, y0, px, py)
			e2 := edge(x0, y0, x1, y1, px, py)
			if e0+b0 < 0 || e1+b1 < 0 || e2+b2 < 0 {
				continue
			}
			w0 := float32(e0) * invArea
			w1 := float32(e1) * invArea
			w2 := float32(e2) * invArea

			idx := row + x
			z := w0*v0.Z + w1*v1.Z + w2*v2.Z - st.ZBias
			if z < 0 {
				z = 0
			} else if z > FarDepth {
				z = FarDepth
			}
			if st.DepthTest && z > fb.Depth[idx] {
				continue
			}

			c := Color{
				w0*v0.C.R + w1*v1.C.R + w2*v2.C.R,
				w0*v0.C.G + w1*v1.C.G + w2*v2.C.G,
				w0*v0.C.B + w1*v1.C.B + w2*v2.C.B,
				w0*v0.C.A + w1*v1.C.A + w2*v2.C.A,
			}
			if st.Sampler != nil {
				iw := w0*iw0 + w1*iw1 + w2*iw2
				if iw == 0 {
					continue
				}
				u := (w0*u0 + w1*u1 + w2*u2) / iw
				v := (w0*t0 + w1*t1 + w2*t2) / iw
				c = c.Mul(st.Sampler.Sample(u, v, level))
			}
			if c.A <= st.AlphaRef {
				continue
			}

			fb.blendAt(idx*4, c, st.Blend)
			if st.DepthWrite {
				fb.Depth[idx] = z
			}
			if st.Visit != nil {
				st.Visit(x, y)
			}
			written++
		}
	}
	return written
}

const (
	subBits = 8
	subOne  = 1 << subBits

	// maxCoord bounds vertex positions so edge products stay inside int64.
	maxCoord = 1 << 22
)

// fixed converts a pixel coordinate to 24.8 fixed point.
func fixed(v float32) int64 {
	switch {
	case v != v:
		return 0
	case v > maxCoord:
		v = maxCoord
	case v < -maxCoord:
		v = -maxCoord
	}
	return int64(gomath.Round(float64(v) * subOne))
}

// edge is the signed doubled area of (a, b, c) in fixed point; positive for
// clockwise winding in screen space (y down). Swapping a and b negates it
// exactly.
func edge(ax, ay, bx, by, cx, cy int64) int64 {
	return (cx-ax)*(by-ay) - (cy-ay)*(bx-ax)
}

// tieBias is 0 when pixels exactly on edge a->b belong to the triangle (a
// left edge, or a horizontal top edge) and -1 otherwise. The reversed edge of
// a neighbour always gets the opposite answer.
func tieBias(ax, ay, bx, by int64) int64 {
	dx, dy := bx-ax, by-ay
	if dy > 0 || (dy == 0 && dx < 0) {
		return 0
	}
	return -1
}

func invW(v Vertex) float32 {
	if v.InvW == 0 {
		return 1
	}
	return v.InvW
}

// texelRatio estimates texels covered per screen pixel for mip selection.
func texelRatio(v0, v1, v2 Vertex, screenArea float32, s *Sampler) float32 {
	w, h := s.Size()
	uvArea := (v1.U-v0.U)*(v2.V-v0.V) - (v2.U-v0.U)*(v1.V-v0.V)
	if uvArea < 0 {
		uvArea = -uvArea
	}
	return uvArea * float32(w*h) / screenArea
}
