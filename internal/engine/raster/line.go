package raster

import (
	"github.com/Faultbox/enroth-render/internal/engine/clip"
)

const (
	outLeft = 1 << iota
	outRight
	outTop
	outBottom
)

// DrawLine draws a 2D line from (x0, y0) to (x1, y1) in color c. The
// segment is clipped to r (and the buffer) before stepping. Returns pixels
// written.
func (fb *FrameBuffer) DrawLine(x0, y0, x1, y1 int, c Color, blend BlendMode, r clip.Rect) int {
	r = r.Intersect(fb.Bounds())
	if r.Empty() {
		return 0
	}
	ax, ay, bx, by, ok := clipSegment(float32(x0), float32(y0), float32(x1), float32(y1), r)
	if !ok {
		return 0
	}

	px, py := int(ax+0.5), int(ay+0.5)
	qx, qy := int(bx+0.5), int(by+0.5)

	dx := abs(qx - px)
	dy := -abs(qy - py)
	sx, sy := 1, 1
	if px > qx {
		sx = -1
	}
	if py > qy {
		sy = -1
	}

	written := 0
	err := dx + dy
	for {
		// Rounding at the clip edge can land one pixel outside.
		if r.Contains(px, py) {
			fb.blendAt(fb.PixOffset(px, py), c, blend)
			written++
		}
		if px == qx && py == qy {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			px += sx
		}
		if e2 <= dx {
			err += dx
			py += sy
		}
	}
	return written
}

// DrawLine3D draws a depth-tested line between two screen-space vertices,
// interpolating color and depth.
func (fb *FrameBuffer) DrawLine3D(a, b Vertex, st *DrawState) int {
	r := st.Clip.Intersect(fb.Bounds())
	if r.Empty() {
		return 0
	}
	ax, ay, bx, by, ok := clipSegment(a.X, a.Y, b.X, b.Y, r)
	if !ok {
		return 0
	}

	total := max(abs(int(bx-ax)), abs(int(by-ay)), 1)
	length := b.X - a.X
	if d := b.Y - a.Y; abs32(d) > abs32(length) {
		length = d
	}

	written := 0
	for i := 0; i <= total; i++ {
		t := float32(i) / float32(total)
		x := ax + (bx-ax)*t
		y := ay + (by-ay)*t
		px, py := int(x), int(y)
		if !r.Contains(px, py) {
			continue
		}

		// Parameter along the unclipped segment for attribute interpolation.
		var s float32
		if length != 0 {
			if abs32(b.X-a.X) >= abs32(b.Y-a.Y) {
				s = (x - a.X) / (b.X - a.X)
			} else {
				s = (y - a.Y) / (b.Y - a.Y)
			}
		}

		idx := py*fb.Width + px
		z := a.Z + (b.Z-a.Z)*s - st.ZBias
		if st.DepthTest && z > fb.Depth[idx] {
			continue
		}
		fb.blendAt(idx*4, a.C.Lerp(b.C, s), st.Blend)
		if st.DepthWrite {
			fb.Depth[idx] = max(z, 0)
		}
		written++
	}
	return written
}

// clipSegment clips a segment against r (exclusive right/bottom) with
// Cohen-Sutherland.
func clipSegment(x0, y0, x1, y1 float32, r clip.Rect) (float32, float32, float32, float32, bool) {
	minX, minY := float32(r.X), float32(r.Y)
	maxX, maxY := float32(r.Z-1), float32(r.W-1)

	code := func(x, y float32) int {
		c := 0
		if x < minX {
			c |= outLeft
		} else if x > maxX {
			c |= outRight
		}
		if y < minY {
			c |= outTop
		} else if y > maxY {
			c |= outBottom
		}
		return c
	}

	c0, c1 := code(x0, y0), code(x1, y1)
	for {
		if c0|c1 == 0 {
			return x0, y0, x1, y1, true
		}
		if c0&c1 != 0 {
			return 0, 0, 0, 0, false
		}

		out := c0
		if out == 0 {
			out = c1
		}
		var x, y float32
		switch {
		case out&outBottom != 0:
			x = x0 + (x1-x0)*(maxY-y0)/(y1-y0)
			y = maxY
		case out&outTop != 0:
			x = x0 + (x1-x0)*(minY-y0)/(y1-y0)
			y = minY
		case out&outRight != 0:
			y = y0 + (y1-y0)*(maxX-x0)/(x1-x0)
			x = maxX
		default:
			y = y0 + (y1-y0)*(minX-x0)/(x1-x0)
			x = minX
		}

		if out == c0 {
			x0, y0 = x, y
			c0 = code(x0, y0)
		} else {
			x1, y1 = x, y
			c1 = code(x1, y1)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
