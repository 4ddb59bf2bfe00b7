package raster

import (
	"image"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
)

// FillRect fills r with c, clipped to cr and the buffer.
func (fb *FrameBuffer) FillRect(r clip.Rect, c Color, blend BlendMode, cr clip.Rect) int {
	r = r.Normalize().Intersect(cr).Intersect(fb.Bounds())
	if r.Empty() {
		return 0
	}
	for y := r.Y; y < r.W; y++ {
		for x := r.X; x < r.Z; x++ {
			fb.blendAt(fb.PixOffset(x, y), c, blend)
		}
	}
	return r.Width() * r.Height()
}

// BlitOp configures a 2D image blit.
type BlitOp struct {
	Clip     clip.Rect
	Blend    BlendMode
	Tint     Color   // multiplied into every texel; zero value means white
	Gray     bool    // replace texel color with its luminance before tinting
	AlphaRef float32 // texels with alpha <= AlphaRef are skipped

	// ColorKey skips texels whose RGB matches exactly, ignoring alpha.
	ColorKey    Color
	UseColorKey bool

	// Visit is called for every pixel written.
	Visit func(x, y int)
}

// Blit draws the sr region of src with its top-left at (dx, dy).
func (fb *FrameBuffer) Blit(src *image.NRGBA, sr image.Rectangle, dx, dy int, op *BlitOp) int {
	if src == nil {
		return 0
	}
	sr = sr.Intersect(src.Rect)
	if sr.Empty() {
		return 0
	}

	dst := clip.Rect{X: dx, Y: dy, Z: dx + sr.Dx(), W: dy + sr.Dy()}
	vis := dst.Intersect(op.Clip).Intersect(fb.Bounds())
	if vis.Empty() {
		return 0
	}

	tint := op.Tint
	if tint == (Color{}) {
		tint = ColorWhite
	}

	written := 0
	for y := vis.Y; y < vis.W; y++ {
		sy := sr.Min.Y + (y - dy)
		for x := vis.X; x < vis.Z; x++ {
			sx := sr.Min.X + (x - dx)
			i := src.PixOffset(sx, sy)
			c := RGBA(src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3])
			if op.UseColorKey && c.R == op.ColorKey.R && c.G == op.ColorKey.G && c.B == op.ColorKey.B {
				continue
			}
			if c.A <= op.AlphaRef {
				continue
			}
			if op.Gray {
				l := c.Luminance()
				c = Color{l, l, l, c.A}
			}
			c = c.Mul(tint)
			fb.blendAt(fb.PixOffset(x, y), c, op.Blend)
			if op.Visit != nil {
				op.Visit(x, y)
			}
			written++
		}
	}
	return written
}

// BlendPixel blends c into pixel (x, y) if it lies inside cr and the buffer.
func (fb *FrameBuffer) BlendPixel(x, y int, c Color, blend BlendMode, cr clip.Rect) bool {
	if !cr.Contains(x, y) || !fb.Bounds().Contains(x, y) {
		return false
	}
	fb.blendAt(fb.PixOffset(x, y), c, blend)
	return true
}
