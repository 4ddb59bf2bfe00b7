package raster

import (
	"image"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
)

// FarDepth is the value the depth buffer is cleared to.
const FarDepth float32 = 1

// FrameBuffer holds the rendering target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Pix    []uint8   // RGBA interleaved, len = W*H*4
	Depth  []float32 // depth per pixel in [0, 1], len = W*H
}

// NewFrameBuffer allocates a transparent color buffer and a far depth buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*4),
		Depth:  make([]float32, w*h),
	}
	fb.ClearDepth()
	return fb
}

// Stride returns the byte length of one row.
func (fb *FrameBuffer) Stride() int {
	return fb.Width * 4
}

// Bounds returns the full-surface clip rectangle.
func (fb *FrameBuffer) Bounds() clip.Rect {
	return clip.FromSize(fb.Width, fb.Height)
}

// PixOffset returns the index of pixel (x, y) in Pix.
func (fb *FrameBuffer) PixOffset(x, y int) int {
	return (y*fb.Width + x) * 4
}

// Clear fills the color buffer with c.
func (fb *FrameBuffer) Clear(c Color) {
	r, g, b, a := c.Bytes()
	for i := 0; i < len(fb.Pix); i += 4 {
		fb.Pix[i] = r
		fb.Pix[i+1] = g
		fb.Pix[i+2] = b
		fb.Pix[i+3] = a
	}
}

// ClearDepth resets every depth sample to FarDepth.
func (fb *FrameBuffer) ClearDepth() {
	for i := range fb.Depth {
		fb.Depth[i] = FarDepth
	}
}

// At returns the color of pixel (x, y), or transparent outside the buffer.
func (fb *FrameBuffer) At(x, y int) Color {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return ColorTransparent
	}
	i := fb.PixOffset(x, y)
	return RGBA(fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3])
}

// Set writes c to pixel (x, y) without blending. Out of range writes are ignored.
func (fb *FrameBuffer) Set(x, y int, c Color) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	fb.store(fb.PixOffset(x, y), c)
}

// ReadPixel16 returns pixel (x, y) in R5G6B5.
func (fb *FrameBuffer) ReadPixel16(x, y int) uint16 {
	return fb.At(x, y).RGB565()
}

// WritePixel16 writes an R5G6B5 color to pixel (x, y) at full alpha.
func (fb *FrameBuffer) WritePixel16(x, y int, v uint16) {
	fb.Set(x, y, FromRGB565(v))
}

// CopyFrom copies the color buffer of src. Sizes must match.
func (fb *FrameBuffer) CopyFrom(src *FrameBuffer) {
	copy(fb.Pix, src.Pix)
}

// CopyRect copies the pixels of r from src into the same location in fb.
func (fb *FrameBuffer) CopyRect(src *FrameBuffer, r clip.Rect) {
	r = r.Intersect(fb.Bounds()).Intersect(src.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Y; y < r.W; y++ {
		s := src.PixOffset(r.X, y)
		d := fb.PixOffset(r.X, y)
		n := r.Width() * 4
		copy(fb.Pix[d:d+n], src.Pix[s:s+n])
	}
}

// Image returns an *image.RGBA sharing the color buffer.
func (fb *FrameBuffer) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    fb.Pix,
		Stride: fb.Stride(),
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

func (fb *FrameBuffer) store(i int, c Color) {
	r, g, b, a := c.Bytes()
	fb.Pix[i] = r
	fb.Pix[i+1] = g
	fb.Pix[i+2] = b
	fb.Pix[i+3] = a
}

func (fb *FrameBuffer) load(i int) Color {
	return RGBA(fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2], fb.Pix[i+3])
}
