// Package raster is the software rasterizer behind the renderer: a color and
// depth framebuffer, texture sampling, blending, and clipped triangle, line,
// rectangle and image primitives.
package raster

import "github.com/Faultbox/enroth-render/pkg/math"

// Color represents an RGBA color with float components (0.0 to 1.0).
type Color struct {
	R, G, B, A float32
}

// Predefined colors.
var (
	ColorTransparent = Color{0, 0, 0, 0}
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorRed         = Color{1, 0, 0, 1}
	ColorGreen       = Color{0, 1, 0, 1}
	ColorBlue        = Color{0, 0, 1, 1}
	ColorGray        = Color{0.5, 0.5, 0.5, 1}
)

// RGBA creates a color from 8-bit RGBA values (0-255).
func RGBA(r, g, b, a uint8) Color {
	return Color{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// RGB creates a color from 8-bit RGB values with full alpha.
func RGB(r, g, b uint8) Color {
	return RGBA(r, g, b, 255)
}

// FromRGB565 expands a legacy 16-bit R5G6B5 color.
func FromRGB565(v uint16) Color {
	r := uint8((v >> 11) & 0x1F)
	g := uint8((v >> 5) & 0x3F)
	b := uint8(v & 0x1F)
	return RGB(r<<3|r>>2, g<<2|g>>4, b<<3|b>>2)
}

// RGB565 packs c into the legacy 16-bit R5G6B5 format. Alpha is dropped.
func (c Color) RGB565() uint16 {
	r, g, b, _ := c.Bytes()
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// FromPacked expands a legacy A8R8G8B8 diffuse value.
func FromPacked(v uint32) Color {
	return RGBA(uint8(v>>16), uint8(v>>8), uint8(v), uint8(v>>24))
}

// Packed returns c as A8R8G8B8.
func (c Color) Packed() uint32 {
	r, g, b, a := c.Bytes()
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Bytes returns the clamped 8-bit components.
func (c Color) Bytes() (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

// Mul multiplies two colors component-wise.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

// Scale multiplies the RGB components by f, leaving alpha.
func (c Color) Scale(f float32) Color {
	return Color{c.R * f, c.G * f, c.B * f, c.A}
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}

// Lerp blends from c to o by t.
func (c Color) Lerp(o Color, t float32) Color {
	return Color{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
		c.A + (o.A-c.A)*t,
	}
}

// Luminance returns the Rec.601 luma of c.
func (c Color) Luminance() float32 {
	return c.R*0.299 + c.G*0.587 + c.B*0.114
}

// Clamp limits every component to [0, 1].
func (c Color) Clamp() Color {
	return Color{
		math.Clamp(c.R, 0, 1),
		math.Clamp(c.G, 0, 1),
		math.Clamp(c.B, 0, 1),
		math.Clamp(c.A, 0, 1),
	}
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
