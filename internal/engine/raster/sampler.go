package raster

import (
	"image"
	gomath "math"
)

// Filter selects texel filtering.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterBilinear
)

// ParseFilter maps a config name to a filter. Unknown names are nearest.
func ParseFilter(name string) Filter {
	if name == "bilinear" || name == "linear" {
		return FilterBilinear
	}
	return FilterNearest
}

// Sampler reads a texture mip chain with wrap or clamp-to-edge addressing.
type Sampler struct {
	Levels []*image.NRGBA // level 0 is full size
	Clamp  bool           // clamp-to-edge instead of wrap/tile
	Filter Filter
}

// NewSampler creates a sampler over levels. It returns nil for an empty chain.
func NewSampler(levels []*image.NRGBA, clamp bool, filter Filter) *Sampler {
	if len(levels) == 0 || levels[0] == nil {
		return nil
	}
	return &Sampler{Levels: levels, Clamp: clamp, Filter: filter}
}

// Size returns the level 0 dimensions.
func (s *Sampler) Size() (w, h int) {
	b := s.Levels[0].Bounds()
	return b.Dx(), b.Dy()
}

// LevelFor picks the mip level for a texel-to-pixel area ratio.
func (s *Sampler) LevelFor(texelsPerPixel float32) int {
	if texelsPerPixel <= 1 || len(s.Levels) == 1 {
		return 0
	}
	level := int(0.5 * gomath.Log2(float64(texelsPerPixel)))
	if level >= len(s.Levels) {
		level = len(s.Levels) - 1
	}
	return level
}

// Sample returns the texel color at (u, v) from the given mip level.
func (s *Sampler) Sample(u, v float32, level int) Color {
	if level < 0 {
		level = 0
	}
	if level >= len(s.Levels) {
		level = len(s.Levels) - 1
	}
	img := s.Levels[level]
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return ColorTransparent
	}

	u = s.address(u)
	v = s.address(v)

	if s.Filter == FilterNearest {
		x := s.texel(int(u*float32(w)), w)
		y := s.texel(int(v*float32(h)), h)
		return texelAt(img, x, y)
	}

	fx := u*float32(w) - 0.5
	fy := v*float32(h) - 0.5
	x0 := int(gomath.Floor(float64(fx)))
	y0 := int(gomath.Floor(float64(fy)))
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	c00 := texelAt(img, s.texel(x0, w), s.texel(y0, h))
	c10 := texelAt(img, s.texel(x0+1, w), s.texel(y0, h))
	c01 := texelAt(img, s.texel(x0, w), s.texel(y0+1, h))
	c11 := texelAt(img, s.texel(x0+1, w), s.texel(y0+1, h))

	top := c00.Lerp(c10, dx)
	bottom := c01.Lerp(c11, dx)
	return top.Lerp(bottom, dy)
}

// address maps a coordinate into [0, 1] by wrapping or clamping.
func (s *Sampler) address(t float32) float32 {
	if s.Clamp {
		if t < 0 {
			return 0
		}
		if t > 1 {
			return 1
		}
		return t
	}
	t -= float32(gomath.Floor(float64(t)))
	return t
}

// texel maps an integer texel index into [0, n).
func (s *Sampler) texel(i, n int) int {
	if s.Clamp {
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

func texelAt(img *image.NRGBA, x, y int) Color {
	i := img.PixOffset(img.Rect.Min.X+x, img.Rect.Min.Y+y)
	return RGBA(img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3])
}
