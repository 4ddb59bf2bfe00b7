// Package surface owns texture objects and the presentable framebuffer pair,
// and hands out scoped CPU locks on their pixel memory.
package surface

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/Faultbox/enroth-render/internal/engine/errs"
)

// Format is the pixel layout produced by the asset loader.
type Format uint8

const (
	FormatRGBA8    Format = iota // 4 bytes per pixel, straight alpha
	FormatRGB8                   // 3 bytes per pixel, opaque
	FormatRGB565                 // 2 bytes per pixel, little endian
	FormatIndexed8               // 1 byte per pixel into Palette
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatRGB8:
		return "rgb8"
	case FormatRGB565:
		return "rgb565"
	case FormatIndexed8:
		return "indexed8"
	default:
		return fmt.Sprintf("format(%d)", f)
	}
}

// BytesPerPixel returns the packed pixel size.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatRGB8:
		return 3
	case FormatRGB565:
		return 2
	default:
		return 1
	}
}

// Pixels is decoded texture data as handed over by the asset loader.
type Pixels struct {
	Data    []byte
	Width   int
	Height  int
	Format  Format
	Palette []color.NRGBA // FormatIndexed8 only
}

// Decoder is the asset loader boundary. The renderer never parses texture
// files itself.
type Decoder interface {
	DecodeTexture(name string) (Pixels, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(name string) (Pixels, error)

// DecodeTexture calls f.
func (f DecoderFunc) DecodeTexture(name string) (Pixels, error) {
	return f(name)
}

// NRGBA converts p to an *image.NRGBA. Malformed data yields ErrDecode.
func (p Pixels) NRGBA() (*image.NRGBA, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", errs.ErrDecode, p.Width, p.Height)
	}
	n := p.Width * p.Height
	if want := n * p.Format.BytesPerPixel(); len(p.Data) < want {
		return nil, fmt.Errorf("%w: %s data is %d bytes, want %d", errs.ErrDecode, p.Format, len(p.Data), want)
	}

	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	dst := img.Pix

	switch p.Format {
	case FormatRGBA8:
		copy(dst, p.Data[:n*4])
	case FormatRGB8:
		for i := 0; i < n; i++ {
			dst[i*4] = p.Data[i*3]
			dst[i*4+1] = p.Data[i*3+1]
			dst[i*4+2] = p.Data[i*3+2]
			dst[i*4+3] = 255
		}
	case FormatRGB565:
		for i := 0; i < n; i++ {
			v := uint16(p.Data[i*2]) | uint16(p.Data[i*2+1])<<8
			r := uint8(v >> 11 & 0x1F)
			g := uint8(v >> 5 & 0x3F)
			b := uint8(v & 0x1F)
			dst[i*4] = r<<3 | r>>2
			dst[i*4+1] = g<<2 | g>>4
			dst[i*4+2] = b<<3 | b>>2
			dst[i*4+3] = 255
		}
	case FormatIndexed8:
		if len(p.Palette) == 0 {
			return nil, fmt.Errorf("%w: indexed data without palette", errs.ErrDecode)
		}
		for i := 0; i < n; i++ {
			idx := int(p.Data[i])
			if idx >= len(p.Palette) {
				return nil, fmt.Errorf("%w: palette index %d out of range", errs.ErrDecode, idx)
			}
			c := p.Palette[idx]
			dst[i*4] = c.R
			dst[i*4+1] = c.G
			dst[i*4+2] = c.B
			dst[i*4+3] = c.A
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %s", errs.ErrDecode, p.Format)
	}
	return img, nil
}

// FromImage packs img as RGBA8 Pixels.
func FromImage(img image.Image) Pixels {
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Rect, img, b.Min, draw.Src)
	return Pixels{Data: n.Pix, Width: b.Dx(), Height: b.Dy(), Format: FormatRGBA8}
}
