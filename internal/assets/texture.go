package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/errs"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// Extensions are tried in order for texture names given without one.
var Extensions = []string{".png", ".bmp", ".tga", ".jpg", ".webp"}

// decoders dispatch on the file extension. TGA has no magic number to sniff.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".bmp":  bmp.Decode,
	".tga":  tga.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".webp": webp.Decode,
}

// ColorKey makes texels near one color fully transparent on load.
type ColorKey struct {
	Color color.NRGBA
	// Tolerance is the largest per-channel difference still keyed. Paletted
	// bitmaps round the key color differently depending on the encoder.
	Tolerance uint8
}

func (k ColorKey) matches(r, g, b uint8) bool {
	return near(r, k.Color.R, k.Tolerance) && near(g, k.Color.G, k.Tolerance) && near(b, k.Color.B, k.Tolerance)
}

func near(a, b, tol uint8) bool {
	if a > b {
		return a-b <= tol
	}
	return b-a <= tol
}

// Apply keys img in place. Keyed texels become transparent black so that
// filtering does not bleed the key color into edges.
func (k ColorKey) Apply(img *image.NRGBA) int {
	keyed := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y)
			if k.matches(img.Pix[i], img.Pix[i+1], img.Pix[i+2]) {
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 0, 0, 0, 0
				keyed++
			}
		}
	}
	return keyed
}

// TextureDecoder implements surface.Decoder over a Manager. Decoded pixels
// are cached so Preload can run ahead of the render loop.
type TextureDecoder struct {
	m   *Manager
	key *ColorKey

	mu      sync.Mutex
	decoded map[string]surface.Pixels
}

var _ surface.Decoder = (*TextureDecoder)(nil)

// NewTextureDecoder creates a decoder reading from m. key may be nil.
func NewTextureDecoder(m *Manager, key *ColorKey) *TextureDecoder {
	return &TextureDecoder{m: m, key: key, decoded: make(map[string]surface.Pixels)}
}

// DecodeTexture implements surface.Decoder. Names without an extension are
// looked up with each of Extensions. Missing files and undecodable data
// both yield errs.ErrDecode.
func (d *TextureDecoder) DecodeTexture(name string) (surface.Pixels, error) {
	k := normalize(name)
	d.mu.Lock()
	p, ok := d.decoded[k]
	d.mu.Unlock()
	if ok {
		return p, nil
	}

	p, err := d.decode(name)
	if err != nil {
		return surface.Pixels{}, err
	}
	d.mu.Lock()
	d.decoded[k] = p
	d.mu.Unlock()
	return p, nil
}

// Forget drops the decoded pixels of name.
func (d *TextureDecoder) Forget(name string) {
	d.mu.Lock()
	delete(d.decoded, normalize(name))
	d.mu.Unlock()
}

func (d *TextureDecoder) decode(name string) (surface.Pixels, error) {
	data, file, err := d.read(name)
	if err != nil {
		return surface.Pixels{}, fmt.Errorf("%w: %w", errs.ErrDecode, err)
	}
	format := strings.ToLower(path.Ext(file))
	dec, ok := decoders[format]
	if !ok {
		return surface.Pixels{}, fmt.Errorf("%w: %s: unsupported format", errs.ErrDecode, file)
	}
	img, err := dec(bytes.NewReader(data))
	if err != nil {
		return surface.Pixels{}, fmt.Errorf("%w: %s: %w", errs.ErrDecode, file, err)
	}

	n := toNRGBA(img)
	if d.key != nil {
		d.key.Apply(n)
	}
	logger.Debug("texture decoded",
		zap.String("file", file),
		zap.String("format", format),
		zap.Int("width", n.Rect.Dx()),
		zap.Int("height", n.Rect.Dy()),
	)
	return surface.Pixels{Data: n.Pix, Width: n.Rect.Dx(), Height: n.Rect.Dy(), Format: surface.FormatRGBA8}, nil
}

func (d *TextureDecoder) read(name string) ([]byte, string, error) {
	if path.Ext(name) != "" {
		data, err := d.m.Load(name)
		return data, name, err
	}
	for _, ext := range Extensions {
		file := name + ext
		data, err := d.m.Load(file)
		if err == nil {
			return data, file, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, file, err
		}
	}
	return nil, name, fmt.Errorf("%w: %s (tried %s)", ErrNotFound, name, strings.Join(Extensions, ", "))
}

// toNRGBA converts any image to a zero-origin *image.NRGBA.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}
