package surface

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/errs"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

type textureState uint8

const (
	stateCreated textureState = iota
	stateLoaded
	stateFailed
)

// Texture is a registry-owned texture object. Draw calls reference it
// without taking ownership.
type Texture struct {
	name    string
	id      uint32
	width   int
	height  int
	mipmaps bool
	sprite  bool
	state   textureState
	levels  []*image.NRGBA
	bytes   int64
	version uint64
	locked  bool
	reg     *Registry
}

// Name returns the registry key the texture was created with.
func (t *Texture) Name() string { return t.name }

// ID returns the backend resource id. IDs are never reused within a registry.
func (t *Texture) ID() uint32 { return t.id }

// Width returns the level 0 width, or 0 before a successful load.
func (t *Texture) Width() int { return t.width }

// Height returns the level 0 height, or 0 before a successful load.
func (t *Texture) Height() int { return t.height }

// Mipmaps reports whether a full mip chain is resident.
func (t *Texture) Mipmaps() bool { return t.mipmaps }

// Sprite reports whether the texture was uploaded as a sprite.
func (t *Texture) Sprite() bool { return t.sprite }

// Loaded reports whether pixel data is resident.
func (t *Texture) Loaded() bool { return t.state == stateLoaded }

// Failed reports whether the last load attempt failed.
func (t *Texture) Failed() bool { return t.state == stateFailed }

// Bytes returns the resident size of all levels.
func (t *Texture) Bytes() int64 { return t.bytes }

// Version changes whenever the resident pixels change. GPU caches compare it
// to decide when to upload again.
func (t *Texture) Version() uint64 { return t.version }

// Levels returns the mip chain, level 0 first. Nil until loaded.
func (t *Texture) Levels() []*image.NRGBA { return t.levels }

// Image returns level 0.
func (t *Texture) Image() *image.NRGBA {
	if len(t.levels) == 0 {
		return nil
	}
	return t.levels[0]
}

// Sampler returns a sampler over the resident levels, or nil if nothing is
// resident.
func (t *Texture) Sampler(clampEdges bool, filter raster.Filter) *raster.Sampler {
	return raster.NewSampler(t.levels, clampEdges, filter)
}

// Lock maps level 0 for CPU access. The mip chain is rebuilt on release.
func (t *Texture) Lock(r clip.Rect) (*Lock, error) {
	if t.state != stateLoaded {
		return nil, fmt.Errorf("%w: texture %q is not loaded", errs.ErrResource, t.name)
	}
	if t.locked {
		return nil, fmt.Errorf("%w: texture %q is already locked", errs.ErrInvalidState, t.name)
	}
	img := t.levels[0]
	t.locked = true
	t.reg.outstanding++
	return NewLock(img.Pix, img.Stride, clip.FromImage(img.Rect), r, func() {
		if t.mipmaps {
			t.setLevels(buildMips(img))
		} else {
			t.version++
		}
		t.locked = false
		t.reg.outstanding--
	}), nil
}

func (t *Texture) setLevels(levels []*image.NRGBA) {
	t.levels = levels
	t.bytes = levelBytes(levels)
	t.version++
}

// buildMips returns base followed by successively halved levels down to 1x1.
func buildMips(base *image.NRGBA) []*image.NRGBA {
	levels := []*image.NRGBA{base}
	prev := base
	w, h := base.Rect.Dx(), base.Rect.Dy()
	for w > 1 || h > 1 {
		w = max(1, w/2)
		h = max(1, h/2)
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Rect, prev, prev.Rect, draw.Src, nil)
		levels = append(levels, dst)
		prev = dst
	}
	return levels
}

func levelBytes(levels []*image.NRGBA) int64 {
	var n int64
	for _, l := range levels {
		n += int64(len(l.Pix))
	}
	return n
}

// checker builds the placeholder image for missing textures.
func checker(size, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := uint8(0x60)
			if (x/cell+y/cell)%2 == 0 {
				v = 0xA0
			}
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
		}
	}
	return img
}
