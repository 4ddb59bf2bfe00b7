package gldevice

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// resident is the GPU copy of a registry texture.
type resident struct {
	id      uint32
	version uint64
}

// textureCache mirrors registry textures on the GPU. A texture is uploaded
// on first use and again whenever its version changes. Wrap and filter are
// sampler state chosen per draw, so one upload serves every Call.
type textureCache struct {
	entries  map[*surface.Texture]*resident
	samplers [2][2]uint32 // [clamp][filter]
	scratch  uint32
}

func newTextureCache() *textureCache {
	c := &textureCache{entries: make(map[*surface.Texture]*resident)}
	for clamp := range 2 {
		wrap := int32(gl.REPEAT)
		if clamp == 1 {
			wrap = gl.CLAMP_TO_EDGE
		}
		for filter := range 2 {
			minF, magF := int32(gl.NEAREST_MIPMAP_NEAREST), int32(gl.NEAREST)
			if raster.Filter(filter) == raster.FilterBilinear {
				minF, magF = gl.LINEAR_MIPMAP_NEAREST, gl.LINEAR
			}
			s := &c.samplers[clamp][filter]
			gl.GenSamplers(1, s)
			gl.SamplerParameteri(*s, gl.TEXTURE_WRAP_S, wrap)
			gl.SamplerParameteri(*s, gl.TEXTURE_WRAP_T, wrap)
			gl.SamplerParameteri(*s, gl.TEXTURE_MIN_FILTER, minF)
			gl.SamplerParameteri(*s, gl.TEXTURE_MAG_FILTER, magF)
		}
	}
	gl.GenTextures(1, &c.scratch)
	gl.BindTexture(gl.TEXTURE_2D, c.scratch)
	singleLevel()
	return c
}

// bind makes t current on unit 0 with the sampler for clamp and filter. It
// reports false when t has no pixels to sample.
func (c *textureCache) bind(t *surface.Texture, clamp bool, filter raster.Filter) bool {
	levels := t.Levels()
	if len(levels) == 0 || levels[0] == nil || levels[0].Rect.Empty() {
		return false
	}
	e, ok := c.entries[t]
	if !ok {
		e = &resident{}
		gl.GenTextures(1, &e.id)
		c.entries[t] = e
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, e.id)
	if !ok || e.version != t.Version() {
		upload(levels)
		e.version = t.Version()
		logger.Debug("texture uploaded",
			zap.String("name", t.Name()),
			zap.Int("levels", len(levels)),
			zap.Uint64("version", e.version),
		)
	}
	gl.BindSampler(0, c.sampler(clamp, filter))
	return true
}

func (c *textureCache) sampler(clamp bool, filter raster.Filter) uint32 {
	i := 0
	if clamp {
		i = 1
	}
	return c.samplers[i][min(int(filter), 1)]
}

// bindImage makes src.Pix current on unit 0 for texelFetch. Images of registry
// textures reuse their resident copy; anything else goes through scratch.
func (c *textureCache) bindImage(src device.Image) bool {
	if src.Pix == nil || src.Pix.Rect.Empty() {
		return false
	}
	if src.Texture != nil {
		if levels := src.Texture.Levels(); len(levels) > 0 && levels[0] == src.Pix {
			ok := c.bind(src.Texture, true, raster.FilterNearest)
			gl.BindSampler(0, 0)
			return ok
		}
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, c.scratch)
	gl.BindSampler(0, 0)
	upload([]*image.NRGBA{src.Pix})
	return true
}

// upload replaces the storage of the bound texture with levels.
func upload(levels []*image.NRGBA) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	for i, img := range levels {
		w, h := img.Rect.Dx(), img.Rect.Dy()
		if w <= 0 || h <= 0 {
			break
		}
		gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
		gl.TexImage2D(gl.TEXTURE_2D, int32(i), gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(len(levels)-1))
}

func (c *textureCache) forget(t *surface.Texture) {
	if e, ok := c.entries[t]; ok {
		gl.DeleteTextures(1, &e.id)
		delete(c.entries, t)
	}
}

// close frees every resident texture and sampler.
func (c *textureCache) close() {
	for t := range c.entries {
		c.forget(t)
	}
	for i := range c.samplers {
		gl.DeleteSamplers(2, &c.samplers[i][0])
	}
	if c.scratch != 0 {
		gl.DeleteTextures(1, &c.scratch)
		c.scratch = 0
	}
}
