package renderer

import (
	"image"
	"image/color"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// Glyph is one font character stored as palette indices, row-major. Index 0
// is transparent and index 1 is the shadow.
type Glyph struct {
	Width  int
	Height int
	Pix    []uint8
}

func (g Glyph) valid() bool {
	return g.Width > 0 && g.Height > 0 && len(g.Pix) >= g.Width*g.Height
}

var (
	redShade   = raster.Color{R: 1, G: 0, B: 0, A: 0.5}
	greenShade = raster.Color{R: 0, G: 1, B: 0, A: 0.5}
)

// SetUIClipRect restricts overlay drawing to [x, z) x [y, w).
func (r *Renderer) SetUIClipRect(x, y, z, w int) {
	r.ctx.Clip.SetUI(x, y, z, w)
}

// ResetUIClipRect restores the UI clip to the full surface.
func (r *Renderer) ResetUIClipRect() {
	r.ctx.Clip.ResetUI()
}

// SetRasterClipRect restricts world rasterization to [x, z) x [y, w).
func (r *Renderer) SetRasterClipRect(x, y, z, w int) {
	r.ctx.Clip.SetRaster(x, y, z, w)
}

// ResetRasterClipRect restores the raster clip to the full surface.
func (r *Renderer) ResetRasterClipRect() {
	r.ctx.Clip.ResetRaster()
}

// RasterLine2D draws a screen line clipped to the raster rectangle.
func (r *Renderer) RasterLine2D(x0, y0, x1, y1 int, c raster.Color) {
	if !r.overlayTarget("RasterLine2D") {
		return
	}
	r.stats.Pixels += r.dev.DrawLine2D(x0, y0, x1, y1, c, raster.BlendAlpha, r.ctx.Clip.Raster())
}

// FillRectFast fills a rectangle with c.
func (r *Renderer) FillRectFast(x, y, width, height int, c raster.Color) {
	if !r.overlayTarget("FillRectFast") {
		return
	}
	rect := clip.Rect{X: x, Y: y, Z: x + width, W: y + height}
	r.stats.Pixels += r.dev.FillRect(rect, c, raster.BlendOpaque, r.ctx.Clip.UI())
}

// DrawTextureNew draws a texture at normalized screen position (u, v).
// Fully transparent texels are skipped; the rest replace the frame.
func (r *Renderer) DrawTextureNew(u, v float32, texture string) {
	x, y := r.toScreen(u, v)
	r.blit("DrawTextureNew", texture, image.Rectangle{}, x, y, raster.BlitOp{Blend: raster.BlendOpaque})
}

// DrawTextureAlphaNew draws a texture at (u, v) with alpha blending.
func (r *Renderer) DrawTextureAlphaNew(u, v float32, texture string) {
	x, y := r.toScreen(u, v)
	r.blit("DrawTextureAlphaNew", texture, image.Rectangle{}, x, y, raster.BlitOp{Blend: raster.BlendAlpha})
}

// DrawTextureCustomHeight draws the top height rows of a texture at (u, v).
func (r *Renderer) DrawTextureCustomHeight(u, v float32, texture string, height int) {
	if height <= 0 {
		return
	}
	x, y := r.toScreen(u, v)
	r.blit("DrawTextureCustomHeight", texture, image.Rect(0, 0, 1<<16, height), x, y, raster.BlitOp{Blend: raster.BlendOpaque})
}

// DrawTextureOffset draws a texture with its origin moved by the offset.
func (r *Renderer) DrawTextureOffset(x, y, offsetX, offsetY int, texture string) {
	r.blit("DrawTextureOffset", texture, image.Rectangle{}, x-offsetX, y-offsetY, raster.BlitOp{Blend: raster.BlendAlpha})
}

// DrawMasked draws a texture tinted by mask and darkened by dimLevel
// halvings.
func (r *Renderer) DrawMasked(u, v float32, texture string, dimLevel int, mask raster.Color) {
	if mask == (raster.Color{}) {
		mask = raster.ColorWhite
	}
	dimLevel = min(max(dimLevel, 0), 8)
	tint := mask.Scale(1 / float32(int(1)<<dimLevel))
	x, y := r.toScreen(u, v)
	r.blit("DrawMasked", texture, image.Rectangle{}, x, y, raster.BlitOp{Blend: raster.BlendAlpha, Tint: tint})
}

// DrawTextureGrayShade draws a texture in grayscale.
func (r *Renderer) DrawTextureGrayShade(u, v float32, texture string) {
	x, y := r.toScreen(u, v)
	r.blit("DrawTextureGrayShade", texture, image.Rectangle{}, x, y, raster.BlitOp{Blend: raster.BlendAlpha, Gray: true})
}

// DrawTransparentRedShade draws the red channel of a texture at half opacity.
func (r *Renderer) DrawTransparentRedShade(u, v float32, texture string) {
	x, y := r.toScreen(u, v)
	r.blit("DrawTransparentRedShade", texture, image.Rectangle{}, x, y, raster.BlitOp{Blend: raster.BlendAlpha, Tint: redShade})
}

// DrawTransparentGreenShade draws the green channel of a texture at half
// opacity.
func (r *Renderer) DrawTransparentGreenShade(u, v float32, texture string) {
	x, y := r.toScreen(u, v)
	r.blit("DrawTransparentGreenShade", texture, image.Rectangle{}, x, y, raster.BlitOp{Blend: raster.BlendAlpha, Tint: greenShade})
}

// BlendTextures draws pattern through the alpha of mask at (x, y). The
// pattern scrolls left by t texels and its opacity ramps from startOpacity
// on the top row to endOpacity on the bottom row, both in 0..255.
func (r *Renderer) BlendTextures(x, y int, mask, pattern string, t, startOpacity, endOpacity int) {
	const op = "BlendTextures"
	if !r.overlayTarget(op) {
		return
	}
	a, b := r.image(op, mask), r.image(op, pattern)
	if a == nil || b == nil {
		return
	}
	aw, ah := a.Rect.Dx(), a.Rect.Dy()
	bw, bh := b.Rect.Dx(), b.Rect.Dy()
	if bw == 0 || bh == 0 {
		return
	}
	out := image.NewNRGBA(image.Rect(0, 0, aw, ah))
	for j := 0; j < ah; j++ {
		opacity := float32(startOpacity)
		if ah > 1 {
			opacity += float32(endOpacity-startOpacity) * float32(j) / float32(ah-1)
		}
		opacity = math.Clamp(opacity/255, 0, 1)
		for i := 0; i < aw; i++ {
			m := a.Pix[a.PixOffset(a.Rect.Min.X+i, a.Rect.Min.Y+j)+3]
			if m == 0 {
				continue
			}
			o := b.PixOffset(b.Rect.Min.X+wrap(i+t, bw), b.Rect.Min.Y+wrap(j, bh))
			c := raster.RGBA(b.Pix[o], b.Pix[o+1], b.Pix[o+2], b.Pix[o+3])
			c.A *= float32(m) / 255 * opacity
			out.SetNRGBA(i, j, nrgba(c))
		}
	}
	r.composite(out, x, y)
}

// DrawText draws one glyph. Index 1 uses shadow; other indices use face, or
// the palette entry when face is the zero color. A zero shadow draws no
// shadow.
func (r *Renderer) DrawText(x, y int, g Glyph, face, shadow raster.Color, palette []raster.Color) {
	if !r.overlayTarget("DrawText") || !g.valid() {
		return
	}
	out := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			idx := g.Pix[row*g.Width+col]
			var c raster.Color
			switch {
			case idx == 0:
				continue
			case idx == 1:
				c = shadow
			case face != (raster.Color{}):
				c = face
			case int(idx) < len(palette):
				c = palette[idx]
			default:
				continue
			}
			out.SetNRGBA(col, row, nrgba(c))
		}
	}
	r.composite(out, x, y)
}

// DrawTextAlpha draws one glyph with its palette colors. transparent
// halves the opacity.
func (r *Renderer) DrawTextAlpha(x, y int, g Glyph, palette []raster.Color, transparent bool) {
	if !r.overlayTarget("DrawTextAlpha") || !g.valid() {
		return
	}
	out := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			idx := g.Pix[row*g.Width+col]
			if idx == 0 || int(idx) >= len(palette) {
				continue
			}
			c := palette[idx]
			if transparent {
				c.A *= 0.5
			}
			out.SetNRGBA(col, row, nrgba(c))
		}
	}
	r.composite(out, x, y)
}

// BlitCopy copies the src region of a texture to (x, y) unchanged.
func (r *Renderer) BlitCopy(texture string, src image.Rectangle, x, y int) {
	r.blit("BlitCopy", texture, src, x, y, raster.BlitOp{Blend: raster.BlendOpaque, AlphaRef: -1})
}

// BlitChroma copies the src region of a texture to (x, y), skipping texels
// that match the color of its top-left texel.
func (r *Renderer) BlitChroma(texture string, src image.Rectangle, x, y int) {
	const op = "BlitChroma"
	if r.requireInit(op) != nil {
		return
	}
	img := r.image(op, texture)
	if img == nil {
		return
	}
	if src.Empty() {
		src = img.Rect
	}
	src = src.Intersect(img.Rect)
	if src.Empty() {
		return
	}
	i := img.PixOffset(src.Min.X, src.Min.Y)
	key := raster.RGB(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
	r.blit(op, texture, src, x, y, raster.BlitOp{
		Blend:       raster.BlendOpaque,
		AlphaRef:    -1,
		ColorKey:    key,
		UseColorKey: true,
	})
}

// ZDrawTextureAlpha writes z into the UI pick buffer under every visible
// texel of a texture at (u, v). The color buffer is not touched.
func (r *Renderer) ZDrawTextureAlpha(u, v float32, texture string, z uint32) {
	const op = "ZDrawTextureAlpha"
	if r.requireInit(op) != nil {
		return
	}
	img := r.image(op, texture)
	if img == nil {
		return
	}
	x, y := r.toScreen(u, v)
	w := r.cfg.Width
	vis := clip.Rect{X: x, Y: y, Z: x + img.Rect.Dx(), W: y + img.Rect.Dy()}.Intersect(r.ctx.Clip.UI())
	for py := vis.Y; py < vis.W; py++ {
		for px := vis.X; px < vis.Z; px++ {
			if img.Pix[img.PixOffset(img.Rect.Min.X+px-x, img.Rect.Min.Y+py-y)+3] != 0 {
				r.uiPick[py*w+px] = z
			}
		}
	}
}

// ZBufferFill writes z into the UI pick buffer over a rectangle.
func (r *Renderer) ZBufferFill(x, y, width, height int, z uint32) {
	if r.requireInit("ZBufferFill") != nil {
		return
	}
	w := r.cfg.Width
	vis := clip.Rect{X: x, Y: y, Z: x + width, W: y + height}.Normalize().Intersect(r.ctx.Clip.UI())
	for py := vis.Y; py < vis.W; py++ {
		for px := vis.X; px < vis.Z; px++ {
			r.uiPick[py*w+px] = z
		}
	}
}

// PickAt returns the UI pick value at (x, y), 0 when nothing was written.
func (r *Renderer) PickAt(x, y int) uint32 {
	if !r.inBounds(x, y) {
		return 0
	}
	return r.uiPick[y*r.cfg.Width+x]
}

// overlayTarget reports whether a 2D call can draw.
func (r *Renderer) overlayTarget(op string) bool {
	if r.requireInit(op) != nil || !r.drawable() {
		return false
	}
	if r.state == InScene {
		r.ctx.advance(StageOverlay)
	}
	return true
}

// source resolves a texture for 2D drawing, applying the placeholder policy.
func (r *Renderer) source(op, name string) (device.Image, bool) {
	tex, ok := r.registry.Resolve(name)
	if !ok {
		if !r.cfg.Placeholder {
			r.skip(op, name, "texture not loaded")
			return device.Image{}, false
		}
		r.stats.Placeholders++
	}
	img := tex.Image()
	return device.Image{Texture: tex, Pix: img}, img != nil
}

// image returns the level 0 pixels of a texture for CPU-side composition.
func (r *Renderer) image(op, name string) *image.NRGBA {
	src, ok := r.source(op, name)
	if !ok {
		return nil
	}
	return src.Pix
}

func (r *Renderer) blit(op, texture string, sr image.Rectangle, x, y int, bop raster.BlitOp) {
	if !r.overlayTarget(op) {
		return
	}
	src, ok := r.source(op, texture)
	if !ok {
		return
	}
	if sr.Empty() {
		sr = src.Pix.Rect
	}
	bop.Clip = r.ctx.Clip.UI()
	r.stats.Pixels += r.dev.Blit(src, sr, x, y, &bop)
}

// composite alpha-blends an image built for this call at (x, y) inside the
// UI clip. Fully transparent pixels are left alone.
func (r *Renderer) composite(img *image.NRGBA, x, y int) {
	op := raster.BlitOp{Clip: r.ctx.Clip.UI(), Blend: raster.BlendAlpha}
	r.stats.Pixels += r.dev.Blit(device.Image{Pix: img}, img.Rect, x, y, &op)
}

func nrgba(c raster.Color) color.NRGBA {
	r, g, b, a := c.Clamp().Bytes()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// toScreen maps normalized coordinates to render target pixels.
func (r *Renderer) toScreen(u, v float32) (int, int) {
	return int(u * float32(r.cfg.Width)), int(v * float32(r.cfg.Height))
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
