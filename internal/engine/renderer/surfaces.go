package renderer

import (
	"fmt"
	"image"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
)

// CreateTexture returns the texture registered under name, allocating it on
// first use.
func (r *Renderer) CreateTexture(name string) (*surface.Texture, error) {
	if err := r.requireInit("CreateTexture"); err != nil {
		return nil, err
	}
	return r.registry.Create(name)
}

// LoadTexture decodes name through the asset loader. It reports failure
// with false and never panics.
func (r *Renderer) LoadTexture(name string, mipmaps bool) bool {
	if r.requireInit("LoadTexture") != nil {
		return false
	}
	return r.registry.Load(name, mipmaps)
}

// UploadSprite loads name for the billboard path.
func (r *Renderer) UploadSprite(name string) bool {
	if r.requireInit("UploadSprite") != nil {
		return false
	}
	return r.registry.UploadSprite(name)
}

// UploadImage installs img as the pixels of name.
func (r *Renderer) UploadImage(name string, img *image.NRGBA, mipmaps bool) (*surface.Texture, error) {
	if err := r.requireInit("UploadImage"); err != nil {
		return nil, err
	}
	t, err := r.registry.Upload(name, img, mipmaps)
	return t, r.misuse("UploadImage", err)
}

// ReleaseTexture frees name. It reports whether anything was released.
func (r *Renderer) ReleaseTexture(name string) bool {
	if r.requireInit("ReleaseTexture") != nil {
		return false
	}
	t, ok := r.registry.Get(name)
	if !ok || !r.registry.Release(name) {
		return false
	}
	r.dev.Forget(t)
	return true
}

// TextureStats returns registry occupancy.
func (r *Renderer) TextureStats() surface.Stats {
	if r.registry == nil {
		return surface.Stats{}
	}
	return r.registry.Stats()
}

// LockSurface maps a texture for CPU access.
func (r *Renderer) LockSurface(texture string, rect clip.Rect) (*surface.Lock, error) {
	const op = "LockSurface"
	if err := r.requireInit(op); err != nil {
		return nil, err
	}
	t, ok := r.registry.Get(texture)
	if !ok {
		return nil, fmt.Errorf("%w: texture %q not registered", ErrResource, texture)
	}
	l, err := t.Lock(rect)
	return l, r.misuse(op, err)
}

// LockRenderSurface maps the back buffer for CPU access.
func (r *Renderer) LockRenderSurface(rect clip.Rect) (*surface.Lock, error) {
	const op = "LockRenderSurface"
	if err := r.requireInit(op); err != nil {
		return nil, err
	}
	l, err := r.dev.Lock(device.Back, rect)
	return l, r.misuse(op, err)
}

// LockFrontBuffer maps the presented buffer for CPU access.
func (r *Renderer) LockFrontBuffer(rect clip.Rect) (*surface.Lock, error) {
	const op = "LockFrontBuffer"
	if err := r.requireInit(op); err != nil {
		return nil, err
	}
	l, err := r.dev.Lock(device.Front, rect)
	return l, r.misuse(op, err)
}

// RestoreFrontBuffer re-acquires a lost front buffer.
func (r *Renderer) RestoreFrontBuffer() bool {
	return r.state != Uninitialized && r.dev.Restore(device.Front)
}

// RestoreBackBuffer re-acquires a lost back buffer.
func (r *Renderer) RestoreBackBuffer() bool {
	return r.state != Uninitialized && r.dev.Restore(device.Back)
}

// AreRenderSurfacesOk reports whether both buffers are usable.
func (r *Renderer) AreRenderSurfacesOk() bool {
	return r.state != Uninitialized && !r.dev.Lost(device.Front) && !r.dev.Lost(device.Back)
}

// InvalidateSurfaces marks both buffers lost, as after a device reset.
func (r *Renderer) InvalidateSurfaces() {
	if r.state != Uninitialized {
		r.dev.Invalidate()
	}
}

// Resize reallocates the render surfaces. Clip rectangles and camera
// viewports are reset to the new size.
func (r *Renderer) Resize(width, height int) error {
	const op = "Resize"
	if r.state != Ready {
		return r.invalid(op, "called in state %s", r.state)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: invalid size %dx%d", ErrResource, width, height)
	}
	if n := r.dev.Outstanding(); n > 0 {
		return r.invalid(op, "%d surface lock(s) held", n)
	}
	if err := r.dev.Resize(width, height); err != nil {
		return r.misuse(op, err)
	}
	r.cfg.Width, r.cfg.Height = width, height
	r.allocate(width, height)
	return nil
}

// RenderWidth returns the render target width.
func (r *Renderer) RenderWidth() int { return r.cfg.Width }

// RenderHeight returns the render target height.
func (r *Renderer) RenderHeight() int { return r.cfg.Height }

// WritePixel16 writes an R5G6B5 pixel to the back buffer inside the UI clip.
func (r *Renderer) WritePixel16(x, y int, v uint16) {
	if !r.drawable() || !r.ctx.Clip.UI().Contains(x, y) {
		return
	}
	r.dev.WritePixel(x, y, raster.FromRGB565(v))
}

// ReadPixel16 reads an R5G6B5 pixel from the back buffer.
func (r *Renderer) ReadPixel16(x, y int) uint16 {
	if !r.drawable() || !r.inBounds(x, y) {
		return 0
	}
	return r.dev.ReadPixel(x, y).RGB565()
}
