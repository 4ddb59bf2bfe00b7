// Package device defines the pixel pipeline the renderer draws through.
//
// A Device owns the front and back render targets, their depth and face pick
// attachments, and whatever GPU copies of registry textures it needs. The
// renderer decides what to draw and with which state; the device decides how.
// Software rasterizes on the CPU and is the headless backend; the gldevice
// package implements the same contract on OpenGL.
package device

import (
	"image"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
)

// Buffer names one of the two render targets.
type Buffer uint8

const (
	Back  Buffer = iota // drawn
	Front               // presented
)

func (b Buffer) String() string {
	if b == Front {
		return "front"
	}
	return "back"
}

// Call is the pipeline state of one primitive.
type Call struct {
	Clip       clip.Rect
	Blend      raster.BlendMode
	DepthTest  bool
	DepthWrite bool
	ZBias      float32 // subtracted from depth before the test
	AlphaRef   float32 // fragments with alpha <= AlphaRef are discarded

	// Texture is sampled and multiplied into the vertex color. Nil draws
	// vertex color only.
	Texture *surface.Texture
	Clamp   bool
	Filter  raster.Filter

	// Pick is stored in the face pick buffer for every pixel written,
	// unless it is object.None.
	Pick object.ID
}

// Image is the source of a 2D blit. Texture identifies a registry texture so
// backends can cache it; it is nil for images composed per call.
type Image struct {
	Texture *surface.Texture
	Pix     *image.NRGBA
}

// Device executes draws on a swap chain of two render targets. All pixel
// counts are the pixels written, or covered for backends that cannot count
// them without a pipeline stall.
type Device interface {
	// Init creates both targets at width x height.
	Init(width, height int) error
	// Close releases targets and backend resources.
	Close()
	// Resize recreates both targets. Contents are discarded. It fails with
	// ErrInvalidState while a target lock is held.
	Resize(width, height int) error

	// Clear fills the back target with c and resets its depth.
	Clear(c raster.Color)
	// ClearDepth resets back depth and the face pick buffer.
	ClearDepth()

	DrawFan(verts []raster.Vertex, c *Call) int
	// DrawLine draws a depth-aware segment; c.Texture is ignored.
	DrawLine(a, b raster.Vertex, c *Call) int
	DrawLine2D(x0, y0, x1, y1 int, col raster.Color, blend raster.BlendMode, cr clip.Rect) int
	FillRect(r clip.Rect, col raster.Color, blend raster.BlendMode, cr clip.Rect) int
	// Blit draws the sr region of src with its top-left at (dx, dy), one
	// texel per pixel. op.Visit is not supported.
	Blit(src Image, sr image.Rectangle, dx, dy int, op *raster.BlitOp) int
	// Forget drops any backend copy of t.
	Forget(t *surface.Texture)

	ReadPixel(x, y int) raster.Color
	WritePixel(x, y int, c raster.Color)
	// FaceAt returns the face id stored at (x, y) since the last ClearDepth.
	FaceAt(x, y int) object.ID

	// Lock maps r of a target for CPU access. Writes are visible to later
	// draws once the lock is released.
	Lock(b Buffer, r clip.Rect) (*surface.Lock, error)
	// Outstanding returns the number of target locks not yet released.
	Outstanding() int
	// Swap exchanges front and back.
	Swap() error
	// Present shows the front target.
	Present() error
	// CopyToFront copies r of back into front.
	CopyToFront(r clip.Rect)
	// ReadFront returns a copy of the front target.
	ReadFront() (*image.RGBA, error)

	// Invalidate marks both targets lost, as after a device reset.
	Invalidate()
	// Restore re-acquires a lost target and reports whether anything was
	// reallocated.
	Restore(b Buffer) bool
	Lost(b Buffer) bool
}
