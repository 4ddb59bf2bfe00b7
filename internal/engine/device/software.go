package device

import (
	"fmt"
	"image"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/errs"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/present"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
)

// Software rasterizes on the CPU into a surface.SwapChain and hands finished
// frames to a present.Presenter.
type Software struct {
	presenter present.Presenter
	chain     *surface.SwapChain
	faces     []object.ID
}

var _ Device = (*Software)(nil)

// NewSoftware creates a CPU device presenting through p.
func NewSoftware(p present.Presenter) *Software {
	return &Software{presenter: p}
}

// Init implements Device.
func (s *Software) Init(width, height int) error {
	if s.presenter == nil {
		return fmt.Errorf("no presenter")
	}
	if err := s.presenter.Init(width, height); err != nil {
		return fmt.Errorf("presenter: %w", err)
	}
	s.chain = surface.NewSwapChain(width, height)
	s.faces = make([]object.ID, width*height)
	return nil
}

// Close implements Device.
func (s *Software) Close() {
	if s.chain == nil {
		return
	}
	s.presenter.Close()
	s.chain = nil
	s.faces = nil
}

// Resize implements Device.
func (s *Software) Resize(width, height int) error {
	if err := s.chain.Resize(width, height); err != nil {
		return err
	}
	s.faces = make([]object.ID, width*height)
	return nil
}

// FrameBuffer returns the CPU memory of a target, depth included.
func (s *Software) FrameBuffer(b Buffer) *raster.FrameBuffer {
	return s.target(b).FrameBuffer()
}

func (s *Software) back() *raster.FrameBuffer { return s.chain.Back().FrameBuffer() }

// Clear implements Device.
func (s *Software) Clear(c raster.Color) {
	fb := s.back()
	fb.Clear(c)
	fb.ClearDepth()
}

// ClearDepth implements Device.
func (s *Software) ClearDepth() {
	s.back().ClearDepth()
	clear(s.faces)
}

func (s *Software) state(c *Call) raster.DrawState {
	st := raster.DrawState{
		Clip:       c.Clip,
		Blend:      c.Blend,
		DepthTest:  c.DepthTest,
		DepthWrite: c.DepthWrite,
		ZBias:      c.ZBias,
		AlphaRef:   c.AlphaRef,
	}
	if c.Texture != nil {
		st.Sampler = c.Texture.Sampler(c.Clamp, c.Filter)
	}
	if !c.Pick.IsNone() {
		id, w := c.Pick, s.chain.Width()
		st.Visit = func(x, y int) { s.faces[y*w+x] = id }
	}
	return st
}

// DrawFan implements Device.
func (s *Software) DrawFan(verts []raster.Vertex, c *Call) int {
	st := s.state(c)
	return s.back().DrawFan(verts, &st)
}

// DrawLine implements Device.
func (s *Software) DrawLine(a, b raster.Vertex, c *Call) int {
	st := s.state(c)
	st.Sampler = nil
	return s.back().DrawLine3D(a, b, &st)
}

// DrawLine2D implements Device.
func (s *Software) DrawLine2D(x0, y0, x1, y1 int, col raster.Color, blend raster.BlendMode, cr clip.Rect) int {
	return s.back().DrawLine(x0, y0, x1, y1, col, blend, cr)
}

// FillRect implements Device.
func (s *Software) FillRect(r clip.Rect, col raster.Color, blend raster.BlendMode, cr clip.Rect) int {
	return s.back().FillRect(r, col, blend, cr)
}

// Blit implements Device.
func (s *Software) Blit(src Image, sr image.Rectangle, dx, dy int, op *raster.BlitOp) int {
	return s.back().Blit(src.Pix, sr, dx, dy, op)
}

// Forget implements Device. Textures are sampled in place.
func (s *Software) Forget(*surface.Texture) {}

// ReadPixel implements Device.
func (s *Software) ReadPixel(x, y int) raster.Color { return s.back().At(x, y) }

// WritePixel implements Device.
func (s *Software) WritePixel(x, y int, c raster.Color) { s.back().Set(x, y, c) }

// FaceAt implements Device.
func (s *Software) FaceAt(x, y int) object.ID {
	w, h := s.chain.Width(), s.chain.Height()
	if x < 0 || y < 0 || x >= w || y >= h {
		return object.None
	}
	return s.faces[y*w+x]
}

func (s *Software) target(b Buffer) *surface.Surface {
	if b == Front {
		return s.chain.Front()
	}
	return s.chain.Back()
}

// Lock implements Device.
func (s *Software) Lock(b Buffer, r clip.Rect) (*surface.Lock, error) {
	return s.target(b).Lock(r)
}

// Outstanding implements Device.
func (s *Software) Outstanding() int { return s.chain.Outstanding() }

// Swap implements Device.
func (s *Software) Swap() error { return s.chain.Swap() }

// Present implements Device.
func (s *Software) Present() error {
	return s.presenter.Present(s.chain.Front().FrameBuffer())
}

// CopyToFront implements Device.
func (s *Software) CopyToFront(r clip.Rect) {
	s.chain.Front().FrameBuffer().CopyRect(s.back(), r)
}

// ReadFront implements Device.
func (s *Software) ReadFront() (*image.RGBA, error) {
	front := s.chain.Front()
	if front.Lost() {
		return nil, fmt.Errorf("%w: front buffer lost", errs.ErrResource)
	}
	src := front.FrameBuffer().Image()
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst, nil
}

// Invalidate implements Device.
func (s *Software) Invalidate() { s.chain.Invalidate() }

// Restore implements Device.
func (s *Software) Restore(b Buffer) bool {
	if b == Front {
		return s.chain.RestoreFront()
	}
	return s.chain.RestoreBack()
}

// Lost implements Device.
func (s *Software) Lost(b Buffer) bool { return s.target(b).Lost() }
