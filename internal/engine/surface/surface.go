package surface

import (
	"fmt"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/errs"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

// Surface is one drawable framebuffer with CPU lock support.
type Surface struct {
	name   string
	fb     *raster.FrameBuffer
	locked bool
	lost   bool
	chain  *SwapChain
}

// FrameBuffer returns the backing buffer.
func (s *Surface) FrameBuffer() *raster.FrameBuffer { return s.fb }

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.fb.Width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.fb.Height }

// Locked reports whether a CPU lock is outstanding.
func (s *Surface) Locked() bool { return s.locked }

// Lost reports whether the surface was invalidated and not yet restored.
func (s *Surface) Lost() bool { return s.lost }

// Lock maps r for CPU access. A zero r locks the whole surface. Locks are
// not reentrant.
func (s *Surface) Lock(r clip.Rect) (*Lock, error) {
	if s.lost {
		return nil, fmt.Errorf("%w: %s surface lost", errs.ErrResource, s.name)
	}
	if s.locked {
		return nil, fmt.Errorf("%w: %s surface already locked", errs.ErrInvalidState, s.name)
	}
	s.locked = true
	s.chain.outstanding++
	return NewLock(s.fb.Pix, s.fb.Stride(), s.fb.Bounds(), r, func() {
		s.locked = false
		s.chain.outstanding--
	}), nil
}

// restore reallocates a lost surface. It does nothing if the surface is valid.
func (s *Surface) restore() bool {
	if !s.lost {
		return false
	}
	s.fb = raster.NewFrameBuffer(s.fb.Width, s.fb.Height)
	s.lost = false
	return true
}

// SwapChain is the front (presented) and back (drawn) surface pair.
type SwapChain struct {
	front       *Surface
	back        *Surface
	outstanding int
}

// NewSwapChain allocates both surfaces at w x h.
func NewSwapChain(w, h int) *SwapChain {
	c := &SwapChain{}
	c.front = &Surface{name: "front", fb: raster.NewFrameBuffer(w, h), chain: c}
	c.back = &Surface{name: "back", fb: raster.NewFrameBuffer(w, h), chain: c}
	return c
}

// Front returns the presented surface.
func (c *SwapChain) Front() *Surface { return c.front }

// Back returns the surface being drawn.
func (c *SwapChain) Back() *Surface { return c.back }

// Width returns the surface width.
func (c *SwapChain) Width() int { return c.back.fb.Width }

// Height returns the surface height.
func (c *SwapChain) Height() int { return c.back.fb.Height }

// Outstanding returns the number of surface locks not yet released.
func (c *SwapChain) Outstanding() int { return c.outstanding }

// Swap exchanges front and back buffers.
func (c *SwapChain) Swap() error {
	if c.outstanding > 0 {
		return fmt.Errorf("%w: swap with %d surface lock(s) held", errs.ErrInvalidState, c.outstanding)
	}
	if !c.OK() {
		return fmt.Errorf("%w: swap on lost surface", errs.ErrResource)
	}
	c.front.fb, c.back.fb = c.back.fb, c.front.fb
	return nil
}

// Resize reallocates both surfaces. Contents are discarded.
func (c *SwapChain) Resize(w, h int) error {
	if c.outstanding > 0 {
		return fmt.Errorf("%w: resize with %d surface lock(s) held", errs.ErrInvalidState, c.outstanding)
	}
	c.front.fb = raster.NewFrameBuffer(w, h)
	c.back.fb = raster.NewFrameBuffer(w, h)
	c.front.lost, c.back.lost = false, false
	return nil
}

// Invalidate marks both surfaces lost, as after a device reset.
func (c *SwapChain) Invalidate() {
	c.front.lost = true
	c.back.lost = true
}

// OK reports whether both surfaces are valid.
func (c *SwapChain) OK() bool {
	return !c.front.lost && !c.back.lost
}

// RestoreFront re-acquires the front surface. It is idempotent and reports
// whether anything was reallocated.
func (c *SwapChain) RestoreFront() bool { return c.front.restore() }

// RestoreBack re-acquires the back surface. It is idempotent and reports
// whether anything was reallocated.
func (c *SwapChain) RestoreBack() bool { return c.back.restore() }
