// Package present hands finished frames to a display backend.
package present

import (
	"fmt"

	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

// Presenter makes a finished frame visible. Implementations own the platform
// side (window, GPU context); the renderer only hands them its front buffer.
type Presenter interface {
	// Init prepares the backend for frames of width x height.
	Init(width, height int) error
	// Present displays fb. fb is only valid for the duration of the call.
	Present(fb *raster.FrameBuffer) error
	// Close releases backend resources.
	Close()
}

// Headless keeps presented frames in memory. It is used by tests and by the
// viewer when no display is available.
type Headless struct {
	// InitErr, when set, is returned by Init to simulate a backend failure.
	InitErr error

	width, height int
	frames        int
	last          *raster.FrameBuffer
	ready         bool
}

// NewHeadless creates an in-memory presenter.
func NewHeadless() *Headless {
	return &Headless{}
}

// Init implements Presenter.
func (h *Headless) Init(width, height int) error {
	if h.InitErr != nil {
		return h.InitErr
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}
	h.width, h.height = width, height
	h.ready = true
	return nil
}

// Present implements Presenter. The frame is copied.
func (h *Headless) Present(fb *raster.FrameBuffer) error {
	if !h.ready {
		return fmt.Errorf("present before init")
	}
	if h.last == nil || h.last.Width != fb.Width || h.last.Height != fb.Height {
		h.last = raster.NewFrameBuffer(fb.Width, fb.Height)
	}
	h.last.CopyFrom(fb)
	h.frames++
	return nil
}

// Close implements Presenter.
func (h *Headless) Close() {
	h.ready = false
}

// Frames returns the number of frames presented.
func (h *Headless) Frames() int { return h.frames }

// Last returns a copy of the most recently presented frame, or nil.
func (h *Headless) Last() *raster.FrameBuffer { return h.last }

// Size returns the size passed to Init.
func (h *Headless) Size() (int, int) { return h.width, h.height }
