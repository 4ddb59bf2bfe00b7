package renderer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// BeginScene opens a frame. The depth and face pick buffers are cleared;
// color is kept until ClearTarget.
func (r *Renderer) BeginScene() error {
	if r.state != Ready {
		return r.invalid("BeginScene", "called in state %s", r.state)
	}
	if r.drawable() {
		r.dev.ClearDepth()
	}
	r.drawn = r.drawn[:0]
	r.effects = r.effects[:0]
	r.billboards.Reset()

	r.frame++
	r.stats = FrameStats{Frame: r.frame}
	r.ctx.Stage = StageNone
	r.sceneStart = time.Now()
	r.state = InScene
	return nil
}

// EndScene closes the frame. Queued billboards are drawn first, then a
// compositor bracket still open is flushed, then screen effects are applied.
// The open bracket is reported as a state violation after the scene is
// closed.
func (r *Renderer) EndScene() error {
	if r.state != InScene {
		return r.invalid("EndScene", "called in state %s", r.state)
	}
	r.flushBillboards()
	name, n := r.comp.CloseOpen()
	r.applyEffects()
	r.state = Ready

	logger.Debug("scene ended",
		zap.Uint64("frame", r.frame),
		zap.Stringer("stage", r.ctx.Stage),
		zap.Int("polygons", r.stats.Polygons),
		zap.Int("billboards", r.stats.Billboards),
		zap.Int("skipped", r.stats.Skipped),
		zap.Duration("elapsed", time.Since(r.sceneStart)),
	)

	if name != "" {
		return r.invalid("EndScene", "%s bracket left open with %d item(s)", name, n)
	}
	return nil
}

// Present ends an open scene and makes the back buffer visible. Outstanding
// surface locks prevent the swap; outstanding texture locks are reported.
func (r *Renderer) Present() error {
	if r.state == Uninitialized {
		return r.invalid("Present", "renderer not initialized")
	}
	var sceneErr error
	if r.state == InScene {
		sceneErr = r.EndScene()
	}

	if n := r.registry.Outstanding(); n > 0 {
		sceneErr = errors.Join(sceneErr, r.invalid("Present", "%d texture lock(s) held", n))
	}

	if err := r.dev.Swap(); err != nil {
		if errors.Is(err, ErrInvalidState) {
			return errors.Join(sceneErr, r.misuse("Present", err))
		}
		r.presentLog.Warn("present skipped", zap.Error(err))
		return errors.Join(sceneErr, err)
	}
	if err := r.dev.Present(); err != nil {
		err = fmt.Errorf("%w: present: %w", ErrResource, err)
		r.presentLog.Error("present failed", zap.Error(err))
		return errors.Join(sceneErr, err)
	}
	return sceneErr
}

// ClearTarget fills the back buffer with c and resets depth.
func (r *Renderer) ClearTarget(c raster.Color) {
	if r.requireInit("ClearTarget") != nil {
		return
	}
	if r.drawable() {
		r.dev.Clear(c)
	}
}

// ClearBlack fills the back buffer with opaque black.
func (r *Renderer) ClearBlack() {
	r.ClearTarget(raster.ColorBlack)
}

// PresentBlackScreen presents a black frame.
func (r *Renderer) PresentBlackScreen() error {
	if err := r.requireInit("PresentBlackScreen"); err != nil {
		return err
	}
	r.ClearBlack()
	return r.Present()
}

// ClearZBuffer resets the UI pick buffer.
func (r *Renderer) ClearZBuffer() {
	if r.requireInit("ClearZBuffer") != nil {
		return
	}
	clear(r.uiPick)
}

// ScreenFade blends c over the whole back buffer with opacity t in [0, 1].
// It is valid inside and outside a scene.
func (r *Renderer) ScreenFade(c raster.Color, t float32) error {
	if err := r.requireInit("ScreenFade"); err != nil {
		return err
	}
	if !r.drawable() {
		return fmt.Errorf("%w: back buffer lost", ErrResource)
	}
	t = min(max(t, 0), 1)
	full := r.ctx.Clip.Bounds()
	r.dev.FillRect(full, c.WithAlpha(t), raster.BlendAlpha, full)
	return nil
}

// BlitBackToFront copies a rectangle of the back buffer to the front buffer.
func (r *Renderer) BlitBackToFront(rect clip.Rect) {
	if r.requireInit("BlitBackToFront") != nil || !r.AreRenderSurfacesOk() {
		return
	}
	r.dev.CopyToFront(rect)
}

// FaceAt returns the world face drawn at (x, y) in the current scene.
func (r *Renderer) FaceAt(x, y int) object.ID {
	if !r.inBounds(x, y) {
		return object.None
	}
	return r.dev.FaceAt(x, y)
}
