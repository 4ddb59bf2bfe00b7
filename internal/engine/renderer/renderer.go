// Package renderer implements the render contract used by game code. Pixel
// work goes through a device.Device: the OpenGL backend in a window, the
// software rasterizer headless and in tests.
package renderer

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/billboard"
	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/compositor"
	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	// Strict panics on state machine violations instead of logging them.
	Strict bool

	MaxTextures   int
	TextureMemory int64 // bytes, 0 for no limit
	// Placeholder draws a checker texture in place of missing ones. When
	// false such primitives are skipped.
	Placeholder bool
	Filter      raster.Filter

	Fog               geometry.Fog
	IndoorDimDistance float32
	ZBias             geometry.ZBiases

	Tinting       bool
	ColoredLights bool
}

// DefaultConfig returns a 640x480 configuration with built-in calibration.
func DefaultConfig() Config {
	return Config{
		Width:             640,
		Height:            480,
		MaxTextures:       4096,
		Placeholder:       true,
		IndoorDimDistance: 6000,
		ZBias:             geometry.DefaultZBiases(),
		Tinting:           true,
		ColoredLights:     true,
	}
}

// FrameStats counts the work of one scene.
type FrameStats struct {
	Frame        uint64
	Polygons     int // world polygons that produced pixels
	Culled       int // polygons or sprites outside the view
	Skipped      int // primitives dropped for missing resources
	Placeholders int // draws that used the placeholder texture
	Invalid      int // rejected calls
	Billboards   int
	Lightmaps    int
	Decals       int
	Pixels       int
}

// Renderer is the concrete render backend. It is not safe for concurrent
// use; all calls come from the render loop.
type Renderer struct {
	cfg     Config
	dev     device.Device
	decoder surface.Decoder

	state    SceneState
	ctx      RenderContext
	registry *surface.Registry

	billboards billboard.Queue
	drawn      []billboard.Billboard
	effects    []ScreenEffect
	comp       *compositor.Set

	uiPick []uint32

	tinting       bool
	coloredLights bool

	frame      uint64
	sceneStart time.Time
	stats      FrameStats

	// One limiter per log site so frequent skips cannot hide rejections.
	rejectLog  *logger.Limiter
	skipLog    *logger.Limiter
	presentLog *logger.Limiter
}

// New creates an uninitialized renderer drawing through dev. dec supplies
// texture pixels.
func New(cfg Config, dev device.Device, dec surface.Decoder) *Renderer {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 640, 480
	}
	r := &Renderer{
		cfg:           cfg,
		dev:           dev,
		decoder:       dec,
		tinting:       cfg.Tinting,
		coloredLights: cfg.ColoredLights,
		rejectLog:     logger.NewLimiter(time.Second, 8),
		skipLog:       logger.NewLimiter(time.Second, 8),
		presentLog:    logger.NewLimiter(time.Second, 4),
	}
	r.ctx = RenderContext{
		Clip:    clip.NewState(cfg.Width, cfg.Height),
		Fog:     cfg.Fog,
		Dimming: geometry.Dimming{Distance: cfg.IndoorDimDistance},
		ZBias:   cfg.ZBias,
	}
	for _, mode := range []camera.Mode{camera.Indoor, camera.Outdoor} {
		r.ctx.Cameras[mode] = camera.New(r.ctx.Clip.Bounds())
	}
	r.comp = compositor.NewSet(r.flushLightmap, r.flushDecal)
	return r
}

// Initialize creates the render targets and the texture registry. Failure
// is fatal.
func (r *Renderer) Initialize() error {
	if r.state != Uninitialized {
		return r.invalid("Initialize", "renderer already initialized")
	}
	if r.dev == nil {
		return fmt.Errorf("%w: no device", ErrInitialization)
	}
	if err := r.dev.Init(r.cfg.Width, r.cfg.Height); err != nil {
		return fmt.Errorf("%w: device: %w", ErrInitialization, err)
	}

	r.registry = surface.NewRegistry(r.decoder, surface.RegistryConfig{
		MaxTextures:  r.cfg.MaxTextures,
		MemoryBudget: r.cfg.TextureMemory,
	})
	r.allocate(r.cfg.Width, r.cfg.Height)
	r.state = Ready

	logger.Info("renderer initialized",
		zap.Int("width", r.cfg.Width),
		zap.Int("height", r.cfg.Height),
		zap.Bool("strict", r.cfg.Strict),
		zap.Bool("placeholder", r.cfg.Placeholder),
	)
	return nil
}

// allocate sizes the clip state, the camera viewports and the UI pick buffer
// for w x h.
func (r *Renderer) allocate(w, h int) {
	r.ctx.Clip.Resize(w, h)
	for _, cam := range r.ctx.Cameras {
		cam.Viewport = r.ctx.Clip.Bounds()
	}
	r.uiPick = make([]uint32, w*h)
}

// Release tears down the registry and the device. The renderer returns
// to Uninitialized and may be initialized again.
func (r *Renderer) Release() {
	if r.state == Uninitialized {
		return
	}
	if r.state == InScene {
		r.comp.CloseOpen()
		r.billboards.Reset()
	}
	r.registry.Close()
	r.dev.Close()
	r.registry = nil
	r.state = Uninitialized
	logger.Info("renderer released", zap.Uint64("frames", r.frame))
}

// State returns the lifecycle state.
func (r *Renderer) State() SceneState { return r.state }

// Context returns the render context. It is owned by the renderer.
func (r *Renderer) Context() *RenderContext { return &r.ctx }

// Stats returns the counters of the current or last scene.
func (r *Renderer) Stats() FrameStats { return r.stats }

// drawable reports whether the back target can take draws.
func (r *Renderer) drawable() bool {
	return r.state != Uninitialized && !r.dev.Lost(device.Back)
}

// inBounds reports whether (x, y) lies on the render target.
func (r *Renderer) inBounds(x, y int) bool {
	return r.state != Uninitialized && x >= 0 && y >= 0 && x < r.cfg.Width && y < r.cfg.Height
}

// requireScene rejects op outside an open scene.
func (r *Renderer) requireScene(op string) error {
	if r.state != InScene {
		return r.invalid(op, "called in state %s", r.state)
	}
	return nil
}

// requireInit rejects op before Initialize.
func (r *Renderer) requireInit(op string) error {
	if r.state == Uninitialized {
		return r.invalid(op, "renderer not initialized")
	}
	return nil
}
