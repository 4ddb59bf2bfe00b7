package renderer

import (
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/present"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
	"github.com/Faultbox/enroth-render/internal/logger"
	"github.com/Faultbox/enroth-render/pkg/math"
)

const (
	testWidth  = 64
	testHeight = 48
)

// solid returns w x h RGBA8 pixels of one color.
func solid(w, h int, r, g, b, a uint8) surface.Pixels {
	data := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		data = append(data, r, g, b, a)
	}
	return surface.Pixels{Data: data, Width: w, Height: h, Format: surface.FormatRGBA8}
}

var testTextures = map[string]surface.Pixels{
	"red":   solid(4, 4, 255, 0, 0, 255),
	"green": solid(4, 4, 0, 255, 0, 255),
	// Left texel red, right texel green.
	"uv": {Data: []byte{255, 0, 0, 255, 0, 255, 0, 255}, Width: 2, Height: 1, Format: surface.FormatRGBA8},
	// Top-left texel is the cyan key.
	"keyed": {Data: []byte{
		0, 255, 255, 255, 255, 0, 0, 255,
		255, 0, 0, 255, 255, 0, 0, 255,
	}, Width: 2, Height: 2, Format: surface.FormatRGBA8},
}

func testDecoder() surface.Decoder {
	return surface.DecoderFunc(func(name string) (surface.Pixels, error) {
		if p, ok := testTextures[name]; ok {
			return p, nil
		}
		return surface.Pixels{}, fmt.Errorf("%w: %s", ErrDecode, name)
	})
}

// newTestRenderer returns an initialized 64x48 renderer with the test
// textures loaded.
func newTestRenderer(t *testing.T, mutate func(*Config)) (*Renderer, *present.Headless) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = testWidth, testHeight
	if mutate != nil {
		mutate(&cfg)
	}
	p := present.NewHeadless()
	r := New(cfg, device.NewSoftware(p), testDecoder())
	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	for name := range testTextures {
		if !r.LoadTexture(name, false) {
			t.Fatalf("LoadTexture(%q) failed", name)
		}
	}
	t.Cleanup(r.Release)
	return r, p
}

// wall is a square facing the default camera at the given distance along
// +X. u0 is the texture coordinate on the left edge, u1 on the right.
func wall(depth, half float32, texture string, u0, u1 float32) geometry.Polygon {
	return geometry.Polygon{
		Texture: texture,
		Vertices: []geometry.Vertex{
			{Pos: math.Vec3{X: depth, Y: half, Z: -half}, U: u0, V: 1},
			{Pos: math.Vec3{X: depth, Y: -half, Z: -half}, U: u1, V: 1},
			{Pos: math.Vec3{X: depth, Y: -half, Z: half}, U: u1, V: 0},
			{Pos: math.Vec3{X: depth, Y: half, Z: half}, U: u0, V: 0},
		},
	}
}

// backBuffer returns the software back target of a test renderer.
func backBuffer(r *Renderer) *raster.FrameBuffer {
	return r.dev.(*device.Software).FrameBuffer(device.Back)
}

func backPixel(r *Renderer, x, y int) raster.Color {
	return backBuffer(r).At(x, y)
}

func TestInitializeFailureIsFatal(t *testing.T) {
	p := &present.Headless{InitErr: errors.New("no device")}
	r := New(DefaultConfig(), device.NewSoftware(p), testDecoder())

	err := r.Initialize()
	if !errors.Is(err, ErrInitialization) {
		t.Fatalf("Initialize error = %v, want ErrInitialization", err)
	}
	if r.State() != Uninitialized {
		t.Errorf("state = %s, want uninitialized", r.State())
	}

	if err := New(DefaultConfig(), nil, testDecoder()).Initialize(); !errors.Is(err, ErrInitialization) {
		t.Errorf("Initialize without device = %v, want ErrInitialization", err)
	}
	if err := New(DefaultConfig(), device.NewSoftware(nil), testDecoder()).Initialize(); !errors.Is(err, ErrInitialization) {
		t.Errorf("Initialize without presenter = %v, want ErrInitialization", err)
	}
}

func TestSceneLifecycle(t *testing.T) {
	r, p := newTestRenderer(t, nil)

	if r.State() != Ready {
		t.Fatalf("state after Initialize = %s, want ready", r.State())
	}
	if err := r.EndScene(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("EndScene outside scene = %v, want ErrInvalidState", err)
	}
	if err := r.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := r.BeginScene(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("nested BeginScene = %v, want ErrInvalidState", err)
	}
	if r.State() != InScene {
		t.Errorf("state = %s, want in-scene", r.State())
	}
	if err := r.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if r.State() != Ready {
		t.Errorf("state after Present = %s, want ready", r.State())
	}
	if p.Frames() != 1 {
		t.Errorf("presented frames = %d, want 1", p.Frames())
	}
	if r.Stats().Frame != 1 {
		t.Errorf("frame counter = %d, want 1", r.Stats().Frame)
	}
}

func TestWorldDrawOutsideSceneIsRejected(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	p := wall(100, 20, "red", 0, 1)

	calls := map[string]func() error{
		"DrawPolygon":        func() error { return r.DrawPolygon(&p) },
		"DrawIndoorPolygon":  func() error { return r.DrawIndoorPolygon(&p) },
		"DrawOutdoorSky":     func() error { return r.DrawOutdoorSky([]geometry.Polygon{p}) },
		"BeginLightmaps":     func() error { return r.BeginLightmaps() },
		"DrawBillboardList":  func() error { return r.DrawBillboardList() },
		"DrawLines":          func() error { return r.DrawLines(nil) },
		"QueueScreenEffect":  func() error { return r.QueueScreenEffect(ScreenEffect{}) },
		"TransformBillboard": func() error { return r.TransformBillboards() },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			if err := call(); !errors.Is(err, ErrInvalidState) {
				t.Errorf("%s outside scene = %v, want ErrInvalidState", name, err)
			}
		})
	}
}

func TestRejectionLoggedAfterFilteredSkips(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetLogger(zap.New(core))
	defer logger.SetLogger(nil)

	r, _ := newTestRenderer(t, func(c *Config) { c.Placeholder = false })
	mustBegin(t, r)

	poly := wall(100, 20, "missing", 0, 1)
	for range 20 {
		_ = r.DrawIndoorPolygon(&poly)
	}
	if r.Stats().Skipped != 20 {
		t.Fatalf("Skipped = %d, want 20", r.Stats().Skipped)
	}

	_ = r.BeginDecals()
	if err := r.BeginDecals(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("nested BeginDecals = %v, want ErrInvalidState", err)
	}
	if n := logs.FilterMessage("render call rejected").Len(); n != 1 {
		t.Errorf("logged %d rejections, want 1", n)
	}
	if n := logs.FilterMessage("primitive skipped").Len(); n != 0 {
		t.Errorf("logged %d debug skips at info level", n)
	}
}

func TestStrictModePanicsOnMisuse(t *testing.T) {
	r, _ := newTestRenderer(t, func(c *Config) { c.Strict = true })
	p := wall(100, 20, "red", 0, 1)

	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, ErrInvalidState) {
			t.Errorf("recovered %v, want ErrInvalidState panic", err)
		}
	}()
	_ = r.DrawPolygon(&p)
	t.Error("expected panic")
}

func TestUninitializedCallsDoNotPanic(t *testing.T) {
	r := New(DefaultConfig(), device.NewSoftware(present.NewHeadless()), testDecoder())

	r.DrawTextureNew(0, 0, "red")
	r.FillRectFast(0, 0, 10, 10, raster.ColorRed)
	r.ClearTarget(raster.ColorBlack)
	r.Release()
	if r.LoadTexture("red", false) {
		t.Error("LoadTexture before Initialize succeeded")
	}
	if _, err := r.CreateTexture("red"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("CreateTexture before Initialize = %v, want ErrInvalidState", err)
	}
	if err := r.Present(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Present before Initialize = %v, want ErrInvalidState", err)
	}
}

func TestCreateTextureIsIdempotent(t *testing.T) {
	r, _ := newTestRenderer(t, nil)

	a, err := r.CreateTexture("Wall01")
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	b, err := r.CreateTexture("Wall01")
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if a != b || a.ID() != b.ID() {
		t.Errorf("CreateTexture returned distinct textures %d and %d", a.ID(), b.ID())
	}
}

func TestPresentRefusesOutstandingLock(t *testing.T) {
	r, p := newTestRenderer(t, nil)

	l, err := r.LockRenderSurface(clip.Rect{})
	if err != nil {
		t.Fatalf("LockRenderSurface: %v", err)
	}
	if l.Width != testWidth || l.Height != testHeight || l.Pitch != testWidth*4 {
		t.Errorf("lock reports %dx%d pitch %d", l.Width, l.Height, l.Pitch)
	}
	if _, err := r.LockRenderSurface(clip.Rect{}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second lock = %v, want ErrInvalidState", err)
	}
	if err := r.Present(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Present with lock held = %v, want ErrInvalidState", err)
	}
	if p.Frames() != 0 {
		t.Errorf("frame presented with lock held")
	}

	l.Release()
	if err := r.Present(); err != nil {
		t.Errorf("Present after release: %v", err)
	}
}

func TestStrictModeFlagsUnbalancedLock(t *testing.T) {
	r, _ := newTestRenderer(t, func(c *Config) { c.Strict = true })
	if _, err := r.LockSurface("red", clip.Rect{}); err != nil {
		t.Fatalf("LockSurface: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for unreleased texture lock")
		}
	}()
	_ = r.Present()
}

func TestSurfaceRestore(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	p := wall(100, 20, "red", 0, 1)

	r.InvalidateSurfaces()
	if r.AreRenderSurfacesOk() {
		t.Fatal("surfaces ok after invalidate")
	}
	if err := r.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := r.DrawIndoorPolygon(&p); err != nil {
		t.Errorf("draw on lost surface = %v, want nil", err)
	}
	if err := r.Present(); !errors.Is(err, ErrResource) {
		t.Errorf("Present on lost surface = %v, want ErrResource", err)
	}

	if !r.RestoreBackBuffer() || !r.RestoreFrontBuffer() {
		t.Error("restore reported nothing to do")
	}
	if r.RestoreBackBuffer() || r.RestoreFrontBuffer() {
		t.Error("second restore reallocated")
	}
	if !r.AreRenderSurfacesOk() {
		t.Error("surfaces not ok after restore")
	}
}

func TestResize(t *testing.T) {
	r, _ := newTestRenderer(t, nil)

	if err := r.Resize(32, 24); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if r.RenderWidth() != 32 || r.RenderHeight() != 24 {
		t.Errorf("render size %dx%d, want 32x24", r.RenderWidth(), r.RenderHeight())
	}
	if got := r.Context().Clip.UI(); got != clip.FromSize(32, 24) {
		t.Errorf("UI clip = %+v after resize", got)
	}
	if got := r.Camera(0).Viewport; got != clip.FromSize(32, 24) {
		t.Errorf("camera viewport = %+v after resize", got)
	}

	_ = r.BeginScene()
	if err := r.Resize(16, 16); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Resize in scene = %v, want ErrInvalidState", err)
	}
}

func TestScreenFadeOutsideScene(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	r.ClearTarget(raster.ColorWhite)

	if err := r.ScreenFade(raster.ColorBlack, 1); err != nil {
		t.Fatalf("ScreenFade: %v", err)
	}
	if got := backPixel(r, 5, 5); got != raster.ColorBlack {
		t.Errorf("pixel after full fade = %+v, want black", got)
	}
}

func TestPackScreenshot(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	r.ClearTarget(raster.ColorRed)
	if err := r.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	if _, err := r.PackScreenshot(32, 24, make([]byte, 10)); !errors.Is(err, ErrResource) {
		t.Errorf("short buffer = %v, want ErrResource", err)
	}

	out := make([]byte, 32*24*3)
	n, err := r.PackScreenshot(32, 24, out)
	if err != nil {
		t.Fatalf("PackScreenshot: %v", err)
	}
	if n != len(out) {
		t.Errorf("wrote %d bytes, want %d", n, len(out))
	}
	if out[0] < 250 || out[1] > 5 || out[2] > 5 {
		t.Errorf("first pixel = %v, want red", out[:3])
	}
	if r.State() != Ready {
		t.Errorf("screenshot changed state to %s", r.State())
	}
}

func TestSaveScreenshot(t *testing.T) {
	r, _ := newTestRenderer(t, nil)
	r.ClearTarget(raster.ColorBlue)
	_ = r.Present()

	path := t.TempDir() + "/shot.png"
	if err := r.SaveScreenshot(path, 16, 12); err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	if err := r.SaveWinnersCertificate(t.TempDir() + "/cert.webp"); err != nil {
		t.Fatalf("SaveWinnersCertificate: %v", err)
	}
}
