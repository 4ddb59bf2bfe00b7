package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/assets"
	"github.com/Faultbox/enroth-render/internal/config"
	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/input"
	"github.com/Faultbox/enroth-render/internal/engine/renderer"
	"github.com/Faultbox/enroth-render/internal/engine/screenshot"
	"github.com/Faultbox/enroth-render/internal/engine/window"
	"github.com/Faultbox/enroth-render/internal/logger"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// Camera speeds per second.
const (
	moveSpeed = 600
	turnSpeed = 1.8
)

// Viewer owns the window, the renderer and the demo scene.
type Viewer struct {
	cfg *config.Config

	win      *window.Window // nil when headless
	input    *input.Input
	dev      device.Device
	renderer *renderer.Renderer
	assets   *assets.Manager
	capture  *screenshot.Capture

	scene   *demoScene
	mode    camera.Mode
	cameras [2]*camera.Camera

	frames  int
	start   time.Time
	preload assets.PreloadResult
}

// NewViewer builds the render device, loads textures and initializes the
// renderer.
func NewViewer(cfg *config.Config) (*Viewer, error) {
	rc, err := rendererConfig(cfg)
	if err != nil {
		return nil, err
	}
	key, err := colorKey(cfg)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:     cfg,
		capture: newCapture(cfg),
		scene:   newDemoScene(),
		mode:    camera.Outdoor,
	}

	if cfg.Graphics.Backend != "headless" {
		win, err := window.New(window.Config{
			Title:      "Enroth Render",
			Width:      cfg.Graphics.Width,
			Height:     cfg.Graphics.Height,
			Fullscreen: cfg.Graphics.Fullscreen,
			VSync:      cfg.Graphics.VSync,
		})
		if err != nil {
			return nil, fmt.Errorf("creating window: %w", err)
		}
		v.win = win
		v.input = input.New()
	}
	v.dev = newDevice(cfg, v.win)

	v.assets = assets.NewManager()
	src := assets.NewDirSource(cfg.Data.TextureDir)
	v.assets.AddSource(src)
	dec := assets.NewTextureDecoder(v.assets, key)

	files, err := src.Names()
	if err != nil {
		logger.Warn("texture directory unavailable, using generated textures",
			zap.String("dir", cfg.Data.TextureDir), zap.Error(err))
	}
	v.preload = dec.Preload(context.Background(), files, cfg.Data.PreloadWorkers)
	if v.preload.Err != nil {
		logger.Warn("some textures failed to preload", zap.Int("failed", v.preload.Failed), zap.Error(v.preload.Err))
	}

	v.renderer = renderer.New(rc, v.dev, dec)
	if err := v.renderer.Initialize(); err != nil {
		v.Close()
		return nil, err
	}
	if err := loadTextures(v.renderer, baseNames(files)); err != nil {
		v.Close()
		return nil, fmt.Errorf("uploading textures: %w", err)
	}

	v.cameras[camera.Outdoor] = v.renderer.Camera(camera.Outdoor)
	v.cameras[camera.Outdoor].Position = math.Vec3{X: -600, Y: 0, Z: 220}
	v.cameras[camera.Outdoor].Pitch = -0.12
	v.cameras[camera.Indoor] = v.renderer.Camera(camera.Indoor)
	v.cameras[camera.Indoor].Position = math.Vec3{X: -700, Y: -200, Z: 160}
	v.cameras[camera.Indoor].Yaw = 0.2
	v.renderer.SetCamera(v.mode, v.cameras[v.mode])

	logger.Info("viewer ready",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("backend", cfg.Graphics.Backend),
		zap.Stringer("textures", v.renderer.TextureStats()),
	)
	return v, nil
}

// Run renders frames until the window closes, or for frames frames when
// frames is positive. A headless viewer renders at least one frame. The
// last frame is saved to shotPath when it is set.
func (v *Viewer) Run(frames int, shotPath string) error {
	if v.win == nil && frames <= 0 {
		frames = 1
	}
	v.start = time.Now()
	last := v.start
	titleAt, titleFrames := v.start, 0

	for frames <= 0 || v.frames < frames {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		if v.input != nil {
			if v.input.Update() {
				break
			}
			v.handleInput(dt)
		}

		if err := v.scene.Draw(v.renderer, v.mode, dt); err != nil {
			logger.Warn("frame incomplete", zap.Int("frame", v.frames), zap.Error(err))
		}
		if err := v.renderer.Present(); err != nil {
			if errors.Is(err, renderer.ErrInitialization) {
				return err
			}
			logger.Warn("present failed", zap.Int("frame", v.frames), zap.Error(err))
		}
		v.frames++

		if v.win != nil && now.Sub(titleAt) >= time.Second {
			fps := float64(v.frames-titleFrames) / now.Sub(titleAt).Seconds()
			v.win.SetTitle(fmt.Sprintf("Enroth Render - %s - %.0f fps", v.mode, fps))
			titleAt, titleFrames = now, v.frames
		}
	}

	if shotPath != "" {
		if err := v.renderer.SaveScreenshot(shotPath, 0, 0); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) handleInput(dt float32) {
	for _, a := range v.input.Actions() {
		switch a {
		case input.ActionScreenshot:
			v.screenshot()
		case input.ActionToggleTint:
			logger.Info("actor tinting", zap.Bool("enabled", v.renderer.ToggleTint()))
		case input.ActionToggleColoredLights:
			logger.Info("colored lights", zap.Bool("enabled", v.renderer.ToggleColoredLights()))
		case input.ActionToggleBounds:
			v.scene.bounds = !v.scene.bounds
		case input.ActionToggleMode:
			v.mode = 1 - v.mode
			v.renderer.SetCamera(v.mode, v.cameras[v.mode])
			logger.Info("scene mode", zap.Stringer("mode", v.mode))
		}
	}

	if ok, w, h := v.input.Resized(); ok {
		dw, dh := v.win.DrawableSize()
		logger.Debug("window resized",
			zap.Int("width", w), zap.Int("height", h),
			zap.Int("drawable_width", dw), zap.Int("drawable_height", dh))
	}

	m := v.input.Movement()
	cam := v.cameras[v.mode]
	cam.Yaw -= m.Turn * turnSpeed * dt
	cam.HandleMovement(m.Forward*moveSpeed*dt, m.Right*moveSpeed*dt, m.Up*moveSpeed*dt)
}

func (v *Viewer) screenshot() {
	img, err := v.renderer.Screenshot(0, 0)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	path, err := v.capture.Save(img)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

// Summary logs the session totals.
func (v *Viewer) Summary() {
	elapsed := time.Since(v.start)
	fps := 0.0
	if s := elapsed.Seconds(); s > 0 {
		fps = float64(v.frames) / s
	}
	logger.Info("session summary",
		zap.Int("frames", v.frames),
		zap.String("elapsed", durafmt.Parse(elapsed).LimitFirstN(2).String()),
		zap.String("fps", fmt.Sprintf("%.1f", fps)),
		zap.Int("preloaded", v.preload.Decoded),
		zap.String("preload_bytes", humanize.IBytes(uint64(v.preload.Bytes))),
		zap.Stringer("textures", v.renderer.TextureStats()),
	)
}

// Close releases the renderer and the window.
func (v *Viewer) Close() {
	if v.renderer != nil {
		v.renderer.Release()
	}
	if v.assets != nil {
		v.assets.Close()
	}
	if v.win != nil {
		v.win.Close()
		v.win = nil
	}
}
