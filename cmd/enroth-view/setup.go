package main

import (
	"fmt"
	"image/color"

	"github.com/Faultbox/enroth-render/internal/assets"
	"github.com/Faultbox/enroth-render/internal/config"
	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/display"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/gldevice"
	"github.com/Faultbox/enroth-render/internal/engine/present"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/renderer"
	"github.com/Faultbox/enroth-render/internal/engine/screenshot"
	"github.com/Faultbox/enroth-render/internal/engine/window"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// colorKeyTolerance absorbs the off-by-a-few cyan used by some exported
// sprites.
const colorKeyTolerance = 4

func toColor(c color.NRGBA) raster.Color {
	return raster.RGBA(c.R, c.G, c.B, c.A)
}

// newDevice picks the render device for the configured backend. win is nil
// for the headless backend.
func newDevice(cfg *config.Config, win *window.Window) device.Device {
	smooth := cfg.Render.Filter == "bilinear"
	switch cfg.Graphics.Backend {
	case "gl":
		d := gldevice.New(win)
		d.Smooth = smooth
		return d
	case "software":
		p := display.New(win)
		p.Smooth = smooth
		return device.NewSoftware(p)
	default:
		return device.NewSoftware(present.NewHeadless())
	}
}

// rendererConfig maps the file configuration onto the renderer.
func rendererConfig(cfg *config.Config) (renderer.Config, error) {
	fog, err := config.ParseColor(cfg.Render.Fog.Color)
	if err != nil {
		return renderer.Config{}, fmt.Errorf("fog color: %w", err)
	}

	rc := renderer.DefaultConfig()
	rc.Width = cfg.Graphics.Width
	rc.Height = cfg.Graphics.Height
	rc.Strict = cfg.Render.Strict
	rc.MaxTextures = cfg.Render.MaxTextures
	rc.TextureMemory = int64(cfg.Render.TextureMemoryMB) << 20
	rc.Placeholder = cfg.Render.Placeholder != "skip"
	rc.Filter = raster.ParseFilter(cfg.Render.Filter)
	rc.Fog = geometry.Fog{
		Enabled: cfg.Render.Fog.Enabled,
		Start:   cfg.Render.Fog.Start,
		End:     cfg.Render.Fog.End,
		Color:   toColor(fog),
	}
	rc.IndoorDimDistance = cfg.Render.IndoorDimDistance
	rc.ZBias = geometry.ZBiases{
		Sky:      cfg.Render.ZBias.Sky,
		Terrain:  cfg.Render.ZBias.Terrain,
		Lightmap: cfg.Render.ZBias.Lightmap,
		Decal:    cfg.Render.ZBias.Decal,
	}
	rc.Tinting = cfg.Render.Tinting
	rc.ColoredLights = cfg.Render.ColoredLights
	return rc, nil
}

// colorKey returns the transparent key color for loaded textures, or nil
// when keying is disabled.
func colorKey(cfg *config.Config) (*assets.ColorKey, error) {
	if cfg.Data.ColorKey == "" {
		return nil, nil
	}
	c, err := config.ParseColor(cfg.Data.ColorKey)
	if err != nil {
		return nil, fmt.Errorf("color key: %w", err)
	}
	return &assets.ColorKey{Color: c, Tolerance: colorKeyTolerance}, nil
}

// logOptions maps the logging section onto the logger.
func logOptions(cfg *config.Config) logger.Options {
	opts := logger.Options{
		Level:   cfg.Logging.Level,
		Console: true,
		JSON:    cfg.Logging.Format == "json",
	}
	if cfg.Logging.LogFile != "" {
		f := logger.DefaultFileConfig(cfg.Logging.LogFile)
		if cfg.Logging.MaxSizeMB > 0 {
			f.MaxSizeMB = cfg.Logging.MaxSizeMB
		}
		if cfg.Logging.MaxBackups > 0 {
			f.MaxBackups = cfg.Logging.MaxBackups
		}
		if cfg.Logging.MaxAgeDays > 0 {
			f.MaxAgeDays = cfg.Logging.MaxAgeDays
		}
		opts.File = f
	}
	return opts
}

// writeConfig saves cfg to path, or to the user config directory when path
// is "user".
func writeConfig(cfg *config.Config, path string) error {
	if path == "user" {
		written, err := cfg.Save()
		if err != nil {
			return err
		}
		fmt.Println(written)
		return nil
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func newCapture(cfg *config.Config) *screenshot.Capture {
	return screenshot.NewCapture(cfg.Screenshot.Dir, cfg.Screenshot.Prefix, screenshot.ParseFormat(cfg.Screenshot.Format))
}
