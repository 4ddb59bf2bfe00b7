package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses a #rrggbb or #rrggbbaa color.
func ParseColor(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xFF
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Validate checks values that would otherwise fail deep inside the renderer.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	switch c.Graphics.Backend {
	case "gl", "software", "headless":
	default:
		return fmt.Errorf("graphics: unknown backend %q", c.Graphics.Backend)
	}
	switch c.Render.Placeholder {
	case "checker", "skip":
	default:
		return fmt.Errorf("render: unknown placeholder %q", c.Render.Placeholder)
	}
	if _, err := ParseColor(c.Render.Fog.Color); err != nil {
		return fmt.Errorf("render.fog: %w", err)
	}
	if c.Data.ColorKey != "" {
		if _, err := ParseColor(c.Data.ColorKey); err != nil {
			return fmt.Errorf("data: %w", err)
		}
	}
	switch c.Screenshot.Format {
	case "png", "webp":
	default:
		return fmt.Errorf("screenshot: unknown format %q", c.Screenshot.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging: unknown format %q", c.Logging.Format)
	}
	return nil
}
