package main

import (
	"image"
	"image/color"
	gomath "math"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/renderer"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// Texture names used by the demo scene. A file with the same base name in
// the texture directory replaces the generated image.
const (
	texGrass   = "grass"
	texStone   = "stone"
	texWall    = "wall"
	texSky     = "sky"
	texTree    = "tree"
	texActor   = "actor"
	texSpark   = "spark"
	texFalloff = "falloff"
	texScorch  = "scorch"
	texIcon    = "icon"
)

type generated struct {
	name    string
	mipmaps bool
	make    func() *image.NRGBA
}

var demoTextures = []generated{
	{texGrass, true, func() *image.NRGBA {
		return checkerImage(64, 8, color.NRGBA{60, 120, 40, 255}, color.NRGBA{80, 150, 50, 255})
	}},
	{texStone, true, func() *image.NRGBA {
		return checkerImage(64, 16, color.NRGBA{110, 105, 100, 255}, color.NRGBA{90, 85, 80, 255})
	}},
	{texWall, true, brickImage},
	{texSky, false, skyImage},
	{texTree, false, treeImage},
	{texActor, false, actorImage},
	{texSpark, false, func() *image.NRGBA { return radialImage(32, color.NRGBA{255, 200, 120, 255}) }},
	{texFalloff, false, func() *image.NRGBA { return radialImage(64, color.NRGBA{255, 255, 255, 255}) }},
	{texScorch, false, func() *image.NRGBA { return radialImage(64, color.NRGBA{40, 30, 20, 255}) }},
	{texIcon, false, func() *image.NRGBA {
		return checkerImage(16, 4, color.NRGBA{200, 170, 60, 255}, color.NRGBA{120, 90, 30, 255})
	}},
}

// baseNames returns the extension-less names of files, for matching against
// the demo texture names.
func baseNames(files []string) map[string]bool {
	out := make(map[string]bool, len(files))
	for _, f := range files {
		out[strings.TrimSuffix(f, path.Ext(f))] = true
	}
	return out
}

// loadTextures uploads every demo texture, preferring files on disk.
func loadTextures(r *renderer.Renderer, onDisk map[string]bool) error {
	for _, g := range demoTextures {
		if onDisk[g.name] && r.LoadTexture(g.name, g.mipmaps) {
			logger.Debug("texture loaded from disk", zap.String("name", g.name))
			continue
		}
		if _, err := r.UploadImage(g.name, g.make(), g.mipmaps); err != nil {
			return err
		}
	}
	return nil
}

func checkerImage(size, cell int, a, b color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func brickImage() *image.NRGBA {
	const size, rowH, brickW = 64, 16, 32
	mortar := color.NRGBA{170, 160, 150, 255}
	brick := color.NRGBA{140, 60, 40, 255}
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		row := y / rowH
		shift := (row % 2) * brickW / 2
		for x := 0; x < size; x++ {
			c := brick
			if y%rowH == 0 || (x+shift)%brickW == 0 {
				c = mortar
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func skyImage() *image.NRGBA {
	const w, h = 4, 64
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		t := float64(y) / (h - 1)
		c := color.NRGBA{
			R: uint8(70 + 100*t),
			G: uint8(110 + 90*t),
			B: uint8(200 + 40*t),
			A: 255,
		}
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// radialImage fades c from opaque at the center to transparent at the edge.
func radialImage(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			d := gomath.Hypot(float64(x)+0.5-r, float64(y)+0.5-r) / r
			a := gomath.Max(0, 1-d)
			px := c
			px.A = uint8(float64(c.A) * a * a)
			img.SetNRGBA(x, y, px)
		}
	}
	return img
}

func treeImage() *image.NRGBA {
	const w, h = 32, 64
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	trunk := color.NRGBA{90, 60, 30, 255}
	leaves := color.NRGBA{30, 100, 40, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-w/2+0.5, float64(y)-22
			switch {
			case dx*dx+dy*dy < 14*14:
				img.SetNRGBA(x, y, leaves)
			case y >= 34 && x >= 13 && x < 19:
				img.SetNRGBA(x, y, trunk)
			}
		}
	}
	return img
}

func actorImage() *image.NRGBA {
	const w, h = 16, 32
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	skin := color.NRGBA{220, 180, 140, 255}
	cloth := color.NRGBA{60, 70, 160, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-w/2+0.5, float64(y)-5
			switch {
			case dx*dx+dy*dy < 16:
				img.SetNRGBA(x, y, skin)
			case y >= 10 && x >= 3 && x < 13:
				img.SetNRGBA(x, y, cloth)
			}
		}
	}
	return img
}
