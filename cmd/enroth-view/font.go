package main

import (
	"strconv"

	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/renderer"
)

// digitRows are 3x5 bitmaps for 0-9.
var digitRows = [10][5]string{
	{"###", "#.#", "#.#", "#.#", "###"},
	{".#.", "##.", ".#.", ".#.", "###"},
	{"###", "..#", "###", "#..", "###"},
	{"###", "..#", "###", "..#", "###"},
	{"#.#", "#.#", "###", "..#", "..#"},
	{"###", "#..", "###", "..#", "###"},
	{"###", "#..", "###", "#.#", "###"},
	{"###", "..#", ".#.", ".#.", ".#."},
	{"###", "#.#", "###", "#.#", "###"},
	{"###", "#.#", "###", "..#", "###"},
}

// glyphScale enlarges the digit bitmaps.
const glyphScale = 2

var digitGlyphs = buildDigits()

// buildDigits scales the bitmaps and adds a one pixel drop shadow. Face
// pixels use index 2, shadow pixels index 1.
func buildDigits() [10]renderer.Glyph {
	var out [10]renderer.Glyph
	w, h := 3*glyphScale+1, 5*glyphScale+1
	for d, rows := range digitRows {
		pix := make([]uint8, w*h)
		for y := 0; y < 5*glyphScale; y++ {
			for x := 0; x < 3*glyphScale; x++ {
				if rows[y/glyphScale][x/glyphScale] != '#' {
					continue
				}
				pix[y*w+x] = 2
				if s := (y+1)*w + x + 1; pix[s] == 0 {
					pix[s] = 1
				}
			}
		}
		out[d] = renderer.Glyph{Width: w, Height: h, Pix: pix}
	}
	return out
}

// drawNumber writes n at (x, y) and returns the x after the last digit.
func drawNumber(r *renderer.Renderer, x, y, n int, face raster.Color) int {
	shadow := raster.ColorBlack.WithAlpha(0.6)
	for _, ch := range strconv.Itoa(n) {
		if ch < '0' || ch > '9' {
			continue
		}
		g := digitGlyphs[ch-'0']
		r.DrawText(x, y, g, face, shadow, nil)
		x += g.Width + 1
	}
	return x
}
