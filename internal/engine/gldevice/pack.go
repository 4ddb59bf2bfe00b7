package gldevice

import (
	"image"
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

// Vertex layout: x, y (pixels), depth, clip w, u, v, r, g, b, a.
const (
	floatsPerVertex = 10
	vertexStride    = floatsPerVertex * 4
)

// packVertex appends v in the stream layout. Clip w is the reciprocal of
// InvW so the rasterizer interpolates UV perspective-correct; vertices
// without a perspective term get w = 1.
func packVertex(dst []float32, v raster.Vertex) []float32 {
	w := float32(1)
	if v.InvW > 0 {
		w = 1 / v.InvW
	}
	return append(dst, v.X, v.Y, v.Z, w, v.U, v.V, v.C.R, v.C.G, v.C.B, v.C.A)
}

func packFan(dst []float32, verts []raster.Vertex) []float32 {
	for _, v := range verts {
		dst = packVertex(dst, v)
	}
	return dst
}

// packRect appends r as a four vertex fan of flat color c.
func packRect(dst []float32, r clip.Rect, c raster.Color) []float32 {
	x0, y0, x1, y1 := float32(r.X), float32(r.Y), float32(r.Z), float32(r.W)
	return packFan(dst, []raster.Vertex{
		{X: x0, Y: y0, C: c},
		{X: x1, Y: y0, C: c},
		{X: x1, Y: y1, C: c},
		{X: x0, Y: y1, C: c},
	})
}

// coverage estimates the pixels a fan touches inside vis: its polygon area,
// capped by the area of its bounds clipped to vis.
func coverage(verts []raster.Vertex, vis clip.Rect) int {
	if len(verts) < 3 || vis.Empty() {
		return 0
	}
	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	var twice float64
	for i, v := range verts {
		n := verts[(i+1)%len(verts)]
		twice += float64(v.X)*float64(n.Y) - float64(n.X)*float64(v.Y)
		minX, maxX = min(minX, v.X), max(maxX, v.X)
		minY, maxY = min(minY, v.Y), max(maxY, v.Y)
	}
	box := clip.NewRect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	).Intersect(vis)
	if box.Empty() {
		return 0
	}
	area := int(math.Round(math.Abs(twice) / 2))
	return min(area, box.Width()*box.Height())
}

// lineCoverage estimates the pixels of a one pixel wide segment inside vis.
func lineCoverage(x0, y0, x1, y1 int, vis clip.Rect) int {
	box := clip.NewRect(min(x0, x1), min(y0, y1), max(x0, x1)+1, max(y0, y1)+1).Intersect(vis)
	if box.Empty() {
		return 0
	}
	return max(box.Width(), box.Height())
}

// blendState is the fixed-function blend configuration of a mode.
type blendState struct {
	enabled                    bool
	srcRGB, dstRGB, srcA, dstA uint32
}

// blendFor maps a mode to GL factors on straight alpha. Multiply relies on
// the fragment stage emitting lerp(1, S, Sa).
func blendFor(m raster.BlendMode) blendState {
	switch m {
	case raster.BlendOpaque:
		return blendState{}
	case raster.BlendAdditive:
		return blendState{true, gl.SRC_ALPHA, gl.ONE, gl.ZERO, gl.ONE}
	case raster.BlendMultiply:
		return blendState{true, gl.DST_COLOR, gl.ZERO, gl.ZERO, gl.ONE}
	default:
		return blendState{true, gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA}
	}
}

// scissorBox converts a clip rect to glScissor arguments. Targets are drawn
// with row 0 at the top of the frame in both memory and window space, so no
// flip is needed.
func scissorBox(r clip.Rect) (x, y, w, h int32) {
	r = r.Normalize()
	return int32(r.X), int32(r.Y), int32(r.Width()), int32(r.Height())
}

// encodePick stores an id in the R32UI pick attachment. Zero is no object.
func encodePick(id object.ID) uint32 {
	if id.IsNone() {
		return 0
	}
	return uint32(id.Index)<<3 | uint32(id.Kind&7)
}

func decodePick(v uint32) object.ID {
	if v == 0 {
		return object.None
	}
	return object.ID{Kind: object.Kind(v & 7), Index: int(v >> 3)}
}

// texelOffset is added to a window pixel to find the source texel of a
// blit that puts sr of src at (dx, dy).
func texelOffset(src image.Rectangle, sr image.Rectangle, dx, dy int) (int32, int32) {
	return int32(sr.Min.X - src.Min.X - dx), int32(sr.Min.Y - src.Min.Y - dy)
}

// channels converts a color to the byte order of an RGBA8 target.
func channels(c raster.Color) [4]uint8 {
	r, g, b, a := c.Bytes()
	return [4]uint8{r, g, b, a}
}
