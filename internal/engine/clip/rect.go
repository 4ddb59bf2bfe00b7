// Package clip holds the UI and raster clip rectangles that bound every draw call.
package clip

import "image"

// Rect is an axis-aligned clip bound. X,Y are the top-left corner and Z,W the
// right and bottom edges, both exclusive.
type Rect struct {
	X, Y int
	Z, W int
}

// NewRect creates a Rect from its four bounds, swapping inverted edges.
func NewRect(x, y, z, w int) Rect {
	return Rect{X: x, Y: y, Z: z, W: w}.Normalize()
}

// FromSize creates a Rect covering a width x height surface.
func FromSize(width, height int) Rect {
	return Rect{X: 0, Y: 0, Z: width, W: height}
}

// Normalize returns r with X <= Z and Y <= W.
func (r Rect) Normalize() Rect {
	if r.X > r.Z {
		r.X, r.Z = r.Z, r.X
	}
	if r.Y > r.W {
		r.Y, r.W = r.W, r.Y
	}
	return r
}

// Width returns Z - X.
func (r Rect) Width() int {
	return r.Z - r.X
}

// Height returns W - Y.
func (r Rect) Height() int {
	return r.W - r.Y
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.X >= r.Z || r.Y >= r.W
}

// Contains reports whether pixel (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Z && y >= r.Y && y < r.W
}

// Intersect returns the overlap of r and other. The result may be empty.
func (r Rect) Intersect(other Rect) Rect {
	out := Rect{
		X: max(r.X, other.X),
		Y: max(r.Y, other.Y),
		Z: min(r.Z, other.Z),
		W: min(r.W, other.W),
	}
	if out.Empty() {
		return Rect{X: out.X, Y: out.Y, Z: out.X, W: out.Y}
	}
	return out
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Z, r.W)
}

// FromImage converts an image.Rectangle to a Rect.
func FromImage(ir image.Rectangle) Rect {
	ir = ir.Canon()
	return Rect{X: ir.Min.X, Y: ir.Min.Y, Z: ir.Max.X, W: ir.Max.Y}
}
