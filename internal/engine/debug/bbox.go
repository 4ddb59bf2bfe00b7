// Package debug provides debug visualization utilities.
package debug

import "github.com/Faultbox/enroth-render/pkg/math"

// Segment is a world-space line from A to B.
type Segment struct {
	A, B math.Vec3
}

// BoxEdgeCount is the number of segments in a box wireframe.
const BoxEdgeCount = 12

// DefaultBoxPadding is the default padding for selection boxes.
const DefaultBoxPadding = 8.0

// BoxEdges returns the 12 edges of the axis-aligned box spanning lo and hi.
// The corners may be given in any order.
func BoxEdges(lo, hi math.Vec3) []Segment {
	lo, hi = ordered(lo, hi)
	c := func(x, y, z bool) math.Vec3 {
		p := lo
		if x {
			p.X = hi.X
		}
		if y {
			p.Y = hi.Y
		}
		if z {
			p.Z = hi.Z
		}
		return p
	}
	return []Segment{
		// Bottom
		{c(false, false, false), c(true, false, false)},
		{c(true, false, false), c(true, true, false)},
		{c(true, true, false), c(false, true, false)},
		{c(false, true, false), c(false, false, false)},
		// Top
		{c(false, false, true), c(true, false, true)},
		{c(true, false, true), c(true, true, true)},
		{c(true, true, true), c(false, true, true)},
		{c(false, true, true), c(false, false, true)},
		// Vertical
		{c(false, false, false), c(false, false, true)},
		{c(true, false, false), c(true, false, true)},
		{c(true, true, false), c(true, true, true)},
		{c(false, true, false), c(false, true, true)},
	}
}

// SelectionBox returns the edges of a box of half extents around center,
// grown by padding on every side.
func SelectionBox(center, half math.Vec3, padding float32) []Segment {
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	return BoxEdges(center.Sub(half).Sub(pad), center.Add(half).Add(pad))
}

func ordered(a, b math.Vec3) (math.Vec3, math.Vec3) {
	if a.X > b.X {
		a.X, b.X = b.X, a.X
	}
	if a.Y > b.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	if a.Z > b.Z {
		a.Z, b.Z = b.Z, a.Z
	}
	return a, b
}
