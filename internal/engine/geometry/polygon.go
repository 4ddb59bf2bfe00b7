// Package geometry turns world-space polygons into clipped screen-space
// vertices ready for rasterization.
package geometry

import (
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// Vertex is a world-space vertex with texture coordinates.
type Vertex struct {
	Pos  math.Vec3
	U, V float32
}

// Plane is a face plane: Normal·p + Dist = 0 for points on the face.
type Plane struct {
	Normal math.Vec3
	Dist   float32
}

// Distance returns the signed distance of p from the plane.
func (pl Plane) Distance(p math.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.Dist
}

// Polygon is a per-frame world face. The renderer consumes it during the
// draw call and keeps no reference.
type Polygon struct {
	Vertices []Vertex
	Texture  string // registry name

	Transparent           bool
	ClampAtTextureBorders bool

	// Diffuse multiplies the texture. The zero value draws untinted.
	Diffuse raster.Color

	// ID tags the face for picking queries.
	ID object.ID

	plane    Plane
	hasPlane bool
}

// Valid reports whether the polygon has enough vertices to draw.
func (p *Polygon) Valid() bool {
	return len(p.Vertices) >= 3
}

// Plane returns the face plane computed with Newell's method. The result is
// cached; call ResetPlane after editing Vertices.
func (p *Polygon) Plane() Plane {
	if p.hasPlane {
		return p.plane
	}
	var n, centroid math.Vec3
	for i, v := range p.Vertices {
		next := p.Vertices[(i+1)%len(p.Vertices)].Pos
		cur := v.Pos
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
		centroid = centroid.Add(cur)
	}
	if len(p.Vertices) > 0 {
		centroid = centroid.Scale(1 / float32(len(p.Vertices)))
	}
	n = n.Normalize()
	p.plane = Plane{Normal: n, Dist: -n.Dot(centroid)}
	p.hasPlane = true
	return p.plane
}

// ResetPlane drops the cached plane.
func (p *Polygon) ResetPlane() {
	p.hasPlane = false
}

// Center returns the vertex centroid.
func (p *Polygon) Center() math.Vec3 {
	var c math.Vec3
	for _, v := range p.Vertices {
		c = c.Add(v.Pos)
	}
	if len(p.Vertices) == 0 {
		return c
	}
	return c.Scale(1 / float32(len(p.Vertices)))
}
