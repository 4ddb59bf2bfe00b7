package geometry

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 0.05
}

func testCamera() *camera.Camera {
	return camera.New(clip.FromSize(640, 480))
}

func wall(x, half float32) []Vertex {
	return []Vertex{
		{Pos: math.Vec3{X: x, Y: half, Z: -half}, U: 0, V: 1},
		{Pos: math.Vec3{X: x, Y: -half, Z: -half}, U: 1, V: 1},
		{Pos: math.Vec3{X: x, Y: -half, Z: half}, U: 1, V: 0},
		{Pos: math.Vec3{X: x, Y: half, Z: half}, U: 0, V: 0},
	}
}

func TestPlaneNewell(t *testing.T) {
	p := &Polygon{Vertices: []Vertex{
		{Pos: math.Vec3{X: 0, Y: 0, Z: 5}},
		{Pos: math.Vec3{X: 1, Y: 0, Z: 5}},
		{Pos: math.Vec3{X: 1, Y: 1, Z: 5}},
		{Pos: math.Vec3{X: 0, Y: 1, Z: 5}},
	}}
	pl := p.Plane()
	if !near(pl.Normal.Z, 1) || !near(pl.Dist, -5) {
		t.Errorf("Plane() = %+v, want normal +Z, dist -5", pl)
	}
	if d := pl.Distance(math.Vec3{Z: 7}); !near(d, 2) {
		t.Errorf("Distance = %f, want 2", d)
	}

	// Cached until reset.
	p.Vertices[0].Pos.Z = 100
	if p.Plane() != pl {
		t.Error("Plane() recomputed without ResetPlane")
	}
	p.ResetPlane()
	if p.Plane() == pl {
		t.Error("Plane() not recomputed after ResetPlane")
	}
}

func TestProjectVisibleWall(t *testing.T) {
	out := Project(testCamera(), wall(100, 10), Options{Unlit: true})
	if len(out) != 4 {
		t.Fatalf("Project returned %d vertices, want 4", len(out))
	}

	var cx, cy float32
	for _, v := range out {
		cx += v.X / 4
		cy += v.Y / 4
		if v.Z <= 0 || v.Z >= 1 {
			t.Errorf("depth %f outside (0, 1)", v.Z)
		}
		if v.C != raster.ColorWhite {
			t.Errorf("unlit color = %+v, want white", v.C)
		}
	}
	if !near(cx, 320) || !near(cy, 240) {
		t.Errorf("wall center at (%f, %f), want (320, 240)", cx, cy)
	}
	// First vertex is top-left on screen: +Y is to the left, -Z is down.
	if out[0].X >= 320 || out[0].Y <= 240 {
		t.Errorf("first vertex at (%f, %f), want lower left", out[0].X, out[0].Y)
	}
}

func TestProjectBehindCameraIsCulled(t *testing.T) {
	if out := Project(testCamera(), wall(-100, 10), Options{}); out != nil {
		t.Errorf("Project behind camera returned %d vertices", len(out))
	}
}

func TestProjectClipsNearPlaneAndKeepsUV(t *testing.T) {
	floor := []Vertex{
		{Pos: math.Vec3{X: -50, Y: -20, Z: -10}, U: 0, V: 0},
		{Pos: math.Vec3{X: 100, Y: -20, Z: -10}, U: 1, V: 0},
		{Pos: math.Vec3{X: 100, Y: 20, Z: -10}, U: 1, V: 1},
		{Pos: math.Vec3{X: -50, Y: 20, Z: -10}, U: 0, V: 1},
	}
	out := Project(testCamera(), floor, Options{})
	if len(out) < 3 {
		t.Fatalf("Project returned %d vertices, want a clipped polygon", len(out))
	}
	for _, v := range out {
		if v.X < -0.01 || v.X > 640.01 || v.Y < -0.01 || v.Y > 480.01 {
			t.Errorf("vertex (%f, %f) outside viewport", v.X, v.Y)
		}
		if v.U < 0 || v.U > 1 || v.V < 0 || v.V > 1 {
			t.Errorf("uv (%f, %f) outside the source range", v.U, v.V)
		}
		if v.InvW <= 0 {
			t.Errorf("InvW = %f, want positive", v.InvW)
		}
	}
}

func TestFogFactor(t *testing.T) {
	fog := Fog{Enabled: true, Start: 100, End: 200, Color: raster.ColorGray}
	tests := []struct {
		depth, want float32
	}{
		{50, 0},
		{100, 0},
		{150, 0.5},
		{200, 1},
		{1000, 1},
	}
	for _, tt := range tests {
		if got := fog.Factor(tt.depth); !near(got, tt.want) {
			t.Errorf("Factor(%f) = %f, want %f", tt.depth, got, tt.want)
		}
	}
	if (Fog{}).Factor(1000) != 0 {
		t.Error("disabled fog should not apply")
	}
}

func TestShadeIsMonotonic(t *testing.T) {
	dim := Dimming{Distance: 1000, MaxLevel: 24}
	fog := Fog{Enabled: true, Start: 500, End: 3000, Color: raster.ColorBlack}
	prev := float32(2)
	for d := float32(0); d <= 4000; d += 50 {
		l := Shade(raster.ColorWhite, d, dim, fog).Luminance()
		if l > prev+1e-6 {
			t.Fatalf("intensity rose from %f to %f at depth %f", prev, l, d)
		}
		prev = l
	}
	if dim.Level(1e9) != 24 {
		t.Errorf("Level beyond distance = %d, want capped at 24", dim.Level(1e9))
	}
}

func TestProjectSegmentClipsNear(t *testing.T) {
	cam := testCamera()
	a, b, ok := ProjectSegment(cam, math.Vec3{X: -100}, math.Vec3{X: 100}, raster.ColorRed, raster.ColorBlue)
	if !ok {
		t.Fatal("segment crossing the near plane should be visible")
	}
	if a.Z < 0 || b.Z > 1 || a.InvW <= 0 {
		t.Errorf("clipped endpoints out of range: %+v %+v", a, b)
	}
	if _, _, ok := ProjectSegment(cam, math.Vec3{X: -100}, math.Vec3{X: -10}, raster.ColorRed, raster.ColorRed); ok {
		t.Error("segment behind the camera should be culled")
	}
}

func TestProjectPoint(t *testing.T) {
	cam := testCamera()
	x, y, _, ok := ProjectPoint(cam, math.Vec3{X: 300})
	if !ok || !near(x, 320) || !near(y, 240) {
		t.Errorf("ProjectPoint = (%f, %f, %v), want screen center", x, y, ok)
	}
	if _, _, _, ok := ProjectPoint(cam, math.Vec3{X: -5}); ok {
		t.Error("point behind the camera should not project")
	}
}
