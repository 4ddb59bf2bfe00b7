package billboard

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 0.05
}

func TestRadians(t *testing.T) {
	if !near(Radians(512), gomath.Pi/2) {
		t.Errorf("Radians(512) = %f, want pi/2", Radians(512))
	}
	if !near(Radians(AngleUnits), 2*gomath.Pi) {
		t.Errorf("Radians(2048) = %f, want 2pi", Radians(AngleUnits))
	}
}

func TestMakeScalesWithDepth(t *testing.T) {
	cam := camera.New(clip.FromSize(640, 480))
	tr := Transform{Position: math.Vec3{X: 200}, HalfWidth: 16, HalfHeight: 32, ID: object.New(object.KindActor, 3)}

	a, ok := Make(cam, tr, "goblin", raster.ColorWhite, 0)
	if !ok {
		t.Fatal("Make failed for visible sprite")
	}
	if !near(a.X, 320) || !near(a.Y, 240) {
		t.Errorf("center = (%f, %f), want screen center", a.X, a.Y)
	}
	if a.ID != tr.ID || a.Texture != "goblin" {
		t.Errorf("billboard lost its identity: %+v", a)
	}

	tr.Position.X = 400
	b, ok := Make(cam, tr, "goblin", raster.ColorWhite, 0)
	if !ok {
		t.Fatal("Make failed for farther sprite")
	}
	if !near(b.HalfW*2, a.HalfW) || !near(b.HalfH*2, a.HalfH) {
		t.Errorf("doubling depth gave halves %f/%f, want %f/%f", b.HalfW, b.HalfH, a.HalfW/2, a.HalfH/2)
	}
	if b.Depth <= a.Depth || b.Z <= a.Z {
		t.Error("farther sprite should have larger depth")
	}
}

func TestMakeRejectsInvisible(t *testing.T) {
	cam := camera.New(clip.FromSize(640, 480))
	if _, ok := Make(cam, Transform{Position: math.Vec3{X: -50}, HalfWidth: 8, HalfHeight: 8}, "s", raster.ColorWhite, 0); ok {
		t.Error("sprite behind the camera should be rejected")
	}
	if _, ok := Make(cam, Transform{Position: math.Vec3{X: 100, Y: 5000}, HalfWidth: 8, HalfHeight: 8}, "s", raster.ColorWhite, 0); ok {
		t.Error("sprite far outside the viewport should be rejected")
	}
}

func TestCornersRotation(t *testing.T) {
	b := Billboard{X: 100, Y: 100, HalfW: 10, HalfH: 5}
	c := b.Corners()
	if !near(c[0][0], 90) || !near(c[0][1], 95) || !near(c[2][0], 110) || !near(c[2][1], 105) {
		t.Errorf("unrotated corners = %v", c)
	}

	b.Angle = Radians(512)
	c = b.Corners()
	// The right edge midpoint rotates to the top.
	midX := (c[1][0] + c[2][0]) / 2
	midY := (c[1][1] + c[2][1]) / 2
	if !near(midX, 100) || !near(midY, 90) {
		t.Errorf("rotated right edge at (%f, %f), want (100, 90)", midX, midY)
	}
}

func TestQueueDrawsBackToFront(t *testing.T) {
	var q Queue
	// Near one submitted first.
	q.Push(Billboard{Depth: 10, Texture: "near"})
	q.Push(Billboard{Depth: 50, Texture: "far"})

	out := q.Drain()
	if len(out) != 2 || out[0].Texture != "far" || out[1].Texture != "near" {
		t.Fatalf("Drain order = %v, want far then near", textures(out))
	}
	if q.Len() != 0 {
		t.Errorf("Len() after Drain = %d", q.Len())
	}
}

func TestQueueTiesKeepSubmissionOrder(t *testing.T) {
	var q Queue
	for _, name := range []string{"a", "b", "c", "d"} {
		q.Push(Billboard{Depth: 20, Texture: name})
	}
	q.Push(Billboard{Depth: 30, Texture: "back"})

	got := textures(q.Drain())
	want := []string{"back", "a", "b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Drain = %v, want %v", got, want)
		}
	}
}

func textures(bs []Billboard) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Texture
	}
	return out
}

func TestActorTint(t *testing.T) {
	tests := []struct {
		name string
		p    TintParams
		want float32 // red channel
	}{
		{"no light", TintParams{MaxDimming: 31, NoLight: true}, 1},
		{"full bright", TintParams{}, 1},
		{"fully dimmed", TintParams{MaxDimming: 31}, 0},
		{"half way", TintParams{MinDimming: 0, MaxDimming: 31, Distance: 500, DimDistance: 1000}, 16.0 / 31},
		{"outdoor tint", TintParams{Tinting: true, Ambient: raster.Color{R: 0.5, G: 1, B: 1}}, 0.5},
		{"indoor ignores tint", TintParams{Tinting: true, Indoor: true, Ambient: raster.Color{R: 0.5, G: 1, B: 1}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ActorTint(tt.p)
			if !near(got.R, tt.want) || got.A != 1 {
				t.Errorf("ActorTint = %+v, want R=%f", got, tt.want)
			}
			if again := ActorTint(tt.p); again != got {
				t.Error("ActorTint is not deterministic")
			}
		})
	}
}
