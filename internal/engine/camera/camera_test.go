package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/pkg/math"
)

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-3
}

func TestForward(t *testing.T) {
	tests := []struct {
		name       string
		yaw, pitch float32
		want       math.Vec3
	}{
		{"east", 0, 0, math.Vec3{X: 1}},
		{"north", gomath.Pi / 2, 0, math.Vec3{Y: 1}},
		{"up clamps", 0, gomath.Pi, math.Vec3{X: float32(gomath.Cos(maxPitch)), Z: float32(gomath.Sin(maxPitch))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(clip.FromSize(640, 480))
			c.Yaw, c.Pitch = tt.yaw, tt.pitch
			got := c.Forward()
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.Z, tt.want.Z) {
				t.Errorf("Forward() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewDepthAndCanSee(t *testing.T) {
	c := New(clip.FromSize(640, 480))
	p := math.Vec3{X: 100, Y: 3}
	if d := c.ViewDepth(p); !near(d, 100) {
		t.Errorf("ViewDepth = %f, want 100", d)
	}
	if !c.CanSee(p, math.Vec3{X: -1}) {
		t.Error("face pointing at the camera should be visible")
	}
	if c.CanSee(p, math.Vec3{X: 1}) {
		t.Error("face pointing away should be culled")
	}
}

func TestViewProjectionCentersForwardPoint(t *testing.T) {
	c := New(clip.FromSize(640, 480))
	c.Position = math.Vec3{X: 10, Y: 20, Z: 30}
	c.Yaw = 1.2
	p := c.Position.Add(c.Forward().Scale(500))

	ndc := c.ViewProjection().TransformPoint(p)
	if !near(ndc.X, 0) || !near(ndc.Y, 0) {
		t.Errorf("forward point projects to (%f, %f), want center", ndc.X, ndc.Y)
	}
	if ndc.Z <= -1 || ndc.Z >= 1 {
		t.Errorf("depth %f outside (-1, 1)", ndc.Z)
	}
}

func TestHandleMovementStaysOnGround(t *testing.T) {
	c := New(clip.FromSize(640, 480))
	c.Pitch = 0.5
	c.HandleMovement(10, 0, 0)
	if !near(c.Position.X, 10) || !near(c.Position.Z, 0) {
		t.Errorf("Position = %+v, want (10, 0, 0)", c.Position)
	}
}
