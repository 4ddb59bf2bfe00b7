// Package camera provides the first-person camera that feeds world-to-screen
// projection.
package camera

import (
	gomath "math"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// Mode selects which world transform a draw call uses.
type Mode uint8

const (
	Indoor Mode = iota
	Outdoor
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Outdoor {
		return "outdoor"
	}
	return "indoor"
}

// maxPitch keeps the view away from the up-vector singularity.
const maxPitch = 89 * gomath.Pi / 180

// Up is the world up axis.
var Up = math.Vec3{X: 0, Y: 0, Z: 1}

// Camera is a first-person camera in a z-up world. Yaw 0 looks along +X and
// grows counter-clockwise seen from above; positive pitch looks up.
type Camera struct {
	Position math.Vec3
	Yaw      float32 // radians
	Pitch    float32 // radians

	FovY float32 // vertical field of view, radians
	Near float32
	Far  float32

	// Viewport is the screen rectangle the projection maps onto.
	Viewport clip.Rect

	// Sensitivity
	YawSensitivity  float32
	MoveSensitivity float32
}

// New creates a camera with MM-style defaults covering viewport.
func New(viewport clip.Rect) *Camera {
	return &Camera{
		FovY:            60 * gomath.Pi / 180,
		Near:            4,
		Far:             16000,
		Viewport:        viewport,
		YawSensitivity:  0.005,
		MoveSensitivity: 1.0,
	}
}

// Aspect returns the viewport width over height.
func (c *Camera) Aspect() float32 {
	if c.Viewport.Height() == 0 {
		return 1
	}
	return float32(c.Viewport.Width()) / float32(c.Viewport.Height())
}

// Forward returns the unit view direction.
func (c *Camera) Forward() math.Vec3 {
	pitch := float64(math.Clamp(c.Pitch, -maxPitch, maxPitch))
	yaw := float64(c.Yaw)
	cp := gomath.Cos(pitch)
	return math.Vec3{
		X: float32(cp * gomath.Cos(yaw)),
		Y: float32(cp * gomath.Sin(yaw)),
		Z: float32(gomath.Sin(pitch)),
	}
}

// Right returns the unit right direction on the ground plane.
func (c *Camera) Right() math.Vec3 {
	yaw := float64(c.Yaw)
	return math.Vec3{X: float32(gomath.Sin(yaw)), Y: float32(-gomath.Cos(yaw))}
}

// View returns the world-to-camera matrix.
func (c *Camera) View() math.Mat4 {
	return math.LookAt(c.Position, c.Position.Add(c.Forward()), Up)
}

// Projection returns the camera-to-clip matrix.
func (c *Camera) Projection() math.Mat4 {
	return math.Perspective(c.FovY, c.Aspect(), c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() math.Mat4 {
	return c.Projection().Mul(c.View())
}

// Focal returns the projection scale in pixels per world unit at depth 1.
func (c *Camera) Focal() float32 {
	return float32(c.Viewport.Height()) / 2 / float32(gomath.Tan(float64(c.FovY)/2))
}

// ViewDepth returns the distance of p along the view direction.
func (c *Camera) ViewDepth(p math.Vec3) float32 {
	return p.Sub(c.Position).Dot(c.Forward())
}

// CanSee reports whether a face through p with normal n faces the camera.
func (c *Camera) CanSee(p, n math.Vec3) bool {
	return n.Dot(c.Position.Sub(p)) > 0
}

// HandleYaw turns the camera by a mouse delta.
func (c *Camera) HandleYaw(deltaX float32) {
	c.Yaw -= deltaX * c.YawSensitivity
}

// HandleMovement moves the camera relative to its heading.
func (c *Camera) HandleMovement(forward, right, up float32) {
	f := c.Forward()
	f.Z = 0
	f = f.Normalize()
	move := f.Scale(forward).Add(c.Right().Scale(right)).Add(Up.Scale(up))
	c.Position = c.Position.Add(move.Scale(c.MoveSensitivity))
}
