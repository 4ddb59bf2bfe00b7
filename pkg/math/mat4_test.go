package math

import (
	"math"
	"testing"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPointTranslate(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformPoint(Vec3{1, 2, 3})

	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestLookAtPutsTargetOnNegativeZ(t *testing.T) {
	eye := Vec3{0, 0, 0}
	view := LookAt(eye, Vec3{10, 0, 0}, Vec3{0, 0, 1})

	p := view.TransformPoint(Vec3{10, 0, 0})
	if abs(p.X) > 1e-4 || abs(p.Y) > 1e-4 || abs(p.Z+10) > 1e-4 {
		t.Errorf("target in view space: got %v, want (0, 0, -10)", p)
	}

	up := view.TransformPoint(Vec3{10, 0, 5})
	if up.Y <= 0 {
		t.Errorf("world up should map to view +y, got %v", up)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	near, far := float32(1), float32(100)
	proj := Perspective(float32(math.Pi/2), 1, near, far)

	tests := []struct {
		name string
		z    float32
		want float32
	}{
		{"near plane", -near, -1},
		{"far plane", -far, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := proj.TransformPoint(Vec3{0, 0, tt.z})
			if abs(p.Z-tt.want) > 1e-4 {
				t.Errorf("ndc z: got %f, want %f", p.Z, tt.want)
			}
		})
	}
}
