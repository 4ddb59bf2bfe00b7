package math

import "testing"

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Errorf("x cross y: got %v, want (0, 0, 1)", got)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("normalize zero: got %v", got)
	}
}

func TestVec4Lerp(t *testing.T) {
	a := Vec4{0, 0, 0, 1}
	b := Vec4{10, 20, 30, 3}
	got := a.Lerp(b, 0.5)
	if got != (Vec4{5, 10, 15, 2}) {
		t.Errorf("lerp: got %v", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		x, want float32
	}{
		{-1, 0},
		{0.5, 0.5},
		{2, 1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.x, 0, 1); got != tt.want {
			t.Errorf("Clamp(%f): got %f, want %f", tt.x, got, tt.want)
		}
	}
}
