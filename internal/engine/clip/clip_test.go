package clip

import "testing"

func TestNewRectNormalizesInvertedBounds(t *testing.T) {
	r := NewRect(50, 40, 10, 5)
	if r.X > r.Z || r.Y > r.W {
		t.Fatalf("rect not normalized: %+v", r)
	}
	if r != (Rect{X: 10, Y: 5, Z: 50, W: 40}) {
		t.Errorf("got %+v", r)
	}
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Rect
		want  Rect
		empty bool
	}{
		{"overlap", Rect{0, 0, 100, 100}, Rect{50, 50, 150, 150}, Rect{50, 50, 100, 100}, false},
		{"inside", Rect{0, 0, 100, 100}, Rect{10, 10, 20, 20}, Rect{10, 10, 20, 20}, false},
		{"disjoint", Rect{0, 0, 10, 10}, Rect{20, 20, 30, 30}, Rect{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if got.Empty() != tt.empty {
				t.Fatalf("empty: got %v, want %v", got.Empty(), tt.empty)
			}
			if !tt.empty && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestContainsIsExclusiveOnFarEdges(t *testing.T) {
	r := Rect{10, 10, 50, 50}
	if !r.Contains(10, 10) {
		t.Error("top-left corner should be inside")
	}
	if r.Contains(50, 49) || r.Contains(49, 50) {
		t.Error("right and bottom edges should be outside")
	}
}

func TestStateResetUIIsIdempotent(t *testing.T) {
	s := NewState(640, 480)
	s.ResetUI()
	first := s.UI()

	s.SetUI(100, 100, 200, 200)
	s.SetUI(5, 5, 6, 6)
	s.ResetUI()
	second := s.UI()

	if first != second || first != FromSize(640, 480) {
		t.Errorf("reset bounds differ: first %+v, second %+v", first, second)
	}
}

func TestStateClampsToSurface(t *testing.T) {
	s := NewState(320, 200)
	s.SetRaster(-10, -10, 1000, 1000)
	if got := s.Raster(); got != FromSize(320, 200) {
		t.Errorf("raster clip not clamped: %+v", got)
	}
}

func TestStateRectanglesAreIndependent(t *testing.T) {
	s := NewState(320, 200)
	s.SetRaster(10, 10, 50, 50)
	if s.UI() != FromSize(320, 200) {
		t.Errorf("UI clip changed by raster clip: %+v", s.UI())
	}
	s.SetUI(0, 0, 5, 5)
	if s.Raster() != (Rect{10, 10, 50, 50}) {
		t.Errorf("raster clip changed by UI clip: %+v", s.Raster())
	}
}
