package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
)

func near(a, b float32) bool {
	d := a - b
	return d > -0.01 && d < 0.01
}

func fullTriangle(c Color, z float32) (Vertex, Vertex, Vertex) {
	return Vertex{X: -10, Y: -10, Z: z, C: c},
		Vertex{X: 200, Y: -10, Z: z, C: c},
		Vertex{X: -10, Y: 200, Z: z, C: c}
}

func twoTexels() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 255, 255})
	return img
}

func TestTriangleStaysInsideClip(t *testing.T) {
	fb := NewFrameBuffer(64, 64)
	r := clip.NewRect(10, 10, 50, 50)
	v0, v1, v2 := fullTriangle(ColorWhite, 0.5)

	n := fb.DrawTriangle(v0, v1, v2, &DrawState{Clip: r, Blend: BlendOpaque})
	if n != 40*40 {
		t.Errorf("DrawTriangle wrote %d pixels, want %d", n, 40*40)
	}

	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			_, _, _, a := fb.At(x, y).Bytes()
			if inside := r.Contains(x, y); inside != (a == 255) {
				t.Fatalf("pixel (%d,%d) written=%v, inside clip=%v", x, y, a == 255, inside)
			}
		}
	}
}

func TestDegenerateTriangleDrawsNothing(t *testing.T) {
	fb := NewFrameBuffer(16, 16)
	v := Vertex{X: 4, Y: 4, C: ColorWhite}
	w := Vertex{X: 8, Y: 8, C: ColorWhite}
	if n := fb.DrawTriangle(v, w, w, &DrawState{Clip: fb.Bounds()}); n != 0 {
		t.Errorf("degenerate triangle wrote %d pixels", n)
	}
}

func TestDepthTestAndZBias(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	st := &DrawState{Clip: fb.Bounds(), Blend: BlendOpaque, DepthTest: true, DepthWrite: true}

	v0, v1, v2 := fullTriangle(ColorRed, 0.5)
	fb.DrawTriangle(v0, v1, v2, st)

	// Farther geometry is rejected.
	v0, v1, v2 = fullTriangle(ColorBlue, 0.6)
	if n := fb.DrawTriangle(v0, v1, v2, st); n != 0 {
		t.Errorf("far triangle wrote %d pixels, want 0", n)
	}
	if r, _, b, _ := fb.At(4, 4).Bytes(); r != 255 || b != 0 {
		t.Errorf("pixel = (%d,_,%d), want red", r, b)
	}

	// The same geometry pulled forward by a bias wins.
	st.ZBias = 0.2
	if n := fb.DrawTriangle(v0, v1, v2, st); n != 64 {
		t.Errorf("biased triangle wrote %d pixels, want 64", n)
	}
	if r, _, b, _ := fb.At(4, 4).Bytes(); r != 0 || b != 255 {
		t.Errorf("pixel = (%d,_,%d), want blue", r, b)
	}
	if !near(fb.Depth[4*8+4], 0.4) {
		t.Errorf("depth = %f, want 0.4", fb.Depth[4*8+4])
	}
}

func TestSamplerAddressing(t *testing.T) {
	tests := []struct {
		name  string
		clamp bool
		u     float32
		want  Color
	}{
		{"wrap past right", false, 1.25, ColorRed},
		{"clamp past right", true, 1.25, ColorBlue},
		{"wrap negative", false, -0.25, ColorBlue},
		{"clamp negative", true, -0.25, ColorRed},
		{"inside", true, 0.75, ColorBlue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSampler([]*image.NRGBA{twoTexels()}, tt.clamp, FilterNearest)
			got := s.Sample(tt.u, 0.5, 0)
			if got != tt.want {
				t.Errorf("Sample(%f) = %+v, want %+v", tt.u, got, tt.want)
			}
		})
	}
}

func TestSamplerEmptyChain(t *testing.T) {
	if s := NewSampler(nil, false, FilterNearest); s != nil {
		t.Error("NewSampler(nil) should return nil")
	}
}

func TestLevelFor(t *testing.T) {
	levels := []*image.NRGBA{
		image.NewNRGBA(image.Rect(0, 0, 8, 8)),
		image.NewNRGBA(image.Rect(0, 0, 4, 4)),
		image.NewNRGBA(image.Rect(0, 0, 2, 2)),
	}
	s := NewSampler(levels, false, FilterNearest)

	tests := []struct {
		ratio float32
		want  int
	}{
		{0.5, 0},
		{1, 0},
		{4, 1},
		{16, 2},
		{1024, 2},
	}
	for _, tt := range tests {
		if got := s.LevelFor(tt.ratio); got != tt.want {
			t.Errorf("LevelFor(%f) = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}

func TestTexturedQuadClamp(t *testing.T) {
	fb := NewFrameBuffer(8, 8)
	s := NewSampler([]*image.NRGBA{twoTexels()}, true, FilterNearest)
	quad := []Vertex{
		{X: 0, Y: 0, U: 0, V: 0, C: ColorWhite},
		{X: 8, Y: 0, U: 1, V: 0, C: ColorWhite},
		{X: 8, Y: 8, U: 1, V: 1, C: ColorWhite},
		{X: 0, Y: 8, U: 0, V: 1, C: ColorWhite},
	}
	fb.DrawFan(quad, &DrawState{Clip: fb.Bounds(), Blend: BlendOpaque, Sampler: s})

	if got := fb.At(1, 4); got != ColorRed {
		t.Errorf("left pixel = %+v, want red", got)
	}
	if got := fb.At(6, 4); got != ColorBlue {
		t.Errorf("right pixel = %+v, want blue", got)
	}
}

func square(x0, y0, x1, y1 float32, c Color) []Vertex {
	return []Vertex{
		{X: x0, Y: y0, C: c},
		{X: x1, Y: y0, C: c},
		{X: x1, Y: y1, C: c},
		{X: x0, Y: y1, C: c},
	}
}

func TestFanDiagonalWrittenOnce(t *testing.T) {
	fb := NewFrameBuffer(16, 16)
	fb.Clear(ColorBlack)
	half := Color{1, 1, 1, 0.5}

	n := fb.DrawFan(square(0, 0, 16, 16, half), &DrawState{Clip: fb.Bounds(), Blend: BlendAlpha})
	if n != 256 {
		t.Errorf("DrawFan wrote %d pixels, want 256", n)
	}
	want := fb.At(0, 0)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got := fb.At(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, got, want)
			}
		}
	}
}

func TestSharedEdgesNoOverlapNoGap(t *testing.T) {
	tests := []struct {
		name  string
		fans  [][]Vertex
		cover int
	}{
		{"adjacent squares", [][]Vertex{
			square(0, 0, 8, 16, ColorWhite),
			square(8, 0, 16, 16, ColorWhite),
		}, 256},
		{"stacked squares", [][]Vertex{
			square(0, 0, 16, 5, ColorWhite),
			square(0, 5, 16, 16, ColorWhite),
		}, 256},
		{"irregular fan", [][]Vertex{{
			{X: 1.3, Y: 0.7, C: ColorWhite},
			{X: 9.6, Y: 1.1, C: ColorWhite},
			{X: 14.2, Y: 6.5, C: ColorWhite},
			{X: 11.9, Y: 14.8, C: ColorWhite},
			{X: 4.4, Y: 13.3, C: ColorWhite},
			{X: 0.5, Y: 7.7, C: ColorWhite},
		}}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := NewFrameBuffer(16, 16)
			hits := make([]int, 16*16)
			st := &DrawState{
				Clip:  fb.Bounds(),
				Blend: BlendOpaque,
				Visit: func(x, y int) { hits[y*16+x]++ },
			}
			total := 0
			for _, f := range tt.fans {
				total += fb.DrawFan(f, st)
			}
			for i, h := range hits {
				if h > 1 {
					t.Fatalf("pixel (%d,%d) written %d times", i%16, i/16, h)
				}
			}
			if tt.cover >= 0 && total != tt.cover {
				t.Errorf("wrote %d pixels, want %d", total, tt.cover)
			}
		})
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		name     string
		mode     BlendMode
		src, dst Color
		want     Color
	}{
		{"opaque", BlendOpaque, Color{0.3, 0.3, 0.3, 0.2}, ColorBlack, Color{0.3, 0.3, 0.3, 1}},
		{"alpha half", BlendAlpha, Color{1, 1, 1, 0.5}, ColorBlack, Color{0.5, 0.5, 0.5, 1}},
		{"additive", BlendAdditive, Color{0.5, 0, 0, 0.5}, Color{0.2, 0.2, 0.2, 1}, Color{0.45, 0.2, 0.2, 1}},
		{"additive saturates", BlendAdditive, ColorWhite, ColorWhite, ColorWhite},
		{"multiply", BlendMultiply, ColorRed, ColorWhite, ColorRed},
		{"multiply transparent", BlendMultiply, ColorTransparent, ColorGray, ColorGray},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Blend(tt.mode, tt.src, tt.dst)
			if !near(got.R, tt.want.R) || !near(got.G, tt.want.G) || !near(got.B, tt.want.B) || !near(got.A, tt.want.A) {
				t.Errorf("Blend = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseBlendMode(t *testing.T) {
	for _, m := range []BlendMode{BlendOpaque, BlendAlpha, BlendAdditive, BlendMultiply} {
		if got := ParseBlendMode(m.String()); got != m {
			t.Errorf("ParseBlendMode(%q) = %v", m.String(), got)
		}
	}
	if ParseBlendMode("glow") != BlendAdditive || ParseBlendMode("stain") != BlendMultiply {
		t.Error("decal aliases not recognized")
	}
}

func TestLineStaysInsideClip(t *testing.T) {
	fb := NewFrameBuffer(64, 64)
	r := clip.NewRect(10, 10, 50, 50)

	lines := [][4]int{
		{0, 0, 63, 63},
		{0, 30, 63, 30},
		{30, -20, 30, 100},
		{63, 0, 0, 63},
		{0, 0, 5, 60}, // entirely left of the clip
	}
	total := 0
	for _, l := range lines {
		total += fb.DrawLine(l[0], l[1], l[2], l[3], ColorWhite, BlendOpaque, r)
	}
	if total == 0 {
		t.Fatal("no pixels written")
	}

	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			if _, _, _, a := fb.At(x, y).Bytes(); a != 0 && !r.Contains(x, y) {
				t.Fatalf("pixel (%d,%d) written outside clip", x, y)
			}
		}
	}
}

func TestLineOutsideClipWritesNothing(t *testing.T) {
	fb := NewFrameBuffer(32, 32)
	if n := fb.DrawLine(0, 0, 31, 0, ColorWhite, BlendOpaque, clip.NewRect(0, 10, 32, 20)); n != 0 {
		t.Errorf("DrawLine wrote %d pixels, want 0", n)
	}
}

func TestFillRectClipped(t *testing.T) {
	fb := NewFrameBuffer(16, 16)
	n := fb.FillRect(clip.NewRect(-5, -5, 8, 8), ColorGreen, BlendOpaque, clip.NewRect(2, 2, 16, 16))
	if n != 36 {
		t.Errorf("FillRect wrote %d pixels, want 36", n)
	}
	if fb.At(1, 1) != ColorTransparent {
		t.Error("pixel outside clip was written")
	}
	if fb.At(7, 7) != ColorGreen {
		t.Error("pixel inside clip was not written")
	}
}

func TestBlitColorKeyAndVisit(t *testing.T) {
	src := twoTexels()
	fb := NewFrameBuffer(4, 4)

	var visited []image.Point
	n := fb.Blit(src, src.Rect, 1, 1, &BlitOp{
		Clip:        fb.Bounds(),
		Blend:       BlendOpaque,
		ColorKey:    ColorBlue,
		UseColorKey: true,
		Visit:       func(x, y int) { visited = append(visited, image.Pt(x, y)) },
	})
	if n != 1 {
		t.Fatalf("Blit wrote %d pixels, want 1", n)
	}
	if len(visited) != 1 || visited[0] != image.Pt(1, 1) {
		t.Errorf("visited = %v, want [(1,1)]", visited)
	}
	if fb.At(2, 1) != ColorTransparent {
		t.Error("color-keyed texel was drawn")
	}
}

func TestBlitGrayTint(t *testing.T) {
	src := twoTexels()
	fb := NewFrameBuffer(2, 1)
	fb.Blit(src, src.Rect, 0, 0, &BlitOp{Clip: fb.Bounds(), Blend: BlendOpaque, Gray: true})

	r, g, b, _ := fb.At(0, 0).Bytes()
	if r != g || g != b {
		t.Errorf("gray blit = (%d,%d,%d), want equal components", r, g, b)
	}
}

func TestRGB565RoundTrip(t *testing.T) {
	for _, v := range []uint16{0x0000, 0xF800, 0x07E0, 0x001F, 0xFFFF} {
		if got := FromRGB565(v).RGB565(); got != v {
			t.Errorf("RGB565 round trip %#04x = %#04x", v, got)
		}
	}
}

func TestPixel16(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.WritePixel16(2, 3, 0xF800)
	if got := fb.ReadPixel16(2, 3); got != 0xF800 {
		t.Errorf("ReadPixel16 = %#04x, want 0xf800", got)
	}
}
