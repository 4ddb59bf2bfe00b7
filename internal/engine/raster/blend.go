package raster

// BlendMode selects how a source fragment combines with the framebuffer.
type BlendMode uint8

const (
	BlendOpaque   BlendMode = iota // Result: S (replace)
	BlendAlpha                     // Result: S*Sa + D*(1-Sa)
	BlendAdditive                  // Result: D + S*Sa (clamped)
	BlendMultiply                  // Result: D * lerp(1, S, Sa)
)

// String returns the mode name used in logs and config.
func (m BlendMode) String() string {
	switch m {
	case BlendOpaque:
		return "opaque"
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	case BlendMultiply:
		return "multiply"
	default:
		return "unknown"
	}
}

// ParseBlendMode maps a config name to a mode. Unknown names are alpha.
func ParseBlendMode(name string) BlendMode {
	switch name {
	case "opaque":
		return BlendOpaque
	case "additive", "glow":
		return BlendAdditive
	case "multiply", "stain":
		return BlendMultiply
	default:
		return BlendAlpha
	}
}

// Blend combines src over dst.
func Blend(mode BlendMode, src, dst Color) Color {
	switch mode {
	case BlendOpaque:
		return Color{src.R, src.G, src.B, 1}
	case BlendAdditive:
		return Color{
			dst.R + src.R*src.A,
			dst.G + src.G*src.A,
			dst.B + src.B*src.A,
			dst.A,
		}.Clamp()
	case BlendMultiply:
		inv := 1 - src.A
		return Color{
			dst.R * (src.R*src.A + inv),
			dst.G * (src.G*src.A + inv),
			dst.B * (src.B*src.A + inv),
			dst.A,
		}.Clamp()
	default:
		inv := 1 - src.A
		return Color{
			src.R*src.A + dst.R*inv,
			src.G*src.A + dst.G*inv,
			src.B*src.A + dst.B*inv,
			src.A + dst.A*inv,
		}.Clamp()
	}
}

// blendAt composites c into the pixel at byte offset i.
func (fb *FrameBuffer) blendAt(i int, c Color, mode BlendMode) {
	if mode == BlendOpaque {
		fb.store(i, Color{c.R, c.G, c.B, 1})
		return
	}
	fb.store(i, Blend(mode, c, fb.load(i)))
}
