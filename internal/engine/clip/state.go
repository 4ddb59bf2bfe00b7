package clip

// State holds the two independent clip rectangles: one for the 2D/UI path and
// one for the 3D rasterization path. It has a single writer (the render loop)
// and needs no locking.
type State struct {
	bounds Rect
	ui     Rect
	raster Rect
}

// NewState creates clip state for a width x height surface with both
// rectangles covering the full surface.
func NewState(width, height int) *State {
	s := &State{}
	s.Resize(width, height)
	return s
}

// Resize changes the surface bounds and resets both rectangles.
func (s *State) Resize(width, height int) {
	s.bounds = FromSize(width, height)
	s.ui = s.bounds
	s.raster = s.bounds
}

// Bounds returns the full-surface rectangle.
func (s *State) Bounds() Rect {
	return s.bounds
}

// UI returns the active UI clip rectangle.
func (s *State) UI() Rect {
	return s.ui
}

// Raster returns the active raster clip rectangle.
func (s *State) Raster() Rect {
	return s.raster
}

// SetUI sets the UI clip rectangle. It is clamped to the surface.
func (s *State) SetUI(x, y, z, w int) {
	s.ui = NewRect(x, y, z, w).Intersect(s.bounds)
}

// ResetUI restores the UI clip rectangle to the full surface.
func (s *State) ResetUI() {
	s.ui = s.bounds
}

// SetRaster sets the raster clip rectangle. It is clamped to the surface.
func (s *State) SetRaster(x, y, z, w int) {
	s.raster = NewRect(x, y, z, w).Intersect(s.bounds)
}

// ResetRaster restores the raster clip rectangle to the full surface.
func (s *State) ResetRaster() {
	s.raster = s.bounds
}
