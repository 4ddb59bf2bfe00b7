package renderer

import (
	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// pass is the fixed pipeline state of one world draw path.
type pass struct {
	op         string
	mode       camera.Mode
	blend      raster.BlendMode
	depthWrite bool
	zBias      float32
	clamp      bool
	unlit      bool
	cull       bool // drop faces turned away from the camera
	pick       bool // record the face id per pixel
	stage      Stage
}

// SetCamera installs the camera for mode and makes mode active. A nil
// camera is ignored.
func (r *Renderer) SetCamera(mode camera.Mode, cam *camera.Camera) {
	if cam == nil {
		return
	}
	r.ctx.Cameras[mode] = cam
	r.ctx.Mode = mode
}

// Camera returns the camera used for mode.
func (r *Renderer) Camera(mode camera.Mode) *camera.Camera {
	return r.ctx.Cameras[mode]
}

// SetFog replaces the outdoor fog parameters.
func (r *Renderer) SetFog(f geometry.Fog) {
	r.ctx.Fog = f
}

// ZBias returns the active layer offsets.
func (r *Renderer) ZBias() geometry.ZBiases {
	return r.ctx.ZBias
}

// DrawPolygon draws an outdoor building face.
func (r *Renderer) DrawPolygon(p *geometry.Polygon) error {
	return r.DrawTerrainPolygon(p, p.Transparent, p.ClampAtTextureBorders)
}

// DrawTerrainPolygon draws an outdoor face. transparent selects alpha
// blending without depth writes; clampAtTextureBorders selects clamp-to-edge
// addressing instead of tiling.
func (r *Renderer) DrawTerrainPolygon(p *geometry.Polygon, transparent, clampAtTextureBorders bool) error {
	const op = "DrawTerrainPolygon"
	if err := r.requireScene(op); err != nil {
		return err
	}
	r.drawFace(p, r.facePass(op, camera.Outdoor, transparent, clampAtTextureBorders))
	return nil
}

// RenderTerrain draws terrain faces in the given order.
func (r *Renderer) RenderTerrain(list []geometry.Polygon) error {
	return r.drawList("RenderTerrain", camera.Outdoor, list)
}

// DrawBuildings draws building faces in the given order.
func (r *Renderer) DrawBuildings(list []geometry.Polygon) error {
	return r.drawList("DrawBuildings", camera.Outdoor, list)
}

// DrawIndoorPolygon draws a dungeon face with distance dimming. Faces turned
// away from the camera are culled. The face id is recorded for FaceAt.
func (r *Renderer) DrawIndoorPolygon(p *geometry.Polygon) error {
	const op = "DrawIndoorPolygon"
	if err := r.requireScene(op); err != nil {
		return err
	}
	ps := r.facePass(op, camera.Indoor, p.Transparent, p.ClampAtTextureBorders)
	ps.cull = true
	ps.pick = true
	r.drawFace(p, ps)
	return nil
}

// DrawIndoorSkyPolygon draws an indoor sky face behind all geometry.
func (r *Renderer) DrawIndoorSkyPolygon(p *geometry.Polygon) error {
	const op = "DrawIndoorSkyPolygon"
	if err := r.requireScene(op); err != nil {
		return err
	}
	r.drawFace(p, r.skyPass(op, camera.Indoor))
	return nil
}

// DrawOutdoorSkyPolygon draws an outdoor sky face behind all geometry.
func (r *Renderer) DrawOutdoorSkyPolygon(p *geometry.Polygon) error {
	const op = "DrawOutdoorSkyPolygon"
	if err := r.requireScene(op); err != nil {
		return err
	}
	r.drawFace(p, r.skyPass(op, camera.Outdoor))
	return nil
}

// DrawOutdoorSky draws the outdoor sky faces.
func (r *Renderer) DrawOutdoorSky(list []geometry.Polygon) error {
	const op = "DrawOutdoorSky"
	if err := r.requireScene(op); err != nil {
		return err
	}
	ps := r.skyPass(op, camera.Outdoor)
	for i := range list {
		r.drawFace(&list[i], ps)
	}
	return nil
}

func (r *Renderer) drawList(op string, mode camera.Mode, list []geometry.Polygon) error {
	if err := r.requireScene(op); err != nil {
		return err
	}
	for i := range list {
		p := &list[i]
		r.drawFace(p, r.facePass(op, mode, p.Transparent, p.ClampAtTextureBorders))
	}
	return nil
}

func (r *Renderer) facePass(op string, mode camera.Mode, transparent, clamp bool) pass {
	ps := pass{
		op:         op,
		mode:       mode,
		blend:      raster.BlendOpaque,
		depthWrite: true,
		zBias:      r.ctx.ZBias.Terrain,
		clamp:      clamp,
		stage:      StageWorld,
	}
	if transparent {
		ps.blend = raster.BlendAlpha
		ps.depthWrite = false
	}
	return ps
}

func (r *Renderer) skyPass(op string, mode camera.Mode) pass {
	return pass{
		op:    op,
		mode:  mode,
		blend: raster.BlendOpaque,
		zBias: r.ctx.ZBias.Sky,
		unlit: true,
		stage: StageSky,
	}
}

// drawFace projects and rasterizes one face. Problems with the face are
// recorded and the face is dropped; the frame goes on.
func (r *Renderer) drawFace(p *geometry.Polygon, ps pass) {
	if p == nil || !p.Valid() {
		r.stats.Culled++
		return
	}
	cam := r.ctx.Cameras[ps.mode]
	if ps.cull && !cam.CanSee(p.Center(), p.Plane().Normal) {
		r.stats.Culled++
		return
	}
	tex, ok := r.texture(ps.op, p.Texture)
	if !ok {
		return
	}

	opts := r.ctx.shading(ps.mode)
	opts.Diffuse = p.Diffuse
	opts.Unlit = ps.unlit
	verts := geometry.Project(cam, p.Vertices, opts)
	if verts == nil {
		r.stats.Culled++
		return
	}

	if !r.drawable() {
		r.skip(ps.op, p.Texture, "back buffer lost")
		return
	}
	c := r.call(ps.blend, tex, ps.clamp)
	c.DepthWrite = ps.depthWrite
	c.ZBias = ps.zBias
	if ps.pick {
		c.Pick = p.ID
	}
	if n := r.dev.DrawFan(verts, &c); n > 0 {
		r.stats.Polygons++
		r.stats.Pixels += n
	}
	r.ctx.advance(ps.stage)
}

// texture resolves a texture for drawing. ok is false when the primitive
// must be skipped. An empty name draws vertex color only.
func (r *Renderer) texture(op, name string) (*surface.Texture, bool) {
	if name == "" {
		return nil, true
	}
	tex, ok := r.registry.Resolve(name)
	if !ok {
		if !r.cfg.Placeholder {
			r.skip(op, name, "texture not loaded")
			return nil, false
		}
		r.stats.Placeholders++
	}
	return tex, true
}

// call returns depth-tested pipeline state clipped to the raster rectangle.
func (r *Renderer) call(blend raster.BlendMode, tex *surface.Texture, clamp bool) device.Call {
	return device.Call{
		Clip:      r.ctx.Clip.Raster(),
		Blend:     blend,
		DepthTest: true,
		Texture:   tex,
		Clamp:     clamp,
		Filter:    r.cfg.Filter,
	}
}

// DrawLines draws a screen-space line list: verts holds pairs of endpoints.
func (r *Renderer) DrawLines(verts []raster.Vertex) error {
	const op = "DrawLines"
	if err := r.requireScene(op); err != nil {
		return err
	}
	if !r.drawable() {
		return nil
	}
	c := r.call(raster.BlendAlpha, nil, false)
	c.DepthTest = false
	for i := 0; i+1 < len(verts); i += 2 {
		r.stats.Pixels += r.dev.DrawLine(verts[i], verts[i+1], &c)
	}
	return nil
}

// DrawDebugLine draws a depth-tested world-space line with the active
// camera.
func (r *Renderer) DrawDebugLine(a, b math.Vec3, ca, cb raster.Color) error {
	const op = "DrawDebugLine"
	if err := r.requireScene(op); err != nil {
		return err
	}
	va, vb, ok := geometry.ProjectSegment(r.ctx.Camera(), a, b, ca, cb)
	if !ok || !r.drawable() {
		r.stats.Culled++
		return nil
	}
	c := r.call(raster.BlendAlpha, nil, false)
	r.stats.Pixels += r.dev.DrawLine(va, vb, &c)
	return nil
}

// DrawFansTransparent draws screen-space fans with alpha blending against
// the depth buffer without writing it.
func (r *Renderer) DrawFansTransparent(fans [][]raster.Vertex) error {
	const op = "DrawFansTransparent"
	if err := r.requireScene(op); err != nil {
		return err
	}
	if !r.drawable() {
		return nil
	}
	c := r.call(raster.BlendAlpha, nil, false)
	for _, fan := range fans {
		r.stats.Pixels += r.dev.DrawFan(fan, &c)
	}
	return nil
}

// DrawSpecialEffectsQuad draws a screen-space quad additively.
func (r *Renderer) DrawSpecialEffectsQuad(quad [4]raster.Vertex, texture string) error {
	const op = "DrawSpecialEffectsQuad"
	if err := r.requireScene(op); err != nil {
		return err
	}
	tex, ok := r.texture(op, texture)
	if !ok || !r.drawable() {
		return nil
	}
	c := r.call(raster.BlendAdditive, tex, true)
	r.stats.Pixels += r.dev.DrawFan(quad[:], &c)
	return nil
}

// DrawProjectile draws a camera-facing strip from one world point to another.
// The widths are world units at each end.
func (r *Renderer) DrawProjectile(from, to math.Vec3, width0, width1 float32, texture string) error {
	const op = "DrawProjectile"
	if err := r.requireScene(op); err != nil {
		return err
	}
	cam := r.ctx.Camera()
	x0, y0, z0, ok0 := geometry.ProjectPoint(cam, from)
	x1, y1, z1, ok1 := geometry.ProjectPoint(cam, to)
	if !ok0 || !ok1 {
		r.stats.Culled++
		return nil
	}
	d0 := max(cam.ViewDepth(from), cam.Near)
	d1 := max(cam.ViewDepth(to), cam.Near)
	h0 := width0 * cam.Focal() / d0
	h1 := width1 * cam.Focal() / d1

	dx, dy := x1-x0, y1-y0
	l := math.Sqrt(dx*dx + dy*dy)
	if l < 1e-3 {
		r.stats.Culled++
		return nil
	}
	nx, ny := -dy/l, dx/l

	quad := [4]raster.Vertex{
		{X: x0 + nx*h0, Y: y0 + ny*h0, Z: z0, InvW: 1, U: 0, V: 0, C: raster.ColorWhite},
		{X: x1 + nx*h1, Y: y1 + ny*h1, Z: z1, InvW: 1, U: 1, V: 0, C: raster.ColorWhite},
		{X: x1 - nx*h1, Y: y1 - ny*h1, Z: z1, InvW: 1, U: 1, V: 1, C: raster.ColorWhite},
		{X: x0 - nx*h0, Y: y0 - ny*h0, Z: z0, InvW: 1, U: 0, V: 1, C: raster.ColorWhite},
	}
	tex, ok := r.texture(op, texture)
	if !ok || !r.drawable() {
		return nil
	}
	c := r.call(raster.BlendAlpha, tex, true)
	r.stats.Pixels += r.dev.DrawFan(quad[:], &c)
	return nil
}

// ActorsInViewport returns the actors drawn in the current scene no farther
// than maxDepth, in draw order without duplicates.
func (r *Renderer) ActorsInViewport(maxDepth float32) []object.ID {
	var out []object.ID
	seen := make(map[object.ID]bool)
	for _, b := range r.drawn {
		if b.ID.Kind != object.KindActor || b.Depth > maxDepth || seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		out = append(out, b.ID)
	}
	return out
}
