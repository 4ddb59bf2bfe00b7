package main

import (
	gomath "math"

	"github.com/Faultbox/enroth-render/internal/engine/billboard"
	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/compositor"
	"github.com/Faultbox/enroth-render/internal/engine/debug"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/renderer"
	"github.com/Faultbox/enroth-render/pkg/math"
)

const (
	tileSize   = 512
	tileCount  = 12
	skyRadius  = 9000
	roomSize   = 2048
	roomHeight = 640
)

// demoScene is a small outdoor map and a dungeon room built from quads.
type demoScene struct {
	terrain   []geometry.Polygon
	buildings []geometry.Polygon
	room      []geometry.Polygon

	trees  []renderer.Decoration
	torch  math.Vec3
	actors []billboard.Transform

	time float32 // seconds since start

	// bounds outlines the tower and the actors with debug lines.
	bounds bool
	tower  [2]math.Vec3
}

func quad(a, b, c, d math.Vec3, tex string, uMax, vMax float32) geometry.Polygon {
	return geometry.Polygon{
		Texture: tex,
		Vertices: []geometry.Vertex{
			{Pos: a, U: 0, V: vMax},
			{Pos: b, U: uMax, V: vMax},
			{Pos: c, U: uMax, V: 0},
			{Pos: d, U: 0, V: 0},
		},
	}
}

// faceToward reverses p when its front side does not face point.
func faceToward(p *geometry.Polygon, point math.Vec3) {
	if p.Plane().Distance(point) >= 0 {
		return
	}
	v := p.Vertices
	for i, j := 0, len(v)-1; i < j; i, j = i+1, j-1 {
		v[i], v[j] = v[j], v[i]
	}
	p.ResetPlane()
}

func newDemoScene() *demoScene {
	s := &demoScene{}
	half := float32(tileCount*tileSize) / 2
	for y := 0; y < tileCount; y++ {
		for x := 0; x < tileCount; x++ {
			x0 := float32(x*tileSize) - half
			y0 := float32(y*tileSize) - half
			x1, y1 := x0+tileSize, y0+tileSize
			p := quad(
				math.Vec3{X: x0, Y: y0}, math.Vec3{X: x1, Y: y0},
				math.Vec3{X: x1, Y: y1}, math.Vec3{X: x0, Y: y1},
				texGrass, 4, 4)
			s.terrain = append(s.terrain, p)
		}
	}

	// A windowless tower ahead of the start position.
	s.buildings = box(math.Vec3{X: 1400, Y: -300}, 500, 500, 700, texWall, false)
	s.tower = [2]math.Vec3{{X: 1400, Y: -300}, {X: 1900, Y: 200, Z: 700}}

	// Room faces point inward and carry face ids for picking.
	s.room = box(math.Vec3{X: -roomSize / 2, Y: -roomSize / 2}, roomSize, roomSize, roomHeight, texWall, true)
	floor := quad(
		math.Vec3{X: -roomSize / 2, Y: -roomSize / 2}, math.Vec3{X: roomSize / 2, Y: -roomSize / 2},
		math.Vec3{X: roomSize / 2, Y: roomSize / 2}, math.Vec3{X: -roomSize / 2, Y: roomSize / 2},
		texStone, 8, 8)
	ceiling := floor
	ceiling.Vertices = make([]geometry.Vertex, len(floor.Vertices))
	for i, v := range floor.Vertices {
		v.Pos.Z = roomHeight
		ceiling.Vertices[i] = v
	}
	s.room = append(s.room, floor, ceiling)
	inside := math.Vec3{Z: roomHeight / 2}
	for i := range s.room {
		faceToward(&s.room[i], inside)
		s.room[i].ID = object.New(object.KindFace, i+1)
	}

	for i, pos := range []math.Vec3{
		{X: 600, Y: 700}, {X: 900, Y: -900}, {X: 2200, Y: 500}, {X: 2600, Y: -1200}, {X: -200, Y: 1400},
	} {
		pos.Z = 192
		s.trees = append(s.trees, renderer.Decoration{
			Transform: billboard.Transform{
				Position:   pos,
				HalfWidth:  96,
				HalfHeight: 192,
				ID:         object.New(object.KindDecoration, i+1),
			},
			Sprite: texTree,
		})
	}

	s.torch = math.Vec3{X: roomSize/2 - 40, Y: 0, Z: 320}
	s.actors = []billboard.Transform{
		{Position: math.Vec3{X: 500, Y: 200, Z: 80}, HalfWidth: 40, HalfHeight: 80, ID: object.New(object.KindActor, 1)},
		{Position: math.Vec3{X: 800, Y: -250, Z: 80}, HalfWidth: 40, HalfHeight: 80, ID: object.New(object.KindActor, 2)},
	}
	return s
}

// box returns the four walls of an axis-aligned box with its minimum
// corner at origin. Inward walls tile their texture; outward walls stretch
// one copy across the face and clamp at its borders.
func box(origin math.Vec3, w, d, h float32, tex string, inward bool) []geometry.Polygon {
	c := [4]math.Vec3{
		origin,
		{X: origin.X + w, Y: origin.Y},
		{X: origin.X + w, Y: origin.Y + d},
		{X: origin.X, Y: origin.Y + d},
	}
	center := math.Vec3{X: origin.X + w/2, Y: origin.Y + d/2, Z: h / 2}
	var out []geometry.Polygon
	for i := range c {
		a, b := c[i], c[(i+1)%4]
		up := math.Vec3{Z: h}
		if !inward {
			p := quad(a, b, b.Add(up), a.Add(up), tex, 1, 1)
			p.ClampAtTextureBorders = true
			out = append(out, p)
			continue
		}
		p := quad(a, b, b.Add(up), a.Add(up), tex, a.Sub(b).Length()/256, h/256)
		faceToward(&p, center)
		out = append(out, p)
	}
	return out
}

// skyBox returns sky faces surrounding eye.
func skyBox(eye math.Vec3) []geometry.Polygon {
	r := float32(skyRadius)
	lo, hi := eye.Z-r/4, eye.Z+r
	corner := func(dx, dy, z float32) math.Vec3 { return math.Vec3{X: eye.X + dx, Y: eye.Y + dy, Z: z} }
	sides := [][4]math.Vec3{
		{corner(r, -r, lo), corner(r, r, lo), corner(r, r, hi), corner(r, -r, hi)},
		{corner(r, r, lo), corner(-r, r, lo), corner(-r, r, hi), corner(r, r, hi)},
		{corner(-r, r, lo), corner(-r, -r, lo), corner(-r, -r, hi), corner(-r, r, hi)},
		{corner(-r, -r, lo), corner(r, -r, lo), corner(r, -r, hi), corner(-r, -r, hi)},
	}
	out := make([]geometry.Polygon, 0, 5)
	for _, s := range sides {
		out = append(out, quad(s[0], s[1], s[2], s[3], texSky, 1, 1))
	}
	top := quad(corner(r, -r, hi), corner(r, r, hi), corner(-r, r, hi), corner(-r, -r, hi), texSky, 1, 0)
	return append(out, top)
}

// flatQuad returns a horizontal square patch centered on c.
func flatQuad(c math.Vec3, half float32) []geometry.Vertex {
	return []geometry.Vertex{
		{Pos: math.Vec3{X: c.X - half, Y: c.Y - half, Z: c.Z}, U: 0, V: 0},
		{Pos: math.Vec3{X: c.X + half, Y: c.Y - half, Z: c.Z}, U: 1, V: 0},
		{Pos: math.Vec3{X: c.X + half, Y: c.Y + half, Z: c.Z}, U: 1, V: 1},
		{Pos: math.Vec3{X: c.X - half, Y: c.Y + half, Z: c.Z}, U: 0, V: 1},
	}
}

// wallQuad returns a vertical patch on the x = c.X plane centered on c.
func wallQuad(c math.Vec3, half float32) []geometry.Vertex {
	return []geometry.Vertex{
		{Pos: math.Vec3{X: c.X, Y: c.Y - half, Z: c.Z - half}, U: 0, V: 1},
		{Pos: math.Vec3{X: c.X, Y: c.Y + half, Z: c.Z - half}, U: 1, V: 1},
		{Pos: math.Vec3{X: c.X, Y: c.Y + half, Z: c.Z + half}, U: 1, V: 0},
		{Pos: math.Vec3{X: c.X, Y: c.Y - half, Z: c.Z + half}, U: 0, V: 0},
	}
}

// Draw renders one frame in the lifecycle order: world, sky, billboards,
// lightmaps, decals, end of scene, overlay. Present is left to the caller.
func (s *demoScene) Draw(r *renderer.Renderer, mode camera.Mode, dt float32) error {
	s.time += dt
	r.ClearTarget(r.Context().Fog.Color)
	if err := r.BeginScene(); err != nil {
		return err
	}
	var err error
	if mode == camera.Outdoor {
		err = s.drawOutdoor(r)
	} else {
		err = s.drawIndoor(r)
	}
	if err != nil {
		return err
	}
	if err := r.DrawBillboardsAndEndScene(); err != nil {
		return err
	}
	s.drawOverlay(r, mode)
	return nil
}

func (s *demoScene) drawOutdoor(r *renderer.Renderer) error {
	cam := r.Camera(camera.Outdoor)
	if err := r.RenderTerrain(s.terrain); err != nil {
		return err
	}
	if err := r.DrawBuildings(s.buildings); err != nil {
		return err
	}
	if err := r.DrawOutdoorSky(skyBox(cam.Position)); err != nil {
		return err
	}
	if s.bounds {
		if err := s.drawBounds(r); err != nil {
			return err
		}
	}

	ambient := raster.RGB(255, 230, 200)
	for i := range s.trees {
		s.trees[i].Diffuse = r.ActorTintColor(billboard.TintParams{
			Distance: cam.ViewDepth(s.trees[i].Position),
			Tinting:  true,
			Ambient:  ambient,
		})
	}
	if err := r.PushDecorations(s.trees); err != nil {
		return err
	}
	for _, a := range s.actors {
		tint := r.ActorTintColor(billboard.TintParams{
			MaxDimming:  20,
			Distance:    cam.ViewDepth(a.Position),
			DimDistance: 8000,
			Tinting:     true,
			Ambient:     ambient,
		})
		if err := r.PushDecorations([]renderer.Decoration{{Transform: a, Sprite: texActor, Diffuse: tint}}); err != nil {
			return err
		}
	}
	for i := 0; i < 6; i++ {
		phase := s.time*1.5 + float32(i)
		t := billboard.Transform{
			Position:   math.Vec3{X: 700 + 60*float32(gomath.Cos(float64(phase))), Y: 60 * float32(gomath.Sin(float64(phase))), Z: 120 + 20*float32(i)},
			HalfWidth:  12,
			HalfHeight: 12,
		}
		if err := r.MakeParticleBillboardAndPushOutdoor(t, texSpark, raster.ColorWhite, int(phase*100)); err != nil {
			return err
		}
	}
	if err := r.TransformBillboards(); err != nil {
		return err
	}
	if err := r.DrawBillboardList(); err != nil {
		return err
	}

	zb := r.ZBias()
	if err := r.BeginLightmaps(); err != nil {
		return err
	}
	if err := r.DrawLightmap(compositor.Lightmap{Vertices: flatQuad(math.Vec3{X: 700}, 300), Texture: texFalloff},
		raster.RGB(255, 200, 150), zb.Lightmap); err != nil {
		return err
	}
	if err := r.EndLightmaps(); err != nil {
		return err
	}
	if err := r.BeginLightmaps2(); err != nil {
		return err
	}
	if err := r.DrawLightmap(compositor.Lightmap{Vertices: flatQuad(math.Vec3{X: 700}, 160), Texture: texFalloff},
		raster.RGBA(255, 160, 60, 90), zb.Lightmap); err != nil {
		return err
	}
	if err := r.EndLightmaps2(); err != nil {
		return err
	}

	if err := r.BeginDecals(); err != nil {
		return err
	}
	if err := r.DrawDecal(compositor.Decal{
		Vertices: flatQuad(math.Vec3{X: 1100, Y: 400}, 120),
		Texture:  texScorch,
		Blend:    raster.BlendAlpha,
	}, zb.Decal); err != nil {
		return err
	}
	return r.EndDecals()
}

func (s *demoScene) drawIndoor(r *renderer.Renderer) error {
	for i := range s.room {
		if err := r.DrawIndoorPolygon(&s.room[i]); err != nil {
			return err
		}
	}

	if err := r.DrawBillboardIndoor(billboard.Transform{
		Position: math.Vec3{X: 300, Y: 300, Z: 80}, HalfWidth: 40, HalfHeight: 80,
		ID: object.New(object.KindActor, 3), Dimming: 6,
	}, texActor); err != nil {
		return err
	}
	flicker := 1 + 0.1*float32(gomath.Sin(float64(s.time*9)))
	if err := r.MakeParticleBillboardAndPushIndoor(billboard.Transform{
		Position: s.torch, HalfWidth: 24 * flicker, HalfHeight: 32 * flicker,
	}, texSpark, raster.ColorWhite, 0); err != nil {
		return err
	}

	zb := r.ZBias()
	if err := r.BeginLightmaps(); err != nil {
		return err
	}
	glow := raster.RGB(255, 190, 120).Scale(flicker)
	if err := r.DrawLightmap(compositor.Lightmap{Vertices: wallQuad(s.torch.Add(math.Vec3{X: 39}), 260), Texture: texFalloff},
		glow, zb.Lightmap); err != nil {
		return err
	}
	if err := r.EndLightmaps(); err != nil {
		return err
	}

	if err := r.BeginDecals(); err != nil {
		return err
	}
	if err := r.DrawDecal(compositor.Decal{
		Vertices: flatQuad(math.Vec3{X: -300, Y: 200}, 100),
		Texture:  texScorch,
		Blend:    raster.BlendMultiply,
		Color:    raster.ColorWhite,
	}, zb.Decal); err != nil {
		return err
	}
	if err := r.EndDecals(); err != nil {
		return err
	}
	return r.QueueScreenEffect(renderer.ScreenEffect{Color: raster.RGBA(255, 220, 180, 24), Blend: raster.BlendAlpha})
}

func (s *demoScene) drawBounds(r *renderer.Renderer) error {
	edges := debug.BoxEdges(s.tower[0], s.tower[1])
	for _, a := range s.actors {
		half := math.Vec3{X: a.HalfWidth, Y: a.HalfWidth, Z: a.HalfHeight}
		edges = append(edges, debug.SelectionBox(a.Position, half, debug.DefaultBoxPadding)...)
	}
	c := raster.RGB(255, 255, 0)
	for _, e := range edges {
		if err := r.DrawDebugLine(e.A, e.B, c, c); err != nil {
			return err
		}
	}
	return nil
}

// drawOverlay draws the status bar: frame counter, picked face and the
// number of actors in view.
func (s *demoScene) drawOverlay(r *renderer.Renderer, mode camera.Mode) {
	w, h := r.RenderWidth(), r.RenderHeight()
	const barH = 18
	r.FillRectFast(0, h-barH, w, barH, raster.RGBA(0, 0, 0, 160))
	r.RasterLine2D(0, h-barH, w-1, h-barH, raster.RGB(200, 170, 60))
	r.DrawTextureNew(4/float32(w), float32(h-barH+1)/float32(h), texIcon)

	yellow := raster.RGB(240, 220, 120)
	x := drawNumber(r, 24, h-barH+4, int(r.Stats().Frame), yellow)
	if mode == camera.Indoor {
		face := r.FaceAt(w/2, h/2)
		x = drawNumber(r, x+12, h-barH+4, face.Index, raster.RGB(160, 220, 255))
	}
	drawNumber(r, x+12, h-barH+4, len(r.ActorsInViewport(4000)), raster.RGB(255, 140, 120))
}
