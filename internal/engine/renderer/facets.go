package renderer

import (
	"image"

	"github.com/Faultbox/enroth-render/internal/engine/billboard"
	"github.com/Faultbox/enroth-render/internal/engine/camera"
	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/compositor"
	"github.com/Faultbox/enroth-render/internal/engine/geometry"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
	"github.com/Faultbox/enroth-render/pkg/math"
)

// TextureOps creates and loads textures.
type TextureOps interface {
	CreateTexture(name string) (*surface.Texture, error)
	LoadTexture(name string, mipmaps bool) bool
	UploadSprite(name string) bool
	UploadImage(name string, img *image.NRGBA, mipmaps bool) (*surface.Texture, error)
	ReleaseTexture(name string) bool
	TextureStats() surface.Stats
}

// SurfaceOps exposes the render surfaces for direct pixel access.
type SurfaceOps interface {
	LockSurface(texture string, r clip.Rect) (*surface.Lock, error)
	LockRenderSurface(r clip.Rect) (*surface.Lock, error)
	LockFrontBuffer(r clip.Rect) (*surface.Lock, error)
	RestoreFrontBuffer() bool
	RestoreBackBuffer() bool
	AreRenderSurfacesOk() bool
	InvalidateSurfaces()
	Resize(width, height int) error
	RenderWidth() int
	RenderHeight() int
	WritePixel16(x, y int, v uint16)
	ReadPixel16(x, y int) uint16
}

// SceneOps drives the frame lifecycle.
type SceneOps interface {
	Initialize() error
	Release()
	State() SceneState
	BeginScene() error
	EndScene() error
	Present() error
	ClearTarget(c raster.Color)
	ClearBlack()
	PresentBlackScreen() error
	ClearZBuffer()
	ScreenFade(c raster.Color, t float32) error
	BlitBackToFront(r clip.Rect)
	Stats() FrameStats
	PackScreenshot(width, height int, out []byte) (int, error)
	Screenshot(width, height int) (*image.RGBA, error)
	SaveScreenshot(path string, width, height int) error
	SaveWinnersCertificate(path string) error
}

// WorldOps draws 3D world geometry. Every draw requires an open scene.
type WorldOps interface {
	SetCamera(mode camera.Mode, cam *camera.Camera)
	Camera(mode camera.Mode) *camera.Camera
	SetFog(f geometry.Fog)
	DrawPolygon(p *geometry.Polygon) error
	DrawTerrainPolygon(p *geometry.Polygon, transparent, clampAtTextureBorders bool) error
	RenderTerrain(list []geometry.Polygon) error
	DrawBuildings(list []geometry.Polygon) error
	DrawIndoorPolygon(p *geometry.Polygon) error
	DrawIndoorSkyPolygon(p *geometry.Polygon) error
	DrawOutdoorSkyPolygon(p *geometry.Polygon) error
	DrawOutdoorSky(list []geometry.Polygon) error
	DrawProjectile(from, to math.Vec3, width0, width1 float32, texture string) error
	DrawLines(verts []raster.Vertex) error
	DrawDebugLine(a, b math.Vec3, ca, cb raster.Color) error
	DrawFansTransparent(fans [][]raster.Vertex) error
	DrawSpecialEffectsQuad(quad [4]raster.Vertex, texture string) error
	FaceAt(x, y int) object.ID
	ActorsInViewport(maxDepth float32) []object.ID
}

// BillboardOps queues and draws camera-facing sprites.
type BillboardOps interface {
	MakeParticleBillboardAndPushIndoor(t billboard.Transform, texture string, diffuse raster.Color, angle int) error
	MakeParticleBillboardAndPushOutdoor(t billboard.Transform, texture string, diffuse raster.Color, angle int) error
	DrawBillboardIndoor(t billboard.Transform, sprite string) error
	PushDecorations(list []Decoration) error
	TransformBillboards() error
	DrawBillboardList() error
	QueueScreenEffect(e ScreenEffect) error
	DrawBillboardsAndEndScene() error
	ActorTintColor(p billboard.TintParams) raster.Color
	ToggleTint() bool
	ToggleColoredLights() bool
}

// CompositorOps brackets lightmap and decal batches.
type CompositorOps interface {
	BeginLightmaps() error
	EndLightmaps() error
	BeginLightmaps2() error
	EndLightmaps2() error
	DrawLightmap(l compositor.Lightmap, colorMult raster.Color, zBias float32) error
	BeginDecals() error
	EndDecals() error
	DrawDecal(d compositor.Decal, zBias float32) error
}

// OverlayOps draws 2D UI on top of the frame, clipped to the UI rectangle.
type OverlayOps interface {
	SetUIClipRect(x, y, z, w int)
	ResetUIClipRect()
	SetRasterClipRect(x, y, z, w int)
	ResetRasterClipRect()
	RasterLine2D(x0, y0, x1, y1 int, c raster.Color)
	FillRectFast(x, y, width, height int, c raster.Color)
	DrawTextureNew(u, v float32, texture string)
	DrawTextureAlphaNew(u, v float32, texture string)
	DrawTextureCustomHeight(u, v float32, texture string, height int)
	DrawTextureOffset(x, y, offsetX, offsetY int, texture string)
	DrawMasked(u, v float32, texture string, dimLevel int, mask raster.Color)
	DrawTextureGrayShade(u, v float32, texture string)
	DrawTransparentRedShade(u, v float32, texture string)
	DrawTransparentGreenShade(u, v float32, texture string)
	BlendTextures(x, y int, mask, pattern string, t, startOpacity, endOpacity int)
	DrawText(x, y int, g Glyph, face, shadow raster.Color, palette []raster.Color)
	DrawTextAlpha(x, y int, g Glyph, palette []raster.Color, transparent bool)
	BlitCopy(texture string, src image.Rectangle, x, y int)
	BlitChroma(texture string, src image.Rectangle, x, y int)
	ZDrawTextureAlpha(u, v float32, texture string, z uint32)
	ZBufferFill(x, y, width, height int, z uint32)
	PickAt(x, y int) uint32
}

// Interface is the full renderer contract seen by game code.
type Interface interface {
	TextureOps
	SurfaceOps
	SceneOps
	WorldOps
	BillboardOps
	CompositorOps
	OverlayOps
}

var _ Interface = (*Renderer)(nil)
