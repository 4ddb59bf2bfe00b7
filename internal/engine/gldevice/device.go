// Package gldevice draws the renderer's primitives with OpenGL 4.1 core.
//
// Both render targets are offscreen framebuffers with a color texture, a
// face pick attachment and a depth renderbuffer. Registry textures are
// uploaded once per version and sampled with per-draw wrap and filter
// state. Present blits the front target into the window letterboxed.
//
// Every method must be called on the thread that owns the GL context.
package gldevice

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/device"
	"github.com/Faultbox/enroth-render/internal/engine/errs"
	"github.com/Faultbox/enroth-render/internal/engine/object"
	"github.com/Faultbox/enroth-render/internal/engine/present"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/shader"
	"github.com/Faultbox/enroth-render/internal/engine/surface"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// Window is the part of the platform window the device presents into.
type Window interface {
	DrawableSize() (int, int)
	SwapBuffers()
}

// Device is a device.Device on an OpenGL context.
type Device struct {
	win Window

	// Smooth selects linear filtering when the frame is scaled to the window.
	Smooth bool

	pipe     *pipeline
	textures *textureCache
	front    *target
	back     *target
	width    int
	height   int
	locks    int
}

var _ device.Device = (*Device)(nil)

// New creates a device presenting into win. The GL context of win must be
// current when Init is called.
func New(win Window) *Device {
	return &Device{win: win}
}

// Init implements device.Device.
func (d *Device) Init(width, height int) error {
	if d.win == nil {
		return errors.New("no window")
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	var err error
	if d.pipe, err = newPipeline(); err != nil {
		return err
	}
	d.textures = newTextureCache()
	if err := d.allocate(width, height); err != nil {
		d.Close()
		return err
	}
	gl.Disable(gl.CULL_FACE)

	if code := gl.GetError(); code != gl.NO_ERROR {
		d.Close()
		return fmt.Errorf("GL error 0x%x during init", code)
	}
	return nil
}

func (d *Device) allocate(width, height int) error {
	front, err := newTarget("front", width, height)
	if err != nil {
		return err
	}
	back, err := newTarget("back", width, height)
	if err != nil {
		front.destroy()
		return err
	}
	d.release()
	d.front, d.back = front, back
	d.width, d.height = width, height

	logger.Debug("render targets allocated",
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}

func (d *Device) release() {
	for _, t := range []*target{d.front, d.back} {
		if t != nil {
			t.destroy()
		}
	}
	d.front, d.back = nil, nil
}

// Close implements device.Device.
func (d *Device) Close() {
	if d.pipe == nil {
		return
	}
	logger.Info("closing GL device")
	d.release()
	if d.textures != nil {
		d.textures.close()
		d.textures = nil
	}
	d.pipe.close()
	d.pipe = nil
}

// Resize implements device.Device.
func (d *Device) Resize(width, height int) error {
	if d.locks > 0 {
		return fmt.Errorf("%w: resize with %d surface lock(s) held", errs.ErrInvalidState, d.locks)
	}
	return d.allocate(width, height)
}

func (d *Device) bounds() clip.Rect { return clip.FromSize(d.width, d.height) }

func (d *Device) target(b device.Buffer) *target {
	if b == device.Front {
		return d.front
	}
	return d.back
}

// Clear implements device.Device.
func (d *Device) Clear(c raster.Color) {
	d.back.clearColor(c)
	gl.DepthMask(true)
	far := raster.FarDepth
	gl.ClearBufferfv(gl.DEPTH, 0, &far)
}

// ClearDepth implements device.Device.
func (d *Device) ClearDepth() { d.back.clearDepth() }

// begin binds the back target and the state shared by every draw.
func (d *Device) begin(p *shader.Program, blend raster.BlendMode, vis clip.Rect) {
	d.back.bind()
	p.Use()
	setBlend(blend)
	setScissor(vis)
}

func (d *Device) worldUniforms(c *device.Call, textured bool) {
	u := d.pipe.world.Uniform
	gl.Uniform2f(u("uViewport"), float32(d.width), float32(d.height))
	gl.Uniform1f(u("uZBias"), c.ZBias)
	gl.Uniform1i(u("uTexture"), 0)
	gl.Uniform1i(u("uTextured"), boolInt(textured))
	gl.Uniform1i(u("uBlend"), int32(c.Blend))
	gl.Uniform1f(u("uAlphaRef"), c.AlphaRef)
	gl.Uniform1ui(u("uPick"), encodePick(c.Pick))
}

// DrawFan implements device.Device. The count is the covered area.
func (d *Device) DrawFan(verts []raster.Vertex, c *device.Call) int {
	vis := c.Clip.Intersect(d.bounds())
	n := coverage(verts, vis)
	if n == 0 {
		return 0
	}
	d.begin(d.pipe.world, c.Blend, vis)
	setDepth(c.DepthTest, c.DepthWrite)
	setPickWrite(!c.Pick.IsNone())
	textured := c.Texture != nil && d.textures.bind(c.Texture, c.Clamp, c.Filter)
	d.worldUniforms(c, textured)

	d.pipe.verts = packFan(d.pipe.verts, verts)
	d.pipe.draw(gl.TRIANGLE_FAN)
	return n
}

// DrawLine implements device.Device.
func (d *Device) DrawLine(a, b raster.Vertex, c *device.Call) int {
	vis := c.Clip.Intersect(d.bounds())
	n := lineCoverage(int(a.X), int(a.Y), int(b.X), int(b.Y), vis)
	if n == 0 {
		return 0
	}
	d.begin(d.pipe.world, c.Blend, vis)
	setDepth(c.DepthTest, c.DepthWrite)
	setPickWrite(false)
	d.worldUniforms(c, false)

	d.pipe.verts = packVertex(d.pipe.verts, a)
	d.pipe.verts = packVertex(d.pipe.verts, b)
	d.pipe.draw(gl.LINES)
	return n
}

// flat draws an untextured primitive without depth.
func (d *Device) flat(mode uint32, blend raster.BlendMode, vis clip.Rect) {
	d.begin(d.pipe.world, blend, vis)
	setDepth(false, false)
	setPickWrite(false)
	d.worldUniforms(&device.Call{Blend: blend, AlphaRef: -1}, false)
	d.pipe.draw(mode)
}

// DrawLine2D implements device.Device. Endpoints are pixel centers.
func (d *Device) DrawLine2D(x0, y0, x1, y1 int, col raster.Color, blend raster.BlendMode, cr clip.Rect) int {
	vis := cr.Intersect(d.bounds())
	n := lineCoverage(x0, y0, x1, y1, vis)
	if n == 0 {
		return 0
	}
	d.pipe.verts = packVertex(d.pipe.verts, raster.Vertex{X: float32(x0) + 0.5, Y: float32(y0) + 0.5, C: col})
	d.pipe.verts = packVertex(d.pipe.verts, raster.Vertex{X: float32(x1) + 0.5, Y: float32(y1) + 0.5, C: col})
	d.flat(gl.LINES, blend, vis)
	return n
}

// FillRect implements device.Device.
func (d *Device) FillRect(r clip.Rect, col raster.Color, blend raster.BlendMode, cr clip.Rect) int {
	vis := r.Normalize().Intersect(cr).Intersect(d.bounds())
	if vis.Empty() {
		return 0
	}
	d.pipe.verts = packRect(d.pipe.verts, vis, col)
	d.flat(gl.TRIANGLE_FAN, blend, vis)
	return vis.Width() * vis.Height()
}

// Blit implements device.Device. The count is the covered area.
func (d *Device) Blit(src device.Image, sr image.Rectangle, dx, dy int, op *raster.BlitOp) int {
	if src.Pix == nil {
		return 0
	}
	sr = sr.Intersect(src.Pix.Rect)
	if sr.Empty() {
		return 0
	}
	dst := clip.Rect{X: dx, Y: dy, Z: dx + sr.Dx(), W: dy + sr.Dy()}
	vis := dst.Intersect(op.Clip).Intersect(d.bounds())
	if vis.Empty() || !d.textures.bindImage(src) {
		return 0
	}

	tint := op.Tint
	if tint == (raster.Color{}) {
		tint = raster.ColorWhite
	}
	key := channels(op.ColorKey)
	ox, oy := texelOffset(src.Pix.Rect, sr, dx, dy)

	p := d.pipe.blit
	d.begin(p, op.Blend, vis)
	setDepth(false, false)
	setPickWrite(false)
	gl.Uniform2f(p.Uniform("uViewport"), float32(d.width), float32(d.height))
	gl.Uniform1f(p.Uniform("uZBias"), 0)
	gl.Uniform1i(p.Uniform("uTexture"), 0)
	gl.Uniform2i(p.Uniform("uOffset"), ox, oy)
	gl.Uniform1i(p.Uniform("uUseKey"), boolInt(op.UseColorKey))
	gl.Uniform3i(p.Uniform("uKey"), int32(key[0]), int32(key[1]), int32(key[2]))
	gl.Uniform1i(p.Uniform("uGray"), boolInt(op.Gray))
	gl.Uniform4f(p.Uniform("uTint"), tint.R, tint.G, tint.B, tint.A)
	gl.Uniform1i(p.Uniform("uBlend"), int32(op.Blend))
	gl.Uniform1f(p.Uniform("uAlphaRef"), op.AlphaRef)

	d.pipe.verts = packRect(d.pipe.verts, vis, raster.ColorWhite)
	d.pipe.draw(gl.TRIANGLE_FAN)
	return vis.Width() * vis.Height()
}

// Forget implements device.Device.
func (d *Device) Forget(t *surface.Texture) {
	if d.textures != nil {
		d.textures.forget(t)
	}
}

// ReadPixel implements device.Device.
func (d *Device) ReadPixel(x, y int) raster.Color {
	if !d.bounds().Contains(x, y) {
		return raster.Color{}
	}
	p := d.back.read(clip.NewRect(x, y, x+1, y+1))
	return raster.RGBA(p[0], p[1], p[2], p[3])
}

// WritePixel implements device.Device.
func (d *Device) WritePixel(x, y int, c raster.Color) {
	if !d.bounds().Contains(x, y) {
		return
	}
	px := channels(c.Clamp())
	d.back.write(clip.NewRect(x, y, x+1, y+1), px[:])
}

// FaceAt implements device.Device.
func (d *Device) FaceAt(x, y int) object.ID {
	if !d.bounds().Contains(x, y) {
		return object.None
	}
	return decodePick(d.back.readPick(x, y))
}

// Lock implements device.Device. The region is read back into CPU memory
// and uploaded again when the lock is released.
func (d *Device) Lock(b device.Buffer, r clip.Rect) (*surface.Lock, error) {
	t := d.target(b)
	if t.lost {
		return nil, fmt.Errorf("%w: %s surface lost", errs.ErrResource, t.name)
	}
	if t.locked {
		return nil, fmt.Errorf("%w: %s surface already locked", errs.ErrInvalidState, t.name)
	}
	full := t.bounds()
	if r == (clip.Rect{}) {
		r = full
	}
	r = r.Normalize().Intersect(full)
	pix := t.read(r)
	t.locked = true
	d.locks++
	return surface.NewLock(pix, r.Width()*4, r, r, func() {
		t.write(r, pix)
		t.locked = false
		d.locks--
	}), nil
}

// Outstanding implements device.Device.
func (d *Device) Outstanding() int { return d.locks }

// Swap implements device.Device.
func (d *Device) Swap() error {
	if d.locks > 0 {
		return fmt.Errorf("%w: swap with %d surface lock(s) held", errs.ErrInvalidState, d.locks)
	}
	if d.front.lost || d.back.lost {
		return fmt.Errorf("%w: swap on lost surface", errs.ErrResource)
	}
	d.front, d.back = d.back, d.front
	d.front.name, d.back.name = "front", "back"
	return nil
}

// Present implements device.Device. The front target is scaled into the
// drawable with its aspect ratio kept and flipped to window orientation.
func (d *Device) Present() error {
	if d.pipe == nil {
		return errors.New("present before init")
	}
	if d.front.lost {
		return fmt.Errorf("%w: front surface lost", errs.ErrResource)
	}
	dw, dh := d.win.DrawableSize()
	vp := present.Fit(d.width, d.height, dw, dh)

	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.Disable(gl.SCISSOR_TEST)
	gl.ColorMaski(0, true, true, true, true)
	gl.Viewport(0, 0, int32(dw), int32(dh))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	filter := uint32(gl.NEAREST)
	if d.Smooth {
		filter = gl.LINEAR
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, d.front.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.BlitFramebuffer(
		0, 0, int32(d.width), int32(d.height),
		int32(vp.Min.X), int32(dh-vp.Min.Y), int32(vp.Max.X), int32(dh-vp.Max.Y),
		gl.COLOR_BUFFER_BIT, filter,
	)
	d.win.SwapBuffers()

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("GL error 0x%x during present", code)
	}
	return nil
}

// CopyToFront implements device.Device.
func (d *Device) CopyToFront(r clip.Rect) {
	d.front.copyFrom(d.back, r.Normalize().Intersect(d.bounds()))
}

// ReadFront implements device.Device.
func (d *Device) ReadFront() (*image.RGBA, error) {
	if d.front.lost {
		return nil, fmt.Errorf("%w: front buffer lost", errs.ErrResource)
	}
	full := d.bounds()
	return &image.RGBA{Pix: d.front.read(full), Stride: d.width * 4, Rect: full.Image()}, nil
}

// Invalidate implements device.Device.
func (d *Device) Invalidate() {
	d.front.lost = true
	d.back.lost = true
}

// Restore implements device.Device.
func (d *Device) Restore(b device.Buffer) bool {
	ok, err := d.target(b).restore()
	if err != nil {
		logger.Error("failed to restore render target", zap.Stringer("buffer", b), zap.Error(err))
		return false
	}
	return ok
}

// Lost implements device.Device.
func (d *Device) Lost(b device.Buffer) bool { return d.target(b).lost }

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
