package gldevice

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
)

var (
	colorOnly    = []uint32{gl.COLOR_ATTACHMENT0}
	colorAndPick = []uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1}
)

// target is an offscreen render target: RGBA8 color, R32UI face picks and a
// 24-bit depth renderbuffer.
type target struct {
	name   string
	fbo    uint32
	color  uint32
	pick   uint32
	depth  uint32
	width  int32
	height int32
	locked bool
	lost   bool
}

func newTarget(name string, width, height int) (*target, error) {
	t := &target{name: name, width: int32(max(width, 1)), height: int32(max(height, 1))}
	if err := t.create(); err != nil {
		return nil, fmt.Errorf("creating %s target: %w", name, err)
	}
	return t, nil
}

func (t *target) create() error {
	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	gl.GenTextures(1, &t.color)
	gl.BindTexture(gl.TEXTURE_2D, t.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, t.width, t.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	singleLevel()
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.color, 0)

	gl.GenTextures(1, &t.pick)
	gl.BindTexture(gl.TEXTURE_2D, t.pick)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R32UI, t.width, t.height, 0, gl.RED_INTEGER, gl.UNSIGNED_INT, nil)
	singleLevel()
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT1, gl.TEXTURE_2D, t.pick, 0)

	gl.GenRenderbuffers(1, &t.depth)
	gl.BindRenderbuffer(gl.RENDERBUFFER, t.depth)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, t.width, t.height)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, t.depth)

	gl.DrawBuffers(int32(len(colorAndPick)), &colorAndPick[0])

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	t.clearColor(raster.Color{})
	t.clearDepth()
	return nil
}

// singleLevel makes the bound texture complete without mipmaps.
func singleLevel() {
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (t *target) bounds() clip.Rect { return clip.FromSize(int(t.width), int(t.height)) }

// bind makes t the draw target with both attachments enabled.
func (t *target) bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, t.width, t.height)
}

func (t *target) clearColor(c raster.Color) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Disable(gl.SCISSOR_TEST)
	gl.ColorMaski(0, true, true, true, true)
	rgba := [4]float32{c.R, c.G, c.B, c.A}
	gl.ClearBufferfv(gl.COLOR, 0, &rgba[0])
}

// clearDepth resets depth to far and every pick to no object.
func (t *target) clearDepth() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Disable(gl.SCISSOR_TEST)
	gl.DepthMask(true)
	far := raster.FarDepth
	gl.ClearBufferfv(gl.DEPTH, 0, &far)
	gl.ColorMaski(1, true, true, true, true)
	var none [4]uint32
	gl.ClearBufferuiv(gl.COLOR, 1, &none[0])
}

// read copies r of the color attachment, top row first.
func (t *target) read(r clip.Rect) []byte {
	pix := make([]byte, r.Width()*r.Height()*4)
	if len(pix) == 0 {
		return pix
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(r.X), int32(r.Y), int32(r.Width()), int32(r.Height()), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix
}

// write uploads pix, laid out as read returns it, into r.
func (t *target) write(r clip.Rect, pix []byte) {
	if len(pix) == 0 || r.Empty() {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, t.color)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(r.X), int32(r.Y), int32(r.Width()), int32(r.Height()), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
}

func (t *target) readPick(x, y int) uint32 {
	var v uint32
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, t.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(int32(x), int32(y), 1, 1, gl.RED_INTEGER, gl.UNSIGNED_INT, gl.Ptr(&v))
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	return v
}

// copyFrom blits r of src color into t. The pick attachment is left out of
// the draw set because blits between float and integer formats are invalid.
func (t *target) copyFrom(src *target, r clip.Rect) {
	if r.Empty() {
		return
	}
	gl.Disable(gl.SCISSOR_TEST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, t.fbo)
	gl.DrawBuffers(int32(len(colorOnly)), &colorOnly[0])
	x0, y0, x1, y1 := int32(r.X), int32(r.Y), int32(r.Z), int32(r.W)
	gl.BlitFramebuffer(x0, y0, x1, y1, x0, y0, x1, y1, gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.DrawBuffers(int32(len(colorAndPick)), &colorAndPick[0])
}

// restore recreates a lost target. It does nothing if t is valid.
func (t *target) restore() (bool, error) {
	if !t.lost {
		return false, nil
	}
	t.destroy()
	if err := t.create(); err != nil {
		return false, err
	}
	t.lost = false
	return true, nil
}

func (t *target) destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	for _, tex := range []*uint32{&t.color, &t.pick} {
		if *tex != 0 {
			gl.DeleteTextures(1, tex)
			*tex = 0
		}
	}
	if t.depth != 0 {
		gl.DeleteRenderbuffers(1, &t.depth)
		t.depth = 0
	}
}
