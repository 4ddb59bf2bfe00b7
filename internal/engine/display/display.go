// Package display presents software-rendered frames in an SDL2 window by
// streaming them into an OpenGL texture drawn as a full-window quad.
package display

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/engine/present"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/shader"
	"github.com/Faultbox/enroth-render/internal/engine/window"
	"github.com/Faultbox/enroth-render/internal/logger"
)

const vertexSrc = `
#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;

out vec2 vUV;

void main() {
	gl_Position = vec4(aPos, 0.0, 1.0);
	vUV = aUV;
}
`

const fragmentSrc = `
#version 410 core

in vec2 vUV;
out vec4 FragColor;

uniform sampler2D uFrame;

void main() {
	FragColor = vec4(texture(uFrame, vUV).rgb, 1.0);
}
`

// quad is two triangles covering clip space. Frame rows run top to bottom,
// so v is flipped.
var quad = []float32{
	// x, y, u, v
	-1, -1, 0, 1,
	1, -1, 1, 1,
	1, 1, 1, 0,
	-1, -1, 0, 1,
	1, 1, 1, 0,
	-1, 1, 0, 0,
}

// GL is a present.Presenter backed by an OpenGL context.
type GL struct {
	win *window.Window

	// Smooth selects linear filtering when the frame is scaled.
	Smooth bool

	program *shader.Program
	vao     uint32
	vbo     uint32
	texture uint32
	width   int32
	height  int32
}

var _ present.Presenter = (*GL)(nil)

// New creates a presenter drawing into win. The GL context of win must be
// current on the calling thread for every method.
func New(win *window.Window) *GL {
	return &GL{win: win}
}

// Init loads the GL entry points and creates the blit pipeline.
func (g *GL) Init(width, height int) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(0, 0, 0, 1)

	var err error
	g.program, err = shader.New(vertexSrc, fragmentSrc)
	if err != nil {
		return fmt.Errorf("failed to create blit program: %w", err)
	}

	g.createQuad()
	g.allocate(int32(width), int32(height))

	if code := gl.GetError(); code != gl.NO_ERROR {
		g.Close()
		return fmt.Errorf("GL error 0x%x during init", code)
	}
	return nil
}

func (g *GL) createQuad() {
	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)

	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)

	stride := int32(4 * 4)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 2*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
}

// allocate (re)creates the frame texture for width x height.
func (g *GL) allocate(width, height int32) {
	if g.texture == 0 {
		gl.GenTextures(1, &g.texture)
	}
	gl.BindTexture(gl.TEXTURE_2D, g.texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	g.width, g.height = width, height

	logger.Debug("frame texture allocated",
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
}

// Present uploads fb and swaps the window buffers. The frame is scaled to
// the drawable with its aspect ratio kept.
func (g *GL) Present(fb *raster.FrameBuffer) error {
	if g.program == nil {
		return fmt.Errorf("present before init")
	}
	w, h := int32(fb.Width), int32(fb.Height)
	if w != g.width || h != g.height {
		g.allocate(w, h)
	}

	filter := int32(gl.NEAREST)
	if g.Smooth {
		filter = gl.LINEAR
	}

	gl.BindTexture(gl.TEXTURE_2D, g.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, w, h, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&fb.Pix[0]))

	dw, dh := g.win.DrawableSize()
	vp := present.Fit(fb.Width, fb.Height, dw, dh)

	gl.Viewport(0, 0, int32(dw), int32(dh))
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Viewport(int32(vp.Min.X), int32(vp.Min.Y), int32(vp.Dx()), int32(vp.Dy()))

	g.program.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.Uniform1i(g.program.Uniform("uFrame"), 0)
	gl.BindVertexArray(g.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(len(quad)/4))
	gl.BindVertexArray(0)

	g.win.SwapBuffers()

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("GL error 0x%x during present", code)
	}
	return nil
}

// Close frees the GL objects. The window is left open.
func (g *GL) Close() {
	logger.Info("closing display")
	if g.texture != 0 {
		gl.DeleteTextures(1, &g.texture)
		g.texture = 0
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
		g.vbo = 0
	}
	if g.program != nil {
		g.program.Delete()
		g.program = nil
	}
}
