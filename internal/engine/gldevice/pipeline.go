package gldevice

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/enroth-render/internal/engine/clip"
	"github.com/Faultbox/enroth-render/internal/engine/raster"
	"github.com/Faultbox/enroth-render/internal/engine/shader"
)

// vertexSrc maps pixel positions straight to NDC without a y flip, so target
// row 0 is memory row 0 and glReadPixels returns frames top row first.
const vertexSrc = `
#version 410 core

layout (location = 0) in vec4 aPos;
layout (location = 1) in vec2 aUV;
layout (location = 2) in vec4 aColor;

uniform vec2 uViewport;
uniform float uZBias;

out vec2 vUV;
noperspective out vec4 vColor;
noperspective out float vDepth;

void main() {
	vec2 ndc = aPos.xy / uViewport * 2.0 - 1.0;
	gl_Position = vec4(ndc * aPos.w, 0.0, aPos.w);
	vUV = aUV;
	vColor = aColor;
	vDepth = aPos.z - uZBias;
}
`

// Both fragment stages take uBlend as a raster.BlendMode: 0 forces opaque
// alpha, 3 premixes the multiply factor.
const worldFragmentSrc = `
#version 410 core

in vec2 vUV;
noperspective in vec4 vColor;
noperspective in float vDepth;

uniform sampler2D uTexture;
uniform int uTextured;
uniform int uBlend;
uniform float uAlphaRef;
uniform uint uPick;

layout (location = 0) out vec4 oColor;
layout (location = 1) out uint oPick;

void main() {
	vec4 c = vColor;
	if (uTextured != 0) {
		c *= texture(uTexture, vUV);
	}
	if (c.a <= uAlphaRef) {
		discard;
	}
	gl_FragDepth = clamp(vDepth, 0.0, 1.0);
	if (uBlend == 0) {
		c.a = 1.0;
	} else if (uBlend == 3) {
		c.rgb = mix(vec3(1.0), c.rgb, c.a);
	}
	oColor = c;
	oPick = uPick;
}
`

// blitFragmentSrc reads one texel per window pixel.
const blitFragmentSrc = `
#version 410 core

uniform sampler2D uTexture;
uniform ivec2 uOffset;
uniform int uUseKey;
uniform ivec3 uKey;
uniform int uGray;
uniform vec4 uTint;
uniform int uBlend;
uniform float uAlphaRef;

layout (location = 0) out vec4 oColor;

void main() {
	vec4 c = texelFetch(uTexture, ivec2(gl_FragCoord.xy) + uOffset, 0);
	if (uUseKey != 0 && ivec3(round(c.rgb * 255.0)) == uKey) {
		discard;
	}
	if (c.a <= uAlphaRef) {
		discard;
	}
	if (uGray != 0) {
		c.rgb = vec3(dot(c.rgb, vec3(0.299, 0.587, 0.114)));
	}
	c *= uTint;
	if (uBlend == 0) {
		c.a = 1.0;
	} else if (uBlend == 3) {
		c.rgb = mix(vec3(1.0), c.rgb, c.a);
	}
	oColor = c;
}
`

// pipeline owns the programs and the streaming vertex buffer.
type pipeline struct {
	world *shader.Program
	blit  *shader.Program
	vao   uint32
	vbo   uint32
	verts []float32
}

func newPipeline() (*pipeline, error) {
	world, err := shader.New(vertexSrc, worldFragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to create world program: %w", err)
	}
	blit, err := shader.New(vertexSrc, blitFragmentSrc)
	if err != nil {
		world.Delete()
		return nil, fmt.Errorf("failed to create blit program: %w", err)
	}
	p := &pipeline{world: world, blit: blit}

	gl.GenVertexArrays(1, &p.vao)
	gl.GenBuffers(1, &p.vbo)
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, vertexStride, 4*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, vertexStride, 6*4)
	gl.EnableVertexAttribArray(2)
	gl.BindVertexArray(0)
	return p, nil
}

// draw streams the packed vertices in p.verts and issues one draw call.
func (p *pipeline) draw(mode uint32) {
	n := int32(len(p.verts) / floatsPerVertex)
	if n == 0 {
		return
	}
	gl.BindVertexArray(p.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, p.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(p.verts)*4, gl.Ptr(p.verts), gl.STREAM_DRAW)
	gl.DrawArrays(mode, 0, n)
	gl.BindVertexArray(0)
	p.verts = p.verts[:0]
}

func (p *pipeline) close() {
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.vbo != 0 {
		gl.DeleteBuffers(1, &p.vbo)
		p.vbo = 0
	}
	p.world.Delete()
	p.blit.Delete()
}

// setBlend configures fixed-function blending for attachment 0. Integer pick
// attachments are never blended.
func setBlend(m raster.BlendMode) {
	b := blendFor(m)
	if !b.enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendEquation(gl.FUNC_ADD)
	gl.BlendFuncSeparate(b.srcRGB, b.dstRGB, b.srcA, b.dstA)
}

// setDepth configures the depth stage. GL only writes depth with the test
// enabled, so write-only draws test with ALWAYS.
func setDepth(test, write bool) {
	switch {
	case test:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.LEQUAL)
	case write:
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(write)
}

func setScissor(r clip.Rect) {
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(scissorBox(r))
}

// setPickWrite enables or masks the pick attachment.
func setPickWrite(on bool) {
	gl.ColorMaski(0, true, true, true, true)
	gl.ColorMaski(1, on, on, on, on)
}
