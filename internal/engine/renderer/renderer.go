// Package renderer draws a fullscreen quad through a shader program.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/shaderview/internal/engine/shader"
	"github.com/Faultbox/shaderview/internal/logger"
	"github.com/Faultbox/shaderview/pkg/math"
)

// Uniform names the renderer feeds each frame. iMVP is also the one
// uniform the built-in error shader consumes.
const (
	uniformMVP        = "iMVP"
	uniformTime       = "uTime"
	uniformResolution = "uResolution"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// FrameState carries the per-frame uniform values.
type FrameState struct {
	MVP  math.Mat4
	Time float32
}

// Renderer owns the fullscreen quad geometry.
type Renderer struct {
	config Config

	quadVAO uint32
	quadVBO uint32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	if err := r.createQuad(); err != nil {
		return nil, fmt.Errorf("failed to create quad geometry: %w", err)
	}

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
	}
	if r.quadVBO != 0 {
		gl.DeleteBuffers(1, &r.quadVBO)
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// Draw renders the fullscreen quad through the given shader.
func (r *Renderer) Draw(sh *shader.Shader, frame FrameState) {
	sh.Bind()
	sh.SetUniformMat4(uniformMVP, frame.MVP)

	// The error shader only declares iMVP; skip the extras when it is
	// active so a broken user shader doesn't warn every frame.
	if sh.Err() == nil {
		sh.SetUniformFloat(uniformTime, frame.Time)
		sh.SetUniformVec2(uniformResolution, math.Vec2{
			X: float32(r.config.Width),
			Y: float32(r.config.Height),
		})
	}

	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	sh.Unbind()
}

// createQuad builds the fullscreen quad geometry. Attribute locations
// match the error shader: 0 = position, 1 = texcoord.
func (r *Renderer) createQuad() error {
	vertices := []float32{
		// Position         // TexCoord
		-1.0, -1.0, 0.0, 0.0, 0.0,
		1.0, -1.0, 0.0, 1.0, 0.0,
		1.0, 1.0, 0.0, 1.0, 1.0,
		-1.0, -1.0, 0.0, 0.0, 0.0,
		1.0, 1.0, 0.0, 1.0, 1.0,
		-1.0, 1.0, 0.0, 0.0, 1.0,
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.BindVertexArray(r.quadVAO)

	gl.GenBuffers(1, &r.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 5*4, nil)
	gl.EnableVertexAttribArray(0)

	// TexCoord attribute (location = 1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 5*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if glErr := gl.GetError(); glErr != gl.NO_ERROR {
		return fmt.Errorf("GL error 0x%x while creating quad", glErr)
	}

	logger.Debug("quad geometry created", zap.Uint32("vao", r.quadVAO))
	return nil
}
