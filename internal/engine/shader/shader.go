// Package shader wraps an OpenGL shader program handle.
//
// Compilation never fails from the caller's point of view: when a stage
// does not compile (or the program does not link), the driver's info log is
// logged and the returned Shader is the built-in magenta/black checkerboard
// error shader. A broken shader shows up on screen instead of taking the
// application down.
package shader

import (
	_ "embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/shaderview/internal/logger"
	"github.com/Faultbox/shaderview/pkg/math"
)

// ErrorVertexShader is the vertex stage of the built-in error shader.
// Attribute locations 0 (position) and 1 (texcoord) match the renderer's
// vertex layout.
//
//go:embed error.vert
var ErrorVertexShader string

// ErrorFragmentShader is the fragment stage of the built-in error shader.
//
//go:embed error.frag
var ErrorFragmentShader string

// Shader owns one linked GL program handle. The handle stays valid until
// Delete, which releases it exactly once.
//
// All methods assume a current GL context on the calling thread; instances
// must not be shared across goroutines.
type Shader struct {
	api     API
	program uint32
	err     error
	deleted bool
}

// New compiles and links a program from the given sources using the
// process-wide OpenGL bindings. It always returns a usable shader: on any
// compile or link failure the error is logged and the built-in error
// shader is returned in place of the broken one. Err reports whether that
// substitution happened.
func New(fragmentSrc, vertexSrc string) *Shader {
	return NewWithAPI(GL(), fragmentSrc, vertexSrc)
}

// NewWithAPI is New against an explicit API implementation.
func NewWithAPI(api API, fragmentSrc, vertexSrc string) *Shader {
	sh, err := build(api, fragmentSrc, vertexSrc)
	if err == nil {
		return sh
	}

	logger.Error("shader compile failed, substituting error shader", zap.Error(err))

	fallback, ferr := build(api, ErrorFragmentShader, ErrorVertexShader)
	if ferr != nil {
		// The built-in sources are known-good GLSL, so this only happens
		// when the context itself is broken. Return an empty shader;
		// binding program 0 is safe.
		logger.Error("error shader failed to compile", zap.Error(ferr))
		fallback = &Shader{api: api}
	}
	fallback.err = err
	return fallback
}

// build compiles both stages and links them. Unlike the exported
// constructors it reports failure to its caller.
func build(api API, fragmentSrc, vertexSrc string) (*Shader, error) {
	program := api.CreateProgram()

	vert, err := compileStage(api, "vertex", VertexStage, vertexSrc)
	if err != nil {
		api.DeleteProgram(program)
		return nil, err
	}
	defer api.DeleteShader(vert)

	frag, err := compileStage(api, "fragment", FragmentStage, fragmentSrc)
	if err != nil {
		api.DeleteProgram(program)
		return nil, err
	}
	defer api.DeleteShader(frag)

	api.AttachShader(program, vert)
	api.AttachShader(program, frag)
	api.LinkProgram(program)

	if ok, infoLog := api.LinkStatus(program); !ok {
		api.DeleteProgram(program)
		return nil, fmt.Errorf("link: %s", infoLog)
	}

	return &Shader{api: api, program: program}, nil
}

// compileStage compiles a single stage, releasing the stage object on
// failure so nothing leaks.
func compileStage(api API, name string, stage Stage, source string) (uint32, error) {
	sh := api.CreateShader(stage)
	api.ShaderSource(sh, source)
	api.CompileShader(sh)

	if ok, infoLog := api.CompileStatus(sh); !ok {
		api.DeleteShader(sh)
		return 0, fmt.Errorf("%s shader: %s", name, infoLog)
	}

	return sh, nil
}

// Err returns the compile or link error that caused the error-shader
// substitution, or nil if the requested sources built cleanly.
func (s *Shader) Err() error {
	return s.err
}

// ID returns the program handle for interop with raw GL calls.
func (s *Shader) ID() uint32 {
	return s.program
}

// Bind makes this program active for subsequent draw calls.
func (s *Shader) Bind() {
	s.api.UseProgram(s.program)
}

// Unbind clears the active program.
func (s *Shader) Unbind() {
	s.api.UseProgram(0)
}

// Delete releases the program handle. Safe to call more than once; only
// the first call releases the handle.
func (s *Shader) Delete() {
	if s.deleted {
		return
	}
	s.deleted = true
	s.api.DeleteProgram(s.program)
}

// SetUniformMat4 uploads a 4x4 matrix uniform. An unknown name logs a
// warning and uploads to location -1, which drivers ignore.
func (s *Shader) SetUniformMat4(name string, m math.Mat4) {
	s.api.UniformMatrix4fv(s.uniformLocation(name), m.Ptr())
}

// SetUniformFloat uploads a float uniform.
func (s *Shader) SetUniformFloat(name string, v float32) {
	s.api.Uniform1f(s.uniformLocation(name), v)
}

// SetUniformInt uploads an int uniform.
func (s *Shader) SetUniformInt(name string, v int32) {
	s.api.Uniform1i(s.uniformLocation(name), v)
}

// SetUniformVec2 uploads a vec2 uniform.
func (s *Shader) SetUniformVec2(name string, v math.Vec2) {
	s.api.Uniform2f(s.uniformLocation(name), v.X, v.Y)
}

// SetUniformVec3 uploads a vec3 uniform.
func (s *Shader) SetUniformVec3(name string, v math.Vec3) {
	s.api.Uniform3f(s.uniformLocation(name), v.X, v.Y, v.Z)
}

func (s *Shader) uniformLocation(name string) int32 {
	loc := s.api.UniformLocation(s.program, name)
	if loc < 0 {
		logger.Warn("uniform not found",
			zap.String("name", name),
			zap.Uint32("program", s.program),
		)
	}
	return loc
}
