package shader

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Stage identifies a programmable pipeline stage.
type Stage uint32

const (
	VertexStage   Stage = gl.VERTEX_SHADER
	FragmentStage Stage = gl.FRAGMENT_SHADER
)

// API is the subset of the OpenGL program/shader interface the wrapper
// uses. The production implementation delegates to go-gl; tests supply a
// handle-tracking fake so compile and release behavior can be verified
// without a GL context.
type API interface {
	CreateProgram() uint32
	DeleteProgram(program uint32)
	CreateShader(stage Stage) uint32
	DeleteShader(shader uint32)
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32)
	CompileStatus(shader uint32) (ok bool, infoLog string)
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	LinkStatus(program uint32) (ok bool, infoLog string)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32
	UniformMatrix4fv(location int32, m *float32)
	Uniform1f(location int32, v float32)
	Uniform1i(location int32, v int32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
}

// glAPI is the production API backed by go-gl. All calls require a current
// OpenGL context on the calling thread.
type glAPI struct{}

// GL returns the go-gl backed API.
func GL() API {
	return glAPI{}
}

func (glAPI) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (glAPI) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (glAPI) CreateShader(stage Stage) uint32 {
	return gl.CreateShader(uint32(stage))
}

func (glAPI) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (glAPI) ShaderSource(shader uint32, src string) {
	csource, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
}

func (glAPI) CompileShader(shader uint32) {
	gl.CompileShader(shader)
}

func (glAPI) CompileStatus(shader uint32) (bool, string) {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLen int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
	infoLog := make([]byte, logLen+1)
	gl.GetShaderInfoLog(shader, logLen, nil, &infoLog[0])
	return false, strings.TrimRight(string(infoLog), "\x00")
}

func (glAPI) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (glAPI) LinkProgram(program uint32) {
	gl.LinkProgram(program)
}

func (glAPI) LinkStatus(program uint32) (bool, string) {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	infoLog := make([]byte, logLen+1)
	gl.GetProgramInfoLog(program, logLen, nil, &infoLog[0])
	return false, strings.TrimRight(string(infoLog), "\x00")
}

func (glAPI) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (glAPI) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (glAPI) UniformMatrix4fv(location int32, m *float32) {
	gl.UniformMatrix4fv(location, 1, false, m)
}

func (glAPI) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (glAPI) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (glAPI) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (glAPI) Uniform3f(location int32, x, y, z float32) {
	gl.Uniform3f(location, x, y, z)
}
