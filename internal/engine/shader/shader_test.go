package shader

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/shaderview/internal/logger"
	"github.com/Faultbox/shaderview/pkg/math"
)

// fakeAPI is a handle-tracking stand-in for the GL bindings. Sources
// containing "BROKEN" fail to compile; failLink makes every link fail.
type fakeAPI struct {
	nextHandle uint32

	createdPrograms []uint32
	deletedPrograms []uint32
	createdShaders  []uint32
	deletedShaders  []uint32

	sources  map[uint32]string
	attached map[uint32][]uint32
	failLink bool

	uniforms    map[string]int32
	uploads     []int32 // locations of all uniform uploads, in order
	boundCalls  []uint32
	currentProg uint32
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		sources:  make(map[uint32]string),
		attached: make(map[uint32][]uint32),
		uniforms: make(map[string]int32),
	}
}

func (f *fakeAPI) handle() uint32 {
	f.nextHandle++
	return f.nextHandle
}

func (f *fakeAPI) CreateProgram() uint32 {
	h := f.handle()
	f.createdPrograms = append(f.createdPrograms, h)
	return h
}

func (f *fakeAPI) DeleteProgram(program uint32) {
	f.deletedPrograms = append(f.deletedPrograms, program)
}

func (f *fakeAPI) CreateShader(stage Stage) uint32 {
	h := f.handle()
	f.createdShaders = append(f.createdShaders, h)
	return h
}

func (f *fakeAPI) DeleteShader(shader uint32) {
	f.deletedShaders = append(f.deletedShaders, shader)
}

func (f *fakeAPI) ShaderSource(shader uint32, src string) {
	f.sources[shader] = src
}

func (f *fakeAPI) CompileShader(shader uint32) {}

func (f *fakeAPI) CompileStatus(shader uint32) (bool, string) {
	if strings.Contains(f.sources[shader], "BROKEN") {
		return false, "0:1: syntax error"
	}
	return true, ""
}

func (f *fakeAPI) AttachShader(program, shader uint32) {
	f.attached[program] = append(f.attached[program], shader)
}

func (f *fakeAPI) LinkProgram(program uint32) {}

func (f *fakeAPI) LinkStatus(program uint32) (bool, string) {
	if f.failLink {
		return false, "no matching output for varying"
	}
	return true, ""
}

func (f *fakeAPI) UseProgram(program uint32) {
	f.boundCalls = append(f.boundCalls, program)
	f.currentProg = program
}

func (f *fakeAPI) UniformLocation(program uint32, name string) int32 {
	if loc, ok := f.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (f *fakeAPI) UniformMatrix4fv(location int32, m *float32) {
	f.uploads = append(f.uploads, location)
}

func (f *fakeAPI) Uniform1f(location int32, v float32) {
	f.uploads = append(f.uploads, location)
}

func (f *fakeAPI) Uniform1i(location int32, v int32) {
	f.uploads = append(f.uploads, location)
}

func (f *fakeAPI) Uniform2f(location int32, x, y float32) {
	f.uploads = append(f.uploads, location)
}

func (f *fakeAPI) Uniform3f(location int32, x, y, z float32) {
	f.uploads = append(f.uploads, location)
}

// countIn reports how many times handle appears in handles.
func countIn(handles []uint32, handle uint32) int {
	n := 0
	for _, h := range handles {
		if h == handle {
			n++
		}
	}
	return n
}

// captureLogs routes the package logger into an observer for the duration
// of a test.
func captureLogs(t *testing.T, level zap.AtomicLevel) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })
	return logs
}

const goodVert = "void main() { gl_Position = vec4(0.0); }"
const goodFrag = "void main() {}"

func TestNewValidSources(t *testing.T) {
	api := newFakeAPI()

	sh := NewWithAPI(api, goodFrag, goodVert)

	if sh.ID() == 0 {
		t.Error("expected non-zero program id for valid sources")
	}
	if sh.Err() != nil {
		t.Errorf("expected no substitution error, got %v", sh.Err())
	}
	if len(api.createdPrograms) != 1 {
		t.Errorf("expected 1 program created, got %d", len(api.createdPrograms))
	}
}

func TestStageObjectsReleased(t *testing.T) {
	api := newFakeAPI()

	NewWithAPI(api, goodFrag, goodVert)

	// Both stage objects are transient; they must be deleted after linking.
	if len(api.createdShaders) != 2 {
		t.Fatalf("expected 2 stage objects created, got %d", len(api.createdShaders))
	}
	for _, h := range api.createdShaders {
		if countIn(api.deletedShaders, h) != 1 {
			t.Errorf("stage object %d deleted %d times, want 1", h, countIn(api.deletedShaders, h))
		}
	}
}

func TestInvalidVertexFallsBackToErrorShader(t *testing.T) {
	api := newFakeAPI()
	logs := captureLogs(t, zap.NewAtomicLevelAt(zap.ErrorLevel))

	sh := NewWithAPI(api, goodFrag, "BROKEN vertex source")

	if sh.ID() == 0 {
		t.Error("fallback shader should have a valid program id")
	}
	if sh.Err() == nil {
		t.Error("expected Err to report the original compile failure")
	}
	if !strings.Contains(sh.Err().Error(), "vertex shader") {
		t.Errorf("expected vertex compile error, got %v", sh.Err())
	}

	// The program allocated for the broken sources must not leak.
	broken := api.createdPrograms[0]
	if countIn(api.deletedPrograms, broken) != 1 {
		t.Errorf("broken program %d deleted %d times, want 1", broken, countIn(api.deletedPrograms, broken))
	}

	// The surviving program was built from the embedded error sources.
	var usedErrorSources bool
	for _, src := range api.sources {
		if strings.Contains(src, "checker") {
			usedErrorSources = true
		}
	}
	if !usedErrorSources {
		t.Error("expected fallback to compile the embedded error shader sources")
	}

	if logs.FilterMessage("shader compile failed, substituting error shader").Len() != 1 {
		t.Error("expected compile failure to be logged at error level")
	}
}

func TestInvalidFragmentFallsBackToErrorShader(t *testing.T) {
	api := newFakeAPI()

	sh := NewWithAPI(api, "BROKEN fragment source", goodVert)

	if sh.ID() == 0 {
		t.Error("fallback shader should have a valid program id")
	}
	if sh.Err() == nil || !strings.Contains(sh.Err().Error(), "fragment shader") {
		t.Errorf("expected fragment compile error, got %v", sh.Err())
	}
}

func TestLinkFailureFallsBack(t *testing.T) {
	api := newFakeAPI()
	api.failLink = true

	sh := NewWithAPI(api, goodFrag, goodVert)

	// With linking permanently broken even the error shader cannot be
	// built; New must still return a usable (empty) shader.
	if sh == nil {
		t.Fatal("New must never return nil")
	}
	if sh.Err() == nil || !strings.Contains(sh.Err().Error(), "link") {
		t.Errorf("expected link error, got %v", sh.Err())
	}
	sh.Bind() // binding program 0 must not panic
	if api.currentProg != 0 {
		t.Errorf("expected program 0 bound, got %d", api.currentProg)
	}

	// Every allocated program was released.
	for _, p := range api.createdPrograms {
		if countIn(api.deletedPrograms, p) != 1 {
			t.Errorf("program %d deleted %d times, want 1", p, countIn(api.deletedPrograms, p))
		}
	}
}

func TestSetUniformMissingWarnsAndUploadsToMinusOne(t *testing.T) {
	api := newFakeAPI()
	logs := captureLogs(t, zap.NewAtomicLevelAt(zap.WarnLevel))

	sh := NewWithAPI(api, goodFrag, goodVert)
	sh.SetUniformMat4("iMissing", math.Identity())

	if logs.FilterMessage("uniform not found").Len() != 1 {
		t.Error("expected a warning for the missing uniform")
	}
	if len(api.uploads) != 1 || api.uploads[0] != -1 {
		t.Errorf("expected one upload to location -1, got %v", api.uploads)
	}
}

func TestSetUniformKnownLocation(t *testing.T) {
	api := newFakeAPI()
	api.uniforms["iMVP"] = 3
	api.uniforms["uTime"] = 7
	logs := captureLogs(t, zap.NewAtomicLevelAt(zap.WarnLevel))

	sh := NewWithAPI(api, goodFrag, goodVert)
	sh.SetUniformMat4("iMVP", math.Identity())
	sh.SetUniformFloat("uTime", 1.5)
	sh.SetUniformInt("uFrame", 4) // unknown, goes to -1
	sh.SetUniformVec2("uRes", math.Vec2{X: 640, Y: 480})
	sh.SetUniformVec3("uTint", math.Vec3{X: 1, Y: 0, Z: 1})

	want := []int32{3, 7, -1, -1, -1}
	if len(api.uploads) != len(want) {
		t.Fatalf("expected %d uploads, got %d", len(want), len(api.uploads))
	}
	for i, loc := range want {
		if api.uploads[i] != loc {
			t.Errorf("upload %d: got location %d, want %d", i, api.uploads[i], loc)
		}
	}
	if logs.FilterMessage("uniform not found").Len() != 3 {
		t.Errorf("expected 3 missing-uniform warnings, got %d", logs.FilterMessage("uniform not found").Len())
	}
}

func TestBindUnbind(t *testing.T) {
	api := newFakeAPI()

	sh := NewWithAPI(api, goodFrag, goodVert)
	sh.Bind()
	if api.currentProg != sh.ID() {
		t.Errorf("Bind: active program %d, want %d", api.currentProg, sh.ID())
	}
	sh.Unbind()
	if api.currentProg != 0 {
		t.Errorf("Unbind: active program %d, want 0", api.currentProg)
	}
}

func TestDeleteReleasesExactlyOnce(t *testing.T) {
	api := newFakeAPI()

	sh := NewWithAPI(api, goodFrag, goodVert)
	id := sh.ID()

	sh.Delete()
	sh.Delete()
	sh.Delete()

	if n := countIn(api.deletedPrograms, id); n != 1 {
		t.Errorf("program %d deleted %d times, want exactly 1", id, n)
	}
}

func TestErrorShaderSourcesEmbedded(t *testing.T) {
	if !strings.Contains(ErrorFragmentShader, "checker") {
		t.Error("error fragment shader should contain the checker function")
	}
	if !strings.Contains(ErrorVertexShader, "iMVP") {
		t.Error("error vertex shader should declare the iMVP uniform")
	}
}
