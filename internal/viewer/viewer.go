// Package viewer implements the main loop of the shader viewer.
package viewer

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/shaderview/internal/assets"
	"github.com/Faultbox/shaderview/internal/config"
	"github.com/Faultbox/shaderview/internal/engine/input"
	"github.com/Faultbox/shaderview/internal/engine/renderer"
	"github.com/Faultbox/shaderview/internal/engine/shader"
	"github.com/Faultbox/shaderview/internal/engine/window"
	"github.com/Faultbox/shaderview/internal/logger"
	"github.com/Faultbox/shaderview/pkg/math"
)

// Viewer ties the window, input, renderer and the current shader together.
type Viewer struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	sources  *assets.Manager
	shader   *shader.Shader
}

// New creates a viewer from the given configuration. The configured shader
// pair is compiled immediately; a broken pair still yields a working viewer
// showing the checkerboard error shader.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("vertex", cfg.Shader.VertexPath),
		zap.String("fragment", cfg.Shader.FragmentPath),
	)

	v := &Viewer{
		cfg:     cfg,
		sources: assets.NewManager(),
	}

	// Window first: it owns the GL context everything else needs.
	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.renderer, err = renderer.New(renderer.Config{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.shader = v.compile()

	return v, nil
}

// compile loads the configured source pair and builds a shader from it.
// Failures degrade to the error shader rather than aborting.
func (v *Viewer) compile() *shader.Shader {
	vert, frag, err := v.sources.LoadPair(v.cfg.Shader.VertexPath, v.cfg.Shader.FragmentPath)
	if err != nil {
		logger.Error("failed to load shader sources", zap.Error(err))
		// Empty sources cannot compile; New substitutes the error shader.
		return shader.New("", "")
	}

	sh := shader.New(frag, vert)
	if sh.Err() != nil {
		logger.Warn("shader did not build, showing error shader",
			zap.String("fragment", v.cfg.Shader.FragmentPath),
		)
	} else {
		logger.Info("shader compiled",
			zap.Uint32("program", sh.ID()),
			zap.String("fragment", v.cfg.Shader.FragmentPath),
		)
	}
	return sh
}

// Reload re-reads the shader sources from disk and swaps in a fresh
// program. The old program is released after the new one is built.
func (v *Viewer) Reload() {
	logger.Info("reloading shader")
	v.sources.Invalidate(v.cfg.Shader.VertexPath, v.cfg.Shader.FragmentPath)

	old := v.shader
	v.shader = v.compile()
	old.Delete()
}

// Run starts the main loop and blocks until the viewer quits.
func (v *Viewer) Run() error {
	v.running = true

	start := time.Now()
	lastFPSLog := start
	frames := 0

	logger.Info("starting viewer loop")

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}

		for _, event := range v.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				v.renderer.Resize(event.Width, event.Height)
			case input.EventKeyDown:
				switch event.Key {
				case sdl.SCANCODE_ESCAPE:
					v.running = false
				case sdl.SCANCODE_R:
					v.Reload()
				}
			}
		}

		v.renderer.Begin()
		v.renderer.Draw(v.shader, renderer.FrameState{
			MVP:  math.Identity(),
			Time: float32(time.Since(start).Seconds()),
		})
		v.window.SwapBuffers()

		frames++
		if now := time.Now(); now.Sub(lastFPSLog) >= 5*time.Second {
			elapsed := now.Sub(lastFPSLog).Seconds()
			logger.Debug("frame rate", zap.Float64("fps", float64(frames)/elapsed))
			frames = 0
			lastFPSLog = now
		}
	}

	logger.Info("viewer loop finished")
	return nil
}

// Close releases the shader, renderer and window in reverse creation order.
func (v *Viewer) Close() {
	if v.shader != nil {
		v.shader.Delete()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
