package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Title != "shaderview" {
		t.Errorf("expected title 'shaderview', got %s", cfg.Window.Title)
	}
	if cfg.Window.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Window.Height)
	}
	if cfg.Window.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Shader.VertexPath != "shaders/default.vert" {
		t.Errorf("expected default vertex path, got %s", cfg.Shader.VertexPath)
	}
	if cfg.Shader.FragmentPath != "shaders/default.frag" {
		t.Errorf("expected default fragment path, got %s", cfg.Shader.FragmentPath)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "shaderview.yaml")

	yamlContent := `
window:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
shader:
  vertex_path: my/shader.vert
  fragment_path: my/shader.frag
logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen true")
	}
	if cfg.Window.VSync {
		t.Error("expected vsync false")
	}
	if cfg.Shader.VertexPath != "my/shader.vert" {
		t.Errorf("expected vertex path override, got %s", cfg.Shader.VertexPath)
	}
	if cfg.Shader.FragmentPath != "my/shader.frag" {
		t.Errorf("expected fragment path override, got %s", cfg.Shader.FragmentPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}

	// Unset fields keep their defaults
	if cfg.Window.Title != "shaderview" {
		t.Errorf("expected default title to survive merge, got %s", cfg.Window.Title)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "shaderview.yaml")

	yamlContent := `
shader:
  fragment_path: plasma.frag
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("loadFromFile failed: %v", err)
	}

	if cfg.Shader.FragmentPath != "plasma.frag" {
		t.Errorf("expected fragment path plasma.frag, got %s", cfg.Shader.FragmentPath)
	}
	if cfg.Shader.VertexPath != "shaders/default.vert" {
		t.Errorf("expected default vertex path to survive, got %s", cfg.Shader.VertexPath)
	}
	if cfg.Window.Width != 1280 {
		t.Errorf("expected default width to survive, got %d", cfg.Window.Width)
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "shaderview.yaml")

	cfg := Default()
	cfg.Window.Width = 800
	cfg.Shader.FragmentPath = "other.frag"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile after save failed: %v", err)
	}

	if loaded.Window.Width != 800 {
		t.Errorf("expected saved width 800, got %d", loaded.Window.Width)
	}
	if loaded.Shader.FragmentPath != "other.frag" {
		t.Errorf("expected saved fragment path other.frag, got %s", loaded.Shader.FragmentPath)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error loading missing file")
	}
}
