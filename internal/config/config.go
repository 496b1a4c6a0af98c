// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Shader  ShaderConfig  `yaml:"shader"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// ShaderConfig holds the shader source pair the viewer renders.
type ShaderConfig struct {
	VertexPath   string `yaml:"vertex_path"`
	FragmentPath string `yaml:"fragment_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "shaderview",
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Shader: ShaderConfig{
			VertexPath:   "shaders/default.vert",
			FragmentPath: "shaders/default.frag",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
