// Package config handles viewer and loader configuration.
package config

import "github.com/Faultbox/midgard-scene/internal/engine/loader"

// Config holds all scene runtime settings.
type Config struct {
	Scene     SceneConfig     `yaml:"scene"`
	Loader    LoaderConfig    `yaml:"loader"`
	Animation AnimationConfig `yaml:"animation"`
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SceneConfig holds asset paths.
type SceneConfig struct {
	Model            string `yaml:"model"`             // glTF or GLB document
	EnvironmentModel string `yaml:"environment_model"` // optional skybox geometry
	EnvironmentImage string `yaml:"environment_image"` // optional environment map
}

// LoaderConfig mirrors loader.Options.
type LoaderConfig struct {
	PreTransformVertices    bool    `yaml:"pre_transform_vertices"`
	PreMultiplyVertexColors bool    `yaml:"pre_multiply_vertex_colors"`
	FlipY                   bool    `yaml:"flip_y"`
	DontLoadImages          bool    `yaml:"dont_load_images"`
	DefaultImage            int     `yaml:"default_image"` // -1 lets the loader add a white image
	Scale                   float32 `yaml:"scale"`
}

// AnimationConfig holds playback settings.
type AnimationConfig struct {
	Enabled bool    `yaml:"enabled"`
	Active  int     `yaml:"active"`
	Speed   float32 `yaml:"speed"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Wireframe  bool `yaml:"wireframe"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			DefaultImage: -1,
			Scale:        1,
		},
		Animation: AnimationConfig{
			Enabled: true,
			Active:  0,
			Speed:   1,
		},
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// LoadOptions converts the loader section into loader options.
func (c *Config) LoadOptions() loader.Options {
	opts := loader.DefaultOptions()
	opts.PreTransformVertices = c.Loader.PreTransformVertices
	opts.PreMultiplyVertexColors = c.Loader.PreMultiplyVertexColors
	opts.FlipY = c.Loader.FlipY
	opts.DontLoadImages = c.Loader.DontLoadImages
	opts.DefaultImage = c.Loader.DefaultImage
	if c.Loader.Scale != 0 {
		opts.Scale = c.Loader.Scale
	}
	return opts
}
