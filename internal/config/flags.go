package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagModel      = flag.String("model", "", "Path to glTF/GLB model")
	flagEnvImage   = flag.String("env", "", "Path to environment image")
	flagAnimation  = flag.Int("animation", -1, "Active animation index")
	flagScale      = flag.Float64("scale", 0, "Uniform vertex scale")
	flagFlipY      = flag.Bool("flip-y", false, "Negate the vertical axis")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagModel != "" {
		cfg.Scene.Model = *flagModel
	} else if flag.NArg() > 0 {
		cfg.Scene.Model = flag.Arg(0)
	}
	if *flagEnvImage != "" {
		cfg.Scene.EnvironmentImage = *flagEnvImage
	}
	if *flagAnimation >= 0 {
		cfg.Animation.Active = *flagAnimation
	}
	if *flagScale > 0 {
		cfg.Loader.Scale = float32(*flagScale)
	}
	if *flagFlipY {
		cfg.Loader.FlipY = true
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
