package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWidth      = flag.Int("width", 0, "Render width")
	flagHeight     = flag.Int("height", 0, "Render height")
	flagHeadless   = flag.Bool("headless", false, "Render without a window")
	flagBackend    = flag.String("backend", "", "Render backend: gl, software or headless")
	flagStrict     = flag.Bool("strict", false, "Panic on render state misuse")
	flagFrames     = flag.Int("frames", 0, "Number of frames to render (0 runs until the window closes)")
	flagScreenshot = flag.String("screenshot", "", "Save the last frame to this path")
	flagWriteCfg   = flag.String("write-config", "", "Write the effective config to this path and exit (\"user\" for the config directory)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Frames returns the --frames value.
func Frames() int {
	return *flagFrames
}

// ScreenshotPath returns the --screenshot value.
func ScreenshotPath() string {
	return *flagScreenshot
}

// WriteConfigPath returns the --write-config value.
func WriteConfigPath() string {
	return *flagWriteCfg
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagBackend != "" {
		cfg.Graphics.Backend = *flagBackend
	}
	if *flagHeadless {
		cfg.Graphics.Backend = "headless"
	}
	if *flagStrict {
		cfg.Render.Strict = true
	}
}
