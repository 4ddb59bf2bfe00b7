// Package config handles viewer and renderer configuration loading.
package config

// Config holds all settings.
type Config struct {
	Graphics   GraphicsConfig   `yaml:"graphics"`
	Render     RenderConfig     `yaml:"render"`
	Data       DataConfig       `yaml:"data"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	Backend    string `yaml:"backend"` // gl, software or headless
}

// RenderConfig holds renderer behavior and calibration.
type RenderConfig struct {
	Strict            bool        `yaml:"strict"` // panic on state machine misuse
	MaxTextures       int         `yaml:"max_textures"`
	TextureMemoryMB   int         `yaml:"texture_memory_mb"`
	Placeholder       string      `yaml:"placeholder"` // checker or skip
	Filter            string      `yaml:"filter"`      // nearest or bilinear
	Fog               FogConfig   `yaml:"fog"`
	IndoorDimDistance float32     `yaml:"indoor_dim_distance"`
	ZBias             ZBiasConfig `yaml:"z_bias"`
	Tinting           bool        `yaml:"tinting"`
	ColoredLights     bool        `yaml:"colored_lights"`
}

// FogConfig holds outdoor distance fog.
type FogConfig struct {
	Enabled bool    `yaml:"enabled"`
	Start   float32 `yaml:"start"`
	End     float32 `yaml:"end"`
	Color   string  `yaml:"color"` // #rrggbb
}

// ZBiasConfig holds the per-layer depth offsets.
type ZBiasConfig struct {
	Sky      float32 `yaml:"sky"`
	Terrain  float32 `yaml:"terrain"`
	Lightmap float32 `yaml:"lightmap"`
	Decal    float32 `yaml:"decal"`
}

// DataConfig holds texture source settings.
type DataConfig struct {
	TextureDir     string `yaml:"texture_dir"`
	ColorKey       string `yaml:"color_key"` // #rrggbb made transparent on load, empty for none
	PreloadWorkers int    `yaml:"preload_workers"`
}

// ScreenshotConfig holds screenshot output settings.
type ScreenshotConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Format string `yaml:"format"` // png or webp
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	Format     string `yaml:"format"` // console or json, for the file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      640,
			Height:     480,
			Fullscreen: false,
			VSync:      true,
			Backend:    "gl",
		},
		Render: RenderConfig{
			Strict:          false,
			MaxTextures:     4096,
			TextureMemoryMB: 256,
			Placeholder:     "checker",
			Filter:          "nearest",
			Fog: FogConfig{
				Enabled: true,
				Start:   4000,
				End:     12000,
				Color:   "#80a0c0",
			},
			IndoorDimDistance: 6000,
			ZBias: ZBiasConfig{
				Sky:      -1,
				Terrain:  0,
				Lightmap: 0.00002,
				Decal:    0.00004,
			},
			Tinting:       true,
			ColoredLights: true,
		},
		Data: DataConfig{
			TextureDir:     "data/textures",
			ColorKey:       "#00fcfc",
			PreloadWorkers: 4,
		},
		Screenshot: ScreenshotConfig{
			Dir:    "screenshots",
			Prefix: "enroth",
			Format: "png",
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}
