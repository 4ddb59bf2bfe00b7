package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 640 || cfg.Graphics.Height != 480 {
		t.Errorf("expected 640x480, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.Backend != "gl" {
		t.Errorf("expected backend gl, got %s", cfg.Graphics.Backend)
	}
	if cfg.Render.Strict {
		t.Error("expected strict to be false by default")
	}
	if cfg.Render.ZBias.Sky != -1 {
		t.Errorf("expected sky bias -1, got %f", cfg.Render.ZBias.Sky)
	}
	if cfg.Render.ZBias.Decal <= cfg.Render.ZBias.Lightmap {
		t.Error("decals must sit above lightmaps")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1024
  height: 768
  backend: headless

render:
  strict: true
  max_textures: 64
  filter: bilinear
  fog:
    enabled: false
  z_bias:
    lightmap: 0.001

data:
  texture_dir: "/opt/mm7/bitmaps"
  preload_workers: 8

screenshot:
  format: webp

logging:
  level: "debug"
  log_file: "render.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1024 || cfg.Graphics.Height != 768 {
		t.Errorf("expected 1024x768, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.Backend != "headless" {
		t.Errorf("expected headless backend, got %s", cfg.Graphics.Backend)
	}
	if !cfg.Render.Strict || cfg.Render.MaxTextures != 64 || cfg.Render.Filter != "bilinear" {
		t.Errorf("render section not loaded: %+v", cfg.Render)
	}
	if cfg.Render.Fog.Enabled {
		t.Error("expected fog disabled")
	}
	// Unset keys keep their defaults.
	if cfg.Render.Fog.End != 12000 || cfg.Render.ZBias.Sky != -1 {
		t.Errorf("defaults lost on merge: fog end %f, sky %f", cfg.Render.Fog.End, cfg.Render.ZBias.Sky)
	}
	if cfg.Render.ZBias.Lightmap != 0.001 {
		t.Errorf("expected lightmap bias 0.001, got %f", cfg.Render.ZBias.Lightmap)
	}
	if cfg.Data.TextureDir != "/opt/mm7/bitmaps" || cfg.Data.PreloadWorkers != 8 {
		t.Errorf("data section not loaded: %+v", cfg.Data)
	}
	if cfg.Screenshot.Format != "webp" {
		t.Errorf("expected webp, got %s", cfg.Screenshot.Format)
	}
	if cfg.Logging.LogFile != "render.log" {
		t.Errorf("expected log file 'render.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" && filepath.Dir(path) == "." {
		t.Errorf("expected no local config, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path != "./config.yaml" {
		t.Errorf("expected ./config.yaml, got %q", path)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "headless flag",
			setup: func() { *flagHeadless = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Backend != "headless" {
					t.Errorf("expected headless backend, got %s", cfg.Graphics.Backend)
				}
			},
			teardown: func() { *flagHeadless = false },
		},
		{
			name:  "backend flag",
			setup: func() { *flagBackend = "software" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Backend != "software" {
					t.Errorf("expected software backend, got %s", cfg.Graphics.Backend)
				}
			},
			teardown: func() { *flagBackend = "" },
		},
		{
			name:  "strict flag",
			setup: func() { *flagStrict = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Render.Strict {
					t.Error("expected strict mode")
				}
			},
			teardown: func() { *flagStrict = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 800
				*flagHeight = 600
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 800 || cfg.Graphics.Height != 600 {
					t.Errorf("expected 800x600, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("graphics:\n  backend: vulkan\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = path
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("Load accepted an unknown backend")
	}
}

func TestLoadFromFileStrictKeys(t *testing.T) {
	dir := t.TempDir()
	typo := filepath.Join(dir, "typo.yaml")
	if err := os.WriteFile(typo, []byte("render:\n  fliter: bilinear\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if err := loadFromFile(Default(), typo); err == nil {
		t.Error("expected error for unknown key")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	cfg, err := build(empty, nil)
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if cfg.Graphics.Width != Default().Graphics.Width {
		t.Errorf("empty file changed width to %d", cfg.Graphics.Width)
	}
}

func TestSaveToRoundTripFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Render.Filter = "bilinear"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Render.Filter != "bilinear" {
		t.Errorf("expected bilinear after round trip, got %s", loaded.Render.Filter)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#ff8000", color.NRGBA{255, 128, 0, 255}, false},
		{"00fcfc", color.NRGBA{0, 252, 252, 255}, false},
		{"#10203040", color.NRGBA{16, 32, 48, 64}, false},
		{"#fff", color.NRGBA{}, true},
		{"#gggggg", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Graphics.Backend = "vulkan"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}

	cfg = Default()
	cfg.Screenshot.Format = "pcx"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown screenshot format")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Graphics.Backend = "headless"
	cfg.Render.ZBias.Decal = 0.25
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Graphics.Backend != "headless" || loaded.Render.ZBias.Decal != 0.25 {
		t.Errorf("saved values lost: %+v %+v", loaded.Graphics, loaded.Render.ZBias)
	}
}

func TestValidateLogging(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"defaults", "info", "console", false},
		{"json", "debug", "json", false},
		{"empty", "", "", false},
		{"bad level", "verbose", "console", true},
		{"bad format", "info", "xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Logging.Level = tt.level
			cfg.Logging.Format = tt.format
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
