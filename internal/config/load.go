package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// appDir names the per-user config directory.
const appDir = "enroth-render"

// Load returns the effective configuration: defaults, overlaid by the config
// file (-config, or the first file found by searchPaths), overlaid by
// command-line flags. The result is validated; an invalid value is an error.
func Load() (*Config, error) {
	path := ConfigPath()
	if path == "" {
		path = findConfigFile()
	}
	return build(path, applyFlags)
}

func build(path string, override func(*Config)) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// searchPaths lists the implicit config locations, working directory first.
func searchPaths() []string {
	return []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
}

func findConfigFile() string {
	for _, path := range searchPaths() {
		if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// ConfigDir returns the per-user config directory for the platform.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, appDir)
}

// loadFromFile overlays the YAML file at path onto cfg. Keys that match no
// setting are rejected so typos do not pass silently. An empty file changes
// nothing.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
