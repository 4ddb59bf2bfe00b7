// Package main is the entry point for the Enroth render viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/enroth-render/internal/config"
	"github.com/Faultbox/enroth-render/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := writeConfig(cfg, path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Initialize logger
	if err := logger.InitWithOptions(logOptions(cfg)); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Enroth Render Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := NewViewer(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	err = v.Run(config.Frames(), config.ScreenshotPath())
	v.Summary()
	v.Close()
	if err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
