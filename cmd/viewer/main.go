// Package main is the entry point for the Armature model viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kverness/armature/internal/config"
	"github.com/kverness/armature/internal/engine/viewer"
	"github.com/kverness/armature/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	path := config.ModelArg()
	if path == "" {
		path = cfg.Viewer.Model
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: viewer [flags] <model.gltf|model.glb>")
		os.Exit(2)
	}

	logger.Info("=== Armature Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := viewer.New(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.LoadModel(path); err != nil {
		logger.Error("failed to load model",
			zap.String("path", path),
			zap.Error(err),
		)
		os.Exit(1)
	}

	// Run the viewer loop
	if err := v.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
