// Package main is the entry point for the scene viewer.
package main

import (
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/config"
	"github.com/Faultbox/midgard-scene/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Scene.Model == "" {
		path, err := chooseModel()
		if err != nil {
			if err != dialog.ErrCancelled {
				fmt.Fprintf(os.Stderr, "File dialog error: %v\n", err)
			}
			fmt.Fprintln(os.Stderr, "Usage: sceneviewer [options] <file.gltf|file.glb>")
			os.Exit(1)
		}
		cfg.Scene.Model = path
	}

	logger.Info("=== Midgard Scene Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	v, err := newViewer(cfg)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	v.Run()
	logger.Info("viewer closed normally")
}

// chooseModel asks for a document with a native file dialog.
func chooseModel() (string, error) {
	return dialog.File().
		Filter("glTF Scenes", "gltf", "glb").
		Filter("All Files", "*").
		Title("Open Scene").
		Load()
}
