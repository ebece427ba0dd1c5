// Package main is the entry point for the OrbitFX viewer.
package main

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/app"
	"github.com/Faultbox/orbitfx/internal/config"
	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/logger"
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

	logger.Info("=== OrbitFX ===",
		zap.String("scene", cfg.Scene.Initial),
		zap.Bool("headless", cfg.Scene.Headless),
	)
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	if cfg.Scene.Headless {
		a := app.New(cfg, frame.NewFixedClock(time.Second/time.Duration(cfg.Scene.FrameHz)))
		defer a.Close()
		return a.RunHeadless(cfg.Scene.Frames)
	}

	a := app.New(cfg, frame.NewClock(nil))
	defer a.Close()

	v, err := app.NewViewer(a)
	if err != nil {
		return err
	}
	defer v.Close()
	return v.Run()
}
