// Package app runs the viewer: it owns the frame loop and the asset
// library, mounts one visualization at a time and drives it either with a
// window and renderer or headless for a fixed number of frames.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/assets"
	"github.com/Faultbox/orbitfx/internal/config"
	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/engine/texture"
	"github.com/Faultbox/orbitfx/internal/logger"
	"github.com/Faultbox/orbitfx/internal/scene"
)

// App is a viewer instance. All methods run on the loop thread.
type App struct {
	cfg  *config.Config
	loop *frame.Loop
	mgr  *assets.Manager
	lib  *assets.Library
	seed int64
	log  *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	current *scene.Visualization
	globe   *scene.Globe
	last    string
	mounts  int
}

// New creates an app over the clock. Nothing is mounted until Mount.
func New(cfg *config.Config, clock *frame.Clock) *App {
	loop := frame.NewLoop(clock)

	mgr := assets.NewManager(assets.NewHTTPSource(cfg.Assets.HTTPTimeout))
	for _, root := range cfg.Assets.Roots {
		mgr.AddSource(assets.DirSource{Root: root})
	}

	seed := cfg.Scene.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	a := &App{
		cfg:  cfg,
		loop: loop,
		mgr:  mgr,
		lib:  assets.NewLibrary(mgr, loop, texture.Options{MaxSize: cfg.Assets.MaxTextureSize}),
		seed: seed,
		log:  logger.Named("app"),
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a
}

// Loop returns the frame loop.
func (a *App) Loop() *frame.Loop { return a.loop }

// Library returns the asset library.
func (a *App) Library() *assets.Library { return a.lib }

// Current returns the mounted visualization, or nil.
func (a *App) Current() *scene.Visualization { return a.current }

// Globe returns the mounted globe, or nil when another scene is shown.
func (a *App) Globe() *scene.Globe { return a.globe }

// Mounts returns how many visualizations have been mounted so far.
func (a *App) Mounts() int { return a.mounts }

// Mount closes the current visualization and builds the named one. Each
// mount reseeds from the configured seed so a rebuild reproduces the same
// population.
func (a *App) Mount(name string) error {
	a.unmount()
	a.last = name

	rng := rand.New(rand.NewSource(a.seed))
	switch name {
	case config.SceneAtom:
		v, err := scene.NewAtom(a.loop, a.cfg.Atom, rng)
		if err != nil {
			return fmt.Errorf("mounting %s: %w", name, err)
		}
		a.current = v
	case config.SceneGlobe:
		g, err := scene.NewGlobe(a.ctx, a.loop, a.lib, a.cfg.Globe, rng)
		if err != nil {
			return fmt.Errorf("mounting %s: %w", name, err)
		}
		a.current, a.globe = g.Visualization, g
	default:
		return fmt.Errorf("%w: unknown scene %q", config.ErrInvalidConfig, name)
	}

	a.mounts++
	a.log.Info("scene mounted", zap.String("scene", name), zap.Int64("seed", a.seed))
	return nil
}

// Rebuild remounts the last requested visualization, or the initial one
// before any Mount.
func (a *App) Rebuild() error {
	if a.last == "" {
		return a.Mount(a.cfg.Scene.Initial)
	}
	return a.Mount(a.last)
}

// Step advances one frame.
func (a *App) Step() frame.State {
	return a.loop.Step()
}

func (a *App) unmount() {
	if a.current == nil {
		return
	}
	a.current.Close()
	a.current, a.globe = nil, nil
}

// Close unmounts the scene, cancels every outstanding load and drops the
// asset cache.
func (a *App) Close() {
	a.log.Info("closing app")
	a.unmount()
	a.cancel()
	a.lib.Close()
	a.lib.Wait()
	a.mgr.Close()
}
