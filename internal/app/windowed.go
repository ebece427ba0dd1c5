package app

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/config"
	"github.com/Faultbox/orbitfx/internal/engine/capture"
	"github.com/Faultbox/orbitfx/internal/engine/input"
	"github.com/Faultbox/orbitfx/internal/engine/renderer"
	"github.com/Faultbox/orbitfx/internal/engine/window"
)

const windowTitle = "OrbitFX"

// Viewer is the windowed front end of an App.
type Viewer struct {
	app      *App
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	shots    *capture.Saver

	captureNext bool
}

// NewViewer opens the window and the renderer for a.
func NewViewer(a *App) (*Viewer, error) {
	g := a.cfg.Graphics
	v := &Viewer{app: a}

	var err error
	v.window, err = window.New(window.Config{
		Title:      windowTitle,
		Width:      g.Width,
		Height:     g.Height,
		Fullscreen: g.Fullscreen,
		VSync:      g.VSync,
		MSAA:       g.MSAA,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The GL context must exist before the renderer.
	w, h := v.window.GetDrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:  w,
		Height: h,
		MSAA:   g.MSAA > 0,
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.input = input.New()
	v.shots = capture.NewSaver(g.ScreenshotDir, "orbitfx")
	return v, nil
}

// Run mounts the initial scene and runs the main loop until the window
// closes or Esc is pressed.
func (v *Viewer) Run() error {
	a := v.app
	if err := a.Mount(a.cfg.Scene.Initial); err != nil {
		return err
	}

	var minFrame time.Duration
	if fps := a.cfg.Graphics.FPSLimit; fps > 0 {
		minFrame = time.Second / time.Duration(fps)
	}
	frames := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")
	v.running = true
	for v.running {
		start := time.Now()

		if v.input.Update() {
			break
		}
		v.handleEvents()
		v.steerCamera()

		s := a.Step()
		cur := a.Current()
		if cur == nil {
			// A failed switch leaves nothing mounted; R retries.
			continue
		}
		v.renderer.Render(cur.Root, cur.Camera, cur.Background, s.Elapsed)
		if v.captureNext {
			v.captureNext = false
			v.screenshot(cur.Name)
		}
		v.window.SwapBuffers()

		frames++
		if time.Since(fpsTimer) >= time.Second {
			st := v.renderer.Stats()
			v.window.SetTitle(fmt.Sprintf("%s - %s - %d fps", windowTitle, cur.Name, frames))
			a.log.Debug("fps",
				zap.Int("count", frames),
				zap.Int("callbacks", cur.Registrations()),
				zap.Int("meshes", st.Meshes),
				zap.Int("lines", st.Lines),
				zap.Int("lights", st.Lights),
				zap.Int("released", st.Released),
			)
			frames = 0
			fpsTimer = time.Now()
		}

		if minFrame > 0 {
			if spent := time.Since(start); spent < minFrame {
				time.Sleep(minFrame - spent)
			}
		}
	}
	return nil
}

func (v *Viewer) handleEvents() {
	a := v.app
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			w, h := v.window.GetDrawableSize()
			v.renderer.Resize(w, h)
		case input.EventKeyDown:
			var err error
			switch e.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_1:
				err = a.Mount(config.SceneAtom)
			case sdl.SCANCODE_2:
				err = a.Mount(config.SceneGlobe)
			case sdl.SCANCODE_R:
				err = a.Rebuild()
			case sdl.SCANCODE_F12:
				v.captureNext = true
			}
			if err != nil {
				a.log.Error("scene switch failed", zap.Error(err))
			}
		}
	}
}

func (v *Viewer) screenshot(label string) {
	pixels, w, h := v.renderer.ReadPixels()
	name, err := v.shots.SavePixels(pixels, w, h, label)
	if err != nil {
		v.app.log.Error("screenshot failed", zap.Error(err))
		return
	}
	v.app.log.Info("screenshot saved", zap.String("file", name))
}

// steerCamera feeds this frame's pointer motion to the camera, which
// ignores whatever its controls disable.
func (v *Viewer) steerCamera() {
	cur := v.app.Current()
	if cur == nil {
		return
	}
	cam := cur.Camera
	if dx, dy := v.input.Drag(); dx != 0 || dy != 0 {
		cam.HandleDrag(dx, dy)
	}
	if dx, dy := v.input.Pan(); dx != 0 || dy != 0 {
		cam.HandlePan(dx, dy)
	}
	if w := v.input.Wheel(); w != 0 {
		cam.HandleZoom(w)
	}
}

// Close releases the renderer and the window.
func (v *Viewer) Close() {
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
