package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/orbitfx/internal/config"
	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/scene"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Assets.Roots = []string{t.TempDir()}
	cfg.Scene.Seed = 42
	cfg.Scene.FrameHz = 10
	cfg.Globe.Earth = config.EarthConfig{
		Surface:  "earth/surface.png",
		Normal:   "earth/normal.png",
		Specular: "earth/specular.png",
		Clouds:   "earth/clouds.png",
	}
	a := New(cfg, frame.NewFixedClock(100*time.Millisecond))
	t.Cleanup(a.Close)
	return a
}

func TestMountSwitchesScenes(t *testing.T) {
	a := testApp(t)

	if err := a.Mount(config.SceneAtom); err != nil {
		t.Fatal(err)
	}
	atom := a.Current()
	if atom.Name != config.SceneAtom || a.Globe() != nil {
		t.Fatalf("current = %s", atom.Name)
	}
	// Camera, nucleus float, three electrons.
	if n := a.Loop().Len(); n != 5 {
		t.Errorf("atom callbacks = %d, want 5", n)
	}

	if err := a.Mount(config.SceneGlobe); err != nil {
		t.Fatal(err)
	}
	if !atom.Closed() || !atom.Root.Disposed() {
		t.Error("switching should close the previous scene")
	}
	if a.Globe() == nil || a.Current() != a.Globe().Visualization {
		t.Fatal("globe not mounted")
	}
	if n := a.Loop().Len(); n != 1 {
		t.Errorf("globe callbacks before assets = %d, want only the camera", n)
	}

	// The textures do not exist, so the Earth never mounts.
	a.Library().Wait()
	a.Step()
	earth := a.Globe().Boundary(scene.EarthBoundary)
	if earth.State() != scene.Failed {
		t.Errorf("earth state = %v", earth.State())
	}
	if a.Mounts() != 2 {
		t.Errorf("mounts = %d", a.Mounts())
	}
}

func TestRebuildReproducesPopulation(t *testing.T) {
	a := testApp(t)
	if err := a.Rebuild(); err != nil {
		t.Fatal(err)
	}
	if a.Current().Name != config.SceneAtom {
		t.Fatalf("rebuild before any mount should use the initial scene, got %s", a.Current().Name)
	}

	if err := a.Mount(config.SceneGlobe); err != nil {
		t.Fatal(err)
	}
	first := a.Globe().Population
	if err := a.Rebuild(); err != nil {
		t.Fatal(err)
	}
	second := a.Globe().Population
	if len(first) != len(second) {
		t.Fatalf("population sizes %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("satellite %d changed across rebuild", i)
		}
	}
}

func TestMountUnknownScene(t *testing.T) {
	a := testApp(t)
	if err := a.Mount(config.SceneAtom); err != nil {
		t.Fatal(err)
	}
	err := a.Mount("moon")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("err = %v", err)
	}
	if a.Current() != nil || a.Loop().Len() != 0 {
		t.Error("failed mount should leave nothing running")
	}
}

func TestRunHeadless(t *testing.T) {
	a := testApp(t)
	if err := a.RunHeadless(25); err != nil {
		t.Fatal(err)
	}
	if s := a.Loop().Clock().State(); s.Frame != 25 {
		t.Errorf("frames run = %d", s.Frame)
	}

	poses := Poses(a.Current().Root)
	if len(poses) != 3 {
		t.Fatalf("poses = %v", poses)
	}
	for i, p := range poses {
		if !strings.HasPrefix(p.Name, "electron-") {
			t.Errorf("pose %d name %q", i, p.Name)
		}
		if p.Position.Length() == 0 {
			t.Errorf("%s sits at the origin", p.Name)
		}
	}
}
