package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 || cfg.Graphics.Height != 720 {
		t.Errorf("expected 1280x720, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Assets.HTTPTimeout != 15*time.Second {
		t.Errorf("expected http timeout 15s, got %v", cfg.Assets.HTTPTimeout)
	}
	if cfg.Scene.Initial != SceneAtom {
		t.Errorf("expected initial scene atom, got %s", cfg.Scene.Initial)
	}

	p := cfg.Globe.Population
	if p.Count != 15 || len(p.Colors) != 3 || p.Colors[0] != "#FF9933" {
		t.Errorf("unexpected population defaults: %+v", p)
	}
	if p.Speed != (Range{0.05, 0.15}) || p.Radius != (Range{1.9, 2.7}) {
		t.Errorf("unexpected population ranges: speed %v radius %v", p.Speed, p.Radius)
	}
	if p.Inclination.Max != math.Pi || p.Phase.Max != 2*math.Pi {
		t.Errorf("unexpected angle ranges: %v %v", p.Inclination, p.Phase)
	}
	if cfg.Globe.Controls.MinPolarAngle != math.Pi/3 || cfg.Globe.Controls.MaxPolarAngle != 2*math.Pi/3 {
		t.Errorf("unexpected polar clamp: %+v", cfg.Globe.Controls)
	}
	if cfg.Atom.Stars.Count != 800 || cfg.Globe.Stars.Count != 3000 {
		t.Errorf("unexpected star counts %d/%d", cfg.Atom.Stars.Count, cfg.Globe.Stars.Count)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144

logging:
  level: "debug"
  log_file: "orbitfx.log"

assets:
  roots: ["/srv/assets", "assets"]
  http_timeout: 5s

scene:
  initial: globe
  seed: 42

globe:
  population:
    count: 6
    colors: ["#ff0000"]
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen || cfg.Graphics.VSync || cfg.Graphics.FPSLimit != 144 {
		t.Errorf("unexpected graphics %+v", cfg.Graphics)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "orbitfx.log" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
	if len(cfg.Assets.Roots) != 2 || cfg.Assets.Roots[0] != "/srv/assets" {
		t.Errorf("unexpected roots %v", cfg.Assets.Roots)
	}
	if cfg.Assets.HTTPTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Assets.HTTPTimeout)
	}
	if cfg.Scene.Initial != SceneGlobe || cfg.Scene.Seed != 42 {
		t.Errorf("unexpected scene %+v", cfg.Scene)
	}
	if cfg.Globe.Population.Count != 6 || len(cfg.Globe.Population.Colors) != 1 {
		t.Errorf("unexpected population %+v", cfg.Globe.Population)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Globe.Population.Radius != (Range{1.9, 2.7}) {
		t.Errorf("radius range should keep its default, got %v", cfg.Globe.Population.Radius)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"unknown scene", func(c *Config) { c.Scene.Initial = "solar" }},
		{"headless without frames", func(c *Config) { c.Scene.Headless = true; c.Scene.Frames = 0 }},
		{"zero frame rate", func(c *Config) { c.Scene.FrameHz = 0 }},
		{"negative timeout", func(c *Config) { c.Assets.HTTPTimeout = -time.Second }},
		{"no electrons", func(c *Config) { c.Atom.ElectronSpeeds = nil }},
		{"four electrons", func(c *Config) { c.Atom.ElectronSpeeds = []float64{0.5, 0.8, 1.1, 1.4} }},
		{"short trail", func(c *Config) { c.Atom.TrailLength = 0 }},
		{"no colors", func(c *Config) { c.Globe.Population.Colors = nil }},
		{"inverted range", func(c *Config) { c.Globe.Population.Speed = Range{1, 0.5} }},
		{"negative radius", func(c *Config) { c.Globe.Population.Radius = Range{-1, 2} }},
		{"inverted polar", func(c *Config) { c.Globe.Controls.MinPolarAngle = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Scene.Initial = SceneGlobe
	cfg.Globe.Population.Count = 3

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Scene.Initial != SceneGlobe || loaded.Globe.Population.Count != 3 {
		t.Errorf("saved config not restored: %+v %+v", loaded.Scene, loaded.Globe.Population)
	}
	if loaded.Assets.HTTPTimeout != 15*time.Second {
		t.Errorf("duration not restored: %v", loaded.Assets.HTTPTimeout)
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
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
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
			name:  "scene and seed flags",
			setup: func() { *flagScene = SceneGlobe; *flagSeed = 7 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Initial != SceneGlobe || cfg.Scene.Seed != 7 {
					t.Errorf("unexpected scene %+v", cfg.Scene)
				}
			},
			teardown: func() { *flagScene = ""; *flagSeed = 0 },
		},
		{
			name:  "headless flags",
			setup: func() { *flagHeadless = true; *flagFrames = 30 },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Scene.Headless || cfg.Scene.Frames != 30 {
					t.Errorf("unexpected scene %+v", cfg.Scene)
				}
			},
			teardown: func() { *flagHeadless = false; *flagFrames = 0 },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name:  "width and height flags",
			setup: func() { *flagWidth = 2560; *flagHeight = 1440 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() { *flagWidth = 0; *flagHeight = 0 },
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
	configPath := filepath.Join(t.TempDir(), "config.yaml")

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

func TestLoadRejectsInvalid(t *testing.T) {
	*flagScene = "solar"
	defer func() { *flagScene = "" }()

	// Keep Load away from any config.yaml on the test machine.
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("scene:\n  initial: globe\nglobe:\n  population:\n    count: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(good)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Scene.Initial != SceneGlobe || cfg.Globe.Population.Count != 4 {
		t.Errorf("file values not applied: %+v", cfg.Scene)
	}
	if len(cfg.Globe.Population.Colors) != 3 {
		t.Errorf("defaults should survive a partial file, colors = %v", cfg.Globe.Population.Colors)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("scene:\n  initial: moon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("invalid scene should fail validation, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("graphics:\n  width: 640\n  height: 480\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Graphics.Width != 640 || cfg.Graphics.Height != 480 {
		t.Errorf("env config not used: %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
}

func TestSaveToReplacesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.yaml")
	cfg := Default()
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}
	cfg.Scene.Initial = SceneGlobe
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Scene.Initial != SceneGlobe {
		t.Errorf("second save not visible, initial = %s", loaded.Scene.Initial)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestValidateErrorOrder(t *testing.T) {
	cfg := Default()
	cfg.Globe.Population.Phase = Range{2, 1}
	cfg.Globe.Population.Speed = Range{1, 0.5}
	cfg.Globe.Population.Inclination = Range{1, 0}

	first := cfg.Validate().Error()
	for i := 0; i < 20; i++ {
		if got := cfg.Validate().Error(); got != first {
			t.Fatalf("error text changed between runs:\n%s\n%s", first, got)
		}
	}
	speed := strings.Index(first, "speed")
	incl := strings.Index(first, "inclination")
	phase := strings.Index(first, "phase")
	if speed < 0 || !(speed < incl && incl < phase) {
		t.Errorf("ranges reported out of order: %s", first)
	}
}
