// Package config handles viewer configuration loading and management.
package config

import (
	"math"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Logging  LoggingConfig  `yaml:"logging"`
	Assets   AssetsConfig   `yaml:"assets"`
	Scene    SceneConfig    `yaml:"scene"`
	Atom     AtomConfig     `yaml:"atom"`
	Globe    GlobeConfig    `yaml:"globe"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
	MSAA       int  `yaml:"msaa"` // samples, 0 disables
	// ScreenshotDir receives F12 captures.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// AssetsConfig controls where models and textures are read from.
type AssetsConfig struct {
	// Roots are searched in order for relative asset paths.
	Roots []string `yaml:"roots"`
	// HTTPTimeout bounds one http(s) fetch.
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// MaxTextureSize scales down textures with a longer edge. 0 keeps
	// source size.
	MaxTextureSize int `yaml:"max_texture_size"`
}

// SceneConfig selects what the viewer shows.
type SceneConfig struct {
	Initial  string `yaml:"initial"` // "atom" or "globe"
	Seed     int64  `yaml:"seed"`    // 0 seeds from the wall clock
	Headless bool   `yaml:"headless"`
	Frames   int    `yaml:"frames"` // headless frame count
	FrameHz  int    `yaml:"frame_hz"`
}

// StarsConfig configures a star field backdrop.
type StarsConfig struct {
	Count      int     `yaml:"count"`
	Radius     float32 `yaml:"radius"`
	Depth      float32 `yaml:"depth"`
	Factor     float32 `yaml:"factor"`
	Saturation float64 `yaml:"saturation"`
}

// AtomConfig configures the atom visualization.
type AtomConfig struct {
	ElectronSpeeds []float64   `yaml:"electron_speeds"`
	ElectronRadius float64     `yaml:"electron_radius"`
	TrailLength    int         `yaml:"trail_length"`
	TrailWidth     float32     `yaml:"trail_width"`
	Stars          StarsConfig `yaml:"stars"`
}

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// PopulationConfig configures the randomized satellite population.
type PopulationConfig struct {
	Count       int      `yaml:"count"`
	Speed       Range    `yaml:"speed"`
	Radius      Range    `yaml:"radius"`
	Inclination Range    `yaml:"inclination"`
	Phase       Range    `yaml:"phase"`
	Colors      []string `yaml:"colors"`
}

// ControlsConfig configures the orbit camera rig.
type ControlsConfig struct {
	Enabled         bool    `yaml:"enabled"`
	EnableZoom      bool    `yaml:"enable_zoom"`
	EnablePan       bool    `yaml:"enable_pan"`
	AutoRotate      bool    `yaml:"auto_rotate"`
	AutoRotateSpeed float64 `yaml:"auto_rotate_speed"`
	MinPolarAngle   float64 `yaml:"min_polar_angle"`
	MaxPolarAngle   float64 `yaml:"max_polar_angle"`
}

// EarthConfig lists the Earth texture locations.
type EarthConfig struct {
	Surface  string `yaml:"surface"`
	Normal   string `yaml:"normal"`
	Specular string `yaml:"specular"`
	Clouds   string `yaml:"clouds"`
}

// GlobeConfig configures the globe visualization.
type GlobeConfig struct {
	Earth          EarthConfig      `yaml:"earth"`
	SatelliteModel string           `yaml:"satellite_model"`
	SatelliteMTL   string           `yaml:"satellite_mtl"`
	TextureDir     string           `yaml:"texture_dir"`
	Population     PopulationConfig `yaml:"population"`
	Stars          StarsConfig      `yaml:"stars"`
	Controls       ControlsConfig   `yaml:"controls"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			MSAA:       4,

			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Assets: AssetsConfig{
			Roots:          []string{"assets"},
			HTTPTimeout:    15 * time.Second,
			MaxTextureSize: 4096,
		},
		Scene: SceneConfig{
			Initial: "atom",
			Frames:  600,
			FrameHz: 60,
		},
		Atom: AtomConfig{
			ElectronSpeeds: []float64{0.5, 0.8, 1.1},
			ElectronRadius: 2.75,
			TrailLength:    8,
			TrailWidth:     4,
			Stars:          StarsConfig{Count: 800, Radius: 100, Depth: 50, Factor: 4},
		},
		Globe: GlobeConfig{
			Earth: EarthConfig{
				Surface:  "https://unpkg.com/three-globe/example/img/earth-blue-marble.jpg",
				Normal:   "https://unpkg.com/three-globe/example/img/earth-topology.png",
				Specular: "https://unpkg.com/three-globe/example/img/earth-water.png",
				Clouds:   "https://raw.githubusercontent.com/mrdoob/three.js/master/examples/textures/planets/earth_clouds_1024.png",
			},
			SatelliteModel: "models/satellite/Satellite.obj",
			SatelliteMTL:   "models/satellite/Satellite.mtl",
			TextureDir:     "models/satellite/Textures",
			Population: PopulationConfig{
				Count:       15,
				Speed:       Range{Min: 0.05, Max: 0.15},
				Radius:      Range{Min: 1.9, Max: 2.7},
				Inclination: Range{Min: 0, Max: math.Pi},
				Phase:       Range{Min: 0, Max: 2 * math.Pi},
				Colors:      []string{"#FF9933", "#FFFFFF", "#138808"},
			},
			Stars: StarsConfig{Count: 3000, Radius: 100, Depth: 50, Factor: 4},
			Controls: ControlsConfig{
				Enabled:         true,
				EnableZoom:      false,
				EnablePan:       false,
				AutoRotate:      true,
				AutoRotateSpeed: 0.5,
				MinPolarAngle:   math.Pi / 3,
				MaxPolarAngle:   2 * math.Pi / 3,
			},
		},
	}
}
