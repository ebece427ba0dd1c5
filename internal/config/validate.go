package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Scene names accepted by SceneConfig.Initial.
const (
	SceneAtom  = "atom"
	SceneGlobe = "globe"
)

// AtomElectrons is the number of electrons the atom orbits.
const AtomElectrons = 3

// Validate checks values a YAML file or flag could have set out of range.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		add("graphics size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Scene.Initial != SceneAtom && c.Scene.Initial != SceneGlobe {
		add("scene.initial %q (want %q or %q)", c.Scene.Initial, SceneAtom, SceneGlobe)
	}
	if c.Scene.Headless && c.Scene.Frames <= 0 {
		add("scene.frames must be positive in headless mode")
	}
	if c.Scene.FrameHz <= 0 {
		add("scene.frame_hz %d", c.Scene.FrameHz)
	}
	if c.Assets.HTTPTimeout < 0 {
		add("assets.http_timeout %v", c.Assets.HTTPTimeout)
	}
	if n := len(c.Atom.ElectronSpeeds); n != AtomElectrons {
		add("atom.electron_speeds has %d entries, want %d", n, AtomElectrons)
	}
	if c.Atom.TrailLength < 1 {
		add("atom.trail_length %d", c.Atom.TrailLength)
	}

	p := c.Globe.Population
	if p.Count < 0 {
		add("globe.population.count %d", p.Count)
	}
	if p.Count > 0 && len(p.Colors) == 0 {
		add("globe.population.colors is empty")
	}
	ranges := []struct {
		name string
		r    Range
	}{
		{"speed", p.Speed},
		{"radius", p.Radius},
		{"inclination", p.Inclination},
		{"phase", p.Phase},
	}
	for _, pr := range ranges {
		if pr.r.Max < pr.r.Min {
			add("globe.population.%s range [%v,%v)", pr.name, pr.r.Min, pr.r.Max)
		}
	}
	if p.Radius.Min < 0 {
		add("globe.population.radius must not be negative")
	}
	ctl := c.Globe.Controls
	if ctl.MaxPolarAngle < ctl.MinPolarAngle {
		add("globe.controls polar range [%v,%v]", ctl.MinPolarAngle, ctl.MaxPolarAngle)
	}
	return errors.Join(errs...)
}
