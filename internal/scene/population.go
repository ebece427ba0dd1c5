package scene

import (
	"fmt"
	"math/rand"

	"github.com/Faultbox/orbitfx/internal/config"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/path"
)

// Satellite is one generated member of the orbiting population.
type Satellite struct {
	Orbit path.OrbitParams
	Tint  material.Color
	Hex   string
}

// GeneratePopulation draws cfg.Count satellites. Every orbit parameter is
// uniform over its configured [Min, Max) range, and satellite i takes
// color i modulo the palette size.
func GeneratePopulation(rng *rand.Rand, cfg config.PopulationConfig) ([]Satellite, error) {
	if len(cfg.Colors) == 0 && cfg.Count > 0 {
		return nil, fmt.Errorf("%w: population needs at least one color", config.ErrInvalidConfig)
	}
	palette := make([]material.Color, len(cfg.Colors))
	for i, hex := range cfg.Colors {
		c, err := material.ParseColor(hex)
		if err != nil {
			return nil, fmt.Errorf("population color %d: %w", i, err)
		}
		palette[i] = c
	}

	sats := make([]Satellite, cfg.Count)
	for i := range sats {
		sats[i] = Satellite{
			Orbit: path.OrbitParams{
				Speed:       uniform(rng, cfg.Speed),
				Radius:      uniform(rng, cfg.Radius),
				Inclination: uniform(rng, cfg.Inclination),
				Phase:       uniform(rng, cfg.Phase),
			},
			Tint: palette[i%len(palette)],
			Hex:  cfg.Colors[i%len(cfg.Colors)],
		}
	}
	return sats, nil
}

func uniform(rng *rand.Rand, r config.Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}
