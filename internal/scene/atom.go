package scene

import (
	"fmt"
	gomath "math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/config"
	"github.com/Faultbox/orbitfx/internal/engine/body"
	"github.com/Faultbox/orbitfx/internal/engine/camera"
	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/engine/geometry"
	"github.com/Faultbox/orbitfx/internal/engine/lighting"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/path"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// Atom layout.
const (
	ringRadiusX   = 3
	ringRadiusY   = 1.15
	ringDivisions = 100
	ringOpacity   = 0.6

	nucleusRadius  = 0.8
	electronRadius = 0.15

	atomStarSpeed = 0.2
)

var (
	ringColors     = [3]string{"#60a5fa", "#3b82f6", "#2563eb"}
	ringRotations  = [3]float64{0, 1, -1}
	electronColors = [config.AtomElectrons]string{"#60a5fa", "#3b82f6", "#2563eb"}
	electronTilts  = [config.AtomElectrons]float64{0, gomath.Pi / 3, -gomath.Pi / 3}
	electronOffset = math.Vec3{Z: 0.5}
)

// NewAtom builds the atom visualization: a bobbing nucleus inside three
// tilted orbit rings, electrons with trails and a star backdrop. It needs
// no external assets.
func NewAtom(loop *frame.Loop, cfg config.AtomConfig, rng *rand.Rand) (*Visualization, error) {
	if n := len(cfg.ElectronSpeeds); n != len(electronTilts) {
		return nil, fmt.Errorf("%w: atom needs %d electron speeds, got %d", config.ErrInvalidConfig, len(electronTilts), n)
	}

	cam := camera.NewOrbitCamera(math.Vec3{Z: 12}, math.Vec3{})
	v := newVisualization(config.SceneAtom, loop, cam)
	root := v.Root

	rig := lighting.Rig{
		lighting.Ambient(0.2),
		lighting.Spot(math.Vec3{X: 10, Y: 10, Z: 10}, 0.15, 1, 10, material.White),
		lighting.Point(math.Vec3{X: -10, Y: -10, Z: -10}, 5, material.MustColor("#2563eb")),
	}
	if err := rig.Validate(); err != nil {
		v.Close()
		return nil, err
	}
	rig.AddTo(root)

	group := scenegraph.NewNode("nucleus-group")
	root.Add(group)
	v.animate(group, path.FloatSampler{Params: path.FloatParams{
		Speed:             1,
		RotationIntensity: 0.5,
		FloatIntensity:    0.5,
		Offset:            rng.Float64() * 10000,
	}})

	outline := geometry.Ellipse(ringRadiusX, ringRadiusY, ringDivisions)
	for i := range ringColors {
		ring := scenegraph.NewNode("ring")
		ring.Rotation = rotationZ(ringRotations[i])
		ring.Content = &scenegraph.Line{
			Points:  outline,
			Color:   material.MustColor(ringColors[i]),
			Width:   0.3,
			Opacity: ringOpacity,
			Loop:    true,
		}
		group.Add(ring)
	}

	nucleus := material.New("nucleus", material.Standard)
	nucleus.Color = material.MustColor("#3b82f6")
	nucleus.Emissive = material.MustColor("#1d4ed8")
	nucleus.EmissiveIntensity = 0.8
	nucleus.Roughness = 0.1
	nucleus.Metalness = 0.9
	group.Add(sphereNode("nucleus", nucleusRadius, 64, nucleus))

	for i, speed := range cfg.ElectronSpeeds {
		v.addElectron(i, speed, cfg)
	}

	root.Add(starField(rng, starOptions(cfg.Stars), atomStarSpeed))

	v.log.Info("atom created",
		zap.Int("electrons", len(cfg.ElectronSpeeds)),
		zap.Int("nodes", root.Count()),
	)
	return v, nil
}

// addElectron mounts electron i: a tilted group holding the glowing sphere
// and its light, plus a world-space trail.
func (v *Visualization) addElectron(i int, speed float64, cfg config.AtomConfig) {
	color := material.MustColor(electronColors[i])

	group := scenegraph.NewNode("electron-group")
	group.Position = electronOffset
	group.Rotation = rotationZ(electronTilts[i])
	v.Root.Add(group)

	mat := material.New("electron", material.Standard)
	mat.Color = color
	mat.Emissive = color
	mat.EmissiveIntensity = 4
	mat.Roughness = 0
	electron := sphereNode("electron", electronRadius, 32, mat)
	group.Add(electron)

	glow := lighting.Point(math.Vec3{}, 2, color)
	glow.Distance = 3
	electron.Add(glow.Node())

	trailNode := scenegraph.NewNode("trail")
	v.Root.Add(trailNode)
	trail := body.NewTrail(trailNode, &scenegraph.Line{
		Color:    color,
		Width:    cfg.TrailWidth,
		Opacity:  1,
		Blending: material.AdditiveBlending,
	}, cfg.TrailLength, body.Quadratic)

	v.animate(electron, path.ElectronSampler{Speed: speed, Radius: cfg.ElectronRadius}).WithTrail(trail)
}

func starOptions(c config.StarsConfig) geometry.StarFieldOptions {
	return geometry.StarFieldOptions{
		Count:      c.Count,
		Radius:     c.Radius,
		Depth:      c.Depth,
		Factor:     c.Factor,
		Saturation: c.Saturation,
	}
}
