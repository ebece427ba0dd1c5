package scene

import (
	"context"
	"fmt"
	gomath "math"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/assets"
	"github.com/Faultbox/orbitfx/internal/config"
	"github.com/Faultbox/orbitfx/internal/engine/camera"
	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/engine/lighting"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/path"
	"github.com/Faultbox/orbitfx/internal/engine/resource"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// Boundary names of the globe.
const (
	EarthBoundary      = "earth"
	SatellitesBoundary = "satellites"
)

// Globe layout.
const (
	earthRadius      = 1.5
	cloudRadius      = 1.53
	atmosphereRadius = 1.6

	earthSpin = 0.05
	cloudSpin = 0.06

	satelliteScale = 0.04

	globeStarSpeed = 1

	texturePrefix = "satellite"
	textureExt    = "jpg"
)

// Globe is the globe visualization together with its generated population.
type Globe struct {
	*Visualization

	Population []Satellite
	Compositor *material.Compositor
}

// NewGlobe builds the globe visualization. The sky, lights and camera
// appear at once. The Earth mounts when its four textures arrive, and the
// satellite population mounts inside it once the model and every texture
// set are loaded. Closing the globe cancels loads still in flight.
func NewGlobe(ctx context.Context, loop *frame.Loop, lib *assets.Library, cfg config.GlobeConfig, rng *rand.Rand) (*Globe, error) {
	pop, err := GeneratePopulation(rng, cfg.Population)
	if err != nil {
		return nil, err
	}

	cam := camera.NewOrbitCamera(math.Vec3{Z: 5.5}, math.Vec3{})
	cam.Controls = camera.Controls{
		Enabled:         cfg.Controls.Enabled,
		EnableZoom:      cfg.Controls.EnableZoom,
		EnablePan:       cfg.Controls.EnablePan,
		AutoRotate:      cfg.Controls.AutoRotate,
		AutoRotateSpeed: cfg.Controls.AutoRotateSpeed,
		MinPolarAngle:   cfg.Controls.MinPolarAngle,
		MaxPolarAngle:   cfg.Controls.MaxPolarAngle,
	}

	comp, err := material.NewCompositor(material.SatelliteCatalog())
	if err != nil {
		return nil, fmt.Errorf("satellite catalog: %w", err)
	}

	g := &Globe{
		Visualization: newVisualization(config.SceneGlobe, loop, cam),
		Population:    pop,
		Compositor:    comp,
	}
	ctx, g.cancel = context.WithCancel(ctx)

	rig := lighting.Rig{
		lighting.Ambient(1.5),
		lighting.Directional(math.Vec3{X: 5, Y: 3, Z: 5}, 5),
		lighting.Spot(math.Vec3{X: -5, Y: 5, Z: -5}, 0.5, 1, 3, material.MustColor("#3b82f6")),
		lighting.Point(math.Vec3{X: -10, Y: -10, Z: -5}, 2, material.MustColor("#60a5fa")),
	}
	if err := rig.Validate(); err != nil {
		g.Close()
		return nil, err
	}
	rig.AddTo(g.Root)
	g.Root.Add(starField(rng, starOptions(cfg.Stars), globeStarSpeed))

	surface := lib.Texture(ctx, cfg.Earth.Surface)
	normal := lib.Texture(ctx, cfg.Earth.Normal)
	specular := lib.Texture(ctx, cfg.Earth.Specular)
	clouds := lib.Texture(ctx, cfg.Earth.Clouds)

	g.boundary(EarthBoundary, g.Root, func() (*scenegraph.Node, error) {
		earth := g.buildEarth(get(surface), get(normal), get(specular), get(clouds))
		g.mountSatellites(ctx, earth, lib, cfg)
		return earth, nil
	}, surface, normal, specular, clouds)

	g.log.Info("globe created",
		zap.Int("satellites", len(pop)),
		zap.Strings("earth", []string{cfg.Earth.Surface, cfg.Earth.Normal, cfg.Earth.Specular, cfg.Earth.Clouds}),
	)
	return g, nil
}

func (g *Globe) buildEarth(surface, normal, specular, clouds *material.Texture) *scenegraph.Node {
	earth := scenegraph.NewNode("earth")

	ground := material.New("earth", material.Phong)
	ground.Maps[material.BaseColor] = surface
	ground.Maps[material.Normal] = normal
	ground.SpecularMap = specular
	ground.Specular = material.MustColor("#333333")
	ground.Shininess = 15
	ground.MarkDirty()
	surfaceNode := sphereNode("surface", earthRadius, 128, ground)
	earth.Add(surfaceNode)
	g.animate(surfaceNode, path.SpinSampler{Rate: earthSpin, Axis: math.Up})

	sky := material.New("clouds", material.Phong)
	sky.Maps[material.BaseColor] = clouds
	sky.Transparent = true
	sky.Opacity = 0.8
	sky.Blending = material.AdditiveBlending
	sky.Side = material.DoubleSide
	sky.MarkDirty()
	cloudNode := sphereNode("clouds", cloudRadius, 64, sky)
	earth.Add(cloudNode)
	g.animate(cloudNode, path.SpinSampler{Rate: cloudSpin, Axis: math.Up})

	glow := material.New("atmosphere", material.Phong)
	glow.Color = material.MustColor("#3b82f6")
	glow.Transparent = true
	glow.Opacity = 0.1
	glow.Side = material.BackSide
	glow.Blending = material.AdditiveBlending
	earth.Add(sphereNode("atmosphere", atmosphereRadius, 64, glow))

	return earth
}

// mountSatellites opens the nested boundary holding the population.
func (g *Globe) mountSatellites(ctx context.Context, parent *scenegraph.Node, lib *assets.Library, cfg config.GlobeConfig) {
	model := lib.Model(ctx, cfg.SatelliteModel, cfg.SatelliteMTL)
	layout := assets.SetLayout{Dir: cfg.TextureDir, Prefix: texturePrefix, Ext: textureExt}

	catalog := g.Compositor.Catalog()
	handles := lib.TextureSets(ctx, layout, catalog)
	deps := []resource.Waitable{model}
	for _, label := range catalog.Labels() {
		deps = append(deps, handles[label])
	}

	g.boundary(SatellitesBoundary, parent, func() (*scenegraph.Node, error) {
		sets := make(material.Sets, len(handles))
		for label, h := range handles {
			sets[label] = get(h)
		}
		return g.buildPopulation(get(model), sets)
	}, deps...)
}

func (g *Globe) buildPopulation(base *material.Model, sets material.Sets) (*scenegraph.Node, error) {
	group := scenegraph.NewNode("population")
	for i, sat := range g.Population {
		tint := sat.Tint
		model, err := g.Compositor.Compose(base, sets, &tint)
		if err != nil {
			return nil, fmt.Errorf("satellite %d: %w", i, err)
		}

		orbit := scenegraph.NewNode(fmt.Sprintf("satellite-%d", i))
		group.Add(orbit)
		g.animate(orbit, path.OrbitSampler{Params: sat.Orbit})

		inst := scenegraph.FromModel(model)
		inst.SetScale(satelliteScale)
		inst.Rotation = math.QuatFromAxisAngle(math.Up, gomath.Pi)
		orbit.Add(inst)
	}
	g.log.Info("satellites mounted",
		zap.Int("count", len(g.Population)),
		zap.Int("models", g.Compositor.Builds()),
	)
	return group, nil
}

// get returns the value of a handle the caller knows is resolved.
func get[T any](h *resource.Handle[T]) T {
	v, _ := h.Get()
	return v
}
