// Package lighting describes light rigs and mirrors the shader's falloff
// math on the CPU.
package lighting

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// ErrInvalidLight is returned by Rig.Validate.
var ErrInvalidLight = errors.New("invalid light")

// DefaultDecay is the physically based inverse-square falloff.
const DefaultDecay = 2

// Spec describes one light of a rig.
type Spec struct {
	Name      string
	Kind      scenegraph.LightKind
	Position  math.Vec3
	Target    math.Vec3
	Color     material.Color
	Intensity float32
	Distance  float32
	Decay     float32
	Angle     float32
	Penumbra  float32
}

// Ambient returns an ambient light spec.
func Ambient(intensity float32) Spec {
	return Spec{Name: "ambient", Kind: scenegraph.AmbientLight, Color: material.White, Intensity: intensity}
}

// Directional returns a white directional light shining from position
// toward the origin.
func Directional(position math.Vec3, intensity float32) Spec {
	return Spec{Name: "directional", Kind: scenegraph.DirectionalLight, Position: position, Color: material.White, Intensity: intensity}
}

// Point returns a point light with inverse-square decay and no cutoff.
func Point(position math.Vec3, intensity float32, color material.Color) Spec {
	return Spec{Name: "point", Kind: scenegraph.PointLight, Position: position, Color: color, Intensity: intensity, Decay: DefaultDecay}
}

// Spot returns a spot light aimed at the origin.
func Spot(position math.Vec3, angle, penumbra, intensity float32, color material.Color) Spec {
	return Spec{
		Name:      "spot",
		Kind:      scenegraph.SpotLight,
		Position:  position,
		Color:     color,
		Intensity: intensity,
		Decay:     DefaultDecay,
		Angle:     angle,
		Penumbra:  penumbra,
	}
}

// Node returns a scene node emitting the light.
func (s Spec) Node() *scenegraph.Node {
	name := s.Name
	if name == "" {
		name = s.Kind.String()
	}
	n := scenegraph.NewNode(name)
	n.Position = s.Position
	n.Content = &scenegraph.Light{
		Kind:      s.Kind,
		Color:     s.Color,
		Intensity: s.Intensity,
		Distance:  s.Distance,
		Decay:     s.Decay,
		Angle:     s.Angle,
		Penumbra:  s.Penumbra,
		Target:    s.Target,
	}
	return n
}

// Rig is a set of lights added to a scene together.
type Rig []Spec

// Nodes returns one node per light.
func (r Rig) Nodes() []*scenegraph.Node {
	nodes := make([]*scenegraph.Node, len(r))
	for i, s := range r {
		nodes[i] = s.Node()
	}
	return nodes
}

// AddTo attaches every light to parent.
func (r Rig) AddTo(parent *scenegraph.Node) {
	for _, n := range r.Nodes() {
		parent.Add(n)
	}
}

// Validate checks ranges the shaders rely on.
func (r Rig) Validate() error {
	var errs []error
	for i, s := range r {
		if s.Intensity < 0 {
			errs = append(errs, fmt.Errorf("%w: light %d (%s): negative intensity", ErrInvalidLight, i, s.Kind))
		}
		if s.Distance < 0 {
			errs = append(errs, fmt.Errorf("%w: light %d (%s): negative distance", ErrInvalidLight, i, s.Kind))
		}
		if s.Kind == scenegraph.SpotLight {
			if s.Angle <= 0 || s.Angle > gomath.Pi/2 {
				errs = append(errs, fmt.Errorf("%w: light %d: spot angle %v outside (0, π/2]", ErrInvalidLight, i, s.Angle))
			}
			if s.Penumbra < 0 || s.Penumbra > 1 {
				errs = append(errs, fmt.Errorf("%w: light %d: penumbra %v outside [0, 1]", ErrInvalidLight, i, s.Penumbra))
			}
		}
	}
	return errors.Join(errs...)
}

// Attenuation returns the distance falloff of a point or spot light:
// 1/d^decay, faded smoothly to zero at cutoff when cutoff > 0.
func Attenuation(d, cutoff, decay float32) float32 {
	falloff := 1 / gomath.Max(gomath.Pow(float64(d), float64(decay)), 0.01)
	if cutoff > 0 {
		r := 1 - gomath.Pow(float64(d/cutoff), 4)
		r = gomath.Min(gomath.Max(r, 0), 1)
		falloff *= r * r
	}
	return float32(falloff)
}

// SpotCone returns the angular factor of a spot light for a point seen at
// offAxis radians from the spot direction.
func SpotCone(offAxis, angle, penumbra float32) float32 {
	coneCos := gomath.Cos(float64(angle))
	penumbraCos := gomath.Cos(float64(angle * (1 - penumbra)))
	return float32(smoothstep(coneCos, penumbraCos, gomath.Cos(float64(offAxis))))
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := gomath.Min(gomath.Max((x-edge0)/(edge1-edge0), 0), 1)
	return t * t * (3 - 2*t)
}
