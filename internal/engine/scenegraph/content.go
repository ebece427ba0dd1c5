package scenegraph

import (
	"github.com/Faultbox/orbitfx/internal/engine/geometry"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// Content is something a node draws or emits.
type Content interface {
	content()
}

// Mesh draws triangles with a material.
type Mesh struct {
	Geometry *geometry.Mesh
	Material *material.Material
}

// Line draws a polyline. Alphas, when set, holds one opacity multiplier per
// point. Version is bumped whenever Points or Alphas change.
type Line struct {
	Points   []math.Vec3
	Alphas   []float32
	Color    material.Color
	Width    float32
	Opacity  float32
	Loop     bool
	Blending material.Blending
	Version  uint32
}

// Points draws a point cloud.
type Points struct {
	Cloud           *geometry.PointCloud
	Size            float32
	SizeAttenuation bool
	Opacity         float32
	Blending        material.Blending
	Speed           float32 // twinkle rate
}

// LightKind selects the light model.
type LightKind int

const (
	AmbientLight LightKind = iota
	DirectionalLight
	PointLight
	SpotLight
)

func (k LightKind) String() string {
	switch k {
	case AmbientLight:
		return "ambient"
	case DirectionalLight:
		return "directional"
	case PointLight:
		return "point"
	case SpotLight:
		return "spot"
	default:
		return "unknown"
	}
}

// Light emits from its node's world position. Directional and spot lights
// aim at Target, in world space.
type Light struct {
	Kind      LightKind
	Color     material.Color
	Intensity float32
	Distance  float32 // 0 means no cutoff
	Decay     float32
	Angle     float32 // spot cone half-angle, radians
	Penumbra  float32 // 0..1
	Target    math.Vec3
}

func (*Mesh) content()   {}
func (*Line) content()   {}
func (*Points) content() {}
func (*Light) content()  {}
