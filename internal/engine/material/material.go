// Package material holds the model and material types shared by loaders,
// the scene graph and the renderer, and the compositor that assembles
// per-part materials from independently loaded texture sets.
package material

import (
	"image"

	"github.com/Faultbox/orbitfx/internal/engine/geometry"
)

// Texture is a decoded image. Textures are immutable once loaded and are
// shared by pointer between every material that samples them.
type Texture struct {
	Name  string
	Image *image.RGBA
}

// Channel indexes the texture slots of a physically based material.
type Channel int

const (
	BaseColor Channel = iota
	Normal
	Roughness
	Metallic

	ChannelCount
)

var channelNames = [ChannelCount]string{"BaseColor", "Normal", "Roughness", "Metallic"}

// String returns the channel's file-name suffix, e.g. "BaseColor".
func (c Channel) String() string {
	if c < 0 || c >= ChannelCount {
		return "Unknown"
	}
	return channelNames[c]
}

// Channels lists every channel in slot order.
func Channels() []Channel {
	return []Channel{BaseColor, Normal, Roughness, Metallic}
}

// TextureSet is the four-channel texture bundle for one part category.
// A nil entry means the channel is explicitly absent.
type TextureSet struct {
	Category string
	Maps     [ChannelCount]*Texture
}

// Sets maps a category label to its resolved texture set.
type Sets map[string]*TextureSet

// Shading selects the lighting model.
type Shading int

const (
	Standard Shading = iota // metallic-roughness PBR
	Unlit
	Phong
)

func (s Shading) String() string {
	switch s {
	case Standard:
		return "standard"
	case Unlit:
		return "unlit"
	case Phong:
		return "phong"
	default:
		return "unknown"
	}
}

// Blending selects how fragments combine with the framebuffer.
type Blending int

const (
	NormalBlending Blending = iota
	AdditiveBlending
)

// Side selects which triangle faces are drawn.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Material describes how a mesh is shaded.
type Material struct {
	Name    string
	Shading Shading

	Color             Color
	Emissive          Color
	EmissiveIntensity float32
	Opacity           float32
	Transparent       bool
	Blending          Blending
	Side              Side

	// Roughness and Metalness scale the matching maps of Standard shading.
	Roughness float32
	Metalness float32

	Maps [ChannelCount]*Texture
	// SpecularMap and Shininess apply to Phong shading only.
	SpecularMap *Texture
	Specular    Color
	Shininess   float32

	// Version counts revisions; NeedsUpdate asks the renderer to rebuild
	// its GPU state for this material on the next draw.
	Version     uint32
	NeedsUpdate bool
}

// New returns a material with opaque white defaults.
func New(name string, shading Shading) *Material {
	return &Material{
		Name:      name,
		Shading:   shading,
		Color:     White,
		Opacity:   1,
		Roughness: 1,
	}
}

// Fallback returns the neutral unlit material used for parts that match no
// texture set.
func Fallback(name string) *Material {
	m := New(name, Unlit)
	m.Color = Gray(0.8)
	return m
}

// MarkDirty records a revision and flags the material for rebuild.
func (m *Material) MarkDirty() {
	m.Version++
	m.NeedsUpdate = true
}

// Clone returns a copy that can be modified without affecting m.
// Textures stay shared.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// Part is one node of a model tree. Leaves carry a mesh.
type Part struct {
	Name     string
	Material *Material
	Mesh     *geometry.Mesh
	Children []*Part
}

// IsLeaf reports whether the part carries geometry.
func (p *Part) IsLeaf() bool {
	return p.Mesh != nil
}

// Clone copies the part tree. Parts and materials are new objects, meshes
// and textures are shared with the source.
func (p *Part) Clone() *Part {
	if p == nil {
		return nil
	}
	c := &Part{
		Name:     p.Name,
		Material: p.Material.Clone(),
		Mesh:     p.Mesh,
	}
	if len(p.Children) > 0 {
		c.Children = make([]*Part, len(p.Children))
		for i, child := range p.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Walk visits p and its descendants depth first.
func (p *Part) Walk(fn func(*Part)) {
	if p == nil {
		return
	}
	fn(p)
	for _, child := range p.Children {
		child.Walk(fn)
	}
}

// Model is a loaded model: a named tree of parts.
type Model struct {
	Name string
	Root *Part
}

// Clone deep-copies the model. See Part.Clone.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	return &Model{Name: m.Name, Root: m.Root.Clone()}
}

// Leaves returns every part that carries a mesh, in tree order.
func (m *Model) Leaves() []*Part {
	var leaves []*Part
	m.Root.Walk(func(p *Part) {
		if p.IsLeaf() {
			leaves = append(leaves, p)
		}
	})
	return leaves
}
