package scenegraph

import (
	"slices"

	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// Item is one drawable node with its world transform. Depth is the
// view-space z of the node origin; larger is nearer.
type Item struct {
	Node  *Node
	World math.Mat4
	Depth float32
}

// LightItem is a light resolved to world space.
type LightItem struct {
	Light     *Light
	Position  math.Vec3
	Direction math.Vec3 // unit vector from Position toward the target
}

// DrawList is a flattened frame of a scene graph.
type DrawList struct {
	Ambient     material.Color
	Lights      []LightItem
	Opaque      []Item
	Transparent []Item
}

// Reset empties the list and keeps its storage.
func (d *DrawList) Reset() {
	d.Ambient = material.Color{}
	d.Lights = d.Lights[:0]
	d.Opaque = d.Opaque[:0]
	d.Transparent = d.Transparent[:0]
}

// Collect flattens the visible part of root into d. Ambient lights are
// summed. Transparent items are sorted back to front for view.
func Collect(root *Node, view math.Mat4, d *DrawList) {
	d.Reset()
	root.Traverse(func(n *Node, world math.Mat4) {
		switch c := n.Content.(type) {
		case *Light:
			if c.Kind == AmbientLight {
				d.Ambient = d.Ambient.Add(c.Color.Scale(c.Intensity))
				return
			}
			pos := world.TransformVec3(math.Vec3{})
			d.Lights = append(d.Lights, LightItem{
				Light:     c,
				Position:  pos,
				Direction: c.Target.Sub(pos).Normalize(),
			})
		case *Mesh:
			if c.Geometry == nil || c.Material == nil {
				return
			}
			item := Item{Node: n, World: world, Depth: depth(view, world)}
			if isTransparent(c.Material) {
				d.Transparent = append(d.Transparent, item)
			} else {
				d.Opaque = append(d.Opaque, item)
			}
		case *Line, *Points:
			d.Transparent = append(d.Transparent, Item{Node: n, World: world, Depth: depth(view, world)})
		}
	})

	slices.SortStableFunc(d.Transparent, func(a, b Item) int {
		switch {
		case a.Depth < b.Depth:
			return -1
		case a.Depth > b.Depth:
			return 1
		}
		return 0
	})
}

func isTransparent(m *material.Material) bool {
	return m.Transparent || m.Opacity < 1 || m.Blending == material.AdditiveBlending
}

func depth(view, world math.Mat4) float32 {
	return view.Mul(world).TransformVec3(math.Vec3{}).Z
}
