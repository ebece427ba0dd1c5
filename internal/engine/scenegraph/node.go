// Package scenegraph is the retained node tree the scene composer builds and
// the renderer draws.
package scenegraph

import (
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// Node is a transform in the scene tree with optional drawable content.
//
// Nodes are created and modified on the loop thread only.
type Node struct {
	Name     string
	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
	Visible  bool
	Content  Content

	parent   *Node
	children []*Node
	isRoot   bool
	disposed bool
}

// NewNode returns a detached node with an identity transform.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		Visible:  true,
	}
}

// NewRoot returns the root of a live scene. Nodes are live while they are
// attached under a root and neither they nor an ancestor are disposed.
func NewRoot(name string) *Node {
	n := NewNode(name)
	n.isRoot = true
	return n
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the child nodes. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Add attaches child to n, detaching it from its previous parent first.
// Adding to or adding a disposed node is a no-op.
func (n *Node) Add(child *Node) {
	if child == nil || child == n || n.disposed || child.disposed {
		return
	}
	child.Detach()
	child.parent = n
	n.children = append(n.children, child)
}

// Detach removes n from its parent. The subtree stays intact and may be
// added elsewhere.
func (n *Node) Detach() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			copy(p.children[i:], p.children[i+1:])
			p.children[len(p.children)-1] = nil
			p.children = p.children[:len(p.children)-1]
			break
		}
	}
	n.parent = nil
}

// Dispose detaches n and marks it and every descendant as destroyed.
// Disposed nodes are never live again. Calling Dispose twice is a no-op.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.Detach()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.Content = nil
	for _, c := range n.children {
		c.parent = nil
		c.dispose()
	}
	n.children = nil
}

// Disposed reports whether Dispose ran on n or an ancestor.
func (n *Node) Disposed() bool {
	return n.disposed
}

// Live reports whether n is attached, through non-disposed ancestors, to a
// scene root.
func (n *Node) Live() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.disposed {
			return false
		}
		if cur.isRoot {
			return true
		}
	}
	return false
}

// SetPose writes a position and orientation.
func (n *Node) SetPose(position math.Vec3, rotation math.Quat) {
	n.Position = position
	n.Rotation = rotation
}

// SetScale sets a uniform scale.
func (n *Node) SetScale(s float32) {
	n.Scale = math.Vec3{X: s, Y: s, Z: s}
}

// LocalMatrix returns the node transform relative to its parent.
func (n *Node) LocalMatrix() math.Mat4 {
	return math.Compose(n.Position, n.Rotation, n.Scale)
}

// WorldMatrix returns the node transform relative to the tree root.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul(m)
	}
	return m
}

// WorldPosition returns the node origin in root space.
func (n *Node) WorldPosition() math.Vec3 {
	return n.WorldMatrix().TransformVec3(math.Vec3{})
}

// Traverse visits visible nodes depth first with their world matrices.
// Invisible nodes hide their subtree.
func (n *Node) Traverse(fn func(node *Node, world math.Mat4)) {
	n.traverse(math.Identity(), fn)
}

func (n *Node) traverse(parent math.Mat4, fn func(*Node, math.Mat4)) {
	if !n.Visible || n.disposed {
		return
	}
	world := parent.Mul(n.LocalMatrix())
	fn(n, world)
	for _, c := range n.children {
		c.traverse(world, fn)
	}
}

// Count returns the number of nodes in the subtree, n included.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.children {
		total += c.Count()
	}
	return total
}

// Find returns the first node in the subtree with the given name.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FromModel instantiates a model as a node tree. Each part becomes a node,
// and leaf parts draw their mesh with their material. Meshes and materials
// are referenced, not copied.
func FromModel(m *material.Model) *Node {
	if m == nil || m.Root == nil {
		return NewNode("")
	}
	root := fromPart(m.Root)
	root.Name = m.Name
	return root
}

func fromPart(p *material.Part) *Node {
	n := NewNode(p.Name)
	if p.IsLeaf() {
		n.Content = &Mesh{Geometry: p.Mesh, Material: p.Material}
	}
	for _, c := range p.Children {
		n.Add(fromPart(c))
	}
	return n
}
