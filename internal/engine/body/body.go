// Package body animates scene nodes from path samplers.
package body

import (
	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/engine/path"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
)

// Body writes a sampled pose into its node once per frame.
type Body struct {
	node    *scenegraph.Node
	sampler path.Sampler
	trail   *Trail
}

// New returns a body that moves node along sampler.
func New(node *scenegraph.Node, sampler path.Sampler) *Body {
	return &Body{node: node, sampler: sampler}
}

// WithTrail makes the body feed its world position into t every frame.
func (b *Body) WithTrail(t *Trail) *Body {
	b.trail = t
	return b
}

// Node returns the animated node.
func (b *Body) Node() *scenegraph.Node {
	return b.node
}


// Update samples the path at the frame's elapsed time and writes the pose.
// A node that was disposed or detached from its scene is left alone.
func (b *Body) Update(s frame.State) {
	if !b.node.Live() {
		return
	}
	pose := b.sampler.Sample(s.Elapsed)
	b.node.SetPose(pose.Position, pose.Rotation)

	if b.trail != nil {
		b.trail.Push(b.node.WorldPosition())
	}
}

// Attach registers Update on the loop. Unregister the returned handle when
// the body's scene is torn down.
func (b *Body) Attach(loop *frame.Loop) *frame.Registration {
	return loop.Register(b.Update)
}
