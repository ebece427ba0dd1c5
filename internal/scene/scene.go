// Package scene composes the atom and globe visualizations from scene
// nodes, animated bodies and asynchronously loaded assets.
//
// Constructors and Close must run on the frame loop's thread.
package scene

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/engine/body"
	"github.com/Faultbox/orbitfx/internal/engine/camera"
	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/engine/geometry"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/path"
	"github.com/Faultbox/orbitfx/internal/engine/resource"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/internal/logger"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// Visualization is a mounted scene: a node tree, the camera looking at it
// and the frame callbacks animating it.
type Visualization struct {
	Name       string
	Root       *scenegraph.Node
	Camera     *camera.OrbitCamera
	Background material.Color

	loop       *frame.Loop
	regs       []*frame.Registration
	boundaries []*Boundary
	cancel     context.CancelFunc
	closed     bool
	log        *zap.Logger
}

func newVisualization(name string, loop *frame.Loop, cam *camera.OrbitCamera) *Visualization {
	v := &Visualization{
		Name:       name,
		Root:       scenegraph.NewRoot(name),
		Camera:     cam,
		Background: material.Color{},
		loop:       loop,
		cancel:     func() {},
		log:        logger.Named("scene"),
	}
	v.register(func(s frame.State) {
		cam.Update(s.Delta)
	})
	return v
}

// register adds a per-frame callback owned by v.
func (v *Visualization) register(fn frame.Callback) *frame.Registration {
	r := v.loop.Register(fn)
	v.regs = append(v.regs, r)
	return r
}

// animate attaches a sampled body driving node.
func (v *Visualization) animate(node *scenegraph.Node, s path.Sampler) *body.Body {
	b := body.New(node, s)
	v.regs = append(v.regs, b.Attach(v.loop))
	return b
}

// boundary creates a Boundary owned by v.
func (v *Visualization) boundary(name string, parent *scenegraph.Node, build BuildFunc, deps ...resource.Waitable) *Boundary {
	b := NewBoundary(name, parent, build, deps...)
	v.boundaries = append(v.boundaries, b)
	return b
}

// Boundaries returns the boundaries created so far, including nested ones
// that appeared when their parent mounted.
func (v *Visualization) Boundaries() []*Boundary {
	return v.boundaries
}

// Boundary returns the boundary with the given name, or nil.
func (v *Visualization) Boundary(name string) *Boundary {
	for _, b := range v.boundaries {
		if b.Name() == name {
			return b
		}
	}
	return nil
}

// Registrations returns the number of frame callbacks owned by v that are
// still active.
func (v *Visualization) Registrations() int {
	n := 0
	for _, r := range v.regs {
		if r.Active() {
			n++
		}
	}
	return n
}

// Closed reports whether Close was called.
func (v *Visualization) Closed() bool {
	return v.closed
}

// Close unregisters every callback, closes the boundaries, cancels
// outstanding loads and disposes the tree. Calling it again is a no-op.
func (v *Visualization) Close() {
	if v.closed {
		return
	}
	v.closed = true

	for _, r := range v.regs {
		r.Unregister()
	}
	for _, b := range v.boundaries {
		b.Close()
	}
	v.cancel()
	v.Root.Dispose()
	v.log.Info("visualization closed", zap.String("name", v.Name))
}

// starField builds the backdrop point cloud node.
func starField(rng *rand.Rand, opts geometry.StarFieldOptions, speed float32) *scenegraph.Node {
	n := scenegraph.NewNode("stars")
	n.Content = &scenegraph.Points{
		Cloud:           geometry.StarField(rng, opts),
		Size:            1,
		SizeAttenuation: true,
		Opacity:         1,
		Blending:        material.AdditiveBlending,
		Speed:           speed,
	}
	return n
}

// sphereNode returns a node drawing a sphere with mat.
func sphereNode(name string, radius float32, segments int, mat *material.Material) *scenegraph.Node {
	n := scenegraph.NewNode(name)
	n.Content = &scenegraph.Mesh{Geometry: geometry.Sphere(radius, segments, segments), Material: mat}
	return n
}

func rotationZ(angle float64) math.Quat {
	return math.QuatFromAxisAngle(math.Vec3{Z: 1}, float32(angle))
}
