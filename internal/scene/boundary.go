package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/engine/resource"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/internal/logger"
)

// BoundaryState is the lifecycle state of a Boundary.
type BoundaryState int

const (
	// Waiting means at least one dependency is still pending.
	Waiting BoundaryState = iota
	// Mounted means every dependency resolved and the subtree is attached.
	Mounted
	// Failed means a dependency or the build failed; the boundary stays empty.
	Failed
	// Closed means the boundary was torn down and ignores late completions.
	Closed
)

func (s BoundaryState) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Mounted:
		return "mounted"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// BuildFunc creates the subtree of a boundary once its dependencies are
// resolved. It runs on the loop thread.
type BuildFunc func() (*scenegraph.Node, error)

// Boundary holds back a subtree until all of its resources are available.
// Until then its node has no children; a failure leaves it empty for good.
// All methods and callbacks run on the loop thread.
type Boundary struct {
	name  string
	node  *scenegraph.Node
	build BuildFunc

	state   BoundaryState
	pending int
	cancels []func()
	err     error
	onMount []func()
}

// NewBoundary creates a boundary node under parent that mounts the result
// of build after every dep resolves.
func NewBoundary(name string, parent *scenegraph.Node, build BuildFunc, deps ...resource.Waitable) *Boundary {
	b := &Boundary{
		name:    name,
		node:    scenegraph.NewNode(name),
		build:   build,
		pending: len(deps),
	}
	parent.Add(b.node)

	if len(deps) == 0 {
		b.mount()
		return b
	}
	for _, dep := range deps {
		b.cancels = append(b.cancels, dep.Subscribe(func(st resource.State) {
			b.settle(dep, st)
		}))
		if b.state != Waiting {
			break
		}
	}
	return b
}

// Name returns the boundary name.
func (b *Boundary) Name() string {
	return b.name
}

// Node returns the attachment node. It has children only once mounted.
func (b *Boundary) Node() *scenegraph.Node {
	return b.node
}

// State returns the current state.
func (b *Boundary) State() BoundaryState {
	return b.state
}

// Err returns the failure cause of a Failed boundary.
func (b *Boundary) Err() error {
	return b.err
}

// OnMount registers fn to run right after the subtree is attached.
// It runs immediately if the boundary is already mounted.
func (b *Boundary) OnMount(fn func()) {
	if b.state == Mounted {
		fn()
		return
	}
	b.onMount = append(b.onMount, fn)
}

// Close stops listening for completions and disposes the subtree.
// Closing twice is a no-op.
func (b *Boundary) Close() {
	if b.state == Closed {
		return
	}
	b.state = Closed
	b.unsubscribe()
	b.onMount = nil
	b.node.Dispose()
}

func (b *Boundary) settle(dep resource.Waitable, st resource.State) {
	if b.state != Waiting {
		return
	}
	switch st {
	case resource.Resolved:
		b.pending--
		if b.pending == 0 {
			b.mount()
		}
	case resource.Failed:
		b.fail(dep.Err())
	}
}

func (b *Boundary) mount() {
	b.unsubscribe()
	node, err := b.build()
	if err != nil {
		b.fail(fmt.Errorf("building %s: %w", b.name, err))
		return
	}
	if node != nil {
		b.node.Add(node)
	}
	b.state = Mounted
	logger.Named("scene").Debug("boundary mounted", zap.String("boundary", b.name))

	hooks := b.onMount
	b.onMount = nil
	for _, fn := range hooks {
		fn()
	}
}

func (b *Boundary) fail(err error) {
	if err == nil {
		err = errors.New("dependency failed")
	}
	b.state = Failed
	b.err = err
	b.onMount = nil
	b.unsubscribe()
	logger.Named("scene").Warn("boundary left empty",
		zap.String("boundary", b.name),
		zap.Error(err),
	)
}

func (b *Boundary) unsubscribe() {
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}
