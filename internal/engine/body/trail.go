package body

import (
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// PointsPerLength is the number of trail samples per unit of trail length.
const PointsPerLength = 10

// DefaultLength is the trail length used by the atom electrons.
const DefaultLength = 8

// Attenuation maps a sample's normalized age (0 = oldest, 1 = newest) to
// its opacity.
type Attenuation func(x float32) float32

// Quadratic fades trails as x².
func Quadratic(x float32) float32 {
	return x * x
}

// Trail keeps the last positions of a body in a fixed ring and mirrors them
// into a line drawn in world space.
type Trail struct {
	node *scenegraph.Node
	line *scenegraph.Line

	ring   []math.Vec3
	head   int // index of the oldest sample
	primed bool
}

// NewTrail returns a trail of length*PointsPerLength samples drawing into
// line, which is the content of node. The line's point and alpha buffers
// are allocated here and reused every frame.
func NewTrail(node *scenegraph.Node, line *scenegraph.Line, length int, fade Attenuation) *Trail {
	if length < 1 {
		length = DefaultLength
	}
	if fade == nil {
		fade = Quadratic
	}
	n := length * PointsPerLength

	line.Points = make([]math.Vec3, n)
	line.Alphas = make([]float32, n)
	for i := range line.Alphas {
		line.Alphas[i] = fade(float32(i) / float32(n-1))
	}
	node.Content = line

	return &Trail{
		node: node,
		line: line,
		ring: make([]math.Vec3, n),
	}
}

// Node returns the node drawing the trail.
func (t *Trail) Node() *scenegraph.Node {
	return t.node
}

// Len returns the number of samples.
func (t *Trail) Len() int {
	return len(t.ring)
}

// Push records the newest position. The first push fills the whole ring so
// the trail grows out of the body instead of the origin.
func (t *Trail) Push(p math.Vec3) {
	if !t.node.Live() {
		return
	}
	if !t.primed {
		for i := range t.ring {
			t.ring[i] = p
		}
		t.primed = true
	} else {
		t.ring[t.head] = p
		t.head = (t.head + 1) % len(t.ring)
	}

	n := len(t.ring)
	for i := 0; i < n; i++ {
		t.line.Points[i] = t.ring[(t.head+i)%n]
	}
	t.line.Version++
}

// Head returns the newest position.
func (t *Trail) Head() math.Vec3 {
	return t.line.Points[len(t.line.Points)-1]
}
