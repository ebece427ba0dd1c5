package body

import (
	gomath "math"
	"testing"
	"time"

	"github.com/Faultbox/orbitfx/internal/engine/frame"
	"github.com/Faultbox/orbitfx/internal/engine/path"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/pkg/math"
)

func orbitBody(root *scenegraph.Node) *Body {
	node := scenegraph.NewNode("satellite")
	root.Add(node)
	return New(node, path.OrbitSampler{Params: path.OrbitParams{Speed: 1, Radius: 2}})
}

func TestUpdateWritesSampledPose(t *testing.T) {
	root := scenegraph.NewRoot("scene")
	b := orbitBody(root)

	b.Update(frame.State{Elapsed: gomath.Pi / 2, Frame: 1})
	want := path.Orbit(gomath.Pi/2, path.OrbitParams{Speed: 1, Radius: 2})
	if b.Node().Position != want.Position || b.Node().Rotation != want.Rotation {
		t.Errorf("pose = %v %v, want %v", b.Node().Position, b.Node().Rotation, want)
	}
	if b.Node().Position.Distance(math.Vec3{Z: 2}) > 1e-4 {
		t.Errorf("position = %v, want (0,0,2)", b.Node().Position)
	}
}

func TestUpdateAfterDispose(t *testing.T) {
	root := scenegraph.NewRoot("scene")
	sibling := scenegraph.NewNode("earth")
	root.Add(sibling)
	b := orbitBody(root)
	b.Update(frame.State{Elapsed: 1})
	before := b.Node().Position

	b.Node().Dispose()
	b.Update(frame.State{Elapsed: 2})

	if b.Node().Position != before {
		t.Errorf("disposed node was written: %v -> %v", before, b.Node().Position)
	}
	if sibling.Position != (math.Vec3{}) || root.Count() != 2 {
		t.Error("live scene state changed")
	}
}

func TestUpdateDetached(t *testing.T) {
	root := scenegraph.NewRoot("scene")
	b := orbitBody(root)
	b.Node().Detach()
	b.Update(frame.State{Elapsed: 3})
	if b.Node().Position != (math.Vec3{}) {
		t.Errorf("detached node was written: %v", b.Node().Position)
	}
}

func TestAttachAndUnregister(t *testing.T) {
	loop := frame.NewLoop(frame.NewFixedClock(time.Second))
	root := scenegraph.NewRoot("scene")
	b := orbitBody(root)

	reg := b.Attach(loop)
	loop.Step()
	first := b.Node().Position

	reg.Unregister()
	loop.Step()
	if b.Node().Position != first {
		t.Error("unregistered body kept moving")
	}
	if first.Distance(path.Orbit(1, path.OrbitParams{Speed: 1, Radius: 2}).Position) > 1e-6 {
		t.Errorf("frame 1 pose %v should be sampled at t=1", first)
	}
}

func TestPendingFrameAfterDispose(t *testing.T) {
	loop := frame.NewLoop(frame.NewFixedClock(time.Second))
	root := scenegraph.NewRoot("scene")
	b := orbitBody(root)
	b.Attach(loop)

	// The scene goes away before the scheduled frame runs.
	loop.Post(func() { b.Node().Dispose() })
	loop.Step()

	if b.Node().Position != (math.Vec3{}) {
		t.Errorf("disposed body written during pending frame: %v", b.Node().Position)
	}
}

func TestTrail(t *testing.T) {
	root := scenegraph.NewRoot("scene")
	trailNode := scenegraph.NewNode("trail")
	root.Add(trailNode)
	line := &scenegraph.Line{Width: 4}
	tr := NewTrail(trailNode, line, DefaultLength, nil)

	if tr.Len() != 80 || len(line.Points) != 80 || len(line.Alphas) != 80 {
		t.Fatalf("trail size %d/%d/%d, want 80", tr.Len(), len(line.Points), len(line.Alphas))
	}
	if line.Alphas[0] != 0 || line.Alphas[79] != 1 {
		t.Errorf("alphas run %v..%v, want 0..1", line.Alphas[0], line.Alphas[79])
	}
	mid := line.Alphas[40]
	if want := float32(40.0/79) * float32(40.0/79); gomath.Abs(float64(mid-want)) > 1e-6 {
		t.Errorf("alpha[40] = %v, want %v", mid, want)
	}

	tr.Push(math.Vec3{X: 1})
	for i, p := range line.Points {
		if p != (math.Vec3{X: 1}) {
			t.Fatalf("first push should fill the trail, point %d = %v", i, p)
		}
	}

	tr.Push(math.Vec3{X: 2})
	tr.Push(math.Vec3{X: 3})
	if tr.Head() != (math.Vec3{X: 3}) || line.Points[78] != (math.Vec3{X: 2}) || line.Points[0] != (math.Vec3{X: 1}) {
		t.Errorf("trail order wrong: head %v, [78] %v, [0] %v", tr.Head(), line.Points[78], line.Points[0])
	}
	if line.Version != 3 {
		t.Errorf("line version = %d, want 3", line.Version)
	}

	for i := 0; i < 100; i++ {
		tr.Push(math.Vec3{Y: float32(i)})
	}
	for i := 1; i < len(line.Points); i++ {
		if line.Points[i].Y != line.Points[i-1].Y+1 {
			t.Fatalf("points not oldest-to-newest at %d: %v then %v", i, line.Points[i-1], line.Points[i])
		}
	}
}

func TestBodyFeedsTrail(t *testing.T) {
	root := scenegraph.NewRoot("scene")
	group := scenegraph.NewNode("electron-group")
	group.Position = math.Vec3{Z: 0.5}
	root.Add(group)
	node := scenegraph.NewNode("electron")
	group.Add(node)
	trailNode := scenegraph.NewNode("trail")
	root.Add(trailNode)

	trail := NewTrail(trailNode, &scenegraph.Line{}, 8, Quadratic)
	b := New(node, path.ElectronSampler{Speed: 1, Radius: 2.75}).WithTrail(trail)
	b.Update(frame.State{Elapsed: 1})

	if got, want := trail.Head(), node.WorldPosition(); got != want {
		t.Errorf("trail head %v, want world position %v", got, want)
	}
	if trail.Head().Z != 0.5 {
		t.Errorf("trail should be in world space, z = %v", trail.Head().Z)
	}

	trailNode.Dispose()
	b.Update(frame.State{Elapsed: 2})
}

func TestUpdateDoesNotAllocate(t *testing.T) {
	root := scenegraph.NewRoot("scene")
	b := orbitBody(root)
	trailNode := scenegraph.NewNode("trail")
	root.Add(trailNode)
	b.WithTrail(NewTrail(trailNode, &scenegraph.Line{}, 8, nil))

	s := frame.State{Elapsed: 1}
	allocs := testing.AllocsPerRun(100, func() {
		s.Elapsed += 0.016
		b.Update(s)
	})
	if allocs != 0 {
		t.Errorf("Update allocates %v times per frame", allocs)
	}
}
