package path

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/orbitfx/pkg/math"
)

const eps = 1e-4

func near(a, b float32, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestOrbitKnownPositions(t *testing.T) {
	p := OrbitParams{Speed: 1, Radius: 2, Inclination: 0, Phase: 0}

	tests := []struct {
		name string
		t    float64
		want math.Vec3
	}{
		{"t=0", 0, math.Vec3{X: 2, Y: 0, Z: 0}},
		{"t=pi/2", gomath.Pi / 2, math.Vec3{X: 0, Y: 0, Z: 2}},
		{"t=pi", gomath.Pi, math.Vec3{X: -2, Y: 0, Z: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Orbit(tt.t, p).Position
			if got.Distance(tt.want) > eps {
				t.Errorf("Orbit(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestOrbitIsPure(t *testing.T) {
	p := OrbitParams{Speed: 0.12, Radius: 2.3, Inclination: 1.1, Phase: 4.2}
	s := OrbitSampler{Params: p}

	// Out-of-order times must not drift.
	times := []float64{0, 10, -3, 1e4, 2.5, 10}
	first := make(map[float64]Pose)
	for _, tm := range times {
		got := s.Sample(tm)
		if prev, ok := first[tm]; ok && prev != got {
			t.Errorf("Sample(%v) changed between calls: %v then %v", tm, prev, got)
		}
		first[tm] = got
		if again := Orbit(tm, p); again != got {
			t.Errorf("Orbit(%v) = %v, sampler returned %v", tm, again, got)
		}
	}
}

func TestOrbitRadiusInvariant(t *testing.T) {
	inclinations := []float64{0, 0.3, gomath.Pi / 2, 2.7, gomath.Pi}
	for _, inc := range inclinations {
		p := OrbitParams{Speed: 0.9, Radius: 2.5, Inclination: inc, Phase: 0.4}
		for tm := -20.0; tm <= 20; tm += 0.37 {
			d := Orbit(tm, p).Position.Length()
			if !near(d, 2.5, eps) {
				t.Fatalf("inclination %v, t=%v: distance %v, want 2.5", inc, tm, d)
			}
		}
	}
}

func TestOrbitZeroRadius(t *testing.T) {
	pose := Orbit(3, OrbitParams{Speed: 1, Radius: 0, Inclination: 0.5})
	if pose.Position.Length() != 0 {
		t.Errorf("zero radius should stay at origin, got %v", pose.Position)
	}
	if gomath.IsNaN(float64(pose.Rotation.W)) {
		t.Error("rotation at origin should stay defined")
	}
}

func TestOrbitFacesCenter(t *testing.T) {
	p := OrbitParams{Speed: 0.7, Radius: 2, Inclination: 0.8, Phase: 1}

	for _, tm := range []float64{0, 1.3, 5, 42} {
		pose := Orbit(tm, p)
		toCenter := pose.Position.Scale(-1).Normalize()

		// After the 90° correction about the local up axis the authored
		// -X axis is the one facing the center.
		inward := pose.Rotation.Rotate(math.Vec3{X: -1})
		if inward.Distance(toCenter) > 1e-3 {
			t.Errorf("t=%v: local -X maps to %v, want %v", tm, inward, toCenter)
		}
	}
}

func TestElectronEnvelopeBound(t *testing.T) {
	const radius = 2.75
	bound := float32(radius * gomath.Pi / 2)

	for _, speed := range []float64{0.5, 0.8, 1.1} {
		for tm := -50.0; tm <= 500; tm += 0.25 {
			y := Electron(tm, speed, radius).Position.Y
			if y > bound || -y > bound {
				t.Fatalf("speed %v t=%v: |y|=%v exceeds %v", speed, tm, y, bound)
			}
			if y > radius/2 || -y > radius/2 {
				t.Fatalf("speed %v t=%v: |y|=%v exceeds r/2", speed, tm, y)
			}
		}
	}
}

func TestElectronShape(t *testing.T) {
	// At u=0 the envelope is closed: the body sits at the origin height.
	start := Electron(0, 1, 2).Position
	if start != (math.Vec3{}) {
		t.Errorf("Electron(0) = %v, want origin", start)
	}

	// The envelope opens as t grows: cos peaks at u=2πk.
	early := Electron(2*gomath.Pi, 1, 2).Position.Y
	late := Electron(20*gomath.Pi, 1, 2).Position.Y
	if !(late > early && early > 0) {
		t.Errorf("envelope should widen: y(2π)=%v, y(20π)=%v", early, late)
	}

	want := float32(2 * gomath.Atan(20*gomath.Pi) / gomath.Pi)
	if !near(late, want, eps) {
		t.Errorf("y(20π) = %v, want %v", late, want)
	}
	for _, tm := range []float64{0.1, 3, 77} {
		if z := Electron(tm, 1.3, 2).Position.Z; z != 0 {
			t.Errorf("electron path is planar, z=%v at t=%v", z, tm)
		}
	}
}

func TestSpin(t *testing.T) {
	pose := Spin(10, 0.05, math.Up)
	got := pose.Rotation.Rotate(math.Vec3{X: 1})
	want := math.Vec3{X: 1}.RotateAxis(math.Up, 0.5)
	if got.Distance(want) > eps {
		t.Errorf("Spin rotation = %v, want %v", got, want)
	}
	if pose.Position != (math.Vec3{}) {
		t.Errorf("Spin should not translate, got %v", pose.Position)
	}
}

func TestFloatRange(t *testing.T) {
	p := FloatParams{Speed: 1, RotationIntensity: 0.5, FloatIntensity: 0.5, Offset: 123}
	for tm := 0.0; tm < 200; tm += 0.5 {
		pose := Float(tm, p)
		if pose.Position.Y > 0.05+eps || pose.Position.Y < -0.05-eps {
			t.Fatalf("t=%v: float y=%v outside ±0.05", tm, pose.Position.Y)
		}
		if pose.Position.X != 0 || pose.Position.Z != 0 {
			t.Fatalf("t=%v: float moved off the vertical axis: %v", tm, pose.Position)
		}
	}
	if Float(7, p) != (FloatSampler{Params: p}).Sample(7) {
		t.Error("FloatSampler must match Float")
	}
}
