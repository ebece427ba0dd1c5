// Package path provides the pure kinematic functions that place animated
// bodies along parametric paths.
//
// Every sampler is a function of elapsed time and fixed per-body parameters
// only. Calling one twice with the same arguments yields the same pose, and
// any time value is valid, including negative times and out-of-order calls.
package path

import (
	gomath "math"

	"github.com/Faultbox/orbitfx/pkg/math"
)

// Pose is the position and orientation of a body at one instant.
type Pose struct {
	Position math.Vec3
	Rotation math.Quat
}

// Sampler computes a pose from elapsed seconds.
type Sampler interface {
	Sample(t float64) Pose
}

// orbitAxis is the tilt axis of every inclined orbit: (1,0,1) normalized.
var orbitAxis = math.Vec3{X: 1, Y: 0, Z: 1}.Normalize()

// modelForward aligns the satellite's authored forward axis with the orbit
// tangent once its +Z faces the center.
var modelForward = math.QuatFromAxisAngle(math.Up, gomath.Pi/2)

// OrbitParams configures one body on an inclined circular orbit.
type OrbitParams struct {
	Speed       float64 // angular rate, radians/sec
	Radius      float64 // orbit radius, >= 0
	Inclination float64 // tilt of the orbital plane, radians
	Phase       float64 // initial angular position, radians
}

// Orbit samples an inclined circular orbit around the origin.
//
// The body sits at radius*(cos θ, 0, sin θ) rotated about (1,0,1) by the
// inclination, with θ = t*speed + phase. It faces the center and then turns
// 90° about its local up axis, so the same face always points inward.
func Orbit(t float64, p OrbitParams) Pose {
	theta := t*p.Speed + p.Phase
	flat := math.Vec3{
		X: float32(p.Radius * gomath.Cos(theta)),
		Y: 0,
		Z: float32(p.Radius * gomath.Sin(theta)),
	}
	pos := flat.RotateAxis(orbitAxis, float32(p.Inclination))

	rot := math.QuatFacing(pos, math.Vec3{}, math.Up).Mul(modelForward)
	return Pose{Position: pos, Rotation: rot}
}

// OrbitSampler is a Sampler for Orbit.
type OrbitSampler struct {
	Params OrbitParams
}

// Sample implements Sampler.
func (s OrbitSampler) Sample(t float64) Pose {
	return Orbit(t, s.Params)
}

// Electron samples the atom's electron path. The vertical excursion is shaped
// by an arctangent envelope so the path tightens into a ring over time rather
// than tracing a plain ellipse:
//
//	u = t*speed
//	p = (sin(u)*r, cos(u)*r*atan(u)/π, 0)
//
// Since |atan| < π/2, |y| stays below r/2 for every finite t.
func Electron(t, speed, radius float64) Pose {
	u := t * speed
	return Pose{
		Position: math.Vec3{
			X: float32(gomath.Sin(u) * radius),
			Y: float32(gomath.Cos(u) * radius * gomath.Atan(u) / gomath.Pi),
			Z: 0,
		},
		Rotation: math.QuatIdentity(),
	}
}

// ElectronSampler is a Sampler for Electron.
type ElectronSampler struct {
	Speed  float64
	Radius float64
}

// Sample implements Sampler.
func (s ElectronSampler) Sample(t float64) Pose {
	return Electron(t, s.Speed, s.Radius)
}

// Spin rotates a body in place about axis at rate radians/sec.
func Spin(t, rate float64, axis math.Vec3) Pose {
	return Pose{Rotation: math.QuatFromAxisAngle(axis, float32(t*rate))}
}

// SpinSampler is a Sampler for Spin.
type SpinSampler struct {
	Rate float64
	Axis math.Vec3
}

// Sample implements Sampler.
func (s SpinSampler) Sample(t float64) Pose {
	return Spin(t, s.Rate, s.Axis)
}

// FloatParams configures the idle bob applied to a whole group.
type FloatParams struct {
	Speed             float64
	RotationIntensity float64
	FloatIntensity    float64
	// Offset desynchronizes groups that bob side by side.
	Offset float64
}

// Float samples a gentle bob: a small wobble about all three axes and a
// vertical drift of at most ±0.1*FloatIntensity.
func Float(t float64, p FloatParams) Pose {
	s := (t + p.Offset) / 4 * p.Speed
	sin, cos := gomath.Sin(s), gomath.Cos(s)

	rot := math.QuatFromEuler(
		float32(cos/8*p.RotationIntensity),
		float32(sin/8*p.RotationIntensity),
		float32(sin/20*p.RotationIntensity),
	)
	return Pose{
		Position: math.Vec3{Y: float32(sin / 10 * p.FloatIntensity)},
		Rotation: rot,
	}
}

// FloatSampler is a Sampler for Float.
type FloatSampler struct {
	Params FloatParams
}

// Sample implements Sampler.
func (s FloatSampler) Sample(t float64) Pose {
	return Float(t, s.Params)
}
