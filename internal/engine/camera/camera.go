// Package camera provides the perspective orbit camera used by the viewers.
package camera

import (
	gomath "math"

	"github.com/Faultbox/orbitfx/pkg/math"
)

// DefaultFOV is the vertical field of view in degrees.
const DefaultFOV = 45

// Controls configures user interaction with an OrbitCamera.
// The zero value disables all input.
type Controls struct {
	Enabled    bool
	EnableZoom bool
	EnablePan  bool

	// AutoRotate turns the camera around the target at
	// AutoRotateSpeed full turns per minute, even without input.
	AutoRotate      bool
	AutoRotateSpeed float64

	// Polar angle limits in radians, measured from +Y.
	// Both zero means unconstrained.
	MinPolarAngle float64
	MaxPolarAngle float64
}

// OrbitCamera looks at a target from a point on a sphere around it.
type OrbitCamera struct {
	Target math.Vec3

	// Spherical coordinates relative to Target
	Distance float32
	Polar    float64 // angle from +Y, radians
	Azimuth  float64 // angle about Y from +Z, radians

	FOV       float32 // degrees
	Near, Far float32

	Controls Controls

	MinDistance float32
	MaxDistance float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32
}

// NewOrbitCamera creates a camera at position looking at target.
func NewOrbitCamera(position, target math.Vec3) *OrbitCamera {
	c := &OrbitCamera{
		Target:          target,
		FOV:             DefaultFOV,
		Near:            0.1,
		Far:             1000,
		MinDistance:     0.5,
		MaxDistance:     500,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.002,
	}
	c.SetPosition(position)
	return c
}

// SetPosition moves the camera to p, keeping the target.
func (c *OrbitCamera) SetPosition(p math.Vec3) {
	offset := p.Sub(c.Target)
	c.Distance = offset.Length()
	if c.Distance == 0 {
		c.Polar, c.Azimuth = gomath.Pi/2, 0
		return
	}
	cosPolar := float64(offset.Y / c.Distance)
	c.Polar = gomath.Acos(gomath.Max(-1, gomath.Min(1, cosPolar)))
	c.Azimuth = gomath.Atan2(float64(offset.X), float64(offset.Z))
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sinP, cosP := gomath.Sincos(c.Polar)
	sinA, cosA := gomath.Sincos(c.Azimuth)
	return c.Target.Add(math.Vec3{
		X: c.Distance * float32(sinP*sinA),
		Y: c.Distance * float32(cosP),
		Z: c.Distance * float32(sinP*cosA),
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Up)
}

// ProjectionMatrix returns the perspective projection for the given aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	fov := c.FOV * gomath.Pi / 180
	return math.Perspective(fov, aspect, c.Near, c.Far)
}

// Update advances auto-rotation by dt seconds and applies the constraints.
func (c *OrbitCamera) Update(dt float64) {
	if c.Controls.AutoRotate {
		c.Azimuth -= 2 * gomath.Pi / 60 * c.Controls.AutoRotateSpeed * dt
	}
	c.clamp()
}

// HandleDrag rotates around the target by a mouse drag in pixels.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	if !c.Controls.Enabled {
		return
	}
	c.Azimuth -= float64(deltaX * c.DragSensitivity)
	c.Polar -= float64(deltaY * c.DragSensitivity)
	c.clamp()
}

// HandleZoom moves toward or away from the target by a wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	if !c.Controls.Enabled || !c.Controls.EnableZoom {
		return
	}
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.clamp()
}

// HandlePan shifts the target in the view plane by a drag in pixels.
func (c *OrbitCamera) HandlePan(deltaX, deltaY float32) {
	if !c.Controls.Enabled || !c.Controls.EnablePan {
		return
	}
	forward := c.Target.Sub(c.Position()).Normalize()
	right := forward.Cross(math.Up).Normalize()
	up := right.Cross(forward)

	speed := c.Distance * c.PanSensitivity
	c.Target = c.Target.
		Add(right.Scale(-deltaX * speed)).
		Add(up.Scale(deltaY * speed))
}

func (c *OrbitCamera) clamp() {
	const eps = 1e-6

	lo, hi := c.Controls.MinPolarAngle, c.Controls.MaxPolarAngle
	if lo == 0 && hi == 0 {
		hi = gomath.Pi
	}
	c.Polar = gomath.Max(gomath.Max(lo, eps), gomath.Min(gomath.Min(hi, gomath.Pi-eps), c.Polar))

	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.MaxDistance > 0 && c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
}
