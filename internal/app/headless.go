package app

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// Pose is the world position of one animated body.
type Pose struct {
	Name     string
	Position math.Vec3
}

// RunHeadless mounts the initial scene and steps the loop for the given
// number of frames without a window. Poses are logged once per simulated
// second and after the last frame.
func (a *App) RunHeadless(frames int) error {
	if err := a.Mount(a.cfg.Scene.Initial); err != nil {
		return err
	}

	every := a.cfg.Scene.FrameHz
	for i := 1; i <= frames; i++ {
		s := a.Step()
		if i%every == 0 || i == frames {
			a.logPoses(s.Frame, s.Elapsed)
		}
	}
	a.logStatus()
	return nil
}

// logStatus reports what is still live in the mounted scene.
func (a *App) logStatus() {
	v := a.current
	fields := []zap.Field{zap.String("scene", v.Name), zap.Int("callbacks", v.Registrations())}
	for _, b := range v.Boundaries() {
		fields = append(fields, zap.Stringer(b.Name(), b.State()))
	}
	a.log.Info("scene status", fields...)
}

func (a *App) logPoses(frame uint64, elapsed float64) {
	poses := Poses(a.current.Root)
	fields := make([]zap.Field, 0, len(poses)+2)
	fields = append(fields, zap.Uint64("frame", frame), zap.Float64("elapsed", elapsed))
	for _, p := range poses {
		fields = append(fields, zap.Array(p.Name, vec3(p.Position)))
	}
	a.log.Info("poses", fields...)
}

// Poses returns the world positions of the electrons and satellite orbits
// under root, in tree order. Electrons are numbered by appearance.
func Poses(root *scenegraph.Node) []Pose {
	var out []Pose
	electrons := 0
	root.Traverse(func(n *scenegraph.Node, world math.Mat4) {
		name := n.Name
		switch {
		case name == "electron":
			name = "electron-" + strconv.Itoa(electrons)
			electrons++
		case strings.HasPrefix(name, "satellite-"):
		default:
			return
		}
		out = append(out, Pose{Name: name, Position: world.TransformVec3(math.Vec3{})})
	})
	return out
}

type vec3 math.Vec3

func (v vec3) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	enc.AppendFloat32(v.X)
	enc.AppendFloat32(v.Y)
	enc.AppendFloat32(v.Z)
	return nil
}
