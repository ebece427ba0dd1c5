// Package renderer draws scene graphs with OpenGL.
package renderer

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/engine/camera"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/renderer/shaders"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/internal/engine/shader"
	"github.com/Faultbox/orbitfx/internal/logger"
	"github.com/Faultbox/orbitfx/pkg/math"
)

// Light slot limits, matching the mesh fragment shader.
const (
	maxDirectional = 4
	maxPoint       = 8
	maxSpot        = 4
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
	MSAA   bool
}

// Stats counts the work of the last frame.
type Stats struct {
	Meshes   int
	Lines    int
	Points   int
	Lights   int
	Uploads  int
	Released int
}

// Renderer handles all OpenGL rendering.
// IMPORTANT: every method must run on the thread that owns the GL context.
type Renderer struct {
	config Config
	log    *zap.Logger

	mesh   *shader.Program
	line   *shader.Program
	points *shader.Program

	gpu  *cache
	list scenegraph.DrawList

	stats Stats
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	if cfg.MSAA {
		gl.Enable(gl.MULTISAMPLE)
	}

	var err error
	if r.mesh, err = shader.New(shaders.MeshVertexShader, shaders.MeshFragmentShader); err != nil {
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	if r.line, err = shader.New(shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		r.mesh.Delete()
		return nil, fmt.Errorf("line program: %w", err)
	}
	if r.points, err = shader.New(shaders.PointsVertexShader, shaders.PointsFragmentShader); err != nil {
		r.mesh.Delete()
		r.line.Delete()
		return nil, fmt.Errorf("points program: %w", err)
	}

	r.gpu = newCache()
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.gpu.releaseAll()
	r.mesh.Delete()
	r.line.Delete()
	r.points.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport width over height.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// ReadPixels returns the back buffer as bottom-up RGBA rows. Call it after
// Render and before the buffers are swapped.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, width, height
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, width, height
}

// Stats returns the counters of the last Render.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Render draws root as seen by cam. elapsed drives time-based shader
// effects. GPU objects of content no longer in the scene are released at
// the end of the frame.
func (r *Renderer) Render(root *scenegraph.Node, cam *camera.OrbitCamera, background material.Color, elapsed float64) {
	r.stats = Stats{}
	r.gpu.beginFrame()

	bg := background.Array()
	gl.ClearColor(srgb(bg[0]), srgb(bg[1]), srgb(bg[2]), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix(r.Aspect())
	scenegraph.Collect(root, view, &r.list)
	r.stats.Lights = len(r.list.Lights)

	f := frameParams{view: view, proj: proj, eye: cam.Position(), elapsed: float32(elapsed)}

	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
	r.mesh.Use()
	r.bindLights(f)
	for _, it := range r.list.Opaque {
		r.drawMesh(it, f)
	}

	gl.Enable(gl.BLEND)
	gl.DepthMask(false)
	for _, it := range r.list.Transparent {
		switch c := it.Node.Content.(type) {
		case *scenegraph.Mesh:
			r.mesh.Use()
			r.drawMesh(it, f)
		case *scenegraph.Line:
			r.drawLine(it.World, c, f)
		case *scenegraph.Points:
			r.drawPoints(it.World, c, f)
		}
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)

	r.stats.Released = r.gpu.endFrame()
	r.stats.Uploads = r.gpu.uploads
}

type frameParams struct {
	view, proj math.Mat4
	eye        math.Vec3
	elapsed    float32
}

func (r *Renderer) bindLights(f frameParams) {
	p := r.mesh
	p.SetVec3("uAmbient", r.list.Ambient.Array())
	p.SetVec3("uCameraPos", f.eye.Array())

	var dir, point, spot int
	for _, l := range r.list.Lights {
		radiance := l.Light.Color.Scale(l.Light.Intensity).Array()
		switch l.Light.Kind {
		case scenegraph.DirectionalLight:
			if dir == maxDirectional {
				continue
			}
			p.SetVec3(indexed("uDirDirection", dir), l.Direction.Array())
			p.SetVec3(indexed("uDirColor", dir), radiance)
			dir++
		case scenegraph.PointLight:
			if point == maxPoint {
				continue
			}
			p.SetVec3(indexed("uPointPosition", point), l.Position.Array())
			p.SetVec3(indexed("uPointColor", point), radiance)
			p.SetFloat(indexed("uPointDistance", point), l.Light.Distance)
			p.SetFloat(indexed("uPointDecay", point), l.Light.Decay)
			point++
		case scenegraph.SpotLight:
			if spot == maxSpot {
				continue
			}
			cone := float64(l.Light.Angle)
			p.SetVec3(indexed("uSpotPosition", spot), l.Position.Array())
			p.SetVec3(indexed("uSpotDirection", spot), l.Direction.Array())
			p.SetVec3(indexed("uSpotColor", spot), radiance)
			p.SetFloat(indexed("uSpotDistance", spot), l.Light.Distance)
			p.SetFloat(indexed("uSpotDecay", spot), l.Light.Decay)
			p.SetFloat(indexed("uSpotConeCos", spot), float32(gomath.Cos(cone)))
			p.SetFloat(indexed("uSpotPenumbraCos", spot), float32(gomath.Cos(cone*(1-float64(l.Light.Penumbra)))))
			spot++
		}
	}
	p.SetInt("uDirCount", int32(dir))
	p.SetInt("uPointCount", int32(point))
	p.SetInt("uSpotCount", int32(spot))

	if skipped := len(r.list.Lights) - dir - point - spot; skipped > 0 {
		r.log.Debug("light slots exhausted", zap.Int("skipped", skipped))
	}
}

// Texture units of the mesh program.
var textureSlots = [...]struct {
	sampler, flag string
}{
	material.BaseColor: {"uColorMap", "uHasColorMap"},
	material.Normal:    {"uNormalMap", "uHasNormalMap"},
	material.Roughness: {"uRoughnessMap", "uHasRoughnessMap"},
	material.Metallic:  {"uMetallicMap", "uHasMetallicMap"},
}

const specularUnit = int32(material.ChannelCount)

func (r *Renderer) drawMesh(it scenegraph.Item, f frameParams) {
	m := it.Node.Content.(*scenegraph.Mesh)
	mat := m.Material
	g := r.gpu.mesh(m.Geometry)
	if mat.NeedsUpdate {
		r.gpu.refreshMaterial(mat)
	}

	p := r.mesh
	p.SetMat4("uModel", it.World)
	p.SetMat4("uView", f.view)
	p.SetMat4("uProjection", f.proj)
	p.SetInt("uShading", int32(mat.Shading))
	p.SetVec3("uColor", mat.Color.Array())
	p.SetVec3("uEmissive", mat.Emissive.Array())
	p.SetFloat("uEmissiveIntensity", mat.EmissiveIntensity)
	p.SetFloat("uOpacity", mat.Opacity)
	p.SetVec3("uSpecular", mat.Specular.Array())
	p.SetFloat("uShininess", mat.Shininess)
	p.SetFloat("uRoughness", mat.Roughness)
	p.SetFloat("uMetalness", mat.Metalness)
	p.SetBool("uBackSide", mat.Side == material.BackSide)

	for ch, slot := range textureSlots {
		tex := mat.Maps[ch]
		p.SetBool(slot.flag, tex != nil)
		p.SetInt(slot.sampler, int32(ch))
		if tex != nil {
			gl.ActiveTexture(gl.TEXTURE0 + uint32(ch))
			gl.BindTexture(gl.TEXTURE_2D, r.gpu.texture(tex, ch == int(material.BaseColor)))
		}
	}
	p.SetBool("uHasSpecularMap", mat.SpecularMap != nil)
	p.SetInt("uSpecularMap", specularUnit)
	if mat.SpecularMap != nil {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(specularUnit))
		gl.BindTexture(gl.TEXTURE_2D, r.gpu.texture(mat.SpecularMap, false))
	}

	applySide(mat.Side)
	applyBlending(mat.Blending)

	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
	r.stats.Meshes++
}

func (r *Renderer) drawLine(world math.Mat4, l *scenegraph.Line, f frameParams) {
	if len(l.Points) < 2 {
		return
	}
	g := r.gpu.line(l)

	p := r.line
	p.Use()
	p.SetMat4("uModel", world)
	p.SetMat4("uViewProj", f.proj.Mul(f.view))
	p.SetVec3("uColor", l.Color.Array())
	p.SetFloat("uOpacity", l.Opacity)

	// Core profiles only guarantee 1px lines; wider requests are best effort.
	gl.LineWidth(1)
	gl.Disable(gl.CULL_FACE)
	applyBlending(l.Blending)

	mode := uint32(gl.LINE_STRIP)
	if l.Loop {
		mode = gl.LINE_LOOP
	}
	gl.BindVertexArray(g.vao)
	gl.DrawArrays(mode, 0, g.count)
	gl.BindVertexArray(0)
	r.stats.Lines++
}

func (r *Renderer) drawPoints(world math.Mat4, pts *scenegraph.Points, f frameParams) {
	if pts.Cloud == nil || pts.Cloud.Len() == 0 {
		return
	}
	g := r.gpu.points(pts.Cloud)

	p := r.points
	p.Use()
	p.SetMat4("uModel", world)
	p.SetMat4("uView", f.view)
	p.SetMat4("uProjection", f.proj)
	p.SetFloat("uSize", pts.Size)
	p.SetBool("uAttenuate", pts.SizeAttenuation)
	p.SetFloat("uOpacity", pts.Opacity)
	p.SetFloat("uTime", f.elapsed*pts.Speed)

	applyBlending(pts.Blending)
	gl.BindVertexArray(g.vao)
	gl.DrawArrays(gl.POINTS, 0, g.count)
	gl.BindVertexArray(0)
	r.stats.Points++
}

func applySide(s material.Side) {
	switch s {
	case material.FrontSide:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	case material.BackSide:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	default:
		gl.Disable(gl.CULL_FACE)
	}
}

func applyBlending(b material.Blending) {
	if b == material.AdditiveBlending {
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
		return
	}
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

func indexed(name string, i int) string {
	return fmt.Sprintf("%s[%d]", name, i)
}

// srgb encodes a linear channel for the clear color, which bypasses the
// shaders' output encoding.
func srgb(c float32) float32 {
	return float32(gomath.Pow(float64(c), 1/2.2))
}
