package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/orbitfx/internal/engine/geometry"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/internal/engine/scenegraph"
	"github.com/Faultbox/orbitfx/internal/engine/texture"
)

// buffer is a VAO with its backing VBO and optional EBO.
type buffer struct {
	vao, vbo, ebo uint32
	count         int32
	version       uint32
	used          uint64
}

func (b *buffer) release() {
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
	}
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
}

type textureKey struct {
	tex  *material.Texture
	srgb bool
}

type gpuTexture struct {
	id   uint32
	used uint64
}

// cache owns GPU copies of scene content, keyed by the identity of the CPU
// object. Entries not drawn during a frame are released at its end.
//
// Textures are immutable, so one upload serves every material sharing the
// same *material.Texture.
type cache struct {
	frame     uint64
	uploads   int
	refreshes int

	meshes   map[*geometry.Mesh]*buffer
	lines    map[*scenegraph.Line]*buffer
	clouds   map[*geometry.PointCloud]*buffer
	textures map[textureKey]*gpuTexture

	upload  func(t *material.Texture, srgb bool) uint32
	release func(id uint32)
}

func newCache() *cache {
	return &cache{
		meshes:   make(map[*geometry.Mesh]*buffer),
		lines:    make(map[*scenegraph.Line]*buffer),
		clouds:   make(map[*geometry.PointCloud]*buffer),
		textures: make(map[textureKey]*gpuTexture),
		upload:   uploadTexture,
		release:  deleteTexture,
	}
}

func (c *cache) beginFrame() {
	c.frame++
	c.uploads = 0
	c.refreshes = 0
}

// endFrame releases stale entries and returns how many were dropped.
func (c *cache) endFrame() int {
	released := 0
	for k, b := range c.meshes {
		if b.used != c.frame {
			b.release()
			delete(c.meshes, k)
			released++
		}
	}
	for k, b := range c.lines {
		if b.used != c.frame {
			b.release()
			delete(c.lines, k)
			released++
		}
	}
	for k, b := range c.clouds {
		if b.used != c.frame {
			b.release()
			delete(c.clouds, k)
			released++
		}
	}
	for k, t := range c.textures {
		if t.used != c.frame {
			c.release(t.id)
			delete(c.textures, k)
			released++
		}
	}
	return released
}

func (c *cache) releaseAll() {
	c.frame++
	c.endFrame()
}

func (c *cache) mesh(m *geometry.Mesh) *buffer {
	b, ok := c.meshes[m]
	if !ok {
		b = &buffer{}
		gl.GenVertexArrays(1, &b.vao)
		gl.BindVertexArray(b.vao)

		stride := int32(unsafe.Sizeof(geometry.Vertex{}))
		gl.GenBuffers(1, &b.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
		if len(m.Vertices) > 0 {
			gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(stride), unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)
		}
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(geometry.Vertex{}.Position))
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(geometry.Vertex{}.Normal))
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, unsafe.Offsetof(geometry.Vertex{}.TexCoord))
		gl.EnableVertexAttribArray(2)

		gl.GenBuffers(1, &b.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
		if len(m.Indices) > 0 {
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)
		}
		b.count = int32(len(m.Indices))

		gl.BindVertexArray(0)
		c.meshes[m] = b
		c.uploads++
	}
	b.used = c.frame
	return b
}

// line keeps one dynamic buffer per line and re-uploads it whenever the
// line's Version moves.
func (c *cache) line(l *scenegraph.Line) *buffer {
	b, ok := c.lines[l]
	if !ok {
		b = &buffer{version: l.Version - 1}
		gl.GenVertexArrays(1, &b.vao)
		gl.BindVertexArray(b.vao)
		gl.GenBuffers(1, &b.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 4*4, 0)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(1, 1, gl.FLOAT, false, 4*4, 3*4)
		gl.EnableVertexAttribArray(1)
		gl.BindVertexArray(0)
		c.lines[l] = b
	}
	if b.version != l.Version {
		data := make([]float32, 0, len(l.Points)*4)
		for i, p := range l.Points {
			alpha := float32(1)
			if i < len(l.Alphas) {
				alpha = l.Alphas[i]
			}
			data = append(data, p.X, p.Y, p.Z, alpha)
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
		gl.BindBuffer(gl.ARRAY_BUFFER, 0)
		b.count = int32(len(l.Points))
		b.version = l.Version
		c.uploads++
	}
	b.used = c.frame
	return b
}

func (c *cache) points(pc *geometry.PointCloud) *buffer {
	b, ok := c.clouds[pc]
	if !ok {
		data := make([]float32, 0, pc.Len()*7)
		for i, p := range pc.Positions {
			col := [3]float32{1, 1, 1}
			if i < len(pc.Colors) {
				col = pc.Colors[i]
			}
			size := float32(1)
			if i < len(pc.Sizes) {
				size = pc.Sizes[i]
			}
			data = append(data, p.X, p.Y, p.Z, col[0], col[1], col[2], size)
		}

		b = &buffer{count: int32(pc.Len())}
		gl.GenVertexArrays(1, &b.vao)
		gl.BindVertexArray(b.vao)
		gl.GenBuffers(1, &b.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 7*4, 0)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, 7*4, 3*4)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(2, 1, gl.FLOAT, false, 7*4, 6*4)
		gl.EnableVertexAttribArray(2)
		gl.BindVertexArray(0)
		c.clouds[pc] = b
		c.uploads++
	}
	b.used = c.frame
	return b
}

// texture returns the GPU copy of t, uploading it on first use.
func (c *cache) texture(t *material.Texture, srgb bool) uint32 {
	key := textureKey{tex: t, srgb: srgb}
	if g, ok := c.textures[key]; ok {
		g.used = c.frame
		return g.id
	}
	g := &gpuTexture{id: c.upload(t, srgb), used: c.frame}
	c.textures[key] = g
	c.uploads++
	return g.id
}

// refreshMaterial applies a material change. Uniforms are set on every
// draw and texture copies follow the *material.Texture, so nothing resident
// is dropped: a texture the material stopped binding is released by the
// end-of-frame sweep once no other material draws it.
func (c *cache) refreshMaterial(m *material.Material) {
	c.refreshes++
	m.NeedsUpdate = false
}

// uploadTexture uploads t flipped to GL's bottom-up row order. Base color
// maps are sampled as sRGB, data maps as linear.
func uploadTexture(t *material.Texture, srgb bool) uint32 {
	img := texture.FlipVertical(t.Image)
	internal := int32(gl.RGBA8)
	if srgb {
		internal = gl.SRGB8_ALPHA8
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal,
		int32(img.Rect.Dx()), int32(img.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return id
}

func deleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}
