package assets

import (
	"errors"
	"fmt"

	"github.com/Faultbox/orbitfx/internal/engine/geometry"
	"github.com/Faultbox/orbitfx/internal/engine/material"
	"github.com/Faultbox/orbitfx/pkg/formats"
)

// ErrEmptyModel is returned for a model file without faces.
var ErrEmptyModel = errors.New("model has no faces")

// BuildModel converts a parsed OBJ into a model tree with one leaf part per
// face group. Each part is named by its material so that material
// categories can be matched against it; groups without a material use the
// object name. Placeholder materials take color and opacity from the
// library when a matching entry exists.
func BuildModel(name string, obj *formats.OBJ, lib *formats.MTL) (*material.Model, error) {
	if obj == nil || len(obj.Groups) == 0 {
		return nil, ErrEmptyModel
	}

	root := &material.Part{Name: name}
	for i, g := range obj.Groups {
		partName := g.Material
		if partName == "" {
			partName = g.Object
		}
		if partName == "" {
			partName = fmt.Sprintf("part%d", i)
		}

		mesh, err := buildMesh(partName, obj, g)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", partName, err)
		}

		mat := material.New(partName, material.Standard)
		if m := lib.Find(g.Material); m != nil {
			mat.Color = material.Color{R: m.Diffuse[0], G: m.Diffuse[1], B: m.Diffuse[2]}
			mat.Opacity = m.Opacity
			mat.Transparent = m.Opacity < 1
		}

		root.Children = append(root.Children, &material.Part{
			Name:     partName,
			Material: mat,
			Mesh:     mesh,
		})
	}
	return &material.Model{Name: name, Root: root}, nil
}

// buildMesh fan-triangulates a group. Missing normals are derived from the
// faces and smoothed across shared positions.
func buildMesh(name string, obj *formats.OBJ, g *formats.OBJGroup) (*geometry.Mesh, error) {
	var vertices []geometry.Vertex
	var indices []uint32
	needNormals := false

	for _, f := range g.Faces {
		corners := make([]geometry.Vertex, len(f.Corners))
		for i, c := range f.Corners {
			v := geometry.Vertex{Position: obj.Positions[c.V]}
			if c.VT >= 0 {
				v.TexCoord = obj.TexCoords[c.VT]
			}
			if c.VN >= 0 {
				v.Normal = obj.Normals[c.VN]
			} else {
				needNormals = true
			}
			corners[i] = v
		}

		for i := 1; i+1 < len(corners); i++ {
			tri := [3]geometry.Vertex{corners[0], corners[i], corners[i+1]}
			if n, ok := geometry.FaceNormal(tri[0].Position, tri[1].Position, tri[2].Position); ok {
				for k := range tri {
					if tri[k].Normal == ([3]float32{}) {
						tri[k].Normal = n
					}
				}
			}
			base := uint32(len(vertices))
			vertices = append(vertices, tri[0], tri[1], tri[2])
			indices = append(indices, base, base+1, base+2)
		}
	}
	if len(indices) == 0 {
		return nil, ErrEmptyModel
	}
	if needNormals {
		geometry.SmoothNormals(vertices)
	}
	return geometry.NewMesh(name, vertices, indices), nil
}
