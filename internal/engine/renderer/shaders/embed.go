// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms lit and unlit triangle meshes.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader shades meshes with the standard, phong or unlit model.
//
//go:embed mesh.frag
var MeshFragmentShader string

// LineVertexShader is the vertex shader for polylines and trails.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader is the fragment shader for polylines and trails.
//
//go:embed line.frag
var LineFragmentShader string

// PointsVertexShader sizes star field points.
//
//go:embed points.vert
var PointsVertexShader string

// PointsFragmentShader draws round, soft-edged points.
//
//go:embed points.frag
var PointsFragmentShader string
