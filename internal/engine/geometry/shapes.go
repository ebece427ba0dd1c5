package geometry

import (
	gomath "math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/orbitfx/pkg/math"
)

// Sphere builds a UV sphere centered at the origin.
// Texture U wraps around Y, V runs from the north pole (1) to the south (0).
func Sphere(radius float32, widthSegments, heightSegments int) *Mesh {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	vertices := make([]Vertex, 0, (widthSegments+1)*(heightSegments+1))
	grid := make([][]uint32, heightSegments+1)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		row := make([]uint32, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			dir := [3]float32{
				float32(-gomath.Cos(u*2*gomath.Pi) * gomath.Sin(v*gomath.Pi)),
				float32(gomath.Cos(v * gomath.Pi)),
				float32(gomath.Sin(u*2*gomath.Pi) * gomath.Sin(v*gomath.Pi)),
			}
			row[ix] = uint32(len(vertices))
			vertices = append(vertices, Vertex{
				Position: [3]float32{dir[0] * radius, dir[1] * radius, dir[2] * radius},
				Normal:   dir,
				TexCoord: [2]float32{float32(u), float32(1 - v)},
			})
		}
		grid[iy] = row
	}

	indices := make([]uint32, 0, widthSegments*heightSegments*6)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != heightSegments-1 {
				indices = append(indices, b, c, d)
			}
		}
	}

	return NewMesh("sphere", vertices, indices)
}

// Ellipse samples divisions+1 points of an axis-aligned ellipse in the XY
// plane, counter-clockwise from angle 0. A full turn repeats the first
// point at the end.
func Ellipse(radiusX, radiusY float32, divisions int) []math.Vec3 {
	if divisions < 1 {
		divisions = 1
	}
	points := make([]math.Vec3, divisions+1)
	for i := 0; i <= divisions; i++ {
		angle := 2 * gomath.Pi * float64(i) / float64(divisions)
		points[i] = math.Vec3{
			X: radiusX * float32(gomath.Cos(angle)),
			Y: radiusY * float32(gomath.Sin(angle)),
		}
	}
	return points
}

// PointCloud is a set of colored, sized points.
type PointCloud struct {
	Positions []math.Vec3
	Colors    [][3]float32
	Sizes     []float32
}

// Len returns the number of points.
func (pc *PointCloud) Len() int {
	return len(pc.Positions)
}

// StarFieldOptions configures StarField.
type StarFieldOptions struct {
	Count      int
	Radius     float32 // inner radius of the shell
	Depth      float32 // thickness of the shell
	Factor     float32 // size multiplier
	Saturation float64 // 0 = white stars
}

// StarField scatters stars uniformly over directions inside a spherical
// shell [Radius, Radius+Depth]. Hue sweeps with the star index and
// lightness is fixed at 0.9, so saturation 0 yields uniform pale stars.
func StarField(rng *rand.Rand, opts StarFieldOptions) *PointCloud {
	pc := &PointCloud{
		Positions: make([]math.Vec3, 0, opts.Count),
		Colors:    make([][3]float32, 0, opts.Count),
		Sizes:     make([]float32, 0, opts.Count),
	}
	if opts.Count <= 0 {
		return pc
	}

	r := float64(opts.Radius + opts.Depth)
	increment := float64(opts.Depth) / float64(opts.Count)
	for i := 0; i < opts.Count; i++ {
		r -= increment * rng.Float64()
		phi := gomath.Acos(1 - rng.Float64()*2)
		theta := rng.Float64() * 2 * gomath.Pi

		pc.Positions = append(pc.Positions, math.Vec3{
			X: float32(r * gomath.Sin(phi) * gomath.Sin(theta)),
			Y: float32(r * gomath.Cos(phi)),
			Z: float32(r * gomath.Sin(phi) * gomath.Cos(theta)),
		})

		c := colorful.Hsl(360*float64(i)/float64(opts.Count), opts.Saturation, 0.9)
		pc.Colors = append(pc.Colors, [3]float32{float32(c.R), float32(c.G), float32(c.B)})
		pc.Sizes = append(pc.Sizes, (0.5+0.5*float32(rng.Float64()))*opts.Factor)
	}
	return pc
}
