// Wavefront OBJ geometry parser.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrInvalidOBJ = errors.New("invalid OBJ data")
	ErrInvalidMTL = errors.New("invalid MTL data")
)

// OBJCorner indexes one face corner. Indices are zero-based; -1 means the
// attribute is absent.
type OBJCorner struct {
	V, VT, VN int
}

// OBJFace is a convex polygon with three or more corners.
type OBJFace struct {
	Corners []OBJCorner
}

// OBJGroup is a run of faces sharing one object name and material.
type OBJGroup struct {
	Object   string // from "o" or "g"
	Material string // from "usemtl", empty if none
	Faces    []OBJFace
}

// OBJ is a parsed Wavefront OBJ file.
type OBJ struct {
	Positions    [][3]float32
	TexCoords    [][2]float32
	Normals      [][3]float32
	MaterialLibs []string
	Groups       []*OBJGroup
}

// TriangleCount returns the number of triangles after fan triangulation.
func (o *OBJ) TriangleCount() int {
	n := 0
	for _, g := range o.Groups {
		for _, f := range g.Faces {
			n += len(f.Corners) - 2
		}
	}
	return n
}

// ParseOBJ parses OBJ text. Unsupported statements (smoothing groups,
// curves, line elements) are ignored.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	var current *OBJGroup
	object, mtl := "", ""

	group := func() *OBJGroup {
		if current == nil {
			current = &OBJGroup{Object: object, Material: mtl}
			obj.Groups = append(obj.Groups, current)
		}
		return current
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		keyword, args := fields[0], fields[1:]

		switch keyword {
		case "v":
			v, err := parseFloats(args, 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: vertex: %v", ErrInvalidOBJ, lineNo, err)
			}
			obj.Positions = append(obj.Positions, [3]float32{v[0], v[1], v[2]})

		case "vt":
			v, err := parseFloats(args, 2)
			if err != nil {
				// Some exporters write a single component.
				if v1, err1 := parseFloats(args, 1); err1 == nil {
					v = []float32{v1[0], 0}
				} else {
					return nil, fmt.Errorf("%w: line %d: texcoord: %v", ErrInvalidOBJ, lineNo, err)
				}
			}
			obj.TexCoords = append(obj.TexCoords, [2]float32{v[0], v[1]})

		case "vn":
			v, err := parseFloats(args, 3)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: normal: %v", ErrInvalidOBJ, lineNo, err)
			}
			obj.Normals = append(obj.Normals, [3]float32{v[0], v[1], v[2]})

		case "f":
			if len(args) < 3 {
				return nil, fmt.Errorf("%w: line %d: face needs 3 corners, got %d", ErrInvalidOBJ, lineNo, len(args))
			}
			face := OBJFace{Corners: make([]OBJCorner, len(args))}
			for i, a := range args {
				c, err := obj.parseCorner(a)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, lineNo, err)
				}
				face.Corners[i] = c
			}
			g := group()
			g.Faces = append(g.Faces, face)

		case "o", "g":
			object = strings.Join(args, " ")
			current = nil

		case "usemtl":
			mtl = strings.Join(args, " ")
			if current != nil && len(current.Faces) == 0 {
				current.Material = mtl
			} else {
				current = nil
			}

		case "mtllib":
			obj.MaterialLibs = append(obj.MaterialLibs, args...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOBJ, err)
	}

	kept := obj.Groups[:0]
	for _, g := range obj.Groups {
		if len(g.Faces) > 0 {
			kept = append(kept, g)
		}
	}
	obj.Groups = kept
	return obj, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices
// count back from the last element defined so far.
func (o *OBJ) parseCorner(s string) (OBJCorner, error) {
	c := OBJCorner{V: -1, VT: -1, VN: -1}
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return c, fmt.Errorf("bad face corner %q", s)
	}

	var err error
	if c.V, err = resolveIndex(parts[0], len(o.Positions)); err != nil {
		return c, fmt.Errorf("corner %q vertex: %w", s, err)
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.VT, err = resolveIndex(parts[1], len(o.TexCoords)); err != nil {
			return c, fmt.Errorf("corner %q texcoord: %w", s, err)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.VN, err = resolveIndex(parts[2], len(o.Normals)); err != nil {
			return c, fmt.Errorf("corner %q normal: %w", s, err)
		}
	}
	return c, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	default:
		return 0, fmt.Errorf("index %d out of range (have %d)", i, count)
	}
}

func parseFloats(args []string, n int) ([]float32, error) {
	if len(args) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(args[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// LoadOBJ loads an OBJ file from disk.
func LoadOBJ(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}
