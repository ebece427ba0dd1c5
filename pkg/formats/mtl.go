// Wavefront MTL material library parser.
package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// MTLMaterial is one "newmtl" block. Only the statements the renderer can
// use are kept.
type MTLMaterial struct {
	Name      string
	Ambient   [3]float32 // Ka
	Diffuse   [3]float32 // Kd
	Specular  [3]float32 // Ks
	Emissive  [3]float32 // Ke
	Shininess float32    // Ns
	Opacity   float32    // d, or 1-Tr
	Illum     int

	DiffuseMap   string // map_Kd
	NormalMap    string // map_Bump, bump, norm
	SpecularMap  string // map_Ks
	RoughnessMap string // map_Pr
	MetallicMap  string // map_Pm
}

// MTL is a parsed material library.
type MTL struct {
	Materials []*MTLMaterial
}

// Find returns the material with the given name, or nil.
func (m *MTL) Find(name string) *MTLMaterial {
	if m == nil {
		return nil
	}
	for _, mat := range m.Materials {
		if mat.Name == name {
			return mat
		}
	}
	return nil
}

// ParseMTL parses MTL text. Unknown statements are ignored.
func ParseMTL(data []byte) (*MTL, error) {
	lib := &MTL{}
	var cur *MTLMaterial

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		keyword, args := fields[0], fields[1:]

		if keyword == "newmtl" {
			if len(args) == 0 {
				return nil, fmt.Errorf("%w: line %d: newmtl without name", ErrInvalidMTL, lineNo)
			}
			cur = &MTLMaterial{Name: strings.Join(args, " "), Diffuse: [3]float32{1, 1, 1}, Opacity: 1}
			lib.Materials = append(lib.Materials, cur)
			continue
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: line %d: %q before newmtl", ErrInvalidMTL, lineNo, keyword)
		}

		var err error
		switch strings.ToLower(keyword) {
		case "ka":
			err = parseRGB(args, &cur.Ambient)
		case "kd":
			err = parseRGB(args, &cur.Diffuse)
		case "ks":
			err = parseRGB(args, &cur.Specular)
		case "ke":
			err = parseRGB(args, &cur.Emissive)
		case "ns":
			cur.Shininess, err = parseScalar(args)
		case "d":
			cur.Opacity, err = parseScalar(args)
		case "tr":
			var tr float32
			tr, err = parseScalar(args)
			cur.Opacity = 1 - tr
		case "illum":
			if len(args) > 0 {
				cur.Illum, err = strconv.Atoi(args[0])
			}
		case "map_kd":
			cur.DiffuseMap = mapPath(args)
		case "map_bump", "bump", "norm":
			cur.NormalMap = mapPath(args)
		case "map_ks":
			cur.SpecularMap = mapPath(args)
		case "map_pr":
			cur.RoughnessMap = mapPath(args)
		case "map_pm":
			cur.MetallicMap = mapPath(args)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrInvalidMTL, lineNo, keyword, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMTL, err)
	}
	return lib, nil
}

func parseRGB(args []string, dst *[3]float32) error {
	v, err := parseFloats(args, 3)
	if err != nil {
		return err
	}
	*dst = [3]float32{v[0], v[1], v[2]}
	return nil
}

func parseScalar(args []string) (float32, error) {
	v, err := parseFloats(args, 1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

// mapPath returns the file name of a map statement, skipping options such
// as "-bm 1.0".
func mapPath(args []string) string {
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			i++ // skip the option value
			continue
		}
		return strings.Join(args[i:], " ")
	}
	return ""
}

// LoadMTL loads an MTL file from disk.
func LoadMTL(path string) (*MTL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading MTL file: %w", err)
	}
	return ParseMTL(data)
}
