package formats

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const cubeOBJ = `# two-material quad pair
mtllib Satellite.mtl
o Satellite
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl SatAclite
f 1/1/1 2/2/1 3/3/1 4/4/1
s off
usemtl Placas_mat
f -4//-1 -3//-1 -2//-1
g antenna
f 1 3 4
`

func TestParseOBJ(t *testing.T) {
	obj, err := ParseOBJ([]byte(cubeOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}

	if len(obj.Positions) != 4 || len(obj.TexCoords) != 4 || len(obj.Normals) != 1 {
		t.Errorf("counts v=%d vt=%d vn=%d", len(obj.Positions), len(obj.TexCoords), len(obj.Normals))
	}
	if len(obj.MaterialLibs) != 1 || obj.MaterialLibs[0] != "Satellite.mtl" {
		t.Errorf("mtllib = %v", obj.MaterialLibs)
	}

	tests := []struct {
		object   string
		material string
		faces    int
	}{
		{"Satellite", "SatAclite", 1},
		{"Satellite", "Placas_mat", 1},
		{"antenna", "Placas_mat", 1}, // material carries over a group change
	}
	if len(obj.Groups) != len(tests) {
		t.Fatalf("got %d groups, want %d", len(obj.Groups), len(tests))
	}
	for i, tt := range tests {
		g := obj.Groups[i]
		if g.Object != tt.object || g.Material != tt.material || len(g.Faces) != tt.faces {
			t.Errorf("group %d = {%q %q %d}, want %+v", i, g.Object, g.Material, len(g.Faces), tt)
		}
	}

	quad := obj.Groups[0].Faces[0]
	if len(quad.Corners) != 4 || quad.Corners[2] != (OBJCorner{V: 2, VT: 2, VN: 0}) {
		t.Errorf("quad corners = %+v", quad.Corners)
	}
	tri := obj.Groups[1].Faces[0]
	if tri.Corners[0] != (OBJCorner{V: 0, VT: -1, VN: 0}) {
		t.Errorf("negative index corner = %+v", tri.Corners[0])
	}
	if bare := obj.Groups[2].Faces[0].Corners[1]; bare != (OBJCorner{V: 2, VT: -1, VN: -1}) {
		t.Errorf("bare corner = %+v", bare)
	}
	if obj.TriangleCount() != 4 {
		t.Errorf("TriangleCount() = %d, want 4", obj.TriangleCount())
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad vertex", "v 1 2\n"},
		{"bad float", "v 1 x 3\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nf 1 2 3\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 0 1 2\n"},
		{"bad corner", "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1/1/1/1 2 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseOBJ([]byte(tt.data)); !errors.Is(err, ErrInvalidOBJ) {
				t.Errorf("expected ErrInvalidOBJ, got %v", err)
			}
		})
	}
}

func TestParseOBJDropsEmptyGroups(t *testing.T) {
	obj, err := ParseOBJ([]byte("o empty\nusemtl a\no full\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"))
	if err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	if len(obj.Groups) != 1 || obj.Groups[0].Object != "full" || obj.Groups[0].Material != "a" {
		t.Errorf("groups = %+v", obj.Groups)
	}
}

const satelliteMTL = `# materials
newmtl SatAclite
Ka 0.1 0.1 0.1
Kd 0.8 0.7 0.6
Ks 0.5 0.5 0.5
Ns 96
d 0.9
illum 2
map_Kd Textures/satellite_Satélite_BaseColor.jpg
map_Bump -bm 1.0 Textures/satellite_Satélite_Normal.jpg

newmtl Placas
Tr 0.25
map_Pr rough.png
map_Pm metal.png
`

func TestParseMTL(t *testing.T) {
	lib, err := ParseMTL([]byte(satelliteMTL))
	if err != nil {
		t.Fatalf("ParseMTL failed: %v", err)
	}
	if len(lib.Materials) != 2 {
		t.Fatalf("got %d materials, want 2", len(lib.Materials))
	}

	body := lib.Find("SatAclite")
	if body == nil {
		t.Fatal("SatAclite not found")
	}
	if body.Diffuse != [3]float32{0.8, 0.7, 0.6} || body.Shininess != 96 || body.Opacity != 0.9 || body.Illum != 2 {
		t.Errorf("body = %+v", body)
	}
	if body.DiffuseMap != "Textures/satellite_Satélite_BaseColor.jpg" {
		t.Errorf("DiffuseMap = %q", body.DiffuseMap)
	}
	if body.NormalMap != "Textures/satellite_Satélite_Normal.jpg" {
		t.Errorf("NormalMap = %q", body.NormalMap)
	}

	plates := lib.Find("Placas")
	if plates.Opacity != 0.75 || plates.Diffuse != [3]float32{1, 1, 1} {
		t.Errorf("plates opacity %v diffuse %v", plates.Opacity, plates.Diffuse)
	}
	if plates.RoughnessMap != "rough.png" || plates.MetallicMap != "metal.png" {
		t.Errorf("plates maps %q %q", plates.RoughnessMap, plates.MetallicMap)
	}
	if lib.Find("missing") != nil {
		t.Error("Find should return nil for unknown names")
	}
}

func TestParseMTLErrors(t *testing.T) {
	for _, data := range []string{"Kd 1 1 1\n", "newmtl\n", "newmtl a\nKd 1 1\n"} {
		if _, err := ParseMTL([]byte(data)); !errors.Is(err, ErrInvalidMTL) {
			t.Errorf("ParseMTL(%q) = %v, want ErrInvalidMTL", data, err)
		}
	}
}

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	if err := os.WriteFile(path, []byte(cubeOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOBJ(path); err != nil {
		t.Errorf("LoadOBJ: %v", err)
	}
	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "missing.obj")); err == nil {
		t.Error("LoadOBJ should fail for a missing file")
	}
	if _, err := LoadMTL(filepath.Join(t.TempDir(), "missing.mtl")); err == nil {
		t.Error("LoadMTL should fail for a missing file")
	}
}
