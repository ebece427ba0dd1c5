package material

import (
	"errors"
	"image"
	"testing"

	"github.com/Faultbox/orbitfx/internal/engine/geometry"
)

func testModel() *Model {
	mesh := geometry.NewMesh("quad", []geometry.Vertex{{}, {}, {}}, []uint32{0, 1, 2})
	leaf := func(name string) *Part {
		return &Part{Name: name, Mesh: mesh, Material: New(name, Standard)}
	}
	return &Model{
		Name: "satellite",
		Root: &Part{
			Name: "root",
			Children: []*Part{
				leaf("Antenna_mat"),
				leaf("Couro"),
				{Name: "group", Children: []*Part{leaf("Pinos.001"), leaf("Placas")}},
				leaf("SatAclite"),
			},
		},
	}
}

func testSets(catalog Catalog) Sets {
	sets := make(Sets)
	for _, cat := range catalog {
		set := &TextureSet{Category: cat.Label}
		for _, ch := range Channels() {
			set.Maps[ch] = &Texture{Name: cat.Stem + "_" + ch.String(), Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
		}
		sets[cat.Label] = set
	}
	return sets
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		hex     string
		want    Color
		wantErr bool
	}{
		{"#000000", Color{0, 0, 0}, false},
		{"#ffffff", Color{1, 1, 1}, false},
		{"#FFFFFF", Color{1, 1, 1}, false},
		{"#f00", Color{1, 0, 0}, false},
		{"nope", Color{}, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.hex)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v", tt.hex, err)
			continue
		}
		if !tt.wantErr && got.Distance(tt.want) > 1e-4 {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.hex, got, tt.want)
		}
	}

	// sRGB mid gray lands well below 0.5 in linear space.
	mid := MustColor("#808080")
	if mid.R < 0.2 || mid.R > 0.23 {
		t.Errorf("linear #808080 = %v, want ~0.216", mid.R)
	}
}

func TestCatalogValidate(t *testing.T) {
	if err := SatelliteCatalog().Validate(); err != nil {
		t.Fatalf("satellite catalog invalid: %v", err)
	}

	tests := []struct {
		name    string
		catalog Catalog
		want    error
	}{
		{"overlap", Catalog{
			{Label: "a", Patterns: []string{"Plate"}},
			{Label: "b", Patterns: []string{"Plates"}},
		}, ErrOverlappingCategories},
		{"duplicate", Catalog{
			{Label: "a", Patterns: []string{"x"}},
			{Label: "a", Patterns: []string{"y"}},
		}, ErrInvalidCategory},
		{"no patterns", Catalog{{Label: "a"}}, ErrInvalidCategory},
		{"empty pattern", Catalog{{Label: "a", Patterns: []string{""}}}, ErrInvalidCategory},
		{"empty label", Catalog{{Patterns: []string{"x"}}}, ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.catalog.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewCompositorRejectsOverlap(t *testing.T) {
	overlapping := Catalog{
		{Label: "plate", Stem: "Plate", Patterns: []string{"Plate"}},
		{Label: "plates", Stem: "Plates", Patterns: []string{"Plates"}},
	}
	c, err := NewCompositor(overlapping)
	if !errors.Is(err, ErrOverlappingCategories) || c != nil {
		t.Errorf("NewCompositor(overlapping) = %v, %v", c, err)
	}
	if _, err := NewCompositor(Catalog{{Label: "a"}}); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("NewCompositor(no patterns) error = %v", err)
	}
}

func TestCatalogClassify(t *testing.T) {
	cat := SatelliteCatalog()
	tests := []struct {
		name    string
		label   string
		matches int
	}{
		{"Antenna_mat", "antenna", 1},
		{"SatAclite", "body", 1},
		{"Satélite", "body", 1},
		{"Satelite", "", 0},
		{"couro", "", 0}, // case sensitive
		{"Couro_Placas", "couro", 2},
	}
	for _, tt := range tests {
		got, n := cat.Classify(tt.name)
		if got.Label != tt.label || n != tt.matches {
			t.Errorf("Classify(%q) = %q x%d, want %q x%d", tt.name, got.Label, n, tt.label, tt.matches)
		}
	}
}

func TestComposeFullMatch(t *testing.T) {
	catalog := SatelliteCatalog()
	sets := testSets(catalog)
	base := testModel()
	tint := MustColor("#FF9933")

	out, rep, err := Compose(base, sets, &tint, catalog)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if rep.Parts != 5 || rep.Matched != 5 || rep.Fallback != 0 {
		t.Errorf("report = %+v, want 5 matched", rep)
	}

	for _, p := range out.Leaves() {
		m := p.Material
		if m.Shading != Standard {
			t.Errorf("%s: shading %v, want standard", p.Name, m.Shading)
		}
		if m.Version != 1 || !m.NeedsUpdate {
			t.Errorf("%s: version %d needsUpdate %v, want 1 true", p.Name, m.Version, m.NeedsUpdate)
		}
		cat, _ := catalog.Classify(p.Name)
		if m.Maps != sets[cat.Label].Maps {
			t.Errorf("%s: maps not taken from the %s set", p.Name, cat.Label)
		}
		wantColor := White
		if cat.Tinted {
			wantColor = tint
		}
		if m.Color != wantColor {
			t.Errorf("%s: color %v, want %v", p.Name, m.Color, wantColor)
		}
	}
}

func TestComposeEmptySets(t *testing.T) {
	out, rep, err := Compose(testModel(), Sets{}, nil, SatelliteCatalog())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if rep.Fallback != 5 || rep.Matched != 0 {
		t.Errorf("report = %+v, want all fallback", rep)
	}
	for _, p := range out.Leaves() {
		if p.Material.Shading != Unlit || p.Material.Color != Gray(0.8) {
			t.Errorf("%s: got %v %v, want neutral unlit", p.Name, p.Material.Shading, p.Material.Color)
		}
		for ch, tex := range p.Material.Maps {
			if tex != nil {
				t.Errorf("%s: fallback has %v map", p.Name, Channel(ch))
			}
		}
	}
}

func TestComposeUnmatchedDoesNotAbortSiblings(t *testing.T) {
	catalog := SatelliteCatalog()
	base := testModel()
	base.Root.Children = append(base.Root.Children, &Part{
		Name: "Mystery", Mesh: base.Root.Children[0].Mesh, Material: New("Mystery", Standard),
	})

	_, rep, err := Compose(base, testSets(catalog), nil, catalog)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if rep.Matched != 5 || rep.Fallback != 1 || len(rep.Unmatched) != 1 || rep.Unmatched[0] != "Mystery" {
		t.Errorf("report = %+v", rep)
	}
}

func TestComposeLeavesBaseUntouched(t *testing.T) {
	catalog := SatelliteCatalog()
	base := testModel()
	before := base.Leaves()
	materials := make([]Material, len(before))
	for i, p := range before {
		materials[i] = *p.Material
	}

	out, _, err := Compose(base, testSets(catalog), nil, catalog)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	after := out.Leaves()
	for i, p := range base.Leaves() {
		if *p.Material != materials[i] {
			t.Errorf("base part %s material modified", p.Name)
		}
		if after[i] == p || after[i].Material == p.Material {
			t.Errorf("part %s shared with the clone", p.Name)
		}
		if after[i].Mesh != p.Mesh {
			t.Errorf("part %s mesh should be shared", p.Name)
		}
	}
}

func TestComposeNilModel(t *testing.T) {
	if _, _, err := Compose(nil, nil, nil, nil); !errors.Is(err, ErrNilModel) {
		t.Errorf("Compose(nil) error = %v, want ErrNilModel", err)
	}
	c, err := NewCompositor(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Compose(nil, nil, nil); !errors.Is(err, ErrNilModel) {
		t.Errorf("Compositor.Compose(nil) error = %v, want ErrNilModel", err)
	}
}

func TestCompositorMemoizes(t *testing.T) {
	catalog := SatelliteCatalog()
	c, err := NewCompositor(catalog)
	if err != nil {
		t.Fatal(err)
	}
	base := testModel()
	sets := testSets(catalog)
	saffron := MustColor("#FF9933")
	saffronAgain := MustColor("#FF9933")

	first, err := c.Compose(base, sets, &saffron)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	second, _ := c.Compose(base, sets, &saffronAgain)
	if first != second {
		t.Error("same inputs should return the same model")
	}
	if c.Builds() != 1 {
		t.Errorf("Builds() = %d, want 1", c.Builds())
	}

	green := MustColor("#138808")
	if other, _ := c.Compose(base, sets, &green); other == first {
		t.Error("different tint should build a new model")
	}
	if untinted, _ := c.Compose(base, sets, nil); untinted == first {
		t.Error("missing tint should build a new model")
	}

	swapped := testSets(catalog)
	swapped["couro"] = sets["couro"]
	if other, _ := c.Compose(base, swapped, &saffron); other == first {
		t.Error("different set pointers should build a new model")
	}
	if c.Builds() != 4 {
		t.Errorf("Builds() = %d, want 4", c.Builds())
	}

	c.Reset()
	if again, _ := c.Compose(base, sets, &saffron); again == first {
		t.Error("Reset should drop memoized models")
	}
}

func TestChannelString(t *testing.T) {
	if Metallic.String() != "Metallic" || Channel(9).String() != "Unknown" {
		t.Errorf("unexpected channel names %q %q", Metallic, Channel(9))
	}
}
