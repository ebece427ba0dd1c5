package renderer

import (
	"image"
	"testing"

	"github.com/Faultbox/orbitfx/internal/engine/material"
)

type fakeGPU struct {
	next     uint32
	uploaded map[*material.Texture]int
	freed    map[uint32]bool
}

func testCache() (*cache, *fakeGPU) {
	gpu := &fakeGPU{uploaded: make(map[*material.Texture]int), freed: make(map[uint32]bool)}
	c := newCache()
	c.upload = func(t *material.Texture, srgb bool) uint32 {
		gpu.next++
		gpu.uploaded[t]++
		return gpu.next
	}
	c.release = func(id uint32) { gpu.freed[id] = true }
	return c, gpu
}

func testTexture(name string) *material.Texture {
	return &material.Texture{Name: name, Image: image.NewRGBA(image.Rect(0, 0, 1, 1))}
}

// drawFrame binds every map of mats the way drawMesh does.
func drawFrame(c *cache, mats ...*material.Material) {
	c.beginFrame()
	for _, m := range mats {
		if m.NeedsUpdate {
			c.refreshMaterial(m)
		}
		for ch, tex := range m.Maps {
			if tex != nil {
				c.texture(tex, ch == int(material.BaseColor))
			}
		}
	}
	c.endFrame()
}

func TestSharedTexturesUploadOnce(t *testing.T) {
	c, gpu := testCache()

	var set [material.ChannelCount]*material.Texture
	for ch := range set {
		set[ch] = testTexture(material.Channel(ch).String())
	}
	tints := []string{"#FF9933", "#FFFFFF", "#138808"}
	var mats []*material.Material
	for _, hex := range tints {
		m := material.New("SatAclite", material.Standard)
		m.Maps = set
		m.Color = material.MustColor(hex)
		m.MarkDirty()
		mats = append(mats, m)
	}

	drawFrame(c, mats...)
	if c.uploads != len(set) {
		t.Errorf("uploads = %d, want %d", c.uploads, len(set))
	}
	for ch, tex := range set {
		if gpu.uploaded[tex] != 1 {
			t.Errorf("channel %d uploaded %d times", ch, gpu.uploaded[tex])
		}
	}
	if len(gpu.freed) != 0 {
		t.Errorf("refresh released %d shared textures", len(gpu.freed))
	}
	for i, m := range mats {
		if m.NeedsUpdate {
			t.Errorf("material %d still dirty", i)
		}
	}

	drawFrame(c, mats...)
	if c.uploads != 0 || c.refreshes != 0 {
		t.Errorf("steady frame uploads %d refreshes %d", c.uploads, c.refreshes)
	}
}

func TestReplacedTextureReleasedWhenUnused(t *testing.T) {
	c, gpu := testCache()
	old := testTexture("old")
	a := material.New("a", material.Standard)
	b := material.New("b", material.Standard)
	a.Maps[material.Normal] = old
	b.Maps[material.Normal] = old
	drawFrame(c, a, b)
	oldID := c.textures[textureKey{tex: old}].id

	a.Maps[material.Normal] = testTexture("new")
	a.MarkDirty()
	drawFrame(c, a, b)
	if gpu.freed[oldID] {
		t.Fatal("texture still bound by another material was released")
	}

	b.Maps[material.Normal] = nil
	b.MarkDirty()
	drawFrame(c, a, b)
	if !gpu.freed[oldID] {
		t.Error("texture nobody binds should be released at frame end")
	}
	if gpu.uploaded[old] != 1 {
		t.Errorf("old texture uploaded %d times", gpu.uploaded[old])
	}
}
