package material

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/orbitfx/internal/logger"
)

// ErrNilModel is returned when composing without a base model.
var ErrNilModel = errors.New("nil base model")

// Report summarizes one composition.
type Report struct {
	Parts     int // leaf parts visited
	Matched   int // leaves given a texture set
	Fallback  int // leaves given the neutral material
	Ambiguous int // leaves whose name matched more than one category
	Unmatched []string
}

// Compose builds a new model from base with every leaf part's material
// assembled from the texture set of its category.
//
// The part tree is copied. Meshes and textures are shared with base and the
// sets, which are never modified. A leaf whose name matches no category, or
// whose category has no entry in sets, gets the neutral unlit material;
// its siblings are unaffected. When tint is non-nil it becomes the base
// color of tinted categories only. Every composed leaf material is marked
// dirty exactly once.
func Compose(base *Model, sets Sets, tint *Color, catalog Catalog) (*Model, Report, error) {
	var rep Report
	if base == nil || base.Root == nil {
		return nil, rep, ErrNilModel
	}

	out := base.Clone()
	out.Root.Walk(func(p *Part) {
		if !p.IsLeaf() {
			return
		}
		rep.Parts++

		name := p.Name
		if p.Material != nil && p.Material.Name != "" {
			name = p.Material.Name
		}

		cat, matches := catalog.Classify(name)
		if matches > 1 {
			rep.Ambiguous++
		}
		set := sets[cat.Label]
		if matches == 0 || set == nil {
			p.Material = Fallback(name)
			p.Material.MarkDirty()
			rep.Fallback++
			rep.Unmatched = append(rep.Unmatched, name)
			return
		}

		m := New(name, Standard)
		m.Maps = set.Maps
		if cat.Tinted && tint != nil {
			m.Color = *tint
		}
		m.MarkDirty()
		p.Material = m
		rep.Matched++
	})
	return out, rep, nil
}

// Compositor memoizes Compose over the identity of its inputs: the base
// model pointer, the texture-set pointer of every catalog label, and the
// tint value. It is safe for concurrent use.
type Compositor struct {
	catalog Catalog

	mu     sync.Mutex
	cache  map[composeKey]*Model
	builds int
}

type composeKey struct {
	base   *Model
	sets   string
	tinted bool
	tint   Color
}

// NewCompositor returns a compositor for the catalog. A catalog whose
// categories could claim the same part is refused.
func NewCompositor(catalog Catalog) (*Compositor, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &Compositor{
		catalog: catalog,
		cache:   make(map[composeKey]*Model),
	}, nil
}

// Catalog returns the catalog the compositor classifies with.
func (c *Compositor) Catalog() Catalog {
	return c.catalog
}

// Compose returns the composed model for the inputs, building it on the
// first call and returning the same pointer afterwards.
func (c *Compositor) Compose(base *Model, sets Sets, tint *Color) (*Model, error) {
	if base == nil {
		return nil, ErrNilModel
	}
	key := composeKey{base: base, sets: c.setsKey(sets)}
	if tint != nil {
		key.tinted, key.tint = true, *tint
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.cache[key]; ok {
		return m, nil
	}

	m, rep, err := Compose(base, sets, tint, c.catalog)
	if err != nil {
		return nil, err
	}
	c.builds++
	c.cache[key] = m

	log := logger.Named("material")
	log.Debug("composed model",
		zap.String("model", base.Name),
		zap.Stringer("tint", key.tint),
		zap.Int("parts", rep.Parts),
		zap.Int("matched", rep.Matched),
		zap.Int("fallback", rep.Fallback))
	if rep.Ambiguous > 0 {
		log.Warn("part names matched several categories, used the first",
			zap.String("model", base.Name), zap.Int("parts", rep.Ambiguous))
	}
	if rep.Fallback > 0 {
		log.Warn("parts without texture set use the neutral material",
			zap.String("model", base.Name), zap.Strings("parts", rep.Unmatched))
	}
	return m, nil
}

// Builds returns how many models have been assembled so far.
func (c *Compositor) Builds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.builds
}

// Reset drops every memoized model.
func (c *Compositor) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[composeKey]*Model)
}

func (c *Compositor) setsKey(sets Sets) string {
	var b strings.Builder
	for _, label := range c.catalog.Labels() {
		fmt.Fprintf(&b, "%s=%p;", label, sets[label])
	}
	return b.String()
}
