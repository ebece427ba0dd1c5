package material

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCategory is returned for a category without a label or
	// patterns, or with a label used twice.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrOverlappingCategories is returned when one category's pattern can
	// match a name another category also matches.
	ErrOverlappingCategories = errors.New("overlapping categories")
)

// Category maps part names to one texture set.
type Category struct {
	// Label keys the texture set within Sets.
	Label string
	// Stem is the token used in the category's texture file names.
	Stem string
	// Patterns are alternative spellings of the category in authored
	// material names. A name belongs to the category when it contains any
	// of them. Matching is case and accent sensitive.
	Patterns []string
	// Tinted categories take the per-instance tint as their base color.
	Tinted bool
}

// Matches reports whether name contains any of the category's patterns.
func (c Category) Matches(name string) bool {
	for _, p := range c.Patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// Catalog is an ordered list of categories. Classification evaluates the
// list in order and stops at the first match, so a valid catalog keeps
// patterns mutually exclusive.
type Catalog []Category

// Validate checks labels and that no pattern contains another category's
// pattern.
func (c Catalog) Validate() error {
	seen := make(map[string]bool, len(c))
	for _, cat := range c {
		if cat.Label == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidCategory)
		}
		if seen[cat.Label] {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidCategory, cat.Label)
		}
		seen[cat.Label] = true
		if len(cat.Patterns) == 0 {
			return fmt.Errorf("%w: %q has no patterns", ErrInvalidCategory, cat.Label)
		}
		for _, p := range cat.Patterns {
			if p == "" {
				return fmt.Errorf("%w: %q has an empty pattern", ErrInvalidCategory, cat.Label)
			}
		}
	}

	for i, a := range c {
		for _, b := range c[i+1:] {
			for _, pa := range a.Patterns {
				for _, pb := range b.Patterns {
					if strings.Contains(pa, pb) || strings.Contains(pb, pa) {
						return fmt.Errorf("%w: %q (%s) and %q (%s)",
							ErrOverlappingCategories, pa, a.Label, pb, b.Label)
					}
				}
			}
		}
	}
	return nil
}

// Classify returns the first category matching name and the total number of
// categories that match it.
func (c Catalog) Classify(name string) (cat Category, matches int) {
	for _, candidate := range c {
		if !candidate.Matches(name) {
			continue
		}
		if matches == 0 {
			cat = candidate
		}
		matches++
	}
	return cat, matches
}

// Labels returns the category labels in evaluation order.
func (c Catalog) Labels() []string {
	labels := make([]string, len(c))
	for i, cat := range c {
		labels[i] = cat.Label
	}
	return labels
}

// SatelliteCatalog is the category table of the satellite model. The body
// was exported under two encodings of the same name; both belong to one
// category.
func SatelliteCatalog() Catalog {
	return Catalog{
		{Label: "antenna", Stem: "Antenna", Patterns: []string{"Antenna"}},
		{Label: "couro", Stem: "Couro", Patterns: []string{"Couro"}},
		{Label: "pinos", Stem: "Pinos", Patterns: []string{"Pinos"}},
		{Label: "placas", Stem: "Placas", Patterns: []string{"Placas"}},
		{Label: "body", Stem: "Satélite", Patterns: []string{"SatAclite", "Satélite"}, Tinted: true},
	}
}
