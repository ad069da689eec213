// Package catalog provides the local reference catalog of burger blends.
// It answers blend searches without any network access.
package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed blends.yaml
var defaultCatalog []byte

// blendNamespace seeds the deterministic IDs of catalog blends
var blendNamespace = uuid.MustParse("5b0e3a8c-4f0b-4c53-9a55-2f1f1f0c6d11")

// Category groups blends under a searchable heading
type Category struct {
	Name   string                 `yaml:"name"`
	Blends []blend.SuggestedBlend `yaml:"blends"`
}

type file struct {
	Categories []Category `yaml:"categories"`
}

// Catalog is an immutable, searchable set of reference blends
type Catalog struct {
	categories []Category
}

var _ outbound.BlendSearcher = (*Catalog)(nil)

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// LoadFile reads a catalog from a YAML file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	var errs []string
	for ci := range f.Categories {
		c := &f.Categories[ci]
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Sprintf("category %d: name is required", ci))
		}
		for bi := range c.Blends {
			b := &c.Blends[bi]
			r := blend.Recipe{Name: b.Name, FatRatio: b.FatRatio, Meats: b.Meats}
			if err := r.Validate(); err != nil {
				errs = append(errs, fmt.Sprintf("%s/%s: %v", c.Name, b.Name, err))
			}
			if b.ID == "" {
				b.ID = uuid.NewSHA1(blendNamespace, []byte(c.Name+"/"+b.Name)).String()
			}
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %s", strings.Join(errs, "; "))
	}

	return &Catalog{categories: f.Categories}, nil
}

// Categories returns the category names in file order
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		names = append(names, cat.Name)
	}
	return names
}

// SearchBlends returns the blends of the category matching query, or
// failing that the blends whose name or description mention it. Matching
// ignores case and accents. An unknown query yields an empty list.
func (c *Catalog) SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error) {
	q := fold(query)
	if q == "" {
		return []blend.SuggestedBlend{}, nil
	}

	for _, cat := range c.categories {
		if fold(cat.Name) == q {
			return copyBlends(cat.Blends), nil
		}
	}
	for _, cat := range c.categories {
		if strings.Contains(fold(cat.Name), q) {
			return copyBlends(cat.Blends), nil
		}
	}

	matches := []blend.SuggestedBlend{}
	for _, cat := range c.categories {
		for _, b := range cat.Blends {
			if strings.Contains(fold(b.Name), q) || strings.Contains(fold(b.Description), q) {
				matches = append(matches, copyBlend(b))
			}
		}
	}
	return matches, nil
}

func copyBlends(in []blend.SuggestedBlend) []blend.SuggestedBlend {
	out := make([]blend.SuggestedBlend, len(in))
	for i, b := range in {
		out[i] = copyBlend(b)
	}
	return out
}

func copyBlend(b blend.SuggestedBlend) blend.SuggestedBlend {
	b.Meats = append([]blend.MeatComponent(nil), b.Meats...)
	b.Citations = append([]blend.Citation(nil), b.Citations...)
	return b
}

// fold lowercases s and strips diacritics
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
