package blend

import (
	"fmt"
	"math"
	"strings"
)

// FatPriceKey is the reserved price table key for added animal fat.
const FatPriceKey = "Gordura Animal"

// NewMeatName is the placeholder name given to meats added by the editor.
const NewMeatName = "Nova Carne"

// newMeatRatio is the starting ratio of a freshly added meat.
const newMeatRatio = 0.1

// MeatComponent is one lean cut in a blend. Ratio is relative to the
// non-fat portion only.
type MeatComponent struct {
	Name  string  `json:"name" yaml:"name"`
	Ratio float64 `json:"ratio" yaml:"ratio"`
}

// Validate validates the meat component
func (m MeatComponent) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMeatNameRequired
	}
	if m.Ratio < 0 || m.Ratio > 1 || math.IsNaN(m.Ratio) {
		return ErrMeatRatioOutOfRange
	}
	return nil
}

// Recipe describes a burger blend: how much fat, which cuts in which
// proportion, and the weight of a single patty in grams.
type Recipe struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	FatRatio    float64         `json:"fatRatio"`
	Meats       []MeatComponent `json:"meats"`
	UnitWeight  float64         `json:"unitWeight"`
	GrindMethod string          `json:"grindMethod"`
}

// DefaultRecipe returns the blend a fresh installation starts with.
func DefaultRecipe() Recipe {
	return Recipe{
		Name:     "Alamo Blend Original",
		FatRatio: 0.25,
		Meats: []MeatComponent{
			{Name: "Peito Limpo", Ratio: 0.5},
			{Name: "Acém Limpo", Ratio: 0.5},
		},
		UnitWeight:  140,
		GrindMethod: "Moído 2x no disco médio",
	}
}

// Validate checks the structural rules of a recipe. Meat ratios are not
// required to sum to 1; see RatioDrift.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrRecipeNameRequired)
	}
	if r.FatRatio < 0 || r.FatRatio > 1 || math.IsNaN(r.FatRatio) {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrFatRatioOutOfRange)
	}
	if r.UnitWeight < 0 || math.IsNaN(r.UnitWeight) {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrNegativeUnitWeight)
	}

	seen := make(map[string]struct{}, len(r.Meats))
	for i, m := range r.Meats {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: meat %d: %w", ErrInvalidRecipe, i, err)
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("%w: %q: %w", ErrInvalidRecipe, m.Name, ErrDuplicateMeat)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	out := r
	out.Meats = append([]MeatComponent(nil), r.Meats...)
	return out
}

// MeatRatioSum returns the sum of all meat ratios.
func (r Recipe) MeatRatioSum() float64 {
	var sum float64
	for _, m := range r.Meats {
		sum += m.Ratio
	}
	return sum
}

// RatioDrift reports how far the meat ratios are from summing to 1.
// Compute never corrects this; callers may surface it as a warning.
func (r Recipe) RatioDrift() float64 {
	if len(r.Meats) == 0 {
		return 0
	}
	return r.MeatRatioSum() - 1
}

// AddMeat returns a copy of the recipe with a placeholder meat appended.
func (r Recipe) AddMeat() Recipe {
	out := r.Clone()
	out.Meats = append(out.Meats, MeatComponent{Name: NewMeatName, Ratio: newMeatRatio})
	return out
}

// RemoveMeat returns a copy of the recipe without the meat at index.
func (r Recipe) RemoveMeat(index int) (Recipe, error) {
	if index < 0 || index >= len(r.Meats) {
		return r, ErrMeatIndexOutOfRange
	}
	out := r.Clone()
	out.Meats = append(out.Meats[:index], out.Meats[index+1:]...)
	return out, nil
}

// UpdateMeat returns a copy of the recipe with the meat at index replaced.
func (r Recipe) UpdateMeat(index int, meat MeatComponent) (Recipe, error) {
	if index < 0 || index >= len(r.Meats) {
		return r, ErrMeatIndexOutOfRange
	}
	if err := meat.Validate(); err != nil {
		return r, err
	}
	out := r.Clone()
	out.Meats[index] = meat
	return out, nil
}
