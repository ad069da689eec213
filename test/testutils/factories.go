// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"github.com/brianvoe/gofakeit/v6"
	"github.com/burgermaster/blendcalc/internal/domain/blend"
)

var cuts = []string{
	"Acém", "Peito", "Costela", "Fraldinha", "Picanha", "Contrafilé",
	"Ponta de Agulha", "Músculo", "Paleta", "Maminha", "Cupim", "Alcatra",
}

var grindMethods = []string{
	"Moído 1x no disco grosso",
	"Moído 2x no disco médio",
	"Moído 2x no disco fino",
}

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// CreateRecipe creates a valid recipe whose meat ratios sum to 1
func (f *RecipeFactory) CreateRecipe() blend.Recipe {
	return blend.Recipe{
		Name:        f.faker.Sentence(3),
		FatRatio:    f.faker.Float64Range(0.1, 0.35),
		Meats:       f.CreateMeats(f.faker.IntRange(1, 4)),
		UnitWeight:  float64(f.faker.IntRange(60, 220)),
		GrindMethod: f.faker.RandomString(grindMethods),
	}
}

// CreateMeats creates n distinct meats whose ratios sum to 1
func (f *RecipeFactory) CreateMeats(n int) []blend.MeatComponent {
	names := append([]string(nil), cuts...)
	f.faker.ShuffleStrings(names)
	if n > len(names) {
		n = len(names)
	}

	weights := make([]float64, n)
	var total float64
	for i := range weights {
		weights[i] = f.faker.Float64Range(1, 10)
		total += weights[i]
	}

	meats := make([]blend.MeatComponent, n)
	remaining := 1.0
	for i := range meats {
		ratio := weights[i] / total
		if i == n-1 {
			ratio = remaining
		}
		remaining -= ratio
		meats[i] = blend.MeatComponent{Name: names[i], Ratio: ratio}
	}
	return meats
}

// CreateSuggestion creates a suggested blend with a citation
func (f *RecipeFactory) CreateSuggestion() blend.SuggestedBlend {
	return blend.SuggestedBlend{
		Name:        f.faker.Company() + " Blend",
		Description: f.faker.Sentence(8),
		FatRatio:    f.faker.Float64Range(0.15, 0.3),
		Meats:       f.CreateMeats(f.faker.IntRange(1, 3)),
		Citations: []blend.Citation{
			{Title: f.faker.Sentence(4), URI: f.faker.URL()},
		},
	}
}

// Units returns a plausible batch size
func (f *RecipeFactory) Units() int {
	return f.faker.IntRange(1, 500)
}

// Prices builds a price table covering the fat and every meat of recipe
func (f *RecipeFactory) Prices(recipe blend.Recipe) blend.PriceTable {
	prices := blend.PriceTable{blend.FatPriceKey: f.faker.Float64Range(5, 20)}
	for _, m := range recipe.Meats {
		prices[m.Name] = f.faker.Float64Range(15, 90)
	}
	return prices
}
