package blend_test

import (
	"math"
	"testing"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoMeatRecipe() blend.Recipe {
	return blend.Recipe{
		Name:     "Test Blend",
		FatRatio: 0.25,
		Meats: []blend.MeatComponent{
			{Name: "A", Ratio: 0.5},
			{Name: "B", Ratio: 0.5},
		},
		UnitWeight: 140,
	}
}

func TestCompute_WorkedExample(t *testing.T) {
	result := blend.Compute(twoMeatRecipe(), 30)

	assert.Equal(t, 4200.0, result.Total)
	assert.Equal(t, 1050.0, result.Fat)
	assert.Equal(t, 30, result.Units)
	require.Len(t, result.Meats, 2)
	for _, m := range result.Meats {
		assert.Equal(t, 1575.0, m.Weight)
		assert.InDelta(t, 0.375, m.RatioInTotal, 1e-9)
	}
	assert.Equal(t, "A", result.Meats[0].Name)
	assert.Equal(t, "B", result.Meats[1].Name)
}

func TestCompute_ZeroUnits(t *testing.T) {
	result := blend.Compute(twoMeatRecipe(), 0)

	assert.Zero(t, result.Total)
	assert.Zero(t, result.Fat)
	for _, m := range result.Meats {
		assert.Zero(t, m.Weight)
		assert.Zero(t, m.RatioInTotal)
		assert.False(t, math.IsNaN(m.RatioInTotal))
	}
}

func TestCompute_ZeroUnitWeight(t *testing.T) {
	recipe := twoMeatRecipe()
	recipe.UnitWeight = 0

	result := blend.Compute(recipe, 30)

	assert.Zero(t, result.Total)
	for _, m := range result.Meats {
		assert.Zero(t, m.Weight)
		assert.False(t, math.IsNaN(m.RatioInTotal))
	}
}

func TestCompute_DoesNotNormalizeMeatRatios(t *testing.T) {
	recipe := twoMeatRecipe()
	recipe.Meats[1].Ratio = 0.25

	result := blend.Compute(recipe, 30)

	var meats float64
	for _, m := range result.Meats {
		meats += m.Weight
	}
	assert.Equal(t, 4200.0, result.Total, "total stays nominal")
	assert.InDelta(t, 3150*0.75, meats, 1e-9)
	assert.InDelta(t, -0.25, recipe.RatioDrift(), 1e-9)
}

func TestCompute_PartsSumToTotalWhenRatiosSumToOne(t *testing.T) {
	factory := testutils.NewRecipeFactory(time.Now().UnixNano())

	for i := 0; i < 50; i++ {
		recipe := factory.CreateRecipe()
		units := factory.Units()

		result := blend.Compute(recipe, units)

		sum := result.Fat
		for _, m := range result.Meats {
			sum += m.Weight
		}
		assert.InDelta(t, result.Total, sum, 1e-6, "recipe %+v units %d", recipe, units)
	}
}

func TestChartData(t *testing.T) {
	recipe := twoMeatRecipe()
	recipe.Meats = append(recipe.Meats, blend.MeatComponent{Name: "C", Ratio: 0})

	slices := blend.ChartData(blend.Compute(recipe, 30))

	require.Len(t, slices, 4)
	assert.Equal(t, blend.ChartSlice{Name: "Gordura", Value: 1050, Color: "#FACC15"}, slices[0])
	assert.Equal(t, "#EF4444", slices[1].Color)
	assert.Equal(t, "#BE123C", slices[2].Color)
	assert.Equal(t, "#EF4444", slices[3].Color)
	assert.Equal(t, 1575.0, slices[1].Value)
}
