package blend_test

import (
	"testing"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RecipeTestSuite covers recipe validation and editing
type RecipeTestSuite struct {
	suite.Suite
	recipe blend.Recipe
}

func (suite *RecipeTestSuite) SetupTest() {
	suite.recipe = blend.DefaultRecipe()
}

func (suite *RecipeTestSuite) TestDefaultRecipe() {
	r := suite.recipe

	assert.Equal(suite.T(), "Alamo Blend Original", r.Name)
	assert.Equal(suite.T(), 0.25, r.FatRatio)
	assert.Equal(suite.T(), 140.0, r.UnitWeight)
	assert.Equal(suite.T(), "Moído 2x no disco médio", r.GrindMethod)
	require.Len(suite.T(), r.Meats, 2)
	assert.Equal(suite.T(), "Peito Limpo", r.Meats[0].Name)
	assert.Equal(suite.T(), "Acém Limpo", r.Meats[1].Name)
	assert.NoError(suite.T(), r.Validate())
	assert.Zero(suite.T(), r.RatioDrift())
}

func (suite *RecipeTestSuite) TestValidate() {
	suite.Run("EmptyName_ShouldFail", func() {
		r := suite.recipe.Clone()
		r.Name = "  "

		err := r.Validate()

		assert.ErrorIs(suite.T(), err, blend.ErrInvalidRecipe)
		assert.ErrorIs(suite.T(), err, blend.ErrRecipeNameRequired)
	})

	suite.Run("FatRatioAboveOne_ShouldFail", func() {
		r := suite.recipe.Clone()
		r.FatRatio = 1.2

		assert.ErrorIs(suite.T(), r.Validate(), blend.ErrFatRatioOutOfRange)
	})

	suite.Run("NegativeUnitWeight_ShouldFail", func() {
		r := suite.recipe.Clone()
		r.UnitWeight = -1

		assert.ErrorIs(suite.T(), r.Validate(), blend.ErrNegativeUnitWeight)
	})

	suite.Run("DuplicateMeat_ShouldFail", func() {
		r := suite.recipe.Clone()
		r.Meats[1].Name = r.Meats[0].Name

		assert.ErrorIs(suite.T(), r.Validate(), blend.ErrDuplicateMeat)
	})

	suite.Run("RatiosNotSummingToOne_ShouldPass", func() {
		r := suite.recipe.Clone()
		r.Meats[0].Ratio = 0.9

		assert.NoError(suite.T(), r.Validate())
		assert.InDelta(suite.T(), 0.4, r.RatioDrift(), 1e-9)
	})
}

func (suite *RecipeTestSuite) TestMeatEditor() {
	suite.Run("AddMeat_ShouldAppendPlaceholder", func() {
		// Act
		out := suite.recipe.AddMeat()

		// Assert
		require.Len(suite.T(), out.Meats, 3)
		assert.Equal(suite.T(), blend.MeatComponent{Name: "Nova Carne", Ratio: 0.1}, out.Meats[2])
		assert.Len(suite.T(), suite.recipe.Meats, 2, "original untouched")
	})

	suite.Run("RemoveMeat_ShouldDropIndex", func() {
		out, err := suite.recipe.RemoveMeat(0)

		require.NoError(suite.T(), err)
		require.Len(suite.T(), out.Meats, 1)
		assert.Equal(suite.T(), "Acém Limpo", out.Meats[0].Name)
		assert.Equal(suite.T(), "Peito Limpo", suite.recipe.Meats[0].Name, "original untouched")
	})

	suite.Run("RemoveMeat_OutOfRange_ShouldFail", func() {
		_, err := suite.recipe.RemoveMeat(5)

		assert.ErrorIs(suite.T(), err, blend.ErrMeatIndexOutOfRange)
	})

	suite.Run("UpdateMeat_ShouldReplace", func() {
		out, err := suite.recipe.UpdateMeat(1, blend.MeatComponent{Name: "Costela", Ratio: 0.5})

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "Costela", out.Meats[1].Name)
		assert.Equal(suite.T(), "Acém Limpo", suite.recipe.Meats[1].Name)
	})

	suite.Run("UpdateMeat_InvalidRatio_ShouldFail", func() {
		_, err := suite.recipe.UpdateMeat(0, blend.MeatComponent{Name: "Costela", Ratio: 2})

		assert.ErrorIs(suite.T(), err, blend.ErrMeatRatioOutOfRange)
	})
}

func (suite *RecipeTestSuite) TestApplySuggestion() {
	s := blend.SuggestedBlend{
		Name:        "Costela Pura",
		Description: "Saboroso e barato.",
		FatRatio:    0.25,
		Meats:       []blend.MeatComponent{{Name: "Costela", Ratio: 1}},
	}

	out := blend.ApplySuggestion(suite.recipe, s)

	assert.Equal(suite.T(), "Costela Pura", out.Name)
	assert.Equal(suite.T(), 0.25, out.FatRatio)
	assert.Equal(suite.T(), s.Meats, out.Meats)
	assert.Equal(suite.T(), suite.recipe.UnitWeight, out.UnitWeight)
	assert.Equal(suite.T(), suite.recipe.GrindMethod, out.GrindMethod)
}

func TestRecipeTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeTestSuite))
}

func TestSizeByID(t *testing.T) {
	size, err := blend.SizeByID("std-l")
	require.NoError(t, err)
	assert.Equal(t, 140.0, size.Weight)

	_, err = blend.SizeByID("xxl")
	assert.ErrorIs(t, err, blend.ErrUnknownSize)

	sizes := blend.BurgerSizes()
	require.Len(t, sizes, 10)
	for i := 1; i < len(sizes); i++ {
		assert.Greater(t, sizes[i].Weight, sizes[i-1].Weight)
	}
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{
		"Clássicos", "Smash", "Premium (Angus/Wagyu)", "Custo-Benefício", "Exóticos",
	}, blend.Categories())
}
