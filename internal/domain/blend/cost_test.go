package blend

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func exampleResult() CalculationResult {
	return Compute(Recipe{
		Name:       "Example",
		FatRatio:   0.25,
		Meats:      []MeatComponent{{Name: "A", Ratio: 0.5}, {Name: "B", Ratio: 0.5}},
		UnitWeight: 140,
	}, 30)
}

func TestComputeCosts_WorkedExample(t *testing.T) {
	prices := PriceTable{FatPriceKey: 15, "A": 20, "B": 18}

	costs := ComputeCosts(exampleResult(), prices, 30, 35)

	assert.InDelta(t, 15.75, costs.FatCost, 1e-9)
	assert.InDelta(t, 59.85, costs.MeatsCost, 1e-9)
	assert.InDelta(t, 75.6, costs.Total, 1e-9)
	assert.InDelta(t, 2.52, costs.PerUnit, 1e-9)
	assert.InDelta(t, 32.48, costs.Profit, 1e-9)
	assert.InDelta(t, 92.8, costs.Margin, 1e-9)
}

func TestComputeCosts_AllPricesZero(t *testing.T) {
	costs := ComputeCosts(exampleResult(), PriceTable{}, 30, 35)

	assert.Zero(t, costs.Total)
	assert.Zero(t, costs.PerUnit)
	assert.Equal(t, 35.0, costs.Profit)
	assert.Equal(t, 100.0, costs.Margin)
}

func TestComputeCosts_MissingPriceIsZero(t *testing.T) {
	prices := PriceTable{FatPriceKey: 15, "A": 20}

	costs := ComputeCosts(exampleResult(), prices, 30, 35)

	assert.InDelta(t, 31.5, costs.MeatsCost, 1e-9)
}

func TestComputeCosts_Guards(t *testing.T) {
	tests := []struct {
		name         string
		units        int
		sellingPrice float64
	}{
		{"zero units", 0, 35},
		{"zero selling price", 30, 0},
		{"both zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := exampleResult()
			costs := ComputeCosts(result, PriceTable{FatPriceKey: 15, "A": 20}, tt.units, tt.sellingPrice)

			for _, v := range []float64{costs.Total, costs.PerUnit, costs.Profit, costs.Margin} {
				assert.False(t, math.IsNaN(v))
				assert.False(t, math.IsInf(v, 0))
			}
			if tt.units == 0 {
				assert.Zero(t, costs.PerUnit)
			}
			if tt.sellingPrice == 0 {
				assert.Zero(t, costs.Margin)
			}
		})
	}
}

func TestComputeCosts_NonFinitePriceIsIgnored(t *testing.T) {
	costs := ComputeCosts(exampleResult(), PriceTable{FatPriceKey: math.NaN()}, 30, 35)

	assert.Zero(t, costs.FatCost)
}

func TestParsePrice(t *testing.T) {
	tests := map[string]float64{
		"18,90":    18.90,
		"18.90":    18.90,
		" 42 ":     42,
		"":         0,
		"abc":      0,
		"NaN":      0,
		"-3,5":     -3.5,
		"1e400":    0,
		"18abc":    18,
		"1.234,56": 1.234,
		"R$ 10":    0,
		",5":       0.5,
		"+7.":      7,
		"2e2kg":    200,
		"3e":       3,
	}

	for raw, want := range tests {
		assert.InDelta(t, want, ParsePrice(raw), 1e-9, "raw %q", raw)
	}
}

func TestPriceTable_Price(t *testing.T) {
	var nilTable PriceTable
	assert.Zero(t, nilTable.Price("A"))
	assert.Equal(t, 15.0, DefaultPrices().Price(FatPriceKey))
}
