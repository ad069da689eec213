package blend

// MeatWeight is the computed amount of one meat for a batch.
type MeatWeight struct {
	Name         string  `json:"name"`
	Weight       float64 `json:"weight"`
	RatioInTotal float64 `json:"ratioInTotal"`
}

// CalculationResult holds the ingredient weights, in grams, for a batch.
// Total is the nominal batch weight, not the sum of the parts.
type CalculationResult struct {
	Fat   float64      `json:"fat"`
	Meats []MeatWeight `json:"meats"`
	Total float64      `json:"total"`
	Units int          `json:"units"`
}

// Compute derives per-ingredient weights for targetUnits patties of the
// recipe. Meat ratios are applied as given, without normalization.
func Compute(recipe Recipe, targetUnits int) CalculationResult {
	targetWeight := float64(targetUnits) * recipe.UnitWeight
	fat := targetWeight * recipe.FatRatio
	remaining := targetWeight - fat

	meats := make([]MeatWeight, 0, len(recipe.Meats))
	for _, m := range recipe.Meats {
		weight := remaining * m.Ratio
		var inTotal float64
		if targetWeight != 0 {
			inTotal = weight / targetWeight
		}
		meats = append(meats, MeatWeight{
			Name:         m.Name,
			Weight:       weight,
			RatioInTotal: inTotal,
		})
	}

	return CalculationResult{
		Fat:   fat,
		Meats: meats,
		Total: targetWeight,
		Units: targetUnits,
	}
}

// ChartSlice is one wedge of the composition chart.
type ChartSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

const (
	fatColor     = "#FACC15"
	meatColor    = "#EF4444"
	meatAltColor = "#BE123C"
)

// ChartData returns the fat slice followed by one slice per meat, with
// meat colors alternating.
func ChartData(result CalculationResult) []ChartSlice {
	slices := make([]ChartSlice, 0, len(result.Meats)+1)
	slices = append(slices, ChartSlice{Name: "Gordura", Value: result.Fat, Color: fatColor})
	for i, m := range result.Meats {
		color := meatColor
		if i%2 == 1 {
			color = meatAltColor
		}
		slices = append(slices, ChartSlice{Name: m.Name, Value: m.Weight, Color: color})
	}
	return slices
}
