package blend

// Citation is a web source backing a suggested blend.
type Citation struct {
	Title string `json:"title" yaml:"title"`
	URI   string `json:"uri" yaml:"uri"`
}

// SuggestedBlend is a blend proposed by a search collaborator or the
// local catalog.
type SuggestedBlend struct {
	ID          string          `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	FatRatio    float64         `json:"fatRatio" yaml:"fatRatio"`
	Meats       []MeatComponent `json:"meats" yaml:"meats"`
	SourceURL   string          `json:"sourceUrl,omitempty" yaml:"sourceUrl,omitempty"`
	Citations   []Citation      `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// ApplySuggestion adopts the name, fat ratio and meats of a suggestion
// while keeping the recipe's unit weight and grind method.
func ApplySuggestion(recipe Recipe, s SuggestedBlend) Recipe {
	out := recipe.Clone()
	out.Name = s.Name
	out.FatRatio = s.FatRatio
	out.Meats = append([]MeatComponent(nil), s.Meats...)
	return out
}
