package blend

// BurgerSize is a preset patty weight.
type BurgerSize struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

var burgerSizes = []BurgerSize{
	{ID: "smash-s", Label: "Ultra Smash", Weight: 60, Description: "Crocante e fino"},
	{ID: "smash-m", Label: "Smash Std", Weight: 80, Description: "O clássico smash"},
	{ID: "smash-l", Label: "Big Smash", Weight: 90, Description: "Smash suculento"},
	{ID: "std-s", Label: "Standard S", Weight: 110, Description: "Ideal para combos"},
	{ID: "std-m", Label: "Standard M", Weight: 130, Description: "Peso comercial"},
	{ID: "std-l", Label: "Standard L", Weight: 140, Description: "Equilíbrio ideal"},
	{ID: "artisan", Label: "Artesanal", Weight: 150, Description: "O mais vendido"},
	{ID: "premium", Label: "Premium", Weight: 180, Description: "Burger de respeito"},
	{ID: "heavy", Label: "Heavy Weight", Weight: 200, Description: "Para grandes fomes"},
	{ID: "monster", Label: "Monster", Weight: 220, Description: "O gigante"},
}

var categories = []string{
	"Clássicos", "Smash", "Premium (Angus/Wagyu)", "Custo-Benefício", "Exóticos",
}

// DefaultCategory is searched when no query is given.
const DefaultCategory = "clássicos"

// BurgerSizes returns the preset patty sizes, smallest first.
func BurgerSizes() []BurgerSize {
	return append([]BurgerSize(nil), burgerSizes...)
}

// SizeByID looks up a preset size.
func SizeByID(id string) (BurgerSize, error) {
	for _, s := range burgerSizes {
		if s.ID == id {
			return s, nil
		}
	}
	return BurgerSize{}, ErrUnknownSize
}

// Categories returns the search categories offered to users.
func Categories() []string {
	return append([]string(nil), categories...)
}
