// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
)

// BlendService defines the use cases of the blend calculator
// This is the primary port that HTTP handlers and the CLI use
type BlendService interface {
	// Queries
	State(ctx context.Context) (StateDTO, error)
	Calculate(ctx context.Context) (Report, error)
	ShoppingList(ctx context.Context) (string, error)
	ProductionSheet(ctx context.Context) (string, error)
	Sizes() []blend.BurgerSize
	Categories() []string

	// Commands
	ReplaceRecipe(ctx context.Context, recipe blend.Recipe) (StateDTO, error)
	SetFatRatio(ctx context.Context, ratio float64) (StateDTO, error)
	SetUnitWeight(ctx context.Context, grams float64) (StateDTO, error)
	SelectSize(ctx context.Context, sizeID string) (StateDTO, error)
	SetUnits(ctx context.Context, units int) (StateDTO, error)
	AddMeat(ctx context.Context) (StateDTO, error)
	UpdateMeat(ctx context.Context, cmd UpdateMeatCommand) (StateDTO, error)
	RemoveMeat(ctx context.Context, index int) (StateDTO, error)
	SetPrice(ctx context.Context, cmd SetPriceCommand) (StateDTO, error)
	SetSellingPrice(ctx context.Context, price float64) (StateDTO, error)
	ApplySuggestion(ctx context.Context, suggestion blend.SuggestedBlend) (StateDTO, error)
	Reset(ctx context.Context) (StateDTO, error)

	// AI operations
	ExtractRecipe(ctx context.Context, image []byte) (StateDTO, error)
	SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error)
}

// UpdateMeatCommand replaces the meat at Index
type UpdateMeatCommand struct {
	Index int
	Meat  blend.MeatComponent
}

// SetPriceCommand sets the per-kilogram price of an ingredient.
// Raw is parsed leniently; a comma decimal separator is accepted.
type SetPriceCommand struct {
	Name string
	Raw  string
}

// StateDTO is the full calculator state as persisted
type StateDTO struct {
	Recipe       blend.Recipe     `json:"recipe"`
	Units        int              `json:"units"`
	Prices       blend.PriceTable `json:"prices"`
	SellingPrice float64          `json:"sellingPrice"`
}

// Report is everything derived from the current state
type Report struct {
	State      StateDTO                `json:"state"`
	Result     blend.CalculationResult `json:"result"`
	Costs      blend.CostBreakdown     `json:"costs"`
	Chart      []blend.ChartSlice      `json:"chart"`
	RatioDrift float64                 `json:"ratioDrift"`
}
