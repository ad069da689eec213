package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"go.uber.org/zap"
)

// Storage keys of the persisted calculator state
const (
	KeyRecipe       = "burger-master-recipe"
	KeyUnits        = "burger-master-units"
	KeyPrices       = "burger-master-prices"
	KeySellingPrice = "burger-master-selling-price"
)

// Defaults used for absent or unreadable entries
const (
	DefaultUnits        = 30
	DefaultSellingPrice = 35.00
)

// StateKeys lists every key the calculator persists.
var StateKeys = []string{KeyRecipe, KeyUnits, KeyPrices, KeySellingPrice}

// AppState is the complete user-owned state of the calculator. Everything
// else is derived from it on demand.
type AppState struct {
	Recipe       blend.Recipe
	Units        int
	Prices       blend.PriceTable
	SellingPrice float64
}

// DefaultState returns the state of a fresh installation.
func DefaultState() AppState {
	return AppState{
		Recipe:       blend.DefaultRecipe(),
		Units:        DefaultUnits,
		Prices:       blend.DefaultPrices(),
		SellingPrice: DefaultSellingPrice,
	}
}

// Clone returns a deep copy of the state.
func (s AppState) Clone() AppState {
	return AppState{
		Recipe:       s.Recipe.Clone(),
		Units:        s.Units,
		Prices:       s.Prices.Clone(),
		SellingPrice: s.SellingPrice,
	}
}

// LoadState reads the state from store. Each key falls back to its default
// when absent or malformed; only store failures are returned as errors.
func LoadState(ctx context.Context, store outbound.StateStore, log *zap.Logger) (AppState, error) {
	state := DefaultState()

	raw, ok, err := read(ctx, store, KeyRecipe)
	if err != nil {
		return state, err
	}
	if ok {
		var recipe blend.Recipe
		if err := json.Unmarshal([]byte(raw), &recipe); err != nil {
			log.Warn("Ignoring malformed stored recipe", zap.String("key", KeyRecipe), zap.Error(err))
		} else if err := recipe.Validate(); err != nil {
			log.Warn("Ignoring invalid stored recipe", zap.String("key", KeyRecipe), zap.Error(err))
		} else {
			state.Recipe = recipe
		}
	}

	raw, ok, err = read(ctx, store, KeyUnits)
	if err != nil {
		return state, err
	}
	if ok {
		units, err := strconv.Atoi(raw)
		if err != nil || units < 0 {
			log.Warn("Ignoring malformed stored units", zap.String("key", KeyUnits), zap.String("value", raw))
		} else {
			state.Units = units
		}
	}

	raw, ok, err = read(ctx, store, KeyPrices)
	if err != nil {
		return state, err
	}
	if ok {
		var prices blend.PriceTable
		if err := json.Unmarshal([]byte(raw), &prices); err != nil || prices == nil {
			log.Warn("Ignoring malformed stored prices", zap.String("key", KeyPrices), zap.Error(err))
		} else {
			state.Prices = prices
		}
	}

	raw, ok, err = read(ctx, store, KeySellingPrice)
	if err != nil {
		return state, err
	}
	if ok {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
			log.Warn("Ignoring malformed stored selling price", zap.String("key", KeySellingPrice), zap.String("value", raw))
		} else {
			state.SellingPrice = price
		}
	}

	return state, nil
}

// SaveState writes every key of the state to store in one batch, so a
// failed save leaves the previously stored state intact.
func SaveState(ctx context.Context, store outbound.StateStore, state AppState) error {
	recipe, err := json.Marshal(state.Recipe)
	if err != nil {
		return fmt.Errorf("failed to encode recipe: %w", err)
	}
	prices, err := json.Marshal(state.Prices)
	if err != nil {
		return fmt.Errorf("failed to encode prices: %w", err)
	}

	entries := map[string]string{
		KeyRecipe:       string(recipe),
		KeyUnits:        strconv.Itoa(state.Units),
		KeyPrices:       string(prices),
		KeySellingPrice: strconv.FormatFloat(state.SellingPrice, 'f', -1, 64),
	}
	if err := store.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("failed to store state: %w", err)
	}
	return nil
}

// ClearState removes every persisted key in one batch.
func ClearState(ctx context.Context, store outbound.StateStore) error {
	if err := store.DeleteMany(ctx, StateKeys); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

func read(ctx context.Context, store outbound.StateStore, key string) (string, bool, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, blend.ErrStateNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return raw, true, nil
}
