// Package calculator provides the application layer of the blend calculator.
// It owns the calculator state and implements the inbound BlendService port.
package calculator

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/inbound"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/burgermaster/blendcalc/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements the blend calculator use cases. The state is loaded
// lazily from the store and written back after every change.
type Service struct {
	store   outbound.StateStore
	ai      outbound.BlendAI
	metrics outbound.CalculatorMetrics
	logger  *zap.Logger

	mu    sync.Mutex
	state *AppState

	now   func() time.Time
	newID func() string
}

// Option customises a Service
type Option func(*Service)

// WithMetrics reports state changes and calculations to m
func WithMetrics(m outbound.CalculatorMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewSheetID returns a short random production sheet identifier
func NewSheetID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

// NewService creates a new calculator service
func NewService(store outbound.StateStore, ai outbound.BlendAI, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		ai:     ai,
		logger: logger.Named("calculator-service"),
		now:    time.Now,
		newID:  NewSheetID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ inbound.BlendService = (*Service)(nil)

// State returns the current calculator state
func (s *Service) State(ctx context.Context) (inbound.StateDTO, error) {
	state, err := s.snapshot(ctx)
	if err != nil {
		return inbound.StateDTO{}, err
	}
	return toDTO(state), nil
}

// Calculate derives weights, costs and chart data from the current state
func (s *Service) Calculate(ctx context.Context) (inbound.Report, error) {
	state, err := s.snapshot(ctx)
	if err != nil {
		return inbound.Report{}, err
	}
	report := BuildReport(state)
	if s.metrics != nil {
		s.metrics.RecordBatchWeight(report.Result.Total)
	}
	return report, nil
}

// BuildReport derives the full report for a state.
func BuildReport(state AppState) inbound.Report {
	result := blend.Compute(state.Recipe, state.Units)
	return inbound.Report{
		State:      toDTO(state),
		Result:     result,
		Costs:      blend.ComputeCosts(result, state.Prices, state.Units, state.SellingPrice),
		Chart:      blend.ChartData(result),
		RatioDrift: state.Recipe.RatioDrift(),
	}
}

// ShoppingList renders the shopping list text for the current state
func (s *Service) ShoppingList(ctx context.Context) (string, error) {
	state, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}
	report := BuildReport(state)
	return RenderShoppingList(state.Recipe, report.Result, report.Costs), nil
}

// ProductionSheet renders the printable production report
func (s *Service) ProductionSheet(ctx context.Context) (string, error) {
	state, err := s.snapshot(ctx)
	if err != nil {
		return "", err
	}
	return RenderProductionSheet(BuildReport(state), SheetOptions{
		ID:       s.newID(),
		IssuedAt: s.now(),
	}), nil
}

// Sizes lists the burger size presets
func (s *Service) Sizes() []blend.BurgerSize {
	return blend.BurgerSizes()
}

// Categories lists the suggestion categories offered for search
func (s *Service) Categories() []string {
	return blend.Categories()
}

// ReplaceRecipe replaces the whole recipe
func (s *Service) ReplaceRecipe(ctx context.Context, recipe blend.Recipe) (inbound.StateDTO, error) {
	if err := recipe.Validate(); err != nil {
		return inbound.StateDTO{}, validationError(err)
	}
	return s.mutate(ctx, "replace_recipe", func(state *AppState) error {
		state.Recipe = recipe.Clone()
		return nil
	})
}

// SetFatRatio changes the fat share of the blend
func (s *Service) SetFatRatio(ctx context.Context, ratio float64) (inbound.StateDTO, error) {
	return s.mutate(ctx, "set_fat_ratio", func(state *AppState) error {
		next := state.Recipe.Clone()
		next.FatRatio = ratio
		if err := next.Validate(); err != nil {
			return validationError(err)
		}
		state.Recipe = next
		return nil
	})
}

// SetUnitWeight changes the patty weight in grams
func (s *Service) SetUnitWeight(ctx context.Context, grams float64) (inbound.StateDTO, error) {
	return s.mutate(ctx, "set_unit_weight", func(state *AppState) error {
		next := state.Recipe.Clone()
		next.UnitWeight = grams
		if err := next.Validate(); err != nil {
			return validationError(err)
		}
		state.Recipe = next
		return nil
	})
}

// SelectSize applies the weight of a preset burger size
func (s *Service) SelectSize(ctx context.Context, sizeID string) (inbound.StateDTO, error) {
	size, err := blend.SizeByID(sizeID)
	if err != nil {
		return inbound.StateDTO{}, errors.NewNotFoundError("Burger size").
			WithMetadata("size_id", sizeID).
			WithCause(err)
	}
	return s.SetUnitWeight(ctx, size.Weight)
}

// SetUnits changes the number of patties to produce
func (s *Service) SetUnits(ctx context.Context, units int) (inbound.StateDTO, error) {
	if units < 0 {
		return inbound.StateDTO{}, validationError(blend.ErrNegativeUnits)
	}
	return s.mutate(ctx, "set_units", func(state *AppState) error {
		state.Units = units
		return nil
	})
}

// AddMeat appends a placeholder meat to the recipe
func (s *Service) AddMeat(ctx context.Context) (inbound.StateDTO, error) {
	return s.mutate(ctx, "add_meat", func(state *AppState) error {
		state.Recipe = state.Recipe.AddMeat()
		return nil
	})
}

// UpdateMeat replaces one meat of the recipe
func (s *Service) UpdateMeat(ctx context.Context, cmd inbound.UpdateMeatCommand) (inbound.StateDTO, error) {
	return s.mutate(ctx, "update_meat", func(state *AppState) error {
		next, err := state.Recipe.UpdateMeat(cmd.Index, cmd.Meat)
		if err != nil {
			return meatError(err, cmd.Index)
		}
		if err := next.Validate(); err != nil {
			return validationError(err)
		}
		state.Recipe = next
		return nil
	})
}

// RemoveMeat removes one meat from the recipe
func (s *Service) RemoveMeat(ctx context.Context, index int) (inbound.StateDTO, error) {
	return s.mutate(ctx, "remove_meat", func(state *AppState) error {
		next, err := state.Recipe.RemoveMeat(index)
		if err != nil {
			return meatError(err, index)
		}
		state.Recipe = next
		return nil
	})
}

// SetPrice sets the price per kilogram of one ingredient
func (s *Service) SetPrice(ctx context.Context, cmd inbound.SetPriceCommand) (inbound.StateDTO, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return inbound.StateDTO{}, errors.NewValidationError("ingredient name is required")
	}
	price := blend.ParsePrice(cmd.Raw)
	if price < 0 {
		return inbound.StateDTO{}, validationError(blend.ErrNegativePrice)
	}
	return s.mutate(ctx, "set_price", func(state *AppState) error {
		state.Prices[cmd.Name] = price
		return nil
	})
}

// SetSellingPrice sets the selling price of one burger
func (s *Service) SetSellingPrice(ctx context.Context, price float64) (inbound.StateDTO, error) {
	if price < 0 {
		return inbound.StateDTO{}, validationError(blend.ErrNegativePrice)
	}
	return s.mutate(ctx, "set_selling_price", func(state *AppState) error {
		state.SellingPrice = price
		return nil
	})
}

// ApplySuggestion adopts a suggested blend, keeping unit weight and grind method
func (s *Service) ApplySuggestion(ctx context.Context, suggestion blend.SuggestedBlend) (inbound.StateDTO, error) {
	return s.mutate(ctx, "apply_suggestion", func(state *AppState) error {
		next := blend.ApplySuggestion(state.Recipe, suggestion)
		if err := next.Validate(); err != nil {
			return validationError(err)
		}
		state.Recipe = next
		return nil
	})
}

// Reset restores the defaults and clears the store
func (s *Service) Reset(ctx context.Context) (inbound.StateDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ClearState(ctx, s.store); err != nil {
		return inbound.StateDTO{}, errors.NewStorageError("clear state", err)
	}
	state := DefaultState()
	s.state = &state

	s.logger.Info("Calculator state reset to defaults")
	return toDTO(state), nil
}

// ExtractRecipe reads a recipe from an image and makes it the current
// recipe. On failure the current state is left untouched.
func (s *Service) ExtractRecipe(ctx context.Context, image []byte) (inbound.StateDTO, error) {
	if len(image) == 0 {
		return inbound.StateDTO{}, errors.NewValidationError("image is required")
	}

	extracted, err := s.ai.ExtractFromImage(ctx, image)
	if err != nil {
		s.logger.Warn("Recipe extraction failed", zap.Error(err))
		return inbound.StateDTO{}, aiError(err)
	}

	return s.mutate(ctx, "extract_recipe", func(state *AppState) error {
		// Cards often omit the patty weight or grind; keep ours then.
		if extracted.UnitWeight <= 0 {
			extracted.UnitWeight = state.Recipe.UnitWeight
		}
		if strings.TrimSpace(extracted.GrindMethod) == "" {
			extracted.GrindMethod = state.Recipe.GrindMethod
		}
		if err := extracted.Validate(); err != nil {
			return errors.NewExtractionFailedError(fmt.Errorf("%w: %w", blend.ErrExtractionFailed, err))
		}
		state.Recipe = extracted
		return nil
	})
}

// SearchBlends looks up suggested blends for a category or query
func (s *Service) SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = blend.DefaultCategory
	}

	blends, err := s.ai.SearchBlends(ctx, query)
	if err != nil {
		return nil, aiError(err)
	}
	if blends == nil {
		blends = []blend.SuggestedBlend{}
	}
	return blends, nil
}

func (s *Service) snapshot(ctx context.Context) (AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.current(ctx)
	if err != nil {
		return AppState{}, err
	}
	return state.Clone(), nil
}

// current returns the loaded state. Callers hold s.mu.
func (s *Service) current(ctx context.Context) (AppState, error) {
	if s.state != nil {
		return *s.state, nil
	}

	state, err := LoadState(ctx, s.store, s.logger)
	if err != nil {
		s.logger.Error("Failed to load calculator state", zap.Error(err))
		return AppState{}, errors.NewStorageError("load state", err)
	}
	s.state = &state
	return state, nil
}

func (s *Service) mutate(ctx context.Context, operation string, apply func(*AppState) error) (dto inbound.StateDTO, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metrics != nil {
		defer func() { s.metrics.RecordStateMutation(operation, err) }()
	}

	current, err := s.current(ctx)
	if err != nil {
		return inbound.StateDTO{}, err
	}

	next := current.Clone()
	if err := apply(&next); err != nil {
		return inbound.StateDTO{}, err
	}

	if err := SaveState(ctx, s.store, next); err != nil {
		s.logger.Error("Failed to save calculator state",
			zap.String("operation", operation),
			zap.Error(err),
		)
		return inbound.StateDTO{}, errors.NewStorageError("save state", err)
	}
	s.state = &next

	s.logger.Debug("Calculator state updated", zap.String("operation", operation))
	return toDTO(next), nil
}

func toDTO(state AppState) inbound.StateDTO {
	return inbound.StateDTO{
		Recipe:       state.Recipe.Clone(),
		Units:        state.Units,
		Prices:       state.Prices.Clone(),
		SellingPrice: state.SellingPrice,
	}
}

func validationError(err error) error {
	return errors.NewValidationError(err.Error()).WithCause(err)
}

func meatError(err error, index int) error {
	if stderrors.Is(err, blend.ErrMeatIndexOutOfRange) {
		return errors.NewNotFoundError("Meat").WithMetadata("index", index).WithCause(err)
	}
	return validationError(err)
}

func aiError(err error) error {
	switch {
	case stderrors.Is(err, blend.ErrCredentialMissing):
		return errors.NewCredentialMissingError(err)
	case stderrors.Is(err, blend.ErrCredentialInvalid):
		return errors.NewCredentialInvalidError(err)
	case stderrors.Is(err, blend.ErrQuotaExceeded):
		return errors.NewTooManyRequestsError().WithCause(err)
	case stderrors.Is(err, blend.ErrExtractionFailed):
		return errors.NewExtractionFailedError(err)
	default:
		return errors.NewExternalServiceError("AI provider", err)
	}
}
