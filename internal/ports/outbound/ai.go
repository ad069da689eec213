package outbound

import (
	"context"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
)

// RecipeExtractor reads a blend recipe from a photographed recipe card
type RecipeExtractor interface {
	ExtractFromImage(ctx context.Context, image []byte) (blend.Recipe, error)
}

// BlendSearcher finds published blends for a category or free-text query
type BlendSearcher interface {
	SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error)
}

// BlendAI is the full AI capability injected into the application
type BlendAI interface {
	RecipeExtractor
	BlendSearcher
}

// AIMetrics records AI collaborator calls
type AIMetrics interface {
	ObserveAIRequest(operation, provider, status string, duration time.Duration)
}

// CalculatorMetrics records calculator activity
type CalculatorMetrics interface {
	RecordStateMutation(operation string, err error)
	RecordBatchWeight(grams float64)
}
