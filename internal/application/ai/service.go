// Package ai provides the application layer for AI operations
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/burgermaster/blendcalc/pkg/circuit"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	operationExtract = "extract_recipe"
	operationSearch  = "search_blends"

	providerCatalog = "catalog"
	providerNone    = "none"

	statusSuccess  = "success"
	statusError    = "error"
	statusFallback = "fallback"
	statusLimited  = "rate_limited"
)

// BlendAIService composes the configured AI provider with the local catalog.
// Credential errors from the provider are returned as is so callers can tell
// a missing key from a rejected one. Other search failures fall back to the
// catalog; extraction has no fallback.
type BlendAIService struct {
	primary  outbound.BlendAI
	provider string
	fallback outbound.BlendSearcher
	limiter  *rate.Limiter
	breaker  *circuit.Breaker
	metrics  outbound.AIMetrics
	logger   *zap.Logger
	now      func() time.Time
}

var _ outbound.BlendAI = (*BlendAIService)(nil)

// Option customises a BlendAIService
type Option func(*BlendAIService)

// WithRequestsPerMinute caps the calls sent to the primary provider.
// A non-positive rate disables the cap.
func WithRequestsPerMinute(perMinute, burst int) Option {
	return func(s *BlendAIService) {
		if perMinute <= 0 {
			s.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), burst)
	}
}

// WithCircuitBreaker stops calling the primary provider after repeated
// outages. Credential errors never trip the breaker.
func WithCircuitBreaker(failures int, cooldown time.Duration) Option {
	return func(s *BlendAIService) {
		if failures <= 0 {
			s.breaker = nil
			return
		}
		s.breaker = circuit.New(s.provider, circuit.Config{
			FailureThreshold: failures,
			Timeout:          cooldown,
			IsFailure: func(err error) bool {
				return !isCredentialError(err) && !errors.Is(err, blend.ErrExtractionFailed)
			},
			OnStateChange: func(name string, from, to circuit.State) {
				s.logger.Warn("AI provider circuit changed state",
					zap.String("provider", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}
}

// NewBlendAIService creates the AI orchestration service. primary may be nil
// when no provider is configured.
func NewBlendAIService(
	primary outbound.BlendAI,
	provider string,
	fallback outbound.BlendSearcher,
	metrics outbound.AIMetrics,
	logger *zap.Logger,
	opts ...Option,
) *BlendAIService {
	if primary == nil || provider == "" {
		provider = providerNone
	}

	s := &BlendAIService{
		primary:  primary,
		provider: provider,
		fallback: fallback,
		metrics:  metrics,
		logger:   logger.Named("ai-service"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info("AI service initialized",
		zap.String("primary_provider", s.provider),
		zap.Bool("catalog_fallback", fallback != nil),
		zap.Bool("rate_limited", s.limiter != nil),
		zap.Bool("circuit_breaker", s.breaker != nil))

	return s
}

// Provider returns the name of the primary provider
func (s *BlendAIService) Provider() string {
	return s.provider
}

// ExtractFromImage reads a recipe card through the primary provider
func (s *BlendAIService) ExtractFromImage(ctx context.Context, image []byte) (blend.Recipe, error) {
	start := s.now()

	if s.primary == nil {
		s.observe(operationExtract, s.provider, statusError, start)
		return blend.Recipe{}, blend.ErrCredentialMissing
	}
	if !s.allow() {
		s.observe(operationExtract, s.provider, statusLimited, start)
		return blend.Recipe{}, blend.ErrQuotaExceeded
	}

	var recipe blend.Recipe
	err := s.call(func() (err error) {
		recipe, err = s.primary.ExtractFromImage(ctx, image)
		return err
	})
	if err != nil {
		s.observe(operationExtract, s.provider, statusError, start)
		if isCredentialError(err) || errors.Is(err, blend.ErrExtractionFailed) || errors.Is(err, circuit.ErrOpen) {
			return blend.Recipe{}, err
		}
		return blend.Recipe{}, fmt.Errorf("%w: %w", blend.ErrExtractionFailed, err)
	}

	s.observe(operationExtract, s.provider, statusSuccess, start)
	s.logger.Info("Recipe extracted",
		zap.String("provider", s.provider),
		zap.String("name", recipe.Name),
		zap.Int("meats", len(recipe.Meats)))

	return recipe, nil
}

// SearchBlends asks the primary provider for blends and falls back to the
// catalog when the provider is absent, throttled or failing.
func (s *BlendAIService) SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error) {
	start := s.now()

	if s.primary == nil {
		return s.searchFallback(ctx, query, start, nil)
	}
	if !s.allow() {
		s.observe(operationSearch, s.provider, statusLimited, start)
		return s.searchFallback(ctx, query, start, blend.ErrQuotaExceeded)
	}

	var blends []blend.SuggestedBlend
	err := s.call(func() (err error) {
		blends, err = s.primary.SearchBlends(ctx, query)
		return err
	})
	if err != nil {
		s.observe(operationSearch, s.provider, statusError, start)
		if isCredentialError(err) {
			return nil, err
		}
		s.logger.Warn("Primary AI provider failed, trying catalog",
			zap.String("primary_provider", s.provider),
			zap.String("query", query),
			zap.Error(err))
		return s.searchFallback(ctx, query, start, err)
	}

	s.observe(operationSearch, s.provider, statusSuccess, start)
	s.logger.Info("Blend search successful",
		zap.String("provider", s.provider),
		zap.String("query", query),
		zap.Int("results", len(blends)))

	return blends, nil
}

func (s *BlendAIService) searchFallback(ctx context.Context, query string, start time.Time, cause error) ([]blend.SuggestedBlend, error) {
	if s.fallback == nil {
		if cause == nil {
			cause = blend.ErrCredentialMissing
		}
		return nil, cause
	}

	blends, err := s.fallback.SearchBlends(ctx, query)
	if err != nil {
		s.observe(operationSearch, providerCatalog, statusError, start)
		return nil, fmt.Errorf("%w: %w", blend.ErrSearchFailed, err)
	}

	s.observe(operationSearch, providerCatalog, statusFallback, start)
	s.logger.Info("Blend search served from catalog",
		zap.String("query", query),
		zap.Int("results", len(blends)))

	return blends, nil
}

// call runs fn through the circuit breaker when one is configured
func (s *BlendAIService) call(fn func() error) error {
	if s.breaker == nil {
		return fn()
	}
	return s.breaker.Execute(fn)
}

func (s *BlendAIService) allow() bool {
	return s.limiter == nil || s.limiter.AllowN(s.now(), 1)
}

func (s *BlendAIService) observe(operation, provider, status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveAIRequest(operation, provider, status, s.now().Sub(start))
}

func isCredentialError(err error) bool {
	return errors.Is(err, blend.ErrCredentialMissing) || errors.Is(err, blend.ErrCredentialInvalid)
}
