// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockStateStore provides a mock implementation of StateStore
type MockStateStore struct {
	mock.Mock
}

var _ outbound.StateStore = (*MockStateStore)(nil)

// Get returns the stored value
func (m *MockStateStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// Set stores a value
func (m *MockStateStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// SetMany stores several values at once
func (m *MockStateStore) SetMany(ctx context.Context, entries map[string]string) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// Delete removes a value
func (m *MockStateStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// DeleteMany removes several values at once
func (m *MockStateStore) DeleteMany(ctx context.Context, keys []string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

// MockBlendAI provides a mock implementation of the AI capability
type MockBlendAI struct {
	mock.Mock
}

var _ outbound.BlendAI = (*MockBlendAI)(nil)

// ExtractFromImage mocks recipe extraction
func (m *MockBlendAI) ExtractFromImage(ctx context.Context, image []byte) (blend.Recipe, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(blend.Recipe), args.Error(1)
}

// SearchBlends mocks blend search
func (m *MockBlendAI) SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blend.SuggestedBlend), args.Error(1)
}

// MockBlendSearcher provides a mock implementation of BlendSearcher
type MockBlendSearcher struct {
	mock.Mock
}

var _ outbound.BlendSearcher = (*MockBlendSearcher)(nil)

// SearchBlends mocks blend search
func (m *MockBlendSearcher) SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]blend.SuggestedBlend), args.Error(1)
}

// MockAIMetrics records AI metric observations
type MockAIMetrics struct {
	mock.Mock
}

var _ outbound.AIMetrics = (*MockAIMetrics)(nil)

// ObserveAIRequest records one observation
func (m *MockAIMetrics) ObserveAIRequest(operation, provider, status string, duration time.Duration) {
	m.Called(operation, provider, status, duration)
}

// MockCalculatorMetrics records calculator metric observations
type MockCalculatorMetrics struct {
	mock.Mock
}

var _ outbound.CalculatorMetrics = (*MockCalculatorMetrics)(nil)

// RecordStateMutation records one state change
func (m *MockCalculatorMetrics) RecordStateMutation(operation string, err error) {
	m.Called(operation, err)
}

// RecordBatchWeight records one calculation
func (m *MockCalculatorMetrics) RecordBatchWeight(grams float64) {
	m.Called(grams)
}
