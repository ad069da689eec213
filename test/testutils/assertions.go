// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BlendAssertions provides blend-specific assertion methods
type BlendAssertions struct {
	t *testing.T
}

// NewBlendAssertions creates a new blend assertions helper
func NewBlendAssertions(t *testing.T) *BlendAssertions {
	return &BlendAssertions{t: t}
}

// ValidRecipe asserts that a recipe passes domain validation
func (ba *BlendAssertions) ValidRecipe(recipe blend.Recipe, msgAndArgs ...interface{}) {
	assert.NoError(ba.t, recipe.Validate(), msgAndArgs...)
}

// MassConserved asserts that fat plus meats add up to the batch weight when
// the recipe's meat ratios sum to one
func (ba *BlendAssertions) MassConserved(result blend.CalculationResult, recipe blend.Recipe, units int) {
	target := float64(units) * recipe.UnitWeight
	sum := result.Fat
	for _, m := range result.Meats {
		sum += m.Weight
	}
	tolerance := 1e-9 * math.Max(1, target)
	assert.InDelta(ba.t, target, sum, tolerance, "fat plus meats should equal the batch weight")
	assert.Equal(ba.t, target, result.Total)
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// Envelope mirrors the API response envelope
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// EnvelopeError mirrors the error body of a failed API response
type EnvelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(resp *http.Response, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, resp.StatusCode, msgAndArgs...)
}

// JSONResponse asserts that the response is a successful envelope and
// decodes its data into target
func (ha *HTTPAssertions) JSONResponse(resp *http.Response, target interface{}) {
	env := ha.envelope(resp)
	require.True(ha.t, env.Success, "Response should be successful, got %+v", env.Error)
	if target != nil {
		require.NoError(ha.t, json.Unmarshal(env.Data, target), "Response data should decode")
	}
}

// ErrorResponse asserts that the response is a failed envelope with code
func (ha *HTTPAssertions) ErrorResponse(resp *http.Response, expectedCode string) *EnvelopeError {
	env := ha.envelope(resp)
	assert.False(ha.t, env.Success, "Response should not be successful")
	require.NotNil(ha.t, env.Error, "Response should contain error field")
	assert.Equal(ha.t, expectedCode, env.Error.Code)
	return env.Error
}

func (ha *HTTPAssertions) envelope(resp *http.Response) Envelope {
	require.NotNil(ha.t, resp, "Response should not be nil")

	contentType := resp.Header.Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	var env Envelope
	require.NoError(ha.t, json.NewDecoder(resp.Body).Decode(&env), "Response should be valid JSON")
	return env
}

// Header asserts that a header exists with expected value
func (ha *HTTPAssertions) Header(resp *http.Response, headerName, expectedValue string, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.Equal(ha.t, expectedValue, resp.Header.Get(headerName), msgAndArgs...)
}

// HasHeader asserts that a header exists
func (ha *HTTPAssertions) HasHeader(resp *http.Response, headerName string, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, resp, "Response should not be nil")
	assert.NotEmpty(ha.t, resp.Header.Get(headerName), "Response should have header %s", headerName)
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(resp *http.Response) {
	for _, header := range []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Referrer-Policy",
		"Content-Security-Policy",
	} {
		ha.HasHeader(resp, header)
	}
}
