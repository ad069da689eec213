package handlers

import (
	"encoding/json"
	"testing"

	apperrors "github.com/burgermaster/blendcalc/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratio(v float64) *float64 { return &v }

func TestValidator_ReportsJSONFieldPaths(t *testing.T) {
	v := NewValidator()

	err := v.Struct(RecipeRequest{
		Name:     "Blend",
		FatRatio: ratio(0.2),
		Meats:    []MeatRequest{{Name: "Acém", Ratio: ratio(2)}},
	})

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	assert.Equal(t, "meats[0].ratio must be at most 1", appErr.Details)
}

func TestValidator_BlendName(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		valid bool
	}{
		{"Alamo Blend Original", true},
		{"Acém Limpo", true},
		{"", false},
		{"   ", false},
		{"Blend\x00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(MeatRequest{Name: tt.name, Ratio: ratio(0.5)})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
			}
		})
	}
}

func TestPriceInput_AcceptsStringsAndNumbers(t *testing.T) {
	tests := map[string]PriceInput{
		`{"price": "18,90"}`: "18,90",
		`{"price": 42.5}`:    "42.5",
		`{"price": 7}`:       "7",
		`{"price": null}`:    "",
	}

	for body, want := range tests {
		var req PriceRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		assert.Equal(t, want, req.Price, body)
	}

	var req PriceRequest
	assert.Error(t, json.Unmarshal([]byte(`{"price": true}`), &req))
}
