package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/infrastructure/persistence/memory"
	"github.com/burgermaster/blendcalc/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCachedClient_SearchBlends(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	next := new(testutils.MockBlendAI)
	cache := memory.NewCacheRepository(ctx, time.Minute)
	client := NewCachedClient(next, cache, time.Hour, zaptest.NewLogger(t))
	blends := []blend.SuggestedBlend{testutils.NewRecipeFactory(3).CreateSuggestion()}

	next.On("SearchBlends", ctx, "Smash  Burgers").Return(blends, nil).Once()

	first, err := client.SearchBlends(ctx, "Smash  Burgers")
	require.NoError(t, err)
	second, err := client.SearchBlends(ctx, "smash burgers")
	require.NoError(t, err)

	assert.Equal(t, blends, first)
	assert.Equal(t, blends, second)
	next.AssertNumberOfCalls(t, "SearchBlends", 1)

	exists, err := cache.Exists(ctx, "blend-search:smash burgers")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCachedClient_DoesNotCacheEmptyOrFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	next := new(testutils.MockBlendAI)
	cache := memory.NewCacheRepository(ctx, time.Minute)
	client := NewCachedClient(next, cache, time.Hour, zaptest.NewLogger(t))

	next.On("SearchBlends", ctx, "vazio").Return([]blend.SuggestedBlend{}, nil)
	next.On("SearchBlends", ctx, "erro").Return(nil, errors.New("down"))

	_, _ = client.SearchBlends(ctx, "vazio")
	_, _ = client.SearchBlends(ctx, "vazio")
	_, err := client.SearchBlends(ctx, "erro")

	assert.Error(t, err)
	next.AssertNumberOfCalls(t, "SearchBlends", 3)
}

func TestCachedClient_ExtractionIsNotCached(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	next := new(testutils.MockBlendAI)
	client := NewCachedClient(next, memory.NewCacheRepository(ctx, time.Minute), time.Hour, zaptest.NewLogger(t))
	recipe := blend.DefaultRecipe()
	next.On("ExtractFromImage", ctx, []byte("img")).Return(recipe, nil)

	for i := 0; i < 2; i++ {
		got, err := client.ExtractFromImage(ctx, []byte("img"))
		require.NoError(t, err)
		assert.Equal(t, recipe, got)
	}
	next.AssertNumberOfCalls(t, "ExtractFromImage", 2)
}
