package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"go.uber.org/zap"
)

const searchCachePrefix = "blend-search:"

// CachedClient caches blend search results in front of another BlendAI.
// Extraction is never cached.
type CachedClient struct {
	next   outbound.BlendAI
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

var _ outbound.BlendAI = (*CachedClient)(nil)

// NewCachedClient wraps next with a search cache
func NewCachedClient(next outbound.BlendAI, cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *CachedClient {
	return &CachedClient{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("gemini-cache"),
	}
}

// ExtractFromImage delegates to the wrapped client
func (c *CachedClient) ExtractFromImage(ctx context.Context, image []byte) (blend.Recipe, error) {
	return c.next.ExtractFromImage(ctx, image)
}

// SearchBlends serves repeated queries from the cache
func (c *CachedClient) SearchBlends(ctx context.Context, query string) ([]blend.SuggestedBlend, error) {
	key := searchCacheKey(query)

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		var blends []blend.SuggestedBlend
		if jsonErr := json.Unmarshal(data, &blends); jsonErr == nil {
			c.logger.Debug("Blend search cache hit", zap.String("key", key))
			return blends, nil
		}
		c.logger.Warn("Discarding unreadable cache entry", zap.String("key", key))
	case !errors.Is(err, outbound.ErrCacheMiss):
		c.logger.Warn("Blend search cache read failed", zap.String("key", key), zap.Error(err))
	}

	blends, err := c.next.SearchBlends(ctx, query)
	if err != nil {
		return nil, err
	}
	// An empty answer is usually transient; ask again next time.
	if len(blends) == 0 {
		return blends, nil
	}

	if data, err := json.Marshal(blends); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("Blend search cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return blends, nil
}

func searchCacheKey(query string) string {
	return searchCachePrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}
