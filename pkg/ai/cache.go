package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"humidorhub_backend/pkg/cache"
)

const (
	// AutofillCacheTTL is the TTL for autofill lookups. Cigar specs do not
	// change, but a bound keeps stale hallucinations from living forever.
	AutofillCacheTTL = 30 * 24 * time.Hour

	// CacheKeyPrefix is the prefix for all AI cache keys
	CacheKeyPrefix = "ai:"
)

// AutofillCache wraps cache.Redis for autofill results. Hits are shared
// across users: the same cigar resolves once.
type AutofillCache struct {
	redis *cache.Redis
}

func NewAutofillCache(redis *cache.Redis) *AutofillCache {
	return &AutofillCache{redis: redis}
}

func autofillCacheKey(brand, name string) string {
	return fmt.Sprintf("%sautofill:%s", CacheKeyPrefix, slug.Make(brand+" "+name))
}

// Get retrieves a cached autofill result. A miss is not an error.
func (c *AutofillCache) Get(ctx context.Context, brand, name string) (*CigarDetails, error) {
	data, err := c.redis.Get(ctx, autofillCacheKey(brand, name))
	if err != nil {
		return nil, nil
	}

	var details CigarDetails
	if err := json.Unmarshal([]byte(data), &details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached autofill result: %w", err)
	}

	return &details, nil
}

// Set caches an autofill result.
func (c *AutofillCache) Set(ctx context.Context, brand, name string, details *CigarDetails) error {
	data, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal autofill result: %w", err)
	}

	if err := c.redis.Set(ctx, autofillCacheKey(brand, name), string(data), AutofillCacheTTL); err != nil {
		return fmt.Errorf("failed to cache autofill result: %w", err)
	}

	return nil
}

// Invalidate removes a cached autofill result.
func (c *AutofillCache) Invalidate(ctx context.Context, brand, name string) error {
	return c.redis.Delete(ctx, autofillCacheKey(brand, name))
}
