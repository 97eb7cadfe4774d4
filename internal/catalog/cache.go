package catalog

import (
	"context"
	"encoding/json"
	"time"

	"pawmart-backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultCacheKey holds the last normalized catalog.
const DefaultCacheKey = "catalog:snapshot"

// CachedSource puts a best-effort Redis snapshot in front of Source. Cache
// failures are logged and never surface; upstream errors are returned as-is
// and are not cached.
type CachedSource struct {
	Source Source
	Redis  *redis.Client
	Key    string
	TTL    time.Duration
}

func (c *CachedSource) key() string {
	if c.Key == "" {
		return DefaultCacheKey
	}
	return c.Key
}

func (c *CachedSource) FetchAll(ctx context.Context) ([]models.Listing, error) {
	if c.Redis == nil || c.TTL <= 0 {
		return c.Source.FetchAll(ctx)
	}
	b, err := c.Redis.Get(ctx, c.key()).Bytes()
	switch {
	case err == nil:
		var listings []models.Listing
		if jerr := json.Unmarshal(b, &listings); jerr == nil {
			return listings, nil
		}
		log.Warn().Str("key", c.key()).Msg("catalog cache: corrupt snapshot, refetching")
	case err != redis.Nil:
		log.Warn().Err(err).Str("key", c.key()).Msg("catalog cache: read failed")
	}

	listings, err := c.Source.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if data, jerr := json.Marshal(listings); jerr == nil {
		if serr := c.Redis.Set(ctx, c.key(), data, c.TTL).Err(); serr != nil {
			log.Warn().Err(serr).Str("key", c.key()).Msg("catalog cache: write failed")
		}
	}
	return listings, nil
}

// Invalidate drops the snapshot so the next fetch reaches the upstream.
func (c *CachedSource) Invalidate(ctx context.Context) error {
	if c.Redis == nil {
		return nil
	}
	return c.Redis.Del(ctx, c.key()).Err()
}
