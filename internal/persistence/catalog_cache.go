package persistence

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/campus-mts/mts/internal/classification"
	"github.com/campus-mts/mts/internal/domain"
)

const catalogCacheKey = "mts:classification:catalog"

// CatalogCache keeps the classification catalog in Redis. Every failure degrades to a miss.
type CatalogCache struct {
	redis  *Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalogCache wraps r. A nil r yields a cache that always misses.
func NewCatalogCache(r *Redis, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCache{redis: r, ttl: ttl, logger: logger}
}

// Load returns the cached catalog and whether it was found.
func (c *CatalogCache) Load(ctx context.Context) (classification.Catalog, bool) {
	var catalog classification.Catalog
	if c == nil || c.redis == nil {
		return catalog, false
	}
	if err := c.redis.GetJSON(ctx, catalogCacheKey, &catalog); err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("catalog cache read failed", zap.Error(err))
		}
		return classification.Catalog{}, false
	}
	return catalog, true
}

// Store caches catalog. Password hashes are never written to Redis.
func (c *CatalogCache) Store(ctx context.Context, catalog classification.Catalog) {
	if c == nil || c.redis == nil {
		return
	}
	users := make([]domain.User, 0, len(catalog.Users))
	for _, u := range catalog.Users {
		u.PasswordHash = ""
		users = append(users, u)
	}
	catalog.Users = users
	if err := c.redis.SetJSON(ctx, catalogCacheKey, catalog, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached catalog after a reference-data write.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, catalogCacheKey); err != nil {
		c.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
