package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

const keyPrefix = "fern:resolution"

// ResolutionCache stores resolved batches so a resubmitted batch is not
// resolved twice
type ResolutionCache struct {
	store  Store
	ttl    time.Duration
	logger ectologger.Logger
}

// NewResolutionCache creates a new ResolutionCache
func NewResolutionCache(store Store, ttl time.Duration, logger ectologger.Logger) *ResolutionCache {
	return &ResolutionCache{store: store, ttl: ttl, logger: logger}
}

// Key returns the cache key of a batch
func Key(tenantID string, strategy models.ResolveStrategy, batchKey string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, tenantID, strategy, batchKey)
}

// Get returns the cached resolution, or nil when there is none
func (c *ResolutionCache) Get(ctx context.Context, tenantID string, strategy models.ResolveStrategy, batchKey string) (*models.Resolution, error) {
	ctx, span := tracing.StartSpan(ctx, "cache.ResolutionCache.Get")
	defer span.End()

	raw, err := c.store.Get(ctx, Key(tenantID, strategy, batchKey))
	if errors.Is(err, ErrMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached resolution: %w", err)
	}

	var resolution models.Resolution
	if err := json.Unmarshal(raw, &resolution); err != nil {
		// a corrupt entry is treated as a miss and overwritten on the next Set
		c.logger.WithContext(ctx).WithError(err).Warn("Discarding unreadable cached resolution")
		return nil, nil
	}

	return &resolution, nil
}

// Set caches a resolution under its batch key
func (c *ResolutionCache) Set(ctx context.Context, resolution *models.Resolution) error {
	ctx, span := tracing.StartSpan(ctx, "cache.ResolutionCache.Set")
	defer span.End()

	raw, err := json.Marshal(resolution)
	if err != nil {
		return fmt.Errorf("failed to encode resolution: %w", err)
	}

	key := Key(resolution.TenantID, resolution.Strategy, resolution.BatchKey)
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		return fmt.Errorf("failed to cache resolution: %w", err)
	}
	return nil
}
