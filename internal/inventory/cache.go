package inventory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const overviewCacheKey = "inventory:overview"

// OverviewCache keeps the dashboard aggregates in Redis for a short TTL so
// repeated dashboard loads do not re-run the aggregate queries.
type OverviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOverviewCache constructs the cache. A nil client disables caching.
func NewOverviewCache(client *redis.Client, ttl time.Duration) *OverviewCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OverviewCache{client: client, ttl: ttl}
}

// Get returns the cached overview when present and decodable.
func (c *OverviewCache) Get(ctx context.Context) (Overview, bool) {
	if c == nil || c.client == nil {
		return Overview{}, false
	}
	payload, err := c.client.Get(ctx, overviewCacheKey).Bytes()
	if err != nil {
		return Overview{}, false
	}
	var overview Overview
	if err := json.Unmarshal(payload, &overview); err != nil {
		return Overview{}, false
	}
	return overview, true
}

// Set stores the overview, best effort.
func (c *OverviewCache) Set(ctx context.Context, overview Overview) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(overview)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, overviewCacheKey, payload, c.ttl).Err()
}

// Invalidate drops the cached overview, used after stock mutations.
func (c *OverviewCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, overviewCacheKey).Err()
}
