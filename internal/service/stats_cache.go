package service

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Malinda-kawshalya/issue-web/internal/domain"
	"github.com/Malinda-kawshalya/issue-web/internal/persistence"
)

// StatsCache keeps per-user issue statistics in Redis for a short TTL.
// All operations are best effort: cache misses and Redis failures fall back
// to the aggregation path.
type StatsCache struct {
	redis *persistence.Redis
	ttl   time.Duration
}

// NewStatsCache builds the cache. A nil Redis wrapper disables caching.
func NewStatsCache(redis *persistence.Redis, ttl time.Duration) *StatsCache {
	return &StatsCache{redis: redis, ttl: ttl}
}

func statsKey(userID primitive.ObjectID) string {
	return "stats:" + userID.Hex()
}

// Get returns cached statistics when present.
func (c *StatsCache) Get(ctx context.Context, userID primitive.ObjectID) (*domain.IssueStats, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, false
	}
	raw, err := c.redis.Client.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var stats domain.IssueStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

// Set stores statistics under the configured TTL.
func (c *StatsCache) Set(ctx context.Context, userID primitive.ObjectID, stats domain.IssueStats) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	_ = c.redis.Client.Set(ctx, statsKey(userID), raw, c.ttl).Err()
}

// Invalidate drops the cached entry after a mutation by the author.
func (c *StatsCache) Invalidate(ctx context.Context, userID primitive.ObjectID) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	_ = c.redis.Client.Del(ctx, statsKey(userID)).Err()
}
