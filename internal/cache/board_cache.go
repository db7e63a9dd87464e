package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"group-board-api/internal/dto"
	"group-board-api/internal/metrics"
)

// DefaultTTL bounds how stale a cached board view may get even when an
// invalidation is missed.
const DefaultTTL = 30 * time.Second

// BoardCache caches assembled board views in Redis, keyed by group. It is
// a pure read-through optimization: every cache failure degrades to hitting
// the database, never to an error.
type BoardCache struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewBoardCache creates a BoardCache. A nil Redis client yields a
// pass-through cache, which is how tests and Redis-less deployments run.
func NewBoardCache(client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *BoardCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &BoardCache{client: client, ttl: ttl, metrics: m, logger: logger}
}

func boardKey(groupID uuid.UUID) string {
	return "board:" + groupID.String()
}

// Get returns the cached board view for the group, or (nil, false) on a miss
func (c *BoardCache) Get(ctx context.Context, groupID uuid.UUID) (*dto.BoardView, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, boardKey(groupID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Board cache read failed", zap.Error(err))
		}
		c.metrics.IncrementBoardCacheMiss()
		return nil, false
	}

	var view dto.BoardView
	if err := json.Unmarshal(data, &view); err != nil {
		c.logger.Warn("Board cache entry corrupt, dropping",
			zap.String("group_id", groupID.String()), zap.Error(err))
		c.client.Del(ctx, boardKey(groupID))
		c.metrics.IncrementBoardCacheMiss()
		return nil, false
	}

	c.metrics.IncrementBoardCacheHit()
	return &view, true
}

// Set stores the board view for the group
func (c *BoardCache) Set(ctx context.Context, groupID uuid.UUID, view *dto.BoardView) {
	if c == nil || c.client == nil || view == nil {
		return
	}

	data, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("Failed to marshal board view for cache", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, boardKey(groupID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Board cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached board view for the group. Called by every
// write that changes what the board looks like.
func (c *BoardCache) Invalidate(ctx context.Context, groupID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, boardKey(groupID)).Err(); err != nil {
		c.logger.Warn("Board cache invalidation failed",
			zap.String("group_id", groupID.String()), zap.Error(err))
	}
}
