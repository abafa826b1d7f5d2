package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"buildtrack/internal/timeline"
	"buildtrack/pkg/metrics"
)

const timelineTTL = 5 * time.Minute

// TimelineCache keeps rendered timeline snapshots in Redis so repeat views
// of the same project skip aggregation and layout. Entries are deleted on
// any mutation touching the project; staleness within the TTL is accepted.
type TimelineCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewTimelineCache(rdb *redis.Client, logger *zap.Logger) *TimelineCache {
	return &TimelineCache{rdb: rdb, logger: logger}
}

func key(projectID string) string {
	return "timeline:" + projectID
}

func (c *TimelineCache) Get(ctx context.Context, projectID string) (*timeline.View, bool) {
	data, err := c.rdb.Get(ctx, key(projectID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("Timeline cache read failed",
				zap.Error(err),
				zap.String("project_id", projectID),
			)
		}
		metrics.TimelineCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}

	var view timeline.View
	if err := json.Unmarshal(data, &view); err != nil {
		c.logger.Warn("Timeline cache entry corrupt, dropping",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
		_ = c.rdb.Del(ctx, key(projectID)).Err()
		metrics.TimelineCacheRequests.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.TimelineCacheRequests.WithLabelValues("hit").Inc()
	return &view, true
}

func (c *TimelineCache) Set(ctx context.Context, projectID string, view *timeline.View) {
	data, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("Failed to marshal timeline view", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key(projectID), data, timelineTTL).Err(); err != nil {
		c.logger.Warn("Timeline cache write failed",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
	}
}

func (c *TimelineCache) Invalidate(ctx context.Context, projectID string) {
	if err := c.rdb.Del(ctx, key(projectID)).Err(); err != nil {
		c.logger.Warn("Timeline cache invalidation failed",
			zap.Error(err),
			zap.String("project_id", projectID),
		)
	}
}
