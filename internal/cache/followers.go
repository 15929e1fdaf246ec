package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/drink-tracker/internal/model"
	"github.com/d60-Lab/drink-tracker/pkg/logger"
)

// FollowerCache caches follower pages in Redis.
//
// Pages are keyed by a per-followee version. Any follow or unfollow that
// touches the followee bumps the version, so stale pages are never read and
// simply expire with their TTL.
type FollowerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFollowerCache returns nil when client is nil so callers can treat a
// missing Redis as "no cache".
func NewFollowerCache(client *redis.Client, ttl time.Duration) *FollowerCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FollowerCache{client: client, ttl: ttl}
}

func versionKey(followeeID uint) string {
	return fmt.Sprintf("followers:ver:%d", followeeID)
}

func pageKey(followeeID uint, version int64, skip, limit int) string {
	return fmt.Sprintf("followers:%d:v%d:%d:%d", followeeID, version, skip, limit)
}

func (c *FollowerCache) version(ctx context.Context, followeeID uint) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(followeeID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Get returns (nil, false) on a miss or any Redis error.
func (c *FollowerCache) Get(ctx context.Context, followeeID uint, skip, limit int) ([]model.User, bool) {
	if c == nil {
		return nil, false
	}
	ver, err := c.version(ctx, followeeID)
	if err != nil {
		logger.Warn("follower cache version read failed", zap.Uint("user", followeeID), zap.Error(err))
		return nil, false
	}
	data, err := c.client.Get(ctx, pageKey(followeeID, ver, skip, limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("follower cache read failed", zap.Uint("user", followeeID), zap.Error(err))
		}
		return nil, false
	}
	var out []model.User
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Set stores a page under the current version. The version is read again
// here, so a page loaded before a concurrent bump lands under the old key.
func (c *FollowerCache) Set(ctx context.Context, followeeID uint, skip, limit int, users []model.User, loadedAt int64) {
	if c == nil {
		return
	}
	ver, err := c.version(ctx, followeeID)
	if err != nil || ver != loadedAt {
		return
	}
	payload, err := json.Marshal(users)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, pageKey(followeeID, ver, skip, limit), payload, c.ttl).Err(); err != nil {
		logger.Warn("follower cache write failed", zap.Uint("user", followeeID), zap.Error(err))
	}
}

// Version exposes the current version so a loader can pass it back to Set.
func (c *FollowerCache) Version(ctx context.Context, followeeID uint) int64 {
	if c == nil {
		return 0
	}
	v, _ := c.version(ctx, followeeID)
	return v
}

// Invalidate bumps the followee's version.
func (c *FollowerCache) Invalidate(ctx context.Context, followeeID uint) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, versionKey(followeeID)).Err(); err != nil {
		logger.Warn("follower cache invalidate failed", zap.Uint("user", followeeID), zap.Error(err))
	}
}
