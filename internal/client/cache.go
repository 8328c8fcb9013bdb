package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// cacheGet decodes the cached JSON value at key into v. Misses, a nil redis client and
// redis failures all report false.
func (c Client) cacheGet(ctx context.Context, key string, v any) bool {
	if c.Redis == nil || c.Config.CacheTTL <= 0 {
		return false
	}
	cached, err := c.Redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.Logger.Errorf("cacheGet: Error getting Redis cache with key: %s, err: %v", key, err)
		}
		return false
	}
	if err = json.Unmarshal(cached, v); err != nil {
		c.Logger.Errorf("cacheGet: Error unmarshalling cache, key: %s, err: %v", key, err)
		return false
	}
	return true
}

func (c Client) cacheSet(ctx context.Context, key string, v any) {
	c.cacheSetTTL(ctx, key, v, c.Config.CacheTTL)
}

func (c Client) cacheSetTTL(ctx context.Context, key string, v any, ttl time.Duration) {
	if c.Redis == nil || ttl <= 0 {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		c.Logger.Errorf("cacheSet: Error marshalling value to cache, key: %s, err: %v", key, err)
		return
	}
	if err = c.Redis.Set(ctx, key, b, ttl).Err(); err != nil {
		c.Logger.Errorf("cacheSet: Error caching value, key: %s, err: %v", key, err)
	}
}
