package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Connect opens the Redis connection used for query-side caching.
func Connect(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Info("Redis connected")
	return rdb
}

// Cache wraps the Redis client with JSON helpers. A nil Cache (or one built
// around a nil client) is a no-op, which keeps the service usable in tests
// without a Redis instance.
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{R: rdb, TTL: ttl}
}

func UserPaymentsKey(userID uint) string {
	return fmt.Sprintf("payments:user:%d", userID)
}

const StatsKey = "payments:stats"

func (c *Cache) GetJSON(ctx context.Context, key string, v interface{}) bool {
	if c == nil || c.R == nil {
		return false
	}
	raw, err := c.R.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v interface{}) {
	if c == nil || c.R == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.R.Set(ctx, key, raw, c.TTL)
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.R == nil || len(keys) == 0 {
		return
	}
	c.R.Del(ctx, keys...)
}
