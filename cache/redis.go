package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin wrapper over redis used for the transaction list and
// monthly summary. All methods are safe on a nil receiver so the service
// runs fine without redis.
type Cache struct {
	rdb *redis.Client
}

func Connect(addr string) *Cache {
	if addr == "" {
		log.Println("REDIS_ADDR not set — caching disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("Failed to connect Redis — caching disabled: %v", err)
		return nil
	}

	log.Println("Redis connected")
	return &Cache{rdb: rdb}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key, val string, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache del %v: %v", keys, err)
	}
}
