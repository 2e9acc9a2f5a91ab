package matchcache

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const TTL = 15 * time.Minute

// Cache holds serialized match results keyed by filter set. It is
// optional: a nil *Cache is a valid no-op, so the API runs without
// redis configured.
type Cache struct {
	client *redis.Client
}

func New(redisURL string) *Cache {
	if redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("matchcache: bad REDIS_URL, caching disabled: %v", err)
		return nil
	}
	return &Cache{client: redis.NewClient(opts)}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("matchcache: get %s: %v", key, err)
		}
		return "", false
	}
	return val, true
}

func (c *Cache) Set(ctx context.Context, key, val string) {
	if c == nil {
		return
	}

	if err := c.client.Set(ctx, key, val, TTL).Err(); err != nil {
		log.Printf("matchcache: set %s: %v", key, err)
	}
}
