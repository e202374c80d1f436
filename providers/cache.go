package providers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const catalogTTL = time.Hour

// catalogCache caches provider catalog responses (avatars, voices,
// templates) in redis at the provider boundary. Any cache failure
// falls through to the vendor call; correctness never depends on it.
type catalogCache struct {
	rdb *redis.Client
}

func (c *catalogCache) get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("catalog cache read %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		log.Printf("catalog cache decode %s: %v", key, err)
		return false
	}
	return true
}

func (c *catalogCache) set(ctx context.Context, key string, value interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, catalogTTL).Err(); err != nil {
		log.Printf("catalog cache write %s: %v", key, err)
	}
}
