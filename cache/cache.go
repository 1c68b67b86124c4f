package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Cache is a generic process-shared key-value store used for memoizing
// expensive aggregate queries. Implementations must treat errors as cache
// misses; the caller recomputes on a miss.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(keys ...string)
}

// redisTTL bounds staleness if an invalidation is ever lost (e.g. a worker
// dying between the write and the cache delete).
const redisTTL = 15 * time.Minute

// RedisCache backs the Cache interface with a shared Redis instance so that
// invalidations from one worker process are visible to all others.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(key string) ([]byte, bool) {
	val, err := c.client.Get(context.Background(), key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("redis cache get failed; treating as miss")
		}
		return nil, false
	}
	return val, true
}

func (c *RedisCache) Set(key string, value []byte) {
	if err := c.client.Set(context.Background(), key, value, redisTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("redis cache set failed")
	}
}

func (c *RedisCache) Delete(keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(context.Background(), keys...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("redis cache delete failed")
	}
}

// Ping verifies connectivity at wiring time.
func (c *RedisCache) Ping() error {
	return c.client.Ping(context.Background()).Err()
}

// MemoryCache is the single-process fallback: a mutex-guarded map. It is the
// degenerate case of the shared cache and must not be used across multiple
// worker processes, since invalidations would not propagate.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.entries[key]
	return val, ok
}

func (c *MemoryCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *MemoryCache) Delete(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}
