// Package cache is a thin Redis wrapper for short-lived snapshots
// (leaderboards, tier tables). A nil *Cache is valid and disables
// caching, so Redis stays optional in local setups.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

// New connects to Redis and validates the connection with a ping.
// Returns nil (caching disabled) when addr is empty.
func New(addr, password string, db int) *Cache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Cache: redis ping failed, caching disabled: %v", err)
		return nil
	}
	return &Cache{client: client}
}

// GetJSON unmarshals a cached value into dest. Returns false on miss,
// error, or when caching is disabled.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) bool {
	if c == nil {
		return false
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		log.Printf("Cache: corrupt entry for %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON marshals and stores a value with the given TTL. Failures are
// logged and ignored; the cache is never load-bearing.
func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		log.Printf("Cache: set failed for %s: %v", key, err)
	}
}

// Invalidate removes keys, typically after a write that staled them.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Cache: invalidate failed: %v", err)
	}
}
