// Package cache provides caching infrastructure for the context engine.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates a cache miss.
var ErrCacheMiss = errors.New("cache miss")

// Client defines the cache interface.
type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}

// RedisClient implements cache using Redis.
type RedisClient struct {
	client *redis.Client
	prefix string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	Prefix   string
}

// NewRedisClient creates a new Redis cache client.
func NewRedisClient(cfg RedisConfig) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ctx:"
	}

	return &RedisClient{
		client: client,
		prefix: prefix,
	}, nil
}

// Get retrieves a value from cache.
func (c *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

// Set stores a value in cache with TTL.
func (c *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes a value from cache.
func (c *RedisClient) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// DeleteByPrefix removes all keys with the given prefix.
func (c *RedisClient) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := c.prefix + prefix + "*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete by prefix: %w", err)
		}
	}
	
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	
	return nil
}

// Close closes the Redis connection.
func (c *RedisClient) Close() error {
	return c.client.Close()
}

// MemoryClient implements an in-memory cache for development.
type MemoryClient struct {
	mu      sync.RWMutex
	data    map[string]cacheEntry
	maxSize int
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryClient creates a new in-memory cache client.
func NewMemoryClient(maxSize int) *MemoryClient {
	if maxSize <= 0 {
		maxSize = 10000
	}
	
	c := &MemoryClient{
		data:    make(map[string]cacheEntry),
		maxSize: maxSize,
	}
	
	// Start cleanup goroutine
	go c.cleanup()
	
	return c
}

// Get retrieves a value from cache.
func (c *MemoryClient) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	
	entry, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	
	if time.Now().After(entry.expiresAt) {
		return nil, ErrCacheMiss
	}
	
	return entry.value, nil
}

// Set stores a value in cache with TTL.
func (c *MemoryClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	
	// Simple eviction if at max size
	if len(c.data) >= c.maxSize {
		c.evictOldest()
	}
	
	c.data[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	
	return nil
}

// Delete removes a value from cache.
func (c *MemoryClient) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	
	delete(c.data, key)
	return nil
}

// DeleteByPrefix removes all keys with the given prefix.
func (c *MemoryClient) DeleteByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	
	for key := range c.data {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.data, key)
		}
	}
	
	return nil
}

// Close is a no-op for memory cache.
func (c *MemoryClient) Close() error {
	return nil
}

// evictOldest removes the entry with the earliest expiration.
func (c *MemoryClient) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	
	for key, entry := range c.data {
		if oldestKey == "" || entry.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.expiresAt
		}
	}
	
	if oldestKey != "" {
		delete(c.data, oldestKey)
	}
}

// cleanup periodically removes expired entries.
func (c *MemoryClient) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	
	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.data {
			if now.After(entry.expiresAt) {
				delete(c.data, key)
			}
		}
		c.mu.Unlock()
	}
}

// CacheKey generates a cache key from components.
func CacheKey(parts ...string) string {
	key := ""
	for i, part := range parts {
		if i > 0 {
			key += ":"
		}
		key += part
	}
	return key
}

// SiteCacheKey generates a site-scoped cache key.
func SiteCacheKey(siteID string, parts ...string) string {
	return CacheKey(append([]string{"s", siteID}, parts...)...)
}

// QueryCacheKey generates a site-scoped key for a query string. The query is
// hashed so arbitrary user text never appears in a key.
func QueryCacheKey(siteID, query string) string {
	sum := sha256.Sum256([]byte(query))
	return SiteCacheKey(siteID, "q", hex.EncodeToString(sum[:]))
}

