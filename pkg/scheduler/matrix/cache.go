package matrix

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paiban/paiban/pkg/logger"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// Cache is the minimal surface CachingProvider needs from a cache backend.
// github.com/redis/go-redis/v9's *redis.Client returns command objects
// rather than (string, error), so RedisCache below adapts it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RedisCache adapts *redis.Client to Cache.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache builds a RedisCache from connection settings.
func NewRedisCache(addr, password string, db int, poolSize int) *RedisCache {
	return &RedisCache{Client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return r.Client.Get(ctx, key).Result()
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.Client.Set(ctx, key, value, ttl).Err()
}

// CachingProvider decorates another Provider with a cache keyed on the
// deduplicated, 6-decimal-place-rounded point list. A matrix build is pure
// given its point set, so the cache never serves stale data for a different
// input; it only saves repeated external calls for the same planning run
// re-solved, or for overlapping point sets across runs.
//
// A nil Cache degrades to calling the wrapped Provider directly -- the cache
// is an optimization, never a correctness dependency.
type CachingProvider struct {
	Provider Provider
	Cache    Cache
	TTL      time.Duration
}

// NewCachingProvider wraps provider with cache. cache may be nil.
func NewCachingProvider(provider Provider, cache Cache, ttl time.Duration) *CachingProvider {
	return &CachingProvider{Provider: provider, Cache: cache, TTL: ttl}
}

func (c *CachingProvider) Build(ctx context.Context, points []model.Location) (Matrix, error) {
	if c.Cache == nil {
		return c.Provider.Build(ctx, points)
	}

	key := matrixCacheKey(points)

	if raw, err := c.Cache.Get(ctx, key); err == nil && raw != "" {
		var table [][]float64
		if err := json.Unmarshal([]byte(raw), &table); err == nil {
			return NewMatrix(table), nil
		}
	}

	m, err := c.Provider.Build(ctx, points)
	if err != nil {
		return Matrix{}, err
	}

	if encoded, err := json.Marshal(m.travel); err == nil {
		if err := c.Cache.Set(ctx, key, string(encoded), c.TTL); err != nil {
			logger.WithError(err).Str("cache_key", key).Msg("failed to cache distance matrix")
		}
	}

	return m, nil
}

func matrixCacheKey(points []model.Location) string {
	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = LocationKey(p)
	}
	return "vrp:matrix:" + strings.Join(keys, "|")
}
