package solver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/SeamusWaldron/gocube_vision/internal/logging"
	"github.com/SeamusWaldron/gocube_vision/internal/metrics"
)

// Cache abstracts the Redis operations used for solution caching. Get
// returns redis.Nil on a miss.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// RedisCache is a Cache backed by go-redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Set writes a value to Redis.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.client.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a cached value from Redis.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

// DialRedis connects to addr and pings it.
func DialRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// CachedSolver memoizes raw solutions per code and depth. Concurrent solves
// of the same code share one call to the wrapped solver. That call is not
// tied to any one caller's cancellation and ends when the wrapped solver's
// own timeout does; a caller that gives up returns early without stopping
// it. Cache failures are logged and fall through to the solver; solver
// errors are never cached.
type CachedSolver struct {
	next    Solver
	cache   Cache
	ttl     time.Duration
	group   singleflight.Group
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewCachedSolver wraps next with cache.
func NewCachedSolver(next Solver, cache Cache, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *CachedSolver {
	return &CachedSolver{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		logger:  logging.OrNop(logger),
		metrics: m,
	}
}

// Key returns the cache key for a code and depth.
func Key(code string, maxDepth int) string {
	return fmt.Sprintf("gocube:solution:%d:%s", maxDepth, code)
}

// Solve returns a cached solution or asks the wrapped solver.
func (s *CachedSolver) Solve(ctx context.Context, code string, maxDepth int, timeout time.Duration) (string, error) {
	key := Key(code, maxDepth)
	logger := logging.WithOperation(s.logger, "solver.cached", "")

	if raw, err := s.cache.Get(ctx, key); err == nil {
		s.metrics.CacheHit()
		return raw, nil
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("failed to read solution cache", zap.Error(err))
	}
	s.metrics.CacheMiss()

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		raw, err := s.next.Solve(shared, code, maxDepth, timeout)
		if err != nil {
			return "", err
		}
		if err := s.cache.Set(shared, key, raw, s.ttl); err != nil {
			logger.Warn("failed to write solution cache", zap.Error(err))
		}
		return raw, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}
