// Package middleware provides HTTP middleware components for the API server.
package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimitStore implements RateLimitStore using Redis, so limits are
// shared across replicas. It uses a fixed window counter: INCR on the key,
// EXPIRE on first increment.
//
// Redis failures fail open (requests are allowed) so a Redis outage does not
// take the API down with it. Fail-open events are counted when metrics are
// attached.
type RedisRateLimitStore struct {
	client  *redis.Client
	metrics *Metrics
}

// NewRedisRateLimitStore creates a Redis-backed rate limit store.
func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

// WithMetrics attaches metrics for fail-open event counting. Returns the
// store for chaining.
func (s *RedisRateLimitStore) WithMetrics(m *Metrics) *RedisRateLimitStore {
	s.metrics = m
	return s
}

// Allow checks if a request from the given key should be allowed.
// Implements the RateLimitStore interface.
func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, config RateLimitConfig) (bool, int) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX keeps the window anchored to the first request in it
	pipe.ExpireNX(ctx, key, config.WindowDuration)
	if _, err := pipe.Exec(ctx); err != nil {
		if s.metrics != nil {
			s.metrics.IncRateLimitRedisErrors()
		}
		return true, 0
	}

	if incr.Val() <= int64(config.RequestsPerWindow) {
		return true, 0
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return false, int(config.WindowDuration.Seconds())
	}
	retryAfter := int(ttl.Round(time.Second).Seconds())
	if retryAfter <= 0 {
		retryAfter = 1
	}
	return false, retryAfter
}
