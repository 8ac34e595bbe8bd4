package service

import (
	"context"
	"fmt"
	"time"
)

const rateLimitPrefix = "ratelimit:"

// Counter is the subset of the Redis client used for rate limiting.
type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

// redisRateLimiter implements RateLimiter with INCR and EXPIRE.
type redisRateLimiter struct {
	counter Counter
}

// NewRateLimiter creates a rate limiter backed by the given counter.
func NewRateLimiter(counter Counter) RateLimiter {
	return &redisRateLimiter{counter: counter}
}

// CheckRateLimit checks if a client has exceeded rate limits
func (l *redisRateLimiter) CheckRateLimit(ctx context.Context, clientIP string, maxRequests int, window time.Duration) (bool, error) {
	key := rateLimitPrefix + clientIP

	count, err := l.counter.Incr(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	// Window starts on the first request
	if count == 1 {
		if err := l.counter.Expire(ctx, key, window); err != nil {
			return false, fmt.Errorf("failed to set rate window: %w", err)
		}
	}

	return count <= int64(maxRequests), nil
}
