package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// LoginLimiter throttles login attempts per key (the submitted email).
type LoginLimiter interface {
	Allow(ctx context.Context, key string) error
}

// NoopLimiter never throttles.
type NoopLimiter struct{}

func (NoopLimiter) Allow(context.Context, string) error { return nil }

// RedisLoginLimiter counts attempts in a fixed window with INCR/EXPIRE.
type RedisLoginLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLoginLimiter builds a limiter allowing limit attempts per window.
func NewRedisLoginLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLoginLimiter {
	return &RedisLoginLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow records an attempt and fails with RATE_LIMITED once the window is
// exhausted.
func (l *RedisLoginLimiter) Allow(ctx context.Context, key string) error {
	redisKey := l.prefix + ":" + strings.ToLower(strings.TrimSpace(key))

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("incrementing login attempts: %w", err)
	}
	// TTL only on the first attempt so the window is fixed.
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return fmt.Errorf("setting login window: %w", err)
		}
	}
	if count > int64(l.limit) {
		retryAfter, _ := l.client.TTL(ctx, redisKey).Result()
		return apperrors.NewRateLimited("too many login attempts", map[string]any{
			"retry_after": retryAfter.Seconds(),
		})
	}
	return nil
}
