// Package ratelimit caps how often one-time codes are issued per email.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/go-redis/redis/v8"
)

// Limiter admits or rejects an action identified by key.
type Limiter interface {
	// Allow returns common.ErrorTooManyRequests once key has been used more
	// than the configured number of times within the window.
	Allow(ctx context.Context, key string) error
}

// NopLimiter admits everything.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) error { return nil }

// RedisLimiter is a fixed-window counter kept in Redis: the first hit in a
// window creates the counter with the window as its TTL.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string

	// incr is a seam for tests.
	incr func(ctx context.Context, key string, window time.Duration) (int64, error)
}

// NewRedisLimiter connects to redisURL (redis://host:port/db).
func NewRedisLimiter(redisURL string, limit int, window time.Duration) (*RedisLimiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	l := &RedisLimiter{
		client: redis.NewClient(opt),
		limit:  int64(limit),
		window: window,
		prefix: "gophauth:rl:",
	}
	l.incr = l.redisIncr
	return l, nil
}

// redisIncr creates the counter with its TTL and increments it in one
// MULTI/EXEC, so a counter never exists without an expiry. SETNX leaves the
// TTL of an existing counter alone, keeping the window fixed.
func (l *RedisLimiter) redisIncr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	n, err := l.incr(ctx, l.prefix+key, l.window)
	if err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	if n > l.limit {
		return common.ErrorTooManyRequests
	}
	return nil
}

// Ping checks the Redis connection.
func (l *RedisLimiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
