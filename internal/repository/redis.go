package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareit/internal/config"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "shareit:rate_limit:"

// NewRedisClient builds a client from the redis config section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

// RedisRateLimiter counts hits per key in fixed windows shared by every
// process that talks to the same Redis.
type RedisRateLimiter struct {
	client *redis.Client
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

func (r *RedisRateLimiter) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, errors.New("redis client is nil")
	}

	redisKey := rateLimitPrefix + key
	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Only the first hit sets the expiry so the window does not slide.
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the client if there is one.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
