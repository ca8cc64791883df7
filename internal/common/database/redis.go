// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"rynko-workers/internal/common/config"
	"rynko-workers/internal/common/logger"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// RedisClient wraps the Redis client backing the static data store.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis creates a Redis client. It does not dial; call Connect or Ping.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return &RedisClient{Client: rdb}
}

// ConnectRedis creates a client and pings it with exponential backoff.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, log logger.Logger, maxRetries uint64) (*RedisClient, error) {
	c := NewRedis(cfg)
	err := pingWithBackoff(ctx, "redis", c.Ping, log, maxRetries)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Info("Connected to Redis", map[string]interface{}{
		"address": cfg.Address,
		"db":      cfg.DB,
	})
	return c, nil
}

// Ping tests the Redis connection
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

// GetClient returns the underlying *redis.Client
func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}

func pingWithBackoff(ctx context.Context, name string, ping func(context.Context) error, log logger.Logger, maxRetries uint64) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries),
		ctx,
	)
	op := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return ping(pingCtx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("Connection attempt failed, retrying", map[string]interface{}{
			"target": name,
			"error":  err.Error(),
			"wait":   wait.String(),
		})
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return fmt.Errorf("%s unavailable after %d retries: %w", name, maxRetries, err)
	}
	return nil
}
