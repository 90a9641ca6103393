package cache

import (
	"context"
	"fmt"
	"time"

	"dormgate/internal/config"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "respcache:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached response from redis: %w", err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache response in redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, prefix string) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	var cursor uint64
	pattern := redisKeyPrefix + prefix + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
