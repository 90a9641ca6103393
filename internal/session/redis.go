package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dormgate/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisStore) Create(ctx context.Context, token string, tenant models.Tenant) (*models.Session, error) {
	if s.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	sess := newSession(token, tenant)
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session in redis: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if s.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	val, err := s.client.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}
