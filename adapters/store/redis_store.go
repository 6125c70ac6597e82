package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JoshDFN/cleardeck/core"
	"github.com/JoshDFN/cleardeck/ports"
)

// RedisStore is a Redis implementation of the SessionStore interface.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(client *redis.Client) ports.SessionStore {
	return &RedisStore{
		client: client,
		prefix: "cleardeck:session:",
	}
}

// Save stores the blob under key with expiration.
func (s *RedisStore) Save(ctx context.Context, key string, blob []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key, blob, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load retrieves a blob by key.
func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return blob, nil
}

// Delete discards the blob stored under key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
