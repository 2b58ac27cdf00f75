package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "storefront:"

// RedisStore is the shared Store implementation for multi-instance
// deployments. Every key lives under a fixed prefix so Clear only touches
// storefront state.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps the given client. An empty prefix falls back to the
// package default.
func NewRedisStore(client *redis.Client, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("kv: redis client is required")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string, out any) (bool, error) {
	if err := ValidateKey(key); err != nil {
		return false, err
	}

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv: redis get %s: %w", key, err)
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("kv: redis set %s: %w", key, err)
	}
	return nil
}

// Remove implements Store.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("kv: redis del %s: %w", key, err)
	}
	return nil
}

// Clear implements Store. Keys are discovered with SCAN to avoid blocking
// the server on large keyspaces.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 512 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("kv: redis clear: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("kv: redis clear: %w", err)
	}
	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("kv: redis clear: %w", err)
		}
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
