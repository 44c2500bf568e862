package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/cubedraft/go/internal/store"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client redis.Cmdable
}

// New returns a Store backed by Redis string keys.
func New(client redis.Cmdable) store.Store {
	return &redisStore{client: client}
}

func (r *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("key is required")
	}

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}
	return data, nil
}

func (r *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return errors.New("key is required")
	}

	if err := r.client.Set(ctx, key, string(value), 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in Redis: %w", key, err)
	}
	return nil
}

func (r *redisStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("key is required")
	}

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", key, err)
	}
	return nil
}
