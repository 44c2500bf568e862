// Package store defines the key/value persistence contract used by the draft
// session engine to survive restarts.
package store

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mock/mock_store.go -package=mock github.com/mcdev12/cubedraft/go/internal/store Store

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("store: key not found")

// Store is a durable key/value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
