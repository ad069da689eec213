// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application needs from the outside world
package outbound

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// StateStore is the durable key-value store holding the calculator state.
// Values are opaque strings; Get returns blend.ErrStateNotFound for absent keys.
// SetMany and DeleteMany apply every key or none of them.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, entries map[string]string) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
}

// CacheRepository defines the interface for caching
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
