package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/redis/go-redis/v9"
)

// StateStore implements outbound.StateStore with plain Redis strings
type StateStore struct {
	client redis.UniversalClient
	prefix string
}

var _ outbound.StateStore = (*StateStore)(nil)

// NewStateStore creates a state store whose keys are namespaced by prefix
func NewStateStore(client redis.UniversalClient, prefix string) *StateStore {
	return &StateStore{client: client, prefix: prefix}
}

// Get returns the value stored under key
func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", blend.ErrStateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get state %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key without expiry
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// SetMany writes every entry inside a MULTI/EXEC transaction
func (s *StateStore) SetMany(ctx context.Context, entries map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, s.prefix+key, value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set state: %w", err)
	}
	return nil
}

// Delete removes key
func (s *StateStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	return nil
}

// DeleteMany removes every key in a single DEL
func (s *StateStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.prefix + key
	}
	if err := s.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("delete state %v: %w", keys, err)
	}
	return nil
}
