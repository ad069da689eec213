package gorm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/burgermaster/blendcalc/internal/domain/blend"
	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateStore implements outbound.StateStore on a SQL table
type StateStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ outbound.StateStore = (*StateStore)(nil)

// NewStateStore creates a new state store
func NewStateStore(db *gorm.DB) *StateStore {
	return &StateStore{db: db, now: time.Now}
}

// Get returns the value stored under key
func (s *StateStore) Get(ctx context.Context, key string) (string, error) {
	var entry StateEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", blend.ErrStateNotFound
		}
		return "", fmt.Errorf("get state %q: %w", key, err)
	}
	return entry.Value, nil
}

// Set inserts or replaces the value under key
func (s *StateStore) Set(ctx context.Context, key, value string) error {
	return s.upsert(s.db.WithContext(ctx), key, value, s.now().UTC())
}

// SetMany upserts every entry inside one transaction
func (s *StateStore) SetMany(ctx context.Context, entries map[string]string) error {
	now := s.now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range sortedKeys(entries) {
			if err := s.upsert(tx, key, entries[key], now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *StateStore) upsert(db *gorm.DB, key, value string, now time.Time) error {
	entry := StateEntry{Key: key, Value: value, UpdatedAt: now}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error
func (s *StateStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&StateEntry{}).Error; err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	return nil
}

// DeleteMany removes every key in one statement
func (s *StateStore) DeleteMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&StateEntry{}).Error; err != nil {
		return fmt.Errorf("delete state %v: %w", keys, err)
	}
	return nil
}

func sortedKeys(entries map[string]string) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
