package typed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/catcare/pkg/core"
)

// ErrNotFound is returned when a slot or record does not exist.
var ErrNotFound = errors.New("not found")

// Slot provides type-safe access to the JSON document stored under one key.
type Slot[T any] struct {
	store core.Store
	key   string
}

// NewSlot creates a typed view of key.
func NewSlot[T any](store core.Store, key string) *Slot[T] {
	return &Slot[T]{store: store, key: key}
}

// Key returns the slot key.
func (s *Slot[T]) Key() string {
	return s.key
}

// Load decodes the slot. It returns ErrNotFound if the slot is absent.
func (s *Slot[T]) Load(ctx context.Context) (T, error) {
	var zero T
	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return zero, err
	}
	if !ok || raw == "" {
		return zero, fmt.Errorf("slot %s: %w", s.key, ErrNotFound)
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return zero, fmt.Errorf("unmarshal slot %s failed: %w", s.key, err)
	}
	return v, nil
}

// LoadOr decodes the slot, returning def when it is absent or unreadable.
func (s *Slot[T]) LoadOr(ctx context.Context, def T) T {
	v, err := s.Load(ctx)
	if err != nil {
		return def
	}
	return v
}

// Save encodes v and overwrites the slot.
func (s *Slot[T]) Save(ctx context.Context, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %s: %w", s.key, err)
	}
	return s.store.Set(ctx, s.key, string(data))
}

// Update loads the slot (or def when absent), applies fn and saves the result.
func (s *Slot[T]) Update(ctx context.Context, def T, fn func(T) T) (T, error) {
	cur, err := s.Load(ctx)
	if errors.Is(err, ErrNotFound) {
		cur = def
	} else if err != nil {
		return cur, err
	}
	next := fn(cur)
	if err := s.Save(ctx, next); err != nil {
		return cur, err
	}
	return next, nil
}

// Clear removes the slot.
func (s *Slot[T]) Clear(ctx context.Context) error {
	return s.store.Remove(ctx, s.key)
}

// Profile returns the typed user profile slot of store.
func Profile(store core.Store) *Slot[core.UserProfile] {
	return NewSlot[core.UserProfile](store, core.KeyUserProfile)
}
