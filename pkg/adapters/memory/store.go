// Package memory provides an in-process core.Store, the equivalent of the
// browser's local storage. It backs tests and ephemeral sessions.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/introspection"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/catcare/pkg/core"
)

// Store is a map-backed core.Store.
type Store struct {
	mu       sync.RWMutex
	data     map[string]string
	readOnly bool
	watchers map[int]*watcher
	nextID   int
}

type watcher struct {
	pattern string
	ch      chan core.Event
}

// Option configures a Store.
type Option func(*Store)

// WithReadOnly makes every write fail with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(s *Store) {
		s.readOnly = enabled
	}
}

// WithData seeds the store.
func WithData(data map[string]string) Option {
	return func(s *Store) {
		for k, v := range data {
			s.data[k] = v
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		data:     make(map[string]string),
		watchers: make(map[int]*watcher),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set implements core.Store.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return core.ErrReadOnly
	}
	s.data[key] = value
	s.notify(core.NewEvent(core.EventSet, key))
	return nil
}

// Remove implements core.Store.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return core.ErrReadOnly
	}
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	s.notify(core.NewEvent(core.EventRemove, key))
	return nil
}

// Keys implements core.Store.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Snapshot returns a copy of the stored data.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Watch implements core.Watchable. Events are dropped for a watcher whose
// buffer is full rather than blocking writers.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	w := &watcher{pattern: pattern, ch: make(chan core.Event, 64)}
	s.watchers[id] = w
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.watchers, id)
		close(w.ch)
		s.mu.Unlock()
	}()

	return w.ch, nil
}

// notify must be called with s.mu held.
func (s *Store) notify(e core.Event) {
	for _, w := range s.watchers {
		if ok, _ := doublestar.Match(w.pattern, e.Key); !ok {
			continue
		}
		select {
		case w.ch <- e:
		default:
		}
	}
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Keys     int  `json:"keys"`
	ReadOnly bool `json:"read_only"`
	Watchers int  `json:"watchers"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		Keys:     len(s.data),
		ReadOnly: s.readOnly,
		Watchers: len(s.watchers),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "memory-store"
}

var _ core.Store = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
