// Package lifecycle exposes slot changes as a lifecycle.Source so the CLI
// can consume them alongside other lifecycle events.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/catcare/pkg/core"
)

type slotSource struct {
	store   core.Watchable
	pattern string
	out     chan lifecycle.Event
}

// NewSource creates a lifecycle.Source emitting the store's slot events for
// keys matching pattern. Watching starts on Start.
func NewSource(store core.Watchable, pattern string) lifecycle.Source {
	if pattern == "" {
		pattern = "*"
	}
	return &slotSource{
		store:   store,
		pattern: pattern,
		out:     make(chan lifecycle.Event),
	}
}

func (s *slotSource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *slotSource) Start(ctx context.Context) error {
	events, err := s.store.Watch(ctx, s.pattern)
	if err != nil {
		close(s.out)
		return fmt.Errorf("failed to watch slots: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
