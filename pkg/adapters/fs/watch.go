package fs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/catcare/pkg/core"
)

// Watch implements core.Watchable. It reports slot files created, written or
// removed in the data directory whose key matches pattern. Changes made by
// other processes are reported too.
func (s *Store) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	out := make(chan core.Event, 16)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		defer s.setWatcherActive(false)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher, pattern, out)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.handleWatcherError(fmt.Errorf("watcher panic: %w", err))
	}))

	return out, nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, out chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			e, ok := s.mapEvent(event, pattern)
			if !ok {
				continue
			}
			s.config.Logger.Debug("slot event", "type", e.Type, "key", e.Key)
			select {
			case out <- e:
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.handleWatcherError(err)
		}
	}
}

// mapEvent turns a filesystem event into a slot event, filtering temp files,
// the system directory and keys outside pattern.
func (s *Store) mapEvent(event fsnotify.Event, pattern string) (core.Event, bool) {
	if filepath.Dir(event.Name) != filepath.Clean(s.Path) {
		return core.Event{}, false
	}
	key, ok := s.keyOf(filepath.Base(event.Name))
	if !ok {
		return core.Event{}, false
	}
	if match, _ := doublestar.Match(pattern, key); !match {
		return core.Event{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.NewEvent(core.EventRemove, key), true
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return core.NewEvent(core.EventSet, key), true
	default:
		return core.Event{}, false
	}
}

func (s *Store) handleWatcherError(err error) {
	s.config.Logger.Error("fsnotify error", "error", err)
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}
