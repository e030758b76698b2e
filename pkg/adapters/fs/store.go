package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/catcare/pkg/core"
)

// SlotExt is the extension of slot files. The file holds the raw stored
// string, which is JSON for every slot except the avatar.
const SlotExt = ".slot"

// Store implements core.Store on a directory, one file per slot.
type Store struct {
	Path   string
	config Config

	// writeMu serializes writers; reads go straight to disk.
	writeMu sync.Mutex

	mu        sync.RWMutex
	watchers  int
	lastWrite *time.Time
}

// Config holds the configuration for the filesystem store.
type Config struct {
	Path         string
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	SystemDir    string      // e.g. ".catcare"; never listed as a slot
	ErrorHandler func(error) // receives watcher errors
}

// NewStore creates a new filesystem-backed store.
func NewStore(config Config) *Store {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.SystemDir == "" {
		config.SystemDir = ".catcare"
	}
	return &Store{
		Path:   config.Path,
		config: config,
	}
}

// Initialize ensures the data directory exists.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data path does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("data path is not a directory: %s", s.Path)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Join(s.Path, s.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := removeStaleTemp(s.Path); err != nil {
		s.config.Logger.Warn("failed to remove stale temp files", "path", s.Path, "error", err)
	}
	return nil
}

func (s *Store) filename(key string) string {
	return filepath.Join(s.Path, key+SlotExt)
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := core.ValidateKey(key); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements core.Store. The file is replaced atomically.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := core.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := writeFileAtomic(s.filename(key), []byte(value), 0644); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
		}
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	s.recordWrite()
	s.config.Logger.Debug("slot written", "key", key, "bytes", len(value))
	return nil
}

// Remove implements core.Store.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := core.ValidateKey(key); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := os.Remove(s.filename(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove slot %s: %w", key, err)
	}
	s.recordWrite()
	return nil
}

// Keys implements core.Store.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if key, ok := s.keyOf(e.Name()); ok && !e.IsDir() {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// keyOf maps a file name in the data directory back to its slot key.
func (s *Store) keyOf(name string) (string, bool) {
	if !strings.HasSuffix(name, SlotExt) || strings.HasPrefix(name, TempFilePrefix) {
		return "", false
	}
	key := strings.TrimSuffix(name, SlotExt)
	if core.ValidateKey(key) != nil {
		return "", false
	}
	return key, true
}

var _ core.Store = (*Store)(nil)
var _ core.Watchable = (*Store)(nil)
