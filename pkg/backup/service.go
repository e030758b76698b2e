package backup

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/catcare/pkg/core"
)

// DefaultFilePrefix is the application prefix of backup file names.
const DefaultFilePrefix = "catcare"

// Mirror is an in-memory copy of slot state that must be reloaded after an
// import wrote to the store.
type Mirror interface {
	Refresh(ctx context.Context)
}

// Config holds the dependencies of the Service.
type Config struct {
	Logger     *slog.Logger
	FilePrefix string
	Clock      func() time.Time
	Mirrors    []Mirror
	// Lenient starts import sessions with the ownership check disabled.
	Lenient bool
}

// Service handles export, validation and application of backups for one store.
type Service struct {
	store   core.Store
	logger  *slog.Logger
	prefix  string
	now     func() time.Time
	mirrors []Mirror
	strict  bool

	// applyMu serializes Apply calls against the store. mirrors is written
	// with both applyMu and mu held.
	applyMu sync.Mutex

	mu          sync.RWMutex
	lastExport  *time.Time
	lastApply   *time.Time
	exports     int
	imports     int
	liveHandles int
}

// NewService creates a new Service.
func NewService(store core.Store, cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	prefix := cfg.FilePrefix
	if prefix == "" {
		prefix = DefaultFilePrefix
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:   store,
		logger:  logger,
		prefix:  prefix,
		now:     now,
		mirrors: cfg.Mirrors,
		strict:  !cfg.Lenient,
	}
}

// Store returns the underlying store.
func (s *Service) Store() core.Store {
	return s.store
}

// Strict reports whether imports check ownership by default.
func (s *Service) Strict() bool {
	return s.strict
}

// Mirrors returns the registered mirrors.
func (s *Service) Mirrors() []Mirror {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	return slices.Clone(s.mirrors)
}

// AddMirror registers a mirror refreshed after every Apply.
func (s *Service) AddMirror(m Mirror) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirrors = append(s.mirrors, m)
}

// ServiceState exposes internal state for observability.
type ServiceState struct {
	StoreType   string     `json:"store_type"`
	FilePrefix  string     `json:"file_prefix"`
	Strict      bool       `json:"strict"`
	Mirrors     int        `json:"mirrors"`
	Exports     int        `json:"exports"`
	Imports     int        `json:"imports"`
	LiveHandles int        `json:"live_handles"`
	LastExport  *time.Time `json:"last_export,omitempty"`
	LastApply   *time.Time `json:"last_apply,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storeType := "unknown"
	if s.store != nil {
		storeType = "store"
		if comp, ok := s.store.(introspection.Component); ok {
			storeType = comp.ComponentType()
		}
	}

	return ServiceState{
		StoreType:   storeType,
		FilePrefix:  s.prefix,
		Strict:      s.strict,
		Mirrors:     len(s.mirrors),
		Exports:     s.exports,
		Imports:     s.imports,
		LiveHandles: s.liveHandles,
		LastExport:  s.lastExport,
		LastApply:   s.lastApply,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "backup"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)

func (s *Service) recordExport(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exports++
	s.liveHandles++
	s.lastExport = &at
}

func (s *Service) recordRelease() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveHandles > 0 {
		s.liveHandles--
	}
}

func (s *Service) recordApply(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imports++
	s.lastApply = &at
}
