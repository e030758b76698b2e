package catcare

import (
	"log/slog"
	"time"

	"github.com/aretw0/catcare/internal/platform"
	"github.com/aretw0/catcare/pkg/backup"
	"github.com/aretw0/catcare/pkg/core"
	"github.com/aretw0/catcare/pkg/settings"
	"github.com/aretw0/catcare/pkg/typed"
)

// --- Types ---

// Service exports, validates and applies backups.
type Service = backup.Service

// Import is a validated upload awaiting Apply.
type Import = backup.Import

// Mode selects how an import is applied.
type Mode = backup.Mode

const (
	ModeMerge   = backup.ModeMerge
	ModeReplace = backup.ModeReplace
)

// SettingsManager persists notification, guest and avatar settings.
type SettingsManager = settings.Manager

// Slot is a typed view of a single store key.
type Slot[T any] = typed.Slot[T]

// Collection is a typed view of a slot holding records with ids.
type Collection[T typed.Identifiable] = typed.Collection[T]

// --- Configuration ---

// Option defines a functional option for configuring catcare.
type Option = platform.Option

// WithLogger sets the logger for the store and service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a storage adapter.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name ("fs", "memory", "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStrict sets whether imports check the document owner by default.
func WithStrict(strict bool) Option {
	return platform.WithStrict(strict)
}

// WithFilePrefix sets the application prefix of backup file names.
func WithFilePrefix(prefix string) Option {
	return platform.WithFilePrefix(prefix)
}

// WithClock overrides the time source used for export timestamps.
func WithClock(now func() time.Time) Option {
	return platform.WithClock(now)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the temp-dir sandbox used by `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist requires the data directory to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithSystemDir sets the hidden directory name of the fs adapter.
func WithSystemDir(name string) Option {
	return platform.WithSystemDir(name)
}

// WithWatcherErrorHandler registers a callback for watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New opens the store at uri and returns a backup Service wired with the
// settings mirror.
func New(uri string, opts ...Option) (*Service, error) {
	return platform.New(uri, opts...)
}

// Open returns the configured store without the backup service.
func Open(uri string, opts ...Option) (core.Store, error) {
	return platform.Open(uri, opts...)
}

// Settings returns the settings manager of svc.
func Settings(svc *Service) *SettingsManager {
	return platform.Settings(svc)
}

// Pets returns the typed pet collection of store.
func Pets(store core.Store) *Collection[core.Pet] {
	return typed.Pets(store)
}

// Tasks returns the typed task collection of store.
func Tasks(store core.Store) *Collection[core.Task] {
	return typed.Tasks(store)
}

// --- Safety & Utils ---

// ResolveDataPath determines the actual data directory based on safety rules.
func ResolveDataPath(userPath string, forceTemp bool) string {
	return platform.ResolveDataPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a catcare data directory.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
