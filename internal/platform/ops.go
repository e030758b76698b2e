package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/catcare/pkg/adapters/fs"
	"github.com/aretw0/catcare/pkg/adapters/memory"
	"github.com/aretw0/catcare/pkg/adapters/sqlite"
	"github.com/aretw0/catcare/pkg/core"
)

// Open creates the configured store.
// The uri argument is adapter-specific: a directory for "fs", a database
// file (or ":memory:") for "sqlite", and ignored for "memory".
//
// Stores holding external resources implement core.Closer.
func Open(uri string, opts ...Option) (core.Store, error) {
	o := applyOptions(opts)
	return open(uri, o)
}

func open(uri string, o *options) (core.Store, error) {
	if o.store != nil {
		return o.store, nil
	}

	switch o.adapter {
	case AdapterFS:
		return openFS(uri, o)
	case AdapterMemory:
		return memory.New(memory.WithReadOnly(o.getBool("read_only", false))), nil
	case AdapterSQLite:
		return openSQLite(uri, o)
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// resolve applies the dev sandbox to a user supplied path.
func resolve(path string, o *options) (string, bool) {
	readOnly := o.getBool("read_only", false)
	bypass := readOnly || !o.getBool("dev_safety", true)
	useTemp := o.getBool("temp_dir", false) || (IsDevRun() && !bypass)
	resolved := ResolveDataPath(path, useTemp)

	if o.logger != nil && IsDevRun() {
		switch {
		case readOnly:
			o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolved)
		case bypass:
			o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
		default:
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolved)
		}
	}
	if o.logger != nil && useTemp && resolved != path {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}
	return resolved, useTemp
}

// openFS handles the initialization logic for the filesystem adapter.
func openFS(path string, o *options) (core.Store, error) {
	resolved, _ := resolve(path, o)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	store := fs.NewStore(fs.Config{
		Path:         resolved,
		MustExist:    o.getBool("must_exist", false),
		ReadOnly:     o.getBool("read_only", false),
		Logger:       o.logger,
		SystemDir:    o.getString("system_dir"),
		ErrorHandler: errorHandler,
	})
	if err := store.Initialize(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func openSQLite(dsn string, o *options) (core.Store, error) {
	if dsn == "" {
		dsn = sqlite.MemoryDSN
	}
	if dsn != sqlite.MemoryDSN {
		dir, _ := resolve(filepath.Dir(dsn), o)
		if !o.getBool("read_only", false) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		dsn = filepath.Join(dir, filepath.Base(dsn))
	}
	return sqlite.Open(context.Background(), dsn,
		sqlite.WithReadOnly(o.getBool("read_only", false)),
		sqlite.WithLogger(o.logger),
	)
}
