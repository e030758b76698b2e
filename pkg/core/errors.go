package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly    = errors.New("store is in read-only mode")
	ErrInvalidKey  = errors.New("invalid slot key")
	ErrUnavailable = errors.New("store is unavailable")

	// Import taxonomy.
	ErrFormat      = errors.New("only .json files are accepted")
	ErrParse       = errors.New("file is not a readable JSON backup")
	ErrSchema      = errors.New("JSON does not contain expected app data")
	ErrOwnership   = errors.New("file owner does not match current user")
	ErrImportApply = errors.New("failed to apply import")

	// Import dialog lifecycle.
	ErrStaleImport = errors.New("import dialog was closed or superseded")
	ErrNoPreview   = errors.New("no validated import to apply")
)

// Import stages, used in ImportError.
const (
	StageRead     = "read"
	StageValidate = "validate"
	StageApply    = "apply"
)

// ImportError captures where an import failed alongside the originating error.
type ImportError struct {
	Stage string
	File  string
	Key   string
	Err   error
}

func (e *ImportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "import " + e.Stage
	if e.File != "" {
		msg += fmt.Sprintf(" file=%q", e.File)
	}
	if e.Key != "" {
		msg += fmt.Sprintf(" key=%s", e.Key)
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *ImportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewImportError wraps err unless it already carries import context.
func NewImportError(stage, file string, err error) error {
	if err == nil {
		return nil
	}
	var ie *ImportError
	if errors.As(err, &ie) {
		return err
	}
	return &ImportError{Stage: stage, File: file, Err: err}
}
