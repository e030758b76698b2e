package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/catcare/pkg/core"
)

// Snapshot field names that are not slots.
const (
	FieldExportedAt    = "exportedAt"
	FieldProfileAvatar = "profileAvatar"
)

// inlineDataPrefix marks an avatar embedded as a data URI.
const inlineDataPrefix = "data:"

// timestampLayout matches the ISO-8601 form with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrHandleReleased is returned when reading a released download handle.
var ErrHandleReleased = errors.New("download handle already released")

// Snapshot is an assembled backup document: slot keys mapped to their values,
// plus exportedAt and, when an avatar is stored, profileAvatar.
type Snapshot map[string]any

// Export is the result of an export: the document, a suggested file name and
// the transient handle holding the encoded bytes.
type Export struct {
	Snapshot Snapshot
	Filename string
	Handle   *Handle
}

// Handle is a transient download handle. It must be released once the
// caller no longer needs the bytes.
type Handle struct {
	URL string

	mu        sync.Mutex
	data      []byte
	released  bool
	onRelease func()
}

func newHandle(data []byte, onRelease func()) *Handle {
	return &Handle{
		URL:       "blob:catcare/" + uuid.NewString(),
		data:      data,
		onRelease: onRelease,
	}
}

// Bytes returns the encoded document.
func (h *Handle) Bytes() ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil, ErrHandleReleased
	}
	return h.data, nil
}

// Size is the encoded length in bytes, zero once released.
func (h *Handle) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.data)
}

// Released reports whether Release was called.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release frees the handle. It is safe to call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	h.data = nil
	if h.onRelease != nil {
		h.onRelease()
	}
}

// Export reads the export allow-list from the store and assembles a snapshot.
// A slot that is not valid JSON is exported as its raw string.
func (s *Service) Export(ctx context.Context) (*Export, error) {
	now := s.now()
	snap, err := s.snapshot(ctx, now)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	s.recordExport(now)
	s.logger.Debug("export prepared", "fields", len(snap), "bytes", len(data))

	return &Export{
		Snapshot: snap,
		Filename: BackupFilename(s.prefix, now),
		Handle:   newHandle(data, s.recordRelease),
	}, nil
}

func (s *Service) snapshot(ctx context.Context, now time.Time) (Snapshot, error) {
	snap := make(Snapshot)
	for _, key := range core.ExportKeys {
		raw, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
		}
		if !ok || raw == "" {
			continue
		}
		v, err := core.DecodeJSON([]byte(raw))
		if err != nil {
			s.logger.Debug("exporting raw slot value", "key", key, "error", err)
			snap[key] = raw
			continue
		}
		snap[key] = v
	}

	avatar, ok, err := s.store.Get(ctx, core.KeyAvatar)
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", core.KeyAvatar, err)
	}
	if ok && avatar != "" {
		if strings.HasPrefix(avatar, inlineDataPrefix) {
			snap[FieldProfileAvatar] = nil
		} else {
			snap[FieldProfileAvatar] = avatar
		}
	}

	snap[FieldExportedAt] = now.UTC().Format(timestampLayout)
	return snap, nil
}

// BackupFilename suggests <prefix>_backup_<YYYY-MM-DD>.json for t (UTC date).
func BackupFilename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_backup_%s.json", prefix, t.UTC().Format(time.DateOnly))
}

// NormalizeFilename cleans a user-edited download name: blank names fall back
// to <prefix>_backup.json and a missing .json extension is appended.
func NormalizeFilename(prefix, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = prefix + "_backup.json"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		name += ".json"
	}
	return name
}

// Download writes the handle contents to w and returns the final file name.
func (s *Service) Download(w io.Writer, h *Handle, name string) (string, error) {
	if h == nil {
		return "", ErrHandleReleased
	}
	data, err := h.Bytes()
	if err != nil {
		return "", err
	}
	final := NormalizeFilename(s.prefix, name)
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", final, err)
	}
	return final, nil
}
