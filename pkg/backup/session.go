package backup

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/aretw0/catcare/pkg/core"
)

// ImportState is the state of an import dialog.
type ImportState int

const (
	StateIdle ImportState = iota
	StateFileChosen
	StateParsed
	StateRejected
	StatePreviewReady
)

func (s ImportState) String() string {
	switch s {
	case StateFileChosen:
		return "file_chosen"
	case StateParsed:
		return "parsed"
	case StateRejected:
		return "rejected"
	case StatePreviewReady:
		return "preview_ready"
	default:
		return "idle"
	}
}

// Token identifies one opening of the import dialog. A file read started
// under an old token cannot publish its result.
type Token uint64

// Session holds the state of the import dialog between choosing a file and
// applying it.
type Session struct {
	svc *Service

	mu         sync.Mutex
	generation Token
	open       bool
	state      ImportState
	pending    *Import
	lastErr    error
	processing bool
	strict     bool
}

// NewSession creates an import session. Strict mode follows the service
// configuration and is on unless Config.Lenient was set.
func (s *Service) NewSession() *Session {
	return &Session{svc: s, strict: s.strict}
}

// Open starts a new dialog, discarding any previous preview.
func (sess *Session) Open() Token {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.generation++
	sess.open = true
	sess.reset()
	return sess.generation
}

// Close dismisses the dialog. Reads still in flight are ignored when they finish.
func (sess *Session) Close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.generation++
	sess.open = false
	sess.reset()
}

func (sess *Session) reset() {
	sess.state = StateIdle
	sess.pending = nil
	sess.lastErr = nil
	sess.processing = false
}

func (sess *Session) current(tok Token) bool {
	return sess.open && tok == sess.generation
}

// Choose validates an uploaded file and stores its preview. If the dialog
// was closed or reopened while the file was being read, the result is
// dropped and ErrStaleImport returned.
func (sess *Session) Choose(ctx context.Context, tok Token, filename string, r io.Reader) (*ImportPreview, error) {
	sess.mu.Lock()
	if !sess.current(tok) {
		sess.mu.Unlock()
		return nil, core.ErrStaleImport
	}
	sess.reset()
	sess.state = StateFileChosen
	sess.mu.Unlock()

	doc, err := sess.svc.readDocument(filename, r)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.current(tok) {
		return nil, core.ErrStaleImport
	}
	if err != nil {
		return nil, sess.reject(err)
	}
	sess.state = StateParsed

	imp, err := sess.svc.checkDocument(ctx, filename, doc, sess.strict)
	if err != nil {
		return nil, sess.reject(err)
	}
	sess.state = StatePreviewReady
	sess.pending = imp
	preview := imp.Preview
	return &preview, nil
}

func (sess *Session) reject(err error) error {
	sess.state = StateRejected
	sess.lastErr = err
	return err
}

// Apply writes the pending import and closes the dialog on success.
func (sess *Session) Apply(ctx context.Context, mode Mode) (ApplyReport, error) {
	sess.mu.Lock()
	if sess.pending == nil || !sess.open {
		sess.mu.Unlock()
		return ApplyReport{}, core.ErrNoPreview
	}
	if sess.processing {
		sess.mu.Unlock()
		return ApplyReport{}, errors.New("import already in progress")
	}
	sess.processing = true
	imp := sess.pending
	tok := sess.generation
	sess.mu.Unlock()

	report, err := sess.svc.Apply(ctx, imp, mode)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.processing = false
	if err != nil {
		sess.lastErr = err
		return report, err
	}
	if tok == sess.generation {
		sess.generation++
		sess.open = false
		sess.reset()
	}
	return report, nil
}

// SetStrict toggles the owner check for subsequent files.
func (sess *Session) SetStrict(strict bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.strict = strict
}

// State returns the dialog state.
func (sess *Session) State() ImportState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// Preview returns the pending preview, if any.
func (sess *Session) Preview() (ImportPreview, bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.pending == nil {
		return ImportPreview{}, false
	}
	return sess.pending.Preview, true
}

// Err returns the message-worthy error of the last step.
func (sess *Session) Err() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.lastErr
}

// Processing mirrors the advisory flag the UI uses to disable the apply button.
func (sess *Session) Processing() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.processing
}

// ExportDialog keeps at most one live download handle.
type ExportDialog struct {
	svc *Service

	mu       sync.Mutex
	current  *Export
	filename string
}

// NewExportDialog creates an export dialog bound to the service.
func (s *Service) NewExportDialog() *ExportDialog {
	return &ExportDialog{svc: s}
}

// Open prepares a fresh export, releasing the previous handle.
func (d *ExportDialog) Open(ctx context.Context) (*Export, error) {
	exp, err := d.svc.Export(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		d.current.Handle.Release()
	}
	d.current = exp
	d.filename = exp.Filename
	return exp, nil
}

// Filename returns the download name currently shown in the dialog.
func (d *ExportDialog) Filename() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filename
}

// SetFilename records a user edit of the download name.
func (d *ExportDialog) SetFilename(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filename = name
}

// Download writes the current export under the (possibly edited) file name.
func (d *ExportDialog) Download(w io.Writer) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return "", ErrHandleReleased
	}
	return d.svc.Download(w, d.current.Handle, d.filename)
}

// Close releases the live handle.
func (d *ExportDialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current != nil {
		d.current.Handle.Release()
		d.current = nil
	}
	d.filename = ""
}
