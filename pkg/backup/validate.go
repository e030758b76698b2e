package backup

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/catcare/pkg/core"
)

// ImportPreview summarizes an uploaded document for confirmation.
type ImportPreview struct {
	OwnerID       string `json:"ownerId,omitempty"`
	Pets          int    `json:"pets"`
	Tasks         int    `json:"tasks"`
	Settings      bool   `json:"settings"`
	Notifications bool   `json:"notifications"`
}

// Import is a validated upload, ready to be applied.
type Import struct {
	Filename string
	Preview  ImportPreview

	// Slots holds the ApplyKeys present in the document, in apply order.
	Slots []SlotValue
}

// SlotValue is one incoming slot of an import.
type SlotValue struct {
	Key   string
	Value core.Value
}

// Validate reads an uploaded file and checks it is an acceptable import.
// In strict mode a document owned by another user is rejected.
// The store is only read, to resolve the current user.
func (s *Service) Validate(ctx context.Context, filename string, r io.Reader, strict bool) (*Import, error) {
	doc, err := s.readDocument(filename, r)
	if err != nil {
		return nil, err
	}
	return s.checkDocument(ctx, filename, doc, strict)
}

// readDocument covers FileChosen -> Parsed.
func (s *Service) readDocument(filename string, r io.Reader) (map[string]any, error) {
	if err := CheckFilename(filename); err != nil {
		return nil, core.NewImportError(core.StageRead, filename, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, core.NewImportError(core.StageRead, filename, fmt.Errorf("failed to read file: %w", err))
	}

	doc, err := ParseDocument(data)
	if err != nil {
		s.logger.Debug("import rejected", "file", filename, "error", err)
		return nil, core.NewImportError(core.StageValidate, filename, err)
	}
	return doc, nil
}

// checkDocument covers Parsed -> Rejected | PreviewReady.
func (s *Service) checkDocument(ctx context.Context, filename string, doc map[string]any, strict bool) (*Import, error) {
	var current string
	if strict {
		current, _ = s.CurrentUserID(ctx)
	}

	imp, err := CheckDocument(doc, current, strict)
	if err != nil {
		s.logger.Debug("import rejected", "file", filename, "error", err)
		return nil, core.NewImportError(core.StageValidate, filename, err)
	}
	imp.Filename = filename

	s.logger.Debug("import preview ready",
		"file", filename,
		"owner", imp.Preview.OwnerID,
		"pets", imp.Preview.Pets,
		"tasks", imp.Preview.Tasks,
	)
	return imp, nil
}

// CheckFilename accepts only .json uploads. A wrong extension is a parse
// failure that also matches core.ErrFormat.
func CheckFilename(name string) error {
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		return fmt.Errorf("%w: %w", core.ErrParse, core.ErrFormat)
	}
	return nil
}

// ValidateDocument parses data and runs the schema and ownership checks.
// currentUser is the active user id, empty when unknown.
func ValidateDocument(data []byte, currentUser string, strict bool) (*Import, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return CheckDocument(doc, currentUser, strict)
}

// ParseDocument decodes an upload, which must be a JSON object.
func ParseDocument(data []byte) (map[string]any, error) {
	raw, err := core.DecodeJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrParse, err)
	}
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an object", core.ErrParse)
	}
	return doc, nil
}

// CheckDocument runs the schema and ownership checks on a parsed upload and
// builds its preview.
func CheckDocument(doc map[string]any, currentUser string, strict bool) (*Import, error) {
	if !hasRecognizedKey(doc) {
		return nil, core.ErrSchema
	}

	owner, hasOwner := OwnerID(doc)
	if strict && hasOwner && currentUser != "" && owner != currentUser {
		return nil, fmt.Errorf("%w: file owner %q, current user %q", core.ErrOwnership, owner, currentUser)
	}

	imp := &Import{
		Preview: ImportPreview{
			OwnerID:       owner,
			Pets:          count(doc[core.KeyPets]),
			Tasks:         count(doc[core.KeyTasks]),
			Settings:      core.Truthy(doc[core.KeySettings]),
			Notifications: core.Truthy(doc[core.KeyNotifications]),
		},
	}
	for _, key := range core.ApplyKeys {
		v, ok := doc[key]
		if !ok {
			continue
		}
		imp.Slots = append(imp.Slots, SlotValue{Key: key, Value: core.ValueOf(v)})
	}
	return imp, nil
}

func hasRecognizedKey(doc map[string]any) bool {
	for _, key := range core.RecognizedKeys {
		if _, ok := doc[key]; ok {
			return true
		}
	}
	return false
}

func count(v any) int {
	if !core.Truthy(v) {
		return 0
	}
	return core.ValueOf(v).Len()
}

// OwnerID finds the owner of a backup document: owner_id, ownerId, then the
// id or userId of the embedded user profile.
func OwnerID(doc map[string]any) (string, bool) {
	if id, ok := core.IDString(doc["owner_id"]); ok {
		return id, true
	}
	if id, ok := core.IDString(doc["ownerId"]); ok {
		return id, true
	}
	if profile, ok := doc[core.KeyUserProfile].(map[string]any); ok {
		return profileID(profile)
	}
	return "", false
}

func profileID(profile map[string]any) (string, bool) {
	if id, ok := core.IDString(profile["id"]); ok {
		return id, true
	}
	return core.IDString(profile["userId"])
}

// CurrentUserID resolves the active user from the store: the user_profile
// slot when present, otherwise user_profile_id or user_id.
// A user_profile that cannot be parsed yields no id.
func (s *Service) CurrentUserID(ctx context.Context) (string, bool) {
	raw, ok, err := s.store.Get(ctx, core.KeyUserProfile)
	if err != nil {
		s.logger.Debug("failed to read user profile", "error", err)
		return "", false
	}
	if ok && raw != "" {
		v, err := core.ParseValue(raw)
		if err != nil || v.Kind() != core.KindMapping {
			return "", false
		}
		return profileID(v.Fields())
	}

	for _, key := range []string{core.KeyUserProfileID, core.KeyUserID} {
		id, ok, err := s.store.Get(ctx, key)
		if err == nil && ok && id != "" {
			return id, true
		}
	}
	return "", false
}
