package backup_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/catcare/pkg/backup"
	"github.com/aretw0/catcare/pkg/core"
)

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
		profile  string
		strict   bool
		wantErr  error
		stage    string
	}{
		{"Text File", "notes.txt", `{"pets":[]}`, "", false, core.ErrFormat, core.StageRead},
		{"Text File With Garbage", "notes.txt", `not json`, "", false, core.ErrFormat, core.StageRead},
		{"Malformed JSON", "b.json", `{"pets":`, "", false, core.ErrParse, core.StageValidate},
		{"Trailing Data", "b.json", `{"pets":[]} {}`, "", false, core.ErrParse, core.StageValidate},
		{"Top-level Array", "b.json", `[{"id":1}]`, "", false, core.ErrParse, core.StageValidate},
		{"No Recognized Keys", "b.json", `{"app_state":{},"foo":1}`, "", false, core.ErrSchema, core.StageValidate},
		{"Other Owner", "b.json", `{"pets":[],"owner_id":"u-2"}`, `{"id":"u-1"}`, true, core.ErrOwnership, core.StageValidate},
		{"Other Profile Owner", "b.json", `{"user_profile":{"userId":7}}`, `{"userId":8}`, true, core.ErrOwnership, core.StageValidate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := map[string]string{}
			if tt.profile != "" {
				data[core.KeyUserProfile] = tt.profile
			}
			svc, store := newService(t, data)
			before := store.Snapshot()

			imp, err := svc.Validate(context.Background(), tt.filename, strings.NewReader(tt.body), tt.strict)
			assert.Nil(t, imp)
			assert.ErrorIs(t, err, tt.wantErr)

			var ie *core.ImportError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.stage, ie.Stage)
			assert.Equal(t, tt.filename, ie.File)

			assert.Equal(t, before, store.Snapshot(), "validation must not write")
		})
	}
}

func TestCheckFilename(t *testing.T) {
	for _, name := range []string{"b.json", "B.JSON", "catcare_backup_2024-05-17.Json"} {
		assert.NoError(t, backup.CheckFilename(name), name)
	}
	for _, name := range []string{"notes.txt", "backup.json.bak", "json"} {
		err := backup.CheckFilename(name)
		assert.ErrorIs(t, err, core.ErrParse, name)
		assert.ErrorIs(t, err, core.ErrFormat, name)
	}
}

func TestValidatePreview(t *testing.T) {
	svc, _ := newService(t, nil)
	body := `{
		"pets": [{"id":"p1"},{"id":"p2"}],
		"tasks": [{"id":"t1"}],
		"settings": {"theme":"dark"},
		"catcare_notifications": {"feeding":true},
		"owner_id": "u-1",
		"exportedAt": "2024-01-01T00:00:00.000Z"
	}`

	imp, err := svc.Validate(context.Background(), "Backup.JSON", strings.NewReader(body), true)
	require.NoError(t, err)

	assert.Equal(t, backup.ImportPreview{
		OwnerID:       "u-1",
		Pets:          2,
		Tasks:         1,
		Settings:      true,
		Notifications: true,
	}, imp.Preview)

	keys := make([]string, 0, len(imp.Slots))
	for _, s := range imp.Slots {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{core.KeyPets, core.KeyTasks, core.KeySettings, core.KeyNotifications}, keys)
	assert.Equal(t, core.KindSequence, imp.Slots[0].Value.Kind())
	assert.Equal(t, core.KindMapping, imp.Slots[2].Value.Kind())
}

func TestValidateOwnership(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		profile map[string]string
		strict  bool
		wantErr bool
	}{
		{"No Owner Anywhere", `{"pets":[]}`, nil, true, false},
		{"File Owner Without Current User", `{"pets":[],"ownerId":"u-2"}`, nil, true, false},
		{"Current User Without File Owner", `{"pets":[]}`, map[string]string{core.KeyUserProfile: `{"id":"u-1"}`}, true, false},
		{"Same Owner", `{"pets":[],"owner_id":"u-1"}`, map[string]string{core.KeyUserProfile: `{"id":"u-1"}`}, true, false},
		{"Numeric And String Ids Compare By Text", `{"pets":[],"owner_id":42}`, map[string]string{core.KeyUserProfile: `{"id":"42"}`}, true, false},
		{"Different Owner Lenient", `{"pets":[],"owner_id":"u-2"}`, map[string]string{core.KeyUserProfile: `{"id":"u-1"}`}, false, false},
		{"Different Owner Strict", `{"pets":[],"owner_id":"u-2"}`, map[string]string{core.KeyUserProfile: `{"id":"u-1"}`}, true, true},
		{"Fallback user_profile_id", `{"pets":[],"owner_id":"u-2"}`, map[string]string{core.KeyUserProfileID: "u-1"}, true, true},
		{"Fallback user_id", `{"pets":[],"owner_id":"u-1"}`, map[string]string{core.KeyUserID: "u-1"}, true, false},
		{"Unparsable Profile Means Unknown User", `{"pets":[],"owner_id":"u-2"}`, map[string]string{core.KeyUserProfile: `{oops`, core.KeyUserID: "u-1"}, true, false},
		{"owner_id Wins Over Profile", `{"pets":[],"owner_id":"u-1","user_profile":{"id":"u-2"}}`, map[string]string{core.KeyUserProfile: `{"id":"u-1"}`}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t, tt.profile)
			_, err := svc.Validate(context.Background(), "b.json", strings.NewReader(tt.body), tt.strict)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrOwnership)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOwnerID(t *testing.T) {
	doc := map[string]any{"user_profile": map[string]any{"id": "", "userId": "u-9"}}
	owner, ok := backup.OwnerID(doc)
	assert.True(t, ok)
	assert.Equal(t, "u-9", owner)

	_, ok = backup.OwnerID(map[string]any{"owner_id": ""})
	assert.False(t, ok)
}

func TestValidateDocument(t *testing.T) {
	imp, err := backup.ValidateDocument([]byte(`{"tasks":[{"id":"t1"},{"id":"t2"}]}`), "", true)
	require.NoError(t, err)
	assert.Equal(t, 2, imp.Preview.Tasks)

	_, err = backup.ValidateDocument([]byte(`"just a string"`), "", false)
	assert.ErrorIs(t, err, core.ErrParse)
}
