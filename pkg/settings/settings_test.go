package settings

import (
	"testing"
)

func TestNotificationDefaults(t *testing.T) {
	n := DefaultNotifications()
	if n.Promotions {
		t.Error("promotions must be off by default")
	}
	if got := n.EnabledCount(); got != 4 {
		t.Errorf("expected 4 enabled channels, got %d", got)
	}
}

func TestToggle(t *testing.T) {
	n := DefaultNotifications()

	next, err := n.Toggle(NotifyVet)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if next.Vet || !n.Vet {
		t.Error("Toggle must return a modified copy")
	}

	if _, err := n.Toggle("sms"); err == nil {
		t.Error("expected error for unknown channel")
	}
}

func TestGuestDefaults(t *testing.T) {
	g := DefaultGuest()
	if g.GuestMode || g.Code() != "" {
		t.Errorf("unexpected defaults %+v", g)
	}
	want := map[string]bool{
		PermViewPets: true, PermViewTasks: true, PermMarkTasksDone: true,
		PermEditTasks: false, PermEditPets: false,
	}
	for perm, on := range want {
		if g.GuestPermissions[perm] != on {
			t.Errorf("permission %s: got %v want %v", perm, g.GuestPermissions[perm], on)
		}
	}

	c := g.clone()
	c.GuestPermissions[PermEditPets] = true
	if g.GuestPermissions[PermEditPets] {
		t.Error("clone must not share permissions")
	}
}

func TestGuestCode(t *testing.T) {
	seen := map[string]bool{}
	for range 50 {
		code, err := NewGuestCode()
		if err != nil {
			t.Fatalf("NewGuestCode failed: %v", err)
		}
		if !ValidGuestCode(code) {
			t.Fatalf("generated invalid code %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("codes are not random enough: %d distinct of 50", len(seen))
	}

	for _, bad := range []string{"", "ABC", "ABCDE1", "abcdef", "ABCDEFG"} {
		if ValidGuestCode(bad) {
			t.Errorf("expected %q to be invalid", bad)
		}
	}
}

func TestAvatars(t *testing.T) {
	if !IsInlineAvatar("data:image/png;base64,xx") || IsInlineAvatar(PresetAvatars[0]) {
		t.Error("IsInlineAvatar misclassifies")
	}
	for range 20 {
		if p := RandomPreset(); !IsPresetAvatar(p) {
			t.Errorf("RandomPreset returned %q", p)
		}
	}
}
