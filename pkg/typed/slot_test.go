package typed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/catcare/pkg/adapters/fs"
	"github.com/aretw0/catcare/pkg/core"
	"github.com/aretw0/catcare/pkg/typed"
)

type Preferences struct {
	Theme string `json:"theme"`
	Units string `json:"units"`
}

func setupStore(t *testing.T) core.Store {
	t.Helper()
	store := fs.NewStore(fs.Config{Path: t.TempDir()})
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return store
}

func TestSlot(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	prefs := typed.NewSlot[Preferences](store, core.KeySettings)

	if _, err := prefs.Load(ctx); !errors.Is(err, typed.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	def := Preferences{Theme: "light"}
	if got := prefs.LoadOr(ctx, def); got != def {
		t.Errorf("expected default, got %+v", got)
	}

	if err := prefs.Save(ctx, Preferences{Theme: "dark", Units: "kg"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, _, _ := store.Get(ctx, core.KeySettings)
	if raw != `{"theme":"dark","units":"kg"}` {
		t.Errorf("unexpected stored JSON %s", raw)
	}

	got, err := prefs.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Theme != "dark" || got.Units != "kg" {
		t.Errorf("unexpected value %+v", got)
	}

	next, err := prefs.Update(ctx, def, func(p Preferences) Preferences {
		p.Units = "lb"
		return p
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if next.Theme != "dark" || next.Units != "lb" {
		t.Errorf("Update should start from the stored value, got %+v", next)
	}

	if err := prefs.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := prefs.Load(ctx); !errors.Is(err, typed.ErrNotFound) {
		t.Errorf("expected ErrNotFound after Clear, got %v", err)
	}
}

func TestSlotUnreadable(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	if err := store.Set(ctx, core.KeySettings, "not json"); err != nil {
		t.Fatal(err)
	}

	prefs := typed.NewSlot[Preferences](store, core.KeySettings)
	if _, err := prefs.Load(ctx); err == nil || errors.Is(err, typed.ErrNotFound) {
		t.Errorf("expected decode error, got %v", err)
	}
	if got := prefs.LoadOr(ctx, Preferences{Theme: "light"}); got.Theme != "light" {
		t.Errorf("LoadOr should fall back to the default, got %+v", got)
	}
	if _, err := prefs.Update(ctx, Preferences{}, func(p Preferences) Preferences { return p }); err == nil {
		t.Error("Update must not overwrite an unreadable slot")
	}
}

func TestProfile(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	if err := store.Set(ctx, core.KeyUserProfile, `{"userId":42,"name":"Ana"}`); err != nil {
		t.Fatal(err)
	}

	p, err := typed.Profile(store).Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.UserID.String() != "42" || p.Name != "Ana" || !p.ID.IsZero() {
		t.Errorf("unexpected profile %+v", p)
	}
}
