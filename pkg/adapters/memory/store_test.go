package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/aretw0/catcare/pkg/adapters/memory"
	"github.com/aretw0/catcare/pkg/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New(memory.WithData(map[string]string{core.KeyPets: "[]"}))

	if v, ok, _ := store.Get(ctx, core.KeyPets); !ok || v != "[]" {
		t.Fatalf("expected seeded slot, got %q ok=%v", v, ok)
	}

	if err := store.Set(ctx, core.KeyTasks, `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	keys, _ := store.Keys(ctx)
	if len(keys) != 2 || keys[0] != core.KeyPets || keys[1] != core.KeyTasks {
		t.Errorf("unexpected keys %v", keys)
	}

	if err := store.Remove(ctx, core.KeyPets); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, core.KeyPets); ok {
		t.Error("expected slot to be removed")
	}

	snap := store.Snapshot()
	snap[core.KeyTasks] = "mutated"
	if v, _, _ := store.Get(ctx, core.KeyTasks); v == "mutated" {
		t.Error("snapshot must be a copy")
	}
}

func TestReadOnly(t *testing.T) {
	store := memory.New(memory.WithReadOnly(true))
	if err := store.Set(context.Background(), core.KeyPets, "[]"); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memory.New()

	events, err := store.Watch(ctx, "catcare_*")
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	_ = store.Set(ctx, core.KeyPets, "[]")
	_ = store.Set(ctx, core.KeyNotifications, "{}")
	_ = store.Remove(ctx, core.KeyNotifications)

	want := []core.Event{
		{Type: core.EventSet, Key: core.KeyNotifications},
		{Type: core.EventRemove, Key: core.KeyNotifications},
	}
	for _, w := range want {
		select {
		case e := <-events:
			if e.Type != w.Type || e.Key != w.Key {
				t.Errorf("expected %v %s, got %v %s", w.Type, w.Key, e.Type, e.Key)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}

	if state := store.State().(memory.StoreState); state.Watchers != 1 {
		t.Errorf("expected one watcher, got %d", state.Watchers)
	}

	cancel()
	for range events {
	}
}
