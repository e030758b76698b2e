package typed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/aretw0/catcare/pkg/core"
)

// Identifiable is a record with an id.
type Identifiable interface {
	RecordID() string
}

// Collection wraps a sequence slot of records identified by id.
//
// The slot is edited as raw JSON records: fields a record type does not
// declare are kept, and records without a usable id are skipped when
// listing, as the merge engine does.
type Collection[T Identifiable] struct {
	store core.Store
	key   string
}

// NewCollection creates a typed collection over key.
func NewCollection[T Identifiable](store core.Store, key string) *Collection[T] {
	return &Collection[T]{store: store, key: key}
}

// Pets returns the collection of pet profiles.
func Pets(store core.Store) *Collection[core.Pet] {
	return NewCollection[core.Pet](store, core.KeyPets)
}

// Tasks returns the collection of tasks.
func Tasks(store core.Store) *Collection[core.Task] {
	return NewCollection[core.Task](store, core.KeyTasks)
}

// NewID generates a record id such as "pet_3f2a...".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// Key returns the slot key.
func (c *Collection[T]) Key() string {
	return c.key
}

// records reads the slot as raw records. An absent slot, or one that does
// not hold a sequence, has none.
func (c *Collection[T]) records(ctx context.Context) ([]any, error) {
	raw, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := core.ParseValue(raw)
	if err != nil {
		return nil, fmt.Errorf("slot %s: %w", c.key, err)
	}
	if v.Kind() != core.KindSequence {
		return nil, nil
	}
	return v.Items(), nil
}

func (c *Collection[T]) save(ctx context.Context, items []any) error {
	encoded, err := core.Sequence(items).Encode()
	if err != nil {
		return fmt.Errorf("failed to encode slot %s: %w", c.key, err)
	}
	return c.store.Set(ctx, c.key, encoded)
}

// List returns all records that decode as T. An absent slot is an empty list.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	items, err := c.records(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := core.IdentityOf(item); !ok {
			continue
		}
		if rec, err := decodeRecord[T](item); err == nil {
			list = append(list, rec)
		}
	}
	return list, nil
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.records(ctx)
	if err != nil {
		return zero, err
	}
	if i := indexOf(items, core.IdentitiesOf(id)); i >= 0 {
		return decodeRecord[T](items[i])
	}
	return zero, fmt.Errorf("%s %s: %w", c.key, id, ErrNotFound)
}

// Upsert replaces the record with the same id in place, or appends it.
// Fields of the stored record that T does not declare are kept.
func (c *Collection[T]) Upsert(ctx context.Context, item T) error {
	if item.RecordID() == "" {
		return fmt.Errorf("record has no ID")
	}
	fields, err := encodeRecord(item)
	if err != nil {
		return err
	}
	identity, ok := core.IdentityOf(fields)
	if !ok {
		return fmt.Errorf("record %s has no usable ID", item.RecordID())
	}

	items, err := c.records(ctx)
	if err != nil {
		return err
	}
	items = slices.Clone(items)
	if i := indexOf(items, []string{identity}); i >= 0 {
		items[i] = overlay[T](items[i], fields)
	} else {
		items = append(items, fields)
	}
	return c.save(ctx, items)
}

// Delete removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	items, err := c.records(ctx)
	if err != nil {
		return err
	}
	i := indexOf(items, core.IdentitiesOf(id))
	if i < 0 {
		return fmt.Errorf("%s %s: %w", c.key, id, ErrNotFound)
	}
	return c.save(ctx, slices.Delete(slices.Clone(items), i, i+1))
}

// Watch observes changes to the collection slot if the store supports it.
func (c *Collection[T]) Watch(ctx context.Context) (<-chan core.Event, error) {
	w, ok := c.store.(core.Watchable)
	if !ok {
		return nil, errors.New("store does not support watching")
	}
	return w.Watch(ctx, c.key)
}

func indexOf(items []any, identities []string) int {
	return slices.IndexFunc(items, func(item any) bool {
		id, ok := core.IdentityOf(item)
		return ok && slices.Contains(identities, id)
	})
}

func decodeRecord[T any](item any) (T, error) {
	var rec T
	data, err := json.Marshal(item)
	if err == nil {
		err = json.Unmarshal(data, &rec)
	}
	return rec, err
}

func encodeRecord(item any) (map[string]any, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	v, err := core.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	fields, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("record does not encode as an object")
	}
	return fields, nil
}

// overlay writes fields over the stored record. Fields T declares are owned
// by fields, so a cleared field disappears; undeclared fields are kept.
func overlay[T any](stored any, fields map[string]any) map[string]any {
	rec, ok := stored.(map[string]any)
	if !ok {
		return fields
	}
	out := maps.Clone(rec)
	if known, err := decodeRecord[T](rec); err == nil {
		if declared, err := encodeRecord(known); err == nil {
			for k := range declared {
				delete(out, k)
			}
		}
	}
	maps.Copy(out, fields)
	return out
}
