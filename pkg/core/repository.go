package core

import (
	"context"
	"fmt"
	"strings"
)

// Store defines the contract of the string-keyed slot storage.
// It mirrors the browser key-value storage the application was written
// against: values are opaque strings and a missing key is not an error.
type Store interface {
	// Get returns the raw value stored under key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set creates or overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error

	// Keys lists the stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for stores that can stream slot changes.
type Watchable interface {
	// Watch emits an Event for every change to a key matching pattern
	// (a doublestar glob). The channel is closed when ctx is done.
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close() error
}

// ValidateKey rejects keys that cannot be stored portably by every adapter.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.HasPrefix(key, ".") {
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidKey, key)
	}
	if strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	}
	return nil
}
