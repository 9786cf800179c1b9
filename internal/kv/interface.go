// Package kv defines the flat key-value store backing the local
// persisted fallback mode. Identity fields and role lists are stored
// as plain string pairs and read back verbatim at startup.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a key has no value
var ErrKeyNotFound = errors.New("key not found")

// Store is a durable flat key-value store
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	// Keys returns all keys with the given prefix, sorted
	Keys(ctx context.Context, prefix string) ([]string, error)
}
