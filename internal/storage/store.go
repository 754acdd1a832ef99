// Package storage persists app state as JSON blobs in a key-value store.
// SQLite is the default backend; PostgreSQL and an in-memory store are
// available for shared setups and tests.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get when a key has never been written.
	ErrNotFound = errors.New("key not found")
	// ErrLocked is returned when another process holds the data directory.
	ErrLocked = errors.New("data directory is locked by another process")
)

// Store is a key-value blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// PutAll writes every entry or none of them.
	PutAll(ctx context.Context, entries map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}
