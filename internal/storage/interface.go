package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when nothing is stored under the key
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore persists opaque values by key
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Provider is a KeyValueStore backed by a database with an explicit lifecycle
type Provider interface {
	KeyValueStore

	// Init creates the database and applies migrations
	Init() error
	// Load opens an existing database and validates its schema version
	Load() error
	Close() error
	GetConfigPath() string
}
