// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Reader.Get when no value is stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// Reader reads blobs by key.
type Reader interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)
}

// ReadWriter reads and writes blobs within one transaction.
type ReadWriter interface {
	Reader

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key Key, value []byte) error
}

// Store defines durable key-value persistence for the engine.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the engine.
type Store interface {
	// View runs fn against a consistent read-only view.
	View(ctx context.Context, fn func(Reader) error) error

	// Update runs fn in a read-write transaction. Either every Put made by
	// fn is committed or, when fn returns an error, none is.
	// Updates are serialized: no two run concurrently.
	Update(ctx context.Context, fn func(ReadWriter) error) error

	// Close releases any resources held by the store.
	Close() error
}
