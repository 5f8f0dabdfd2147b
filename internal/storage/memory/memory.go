// Package memory provides an in-memory implementation of storage.Store used
// for tests and ephemeral environments.
package memory

import (
	"context"
	"sync"

	"github.com/xoulomon/stellarsave/internal/storage"
)

// Compile-time contract assertion.
var _ storage.Store = (*Store)(nil)

// Store keeps blobs in a map. Updates are serialized by a mutex and buffer
// their writes until fn returns successfully.
type Store struct {
	mu   sync.RWMutex
	data map[storage.Key][]byte
}

// New returns an empty store.
func New() *Store {
	return &Store{data: make(map[storage.Key][]byte)}
}

// View runs fn under a read lock.
func (s *Store) View(ctx context.Context, fn func(storage.Reader) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(reader{s.data})
}

// Update runs fn with buffered writes and applies them only if fn succeeds.
func (s *Store) Update(ctx context.Context, fn func(storage.ReadWriter) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &txn{base: s.data, pending: make(map[storage.Key][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for k, v := range tx.pending {
		s.data[k] = v
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

type reader struct {
	data map[storage.Key][]byte
}

func (r reader) Get(_ context.Context, key storage.Key) ([]byte, error) {
	v, ok := r.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(v), nil
}

type txn struct {
	base    map[storage.Key][]byte
	pending map[storage.Key][]byte
}

func (t *txn) Get(_ context.Context, key storage.Key) ([]byte, error) {
	if v, ok := t.pending[key]; ok {
		return clone(v), nil
	}
	v, ok := t.base[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clone(v), nil
}

func (t *txn) Put(_ context.Context, key storage.Key, value []byte) error {
	t.pending[key] = clone(value)
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
