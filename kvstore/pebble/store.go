// Package pebble provides a kvstore.Store backed by an embedded Pebble LSM.
package pebble

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
)

// Store implements kvstore.Store on a Pebble database.
type Store struct {
	db   *pebble.DB
	opts *pebble.Options
}

// Option configures the Pebble store.
type Option func(*Store)

// WithCacheSize sets the block cache size in bytes.
func WithCacheSize(size int64) Option {
	return func(s *Store) {
		s.opts.Cache = pebble.NewCache(size)
	}
}

// WithOptions replaces the Pebble options entirely (e.g. to use vfs.NewMem()).
func WithOptions(opts *pebble.Options) Option {
	return func(s *Store) {
		s.opts = opts
	}
}

// Open opens (or creates) a Pebble database at path.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		opts: &pebble.Options{
			MemTableSize: 4 << 20,
			BytesPerSync: 1 << 20,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	db, err := pebble.Open(path, s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", path, err)
	}
	s.db = db
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, cl, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, kvstore.ErrNotFound
		}
		return nil, err
	}
	defer func() { _ = cl.Close() }()

	data := make([]byte, len(d))
	copy(data, d)
	return data, nil
}

// Set durably writes value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Set([]byte(key), value, pebble.Sync)
}

// Delete removes key. Pebble deletes of absent keys are no-ops.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Delete([]byte(key), pebble.Sync)
}

// List returns all keys with the given prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	iterOpts := &pebble.IterOptions{LowerBound: []byte(prefix)}
	if upper := prefixUpperBound([]byte(prefix)); upper != nil {
		iterOpts.UpperBound = upper
	}

	iter, err := s.db.NewIter(iterOpts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = iter.Close() }()

	var keys []string
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keys = append(keys, string(iter.Key()))
	}
	return keys, iter.Error()
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil if no such key exists.
func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil
}

var _ kvstore.Store = (*Store)(nil)
