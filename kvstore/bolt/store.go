// Package bolt provides a kvstore.Store backed by a single bbolt file.
package bolt

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"go.etcd.io/bbolt"
)

// DefaultBucket is the bucket used when WithBucket is not given.
var DefaultBucket = []byte("fressh")

// Store implements kvstore.Store using bbolt.
type Store struct {
	db     *bbolt.DB
	bucket []byte
	noSync bool
	logger *slog.Logger
}

// Option configures the bolt store.
type Option func(*Store)

// WithBucket sets the bucket name that holds all keys.
func WithBucket(name string) Option {
	return func(s *Store) {
		s.bucket = []byte(name)
	}
}

// WithNoSync disables fsync after each commit. Only safe for tests.
func WithNoSync(noSync bool) Option {
	return func(s *Store) {
		s.noSync = noSync
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open opens the database at the given path and creates the bucket.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		bucket: DefaultBucket,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout: 1 * time.Second,
		NoSync:  s.noSync,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(s.bucket); err != nil {
			return fmt.Errorf("creating bucket %s: %w", s.bucket, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Debug("opened bolt store", "path", path, "noSync", s.noSync)
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Debug("closing bolt store")
	return s.db.Close()
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b == nil {
			return kvstore.ErrNotFound
		}
		// Seek distinguishes an empty value from an absent key.
		k, val := b.Cursor().Seek([]byte(key))
		if k == nil || !bytes.Equal(k, []byte(key)) {
			return kvstore.ErrNotFound
		}
		data = make([]byte, len(val))
		copy(data, val)
		return nil
	})
	return data, err
}

// Set writes value under key in its own transaction.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		// bbolt treats a nil value as absent; store empty values as empty slices.
		if value == nil {
			value = []byte{}
		}
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	})
}

// Delete removes key. Deleting an absent key is a no-op in bbolt.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// List returns all keys with the given prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var keys []string
	p := []byte(prefix)
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys, err
}

var _ kvstore.Store = (*Store)(nil)
