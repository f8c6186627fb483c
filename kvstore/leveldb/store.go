// Package leveldb provides a kvstore.Store backed by an IPFS LevelDB datastore.
package leveldb

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"

	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
	dslvl "github.com/ipfs/go-ds-leveldb"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
)

// Store implements kvstore.Store on go-ds-leveldb.
//
// Datastore keys are hierarchical paths, so store keys are path-escaped into
// a single path segment.
type Store struct {
	ds *dslvl.Datastore
}

// Open opens a LevelDB datastore at path. An empty path opens an in-memory
// datastore.
func Open(path string) (*Store, error) {
	d, err := dslvl.NewDatastore(path, nil)
	if err != nil {
		return nil, err
	}
	return &Store{ds: d}, nil
}

// Close closes the datastore.
func (s *Store) Close() error {
	return s.ds.Close()
}

func toKey(key string) ds.Key {
	return ds.NewKey(url.PathEscape(key))
}

func fromKey(k string) (string, bool) {
	name, err := url.PathUnescape(strings.TrimPrefix(k, "/"))
	if err != nil {
		return "", false
	}
	return name, true
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.ds.Get(ctx, toKey(key))
	if err != nil {
		if errors.Is(err, ds.ErrNotFound) {
			return nil, kvstore.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.ds.Put(ctx, toKey(key), value); err != nil {
		return err
	}
	return s.ds.Sync(ctx, toKey(key))
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.ds.Delete(ctx, toKey(key))
	if err != nil && !errors.Is(err, ds.ErrNotFound) {
		return err
	}
	return nil
}

// List returns all keys with the given prefix in lexical order.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	res, err := s.ds.Query(ctx, dsq.Query{KeysOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Close() }()

	var keys []string
	for {
		r, hasNext := res.NextSync()
		if !hasNext {
			break
		}
		if r.Error != nil {
			return nil, r.Error
		}
		name, ok := fromKey(r.Key)
		if ok && strings.HasPrefix(name, prefix) {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

var _ kvstore.Store = (*Store)(nil)
