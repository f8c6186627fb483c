package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/EthanShoeDev/fressh-sub000/kvstore"
)

// OpKind names a store call.
type OpKind string

const (
	OpGet    OpKind = "get"
	OpSet    OpKind = "set"
	OpDelete OpKind = "delete"
	OpList   OpKind = "list"
)

// Op is one observed store call.
type Op struct {
	Kind OpKind
	Key  string
}

// CountingStore records every call made against an inner store.
// It is thread-safe.
type CountingStore struct {
	inner kvstore.Store

	mu  sync.Mutex
	ops []Op
}

// NewCountingStore wraps inner.
func NewCountingStore(inner kvstore.Store) *CountingStore {
	return &CountingStore{inner: inner}
}

func (s *CountingStore) record(kind OpKind, key string) {
	s.mu.Lock()
	s.ops = append(s.ops, Op{Kind: kind, Key: key})
	s.mu.Unlock()
}

func (s *CountingStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.record(OpGet, key)
	return s.inner.Get(ctx, key)
}

func (s *CountingStore) Set(ctx context.Context, key string, value []byte) error {
	s.record(OpSet, key)
	return s.inner.Set(ctx, key, value)
}

func (s *CountingStore) Delete(ctx context.Context, key string) error {
	s.record(OpDelete, key)
	return s.inner.Delete(ctx, key)
}

func (s *CountingStore) List(ctx context.Context, prefix string) ([]string, error) {
	s.record(OpList, prefix)
	l, ok := s.inner.(kvstore.Lister)
	if !ok {
		return nil, kvstore.ErrListUnsupported
	}
	return l.List(ctx, prefix)
}

// Ops returns a copy of all recorded calls in order.
func (s *CountingStore) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Op(nil), s.ops...)
}

// Count returns the number of recorded calls of kind.
func (s *CountingStore) Count(kind OpKind) int {
	return len(s.Keys(kind, ""))
}

// Keys returns the keys of recorded calls of kind that contain substr.
func (s *CountingStore) Keys(kind OpKind, substr string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for _, op := range s.ops {
		if op.Kind == kind && strings.Contains(op.Key, substr) {
			keys = append(keys, op.Key)
		}
	}
	return keys
}

// Reset clears the recorded calls.
func (s *CountingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
}

// ErrInjected is the default error returned by FaultyStore rules.
var ErrInjected = errors.New("injected fault error")

// Fault defines specific failure behavior.
type Fault struct {
	// Op restricts the fault to one call kind. Empty matches every kind.
	Op OpKind
	// After lets this many matching calls succeed before failing.
	After int
	// Err is returned by failing calls. Defaults to ErrInjected.
	Err error
}

type rule struct {
	pattern string
	fault   Fault
	seen    int
}

// FaultyStore is a Store wrapper that can inject errors.
type FaultyStore struct {
	inner kvstore.Store

	mu    sync.Mutex
	rules []*rule
}

// NewFaultyStore wraps inner.
func NewFaultyStore(inner kvstore.Store) *FaultyStore {
	return &FaultyStore{inner: inner}
}

// AddRule adds a fault injection rule for keys containing pattern.
func (s *FaultyStore) AddRule(pattern string, fault Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	s.rules = append(s.rules, &rule{pattern: pattern, fault: fault})
}

// Clear removes all rules.
func (s *FaultyStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = nil
}

func (s *FaultyStore) check(kind OpKind, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if r.fault.Op != "" && r.fault.Op != kind {
			continue
		}
		if !strings.Contains(key, r.pattern) {
			continue
		}
		r.seen++
		if r.seen > r.fault.After {
			return r.fault.Err
		}
	}
	return nil
}

func (s *FaultyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.check(OpGet, key); err != nil {
		return nil, err
	}
	return s.inner.Get(ctx, key)
}

func (s *FaultyStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.check(OpSet, key); err != nil {
		return err
	}
	return s.inner.Set(ctx, key, value)
}

func (s *FaultyStore) Delete(ctx context.Context, key string) error {
	if err := s.check(OpDelete, key); err != nil {
		return err
	}
	return s.inner.Delete(ctx, key)
}

func (s *FaultyStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.check(OpList, prefix); err != nil {
		return nil, err
	}
	l, ok := s.inner.(kvstore.Lister)
	if !ok {
		return nil, kvstore.ErrListUnsupported
	}
	return l.List(ctx, prefix)
}
