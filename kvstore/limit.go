package kvstore

import "context"

// LimitedStore rejects values larger than a fixed byte budget.
type LimitedStore struct {
	inner Store
	limit int
}

// Limit wraps inner so that Set fails with *ValueTooLargeError for values
// longer than limit bytes. It models secure storage primitives (keychains,
// keystores) that cap each value at a small size. If inner is Capped below
// limit, the smaller cap applies.
func Limit(inner Store, limit int) *LimitedStore {
	if c, ok := inner.(Capped); ok && c.MaxValueSize() < limit {
		limit = c.MaxValueSize()
	}
	return &LimitedStore{inner: inner, limit: limit}
}

// MaxValueSize returns the enforced limit.
func (s *LimitedStore) MaxValueSize() int { return s.limit }

func (s *LimitedStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, key)
}

func (s *LimitedStore) Set(ctx context.Context, key string, value []byte) error {
	if len(value) > s.limit {
		return &ValueTooLargeError{Key: key, Size: len(value), Limit: s.limit}
	}
	return s.inner.Set(ctx, key, value)
}

func (s *LimitedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// List delegates to the inner store when it implements Lister.
func (s *LimitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return list(ctx, s.inner, prefix)
}

func list(ctx context.Context, st Store, prefix string) ([]string, error) {
	l, ok := st.(Lister)
	if !ok {
		return nil, ErrListUnsupported
	}
	return l.List(ctx, prefix)
}
