package kvstore

import (
	"context"

	"github.com/EthanShoeDev/fressh-sub000/resource"
)

// ThrottledStore bounds concurrency and call rate against an inner store.
type ThrottledStore struct {
	inner Store
	rc    *resource.Controller
}

// Throttle wraps inner so that every call holds a slot from rc.
// Set additionally waits for the controller's byte budget.
func Throttle(inner Store, rc *resource.Controller) *ThrottledStore {
	return &ThrottledStore{inner: inner, rc: rc}
}

func (s *ThrottledStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.rc.AcquireCall(ctx); err != nil {
		return nil, err
	}
	defer s.rc.ReleaseCall()
	return s.inner.Get(ctx, key)
}

func (s *ThrottledStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.rc.AcquireCall(ctx); err != nil {
		return err
	}
	defer s.rc.ReleaseCall()
	if err := s.rc.AcquireIO(ctx, len(value)); err != nil {
		return err
	}
	return s.inner.Set(ctx, key, value)
}

func (s *ThrottledStore) Delete(ctx context.Context, key string) error {
	if err := s.rc.AcquireCall(ctx); err != nil {
		return err
	}
	defer s.rc.ReleaseCall()
	return s.inner.Delete(ctx, key)
}

// List delegates to the inner store when it implements Lister.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.rc.AcquireCall(ctx); err != nil {
		return nil, err
	}
	defer s.rc.ReleaseCall()
	return list(ctx, s.inner, prefix)
}
