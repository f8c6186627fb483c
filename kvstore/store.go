package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when a key does not exist.
//
// Implementations must return an error that satisfies `errors.Is(err, ErrNotFound)`.
var ErrNotFound = errors.New("key not found")

// ErrListUnsupported is returned by wrappers whose inner store cannot enumerate keys.
var ErrListUnsupported = errors.New("store does not support listing")

// Store is a per-key key-value store with no multi-key transactions.
//
// Each call is independently atomic. Delete of an absent key is not an error.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Absent keys are ignored.
	Delete(ctx context.Context, key string) error
}

// Lister is an optional interface for stores that can enumerate their keys.
//
// The directory engine never relies on it for correctness; it is only used by
// maintenance tooling such as orphan sweeps.
type Lister interface {
	// List returns all keys with the given prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Capped is implemented by stores that reject values above a known size.
type Capped interface {
	MaxValueSize() int
}

// ValueTooLargeError is returned when a value exceeds a store's size limit.
type ValueTooLargeError struct {
	Key   string
	Size  int
	Limit int
}

func (e *ValueTooLargeError) Error() string {
	return fmt.Sprintf("value for %q is %d bytes, limit is %d", e.Key, e.Size, e.Limit)
}

// IsNotFound reports whether err signals an absent key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
