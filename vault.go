package fressh

import (
	"context"
	"fmt"
	"io"

	"github.com/EthanShoeDev/fressh-sub000/engine"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"github.com/EthanShoeDev/fressh-sub000/manifest"
)

// SweepReport summarizes an orphan sweep of one namespace.
type SweepReport = engine.SweepReport

// Vault is the key directory and the connection directory over one backing
// store.
type Vault struct {
	store       kvstore.Store
	keys        *KeyDirectory
	connections *ConnectionDirectory
	cache       *listingCache
	hook        func(namespace string)
	logger      *Logger
}

// Open creates a Vault on store. The store is wrapped with kvstore.Limit
// using the configured value cap. A store that is kvstore.Capped below that
// cap is rejected with ErrInvalidArgument. Open performs no store calls.
func Open(store kvstore.Store, optFns ...Option) (*Vault, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", engine.ErrInvalidArgument)
	}
	o := applyOptions(optFns)
	if c, ok := store.(kvstore.Capped); ok && c.MaxValueSize() < o.limits.MaxValueSize {
		return nil, fmt.Errorf("%w: store caps values at %d bytes, below the max value size %d",
			engine.ErrInvalidArgument, c.MaxValueSize(), o.limits.MaxValueSize)
	}

	v := &Vault{
		store:  store,
		cache:  newListingCache(o.cacheSize),
		hook:   o.invalidator,
		logger: o.logger,
	}
	limited := kvstore.Limit(store, o.limits.MaxValueSize)

	keys, err := newDirectory[KeyMetadata](limited, KeysNamespace, &o, v.cache, v.invalidate)
	if err != nil {
		return nil, err
	}
	conns, err := newDirectory[ConnectionMetadata](limited, ConnectionsNamespace, &o, v.cache, v.invalidate)
	if err != nil {
		return nil, err
	}

	v.keys = &KeyDirectory{dir: keys, validate: o.validateKeys, now: o.now}
	v.connections = &ConnectionDirectory{dir: conns, codec: o.codec, now: o.now}
	return v, nil
}

// Keys returns the key directory.
func (v *Vault) Keys() *KeyDirectory { return v.keys }

// Connections returns the connection directory.
func (v *Vault) Connections() *ConnectionDirectory { return v.connections }

// Sweep removes orphaned records of both directories. See engine.Engine.Sweep.
// It fails with kvstore.ErrListUnsupported on stores that cannot list keys.
func (v *Vault) Sweep(ctx context.Context, dryRun bool) (map[string]*SweepReport, error) {
	reports := make(map[string]*SweepReport, 2)

	r, err := v.keys.dir.sweep(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	reports[KeysNamespace] = r

	r, err = v.connections.dir.sweep(ctx, dryRun)
	if err != nil {
		return nil, err
	}
	reports[ConnectionsNamespace] = r

	return reports, nil
}

// Manifest returns the raw manifest of a namespace, for inspection tools.
func (v *Vault) Manifest(ctx context.Context, namespace string) (*manifest.Manifest, error) {
	switch namespace {
	case KeysNamespace:
		return v.keys.dir.engine.GetManifest(ctx)
	case ConnectionsNamespace:
		return v.connections.dir.engine.GetManifest(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown namespace %q", engine.ErrInvalidArgument, namespace)
	}
}

// CacheStats returns the listing cache hit and miss counters.
func (v *Vault) CacheStats() (hits, misses int64) {
	return v.cache.stats()
}

// invalidate is handed to each directory and runs after its mutations.
func (v *Vault) invalidate(namespace string) {
	v.cache.invalidate(namespace)
	if v.hook != nil {
		v.hook(namespace)
	}
}

// Close releases the backing store if it holds resources (bbolt, Pebble,
// LevelDB).
func (v *Vault) Close() error {
	if v == nil {
		return nil
	}
	if c, ok := v.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
