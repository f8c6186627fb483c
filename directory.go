package fressh

import (
	"context"
	"errors"
	"sync"

	"github.com/EthanShoeDev/fressh-sub000/engine"
	"github.com/EthanShoeDev/fressh-sub000/internal/cache"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
)

type cacheKey struct {
	namespace string
	values    bool
}

// listingCache holds directory listings until the next mutation of their
// namespace. A listing read concurrently with a mutation is only stored if
// no invalidation happened while it was read.
type listingCache struct {
	mu  sync.Mutex
	lru *cache.LRU[cacheKey, any] // nil when disabled
	gen map[string]uint64
}

func newListingCache(size int) *listingCache {
	c := &listingCache{gen: make(map[string]uint64)}
	if size > 0 {
		c.lru = cache.New[cacheKey, any](int64(size), nil)
	}
	return c
}

func (c *listingCache) generation(namespace string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[namespace]
}

func (c *listingCache) get(key cacheKey) (any, bool) {
	if c.lru == nil {
		return nil, false
	}
	return c.lru.Get(key)
}

func (c *listingCache) put(key cacheKey, gen uint64, v any) {
	if c.lru == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[key.namespace] == gen {
		c.lru.Set(key, v)
	}
}

func (c *listingCache) invalidate(namespace string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen[namespace]++
	if c.lru != nil {
		c.lru.Invalidate(func(k cacheKey) bool { return k.namespace == namespace })
	}
}

func (c *listingCache) stats() (hits, misses int64) {
	if c.lru == nil {
		return 0, 0
	}
	return c.lru.Stats()
}

// directory is the typed-directory plumbing shared by keys and connections.
// Cached listings are shared between callers and must not be modified.
type directory[M any] struct {
	engine     *engine.Engine[M]
	namespace  string
	cache      *listingCache
	invalidate func(namespace string)
	logger     *Logger
}

func newDirectory[M any](
	store kvstore.Store,
	namespace string,
	o *options,
	c *listingCache,
	invalidate func(namespace string),
) (*directory[M], error) {
	e, err := engine.New[M](store, namespace, o.engineOptions()...)
	if err != nil {
		return nil, err
	}
	return &directory[M]{
		engine:     e,
		namespace:  namespace,
		cache:      c,
		invalidate: invalidate,
		logger:     o.logger.WithNamespace(namespace),
	}, nil
}

func (d *directory[M]) list(ctx context.Context) ([]engine.Entry[M], error) {
	key := cacheKey{namespace: d.namespace}
	if v, ok := d.cache.get(key); ok {
		return v.([]engine.Entry[M]), nil
	}

	gen := d.cache.generation(d.namespace)
	entries, err := d.engine.ListEntries(ctx)
	d.logger.LogList(ctx, len(entries), 0, err)
	if err != nil {
		return nil, err
	}
	d.cache.put(key, gen, entries)
	return entries, nil
}

func (d *directory[M]) listWithValues(ctx context.Context) ([]engine.Result[M], error) {
	key := cacheKey{namespace: d.namespace, values: true}
	if v, ok := d.cache.get(key); ok {
		return v.([]engine.Result[M]), nil
	}

	gen := d.cache.generation(d.namespace)
	results, err := d.engine.ListEntriesWithValues(ctx)
	var corrupt int
	for _, r := range results {
		if r.Err != nil {
			corrupt++
		}
	}
	d.logger.LogList(ctx, len(results), corrupt, err)
	if err != nil {
		return nil, err
	}
	d.cache.put(key, gen, results)
	return results, nil
}

func (d *directory[M]) get(ctx context.Context, id string) (*engine.Record[M], error) {
	rec, err := d.engine.GetEntry(ctx, id)
	d.logger.LogGet(ctx, id, err)
	return rec, err
}

// upsert runs the invalidation hook after every write attempt that reached
// the store, successful or not.
func (d *directory[M]) upsert(ctx context.Context, in engine.UpsertInput[M]) error {
	err := d.engine.UpsertEntry(ctx, in)
	d.logger.LogUpsert(ctx, in.ID, len(in.Value), err)
	if !errors.Is(err, engine.ErrValidation) && !errors.Is(err, engine.ErrDirectoryFull) {
		d.invalidate(d.namespace)
	}
	return err
}

func (d *directory[M]) delete(ctx context.Context, id string) error {
	err := d.engine.DeleteEntry(ctx, id)
	d.logger.LogDelete(ctx, id, err)
	if !errors.Is(err, engine.ErrNotFound) {
		d.invalidate(d.namespace)
	}
	return err
}

func (d *directory[M]) sweep(ctx context.Context, dryRun bool) (*engine.SweepReport, error) {
	report, err := d.engine.Sweep(ctx, dryRun)
	d.logger.LogSweep(ctx, report, dryRun, err)
	return report, err
}
