package fressh

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"sync"
	"testing"

	"github.com/EthanShoeDev/fressh-sub000/engine"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"github.com/EthanShoeDev/fressh-sub000/kvstore/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	_, err := Open(nil)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)

	_, err = Open(kvstore.NewMemoryStore(), WithLimits(100, 50))
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)

	_, err = Open(kvstore.NewMemoryStore(), WithCompression("brotli"))
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestVault_NamespacesAreIndependent(t *testing.T) {
	ctx := context.Background()
	v, mem := newTestVault(t)
	k, _ := testKey(t, 1)

	putKey(t, v, KeyInput{ID: "laptop", PrivateKey: k})
	_, err := v.Connections().Save(ctx, testConnection(), 0)
	require.NoError(t, err)

	_, err = mem.Get(ctx, "keys-rootManifest")
	require.NoError(t, err)
	_, err = mem.Get(ctx, "connections-rootManifest")
	require.NoError(t, err)

	keys, err := v.Keys().List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
	conns, err := v.Connections().List(ctx)
	require.NoError(t, err)
	assert.Len(t, conns, 1)
}

func TestVault_Invalidator(t *testing.T) {
	ctx := context.Background()
	var (
		mu    sync.Mutex
		calls []string
	)
	v, _ := newTestVault(t, WithInvalidator(func(ns string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, ns)
	}))
	k, _ := testKey(t, 1)

	putKey(t, v, KeyInput{ID: "a", PrivateKey: k})
	id, err := v.Connections().Save(ctx, testConnection(), 0)
	require.NoError(t, err)
	require.NoError(t, v.Connections().Delete(ctx, id))
	assert.Equal(t, []string{KeysNamespace, ConnectionsNamespace, ConnectionsNamespace}, calls)

	// Rejected input and missing ids change nothing.
	calls = nil
	assert.Error(t, v.Keys().Put(ctx, KeyInput{ID: "bad", PrivateKey: []byte("x")}))
	assert.ErrorIs(t, v.Keys().Delete(ctx, "missing"), ErrNotFound)
	_, err = v.Connections().Save(ctx, Connection{}, 0)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, calls)
}

func TestVault_ListingCache(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	k, _ := testKey(t, 1)
	putKey(t, v, KeyInput{ID: "a", PrivateKey: k})

	_, err := v.Keys().List(ctx)
	require.NoError(t, err)
	keys, err := v.Keys().List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	hits, _ := v.CacheStats()
	assert.Equal(t, int64(1), hits)

	// A mutation drops the cached listing.
	putKey(t, v, KeyInput{ID: "b", PrivateKey: k})
	keys, err = v.Keys().List(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	// Sorting a returned listing must not reorder the cached one.
	keys[0], keys[1] = keys[1], keys[0]
	again, err := v.Keys().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ID)
}

func TestVault_CacheDisabled(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t, WithCacheSize(0))

	for range 3 {
		_, err := v.Keys().List(ctx)
		require.NoError(t, err)
	}
	hits, misses := v.CacheStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestVault_Sweep(t *testing.T) {
	ctx := context.Background()
	v, mem := newTestVault(t)
	k, _ := testKey(t, 1)
	putKey(t, v, KeyInput{ID: "a", PrivateKey: k})
	require.NoError(t, mem.Set(ctx, "keys-entry-ghost-chunk-0", []byte("x")))
	require.NoError(t, mem.Set(ctx, "connections-manifestChunk-stray", []byte("{}")))

	reports, err := v.Sweep(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"keys-entry-ghost-chunk-0"}, reports[KeysNamespace].Orphans)
	assert.Equal(t, []string{"connections-manifestChunk-stray"}, reports[ConnectionsNamespace].Orphans)

	_, err = mem.Get(ctx, "keys-entry-ghost-chunk-0")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)

	key, err := v.Keys().Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, k, key.PrivateKey)
}

type opaqueStore struct {
	kvstore.Store
}

func TestVault_SweepUnsupported(t *testing.T) {
	v, err := Open(opaqueStore{kvstore.NewMemoryStore()})
	require.NoError(t, err)
	_, err = v.Sweep(context.Background(), true)
	assert.ErrorIs(t, err, kvstore.ErrListUnsupported)
}

func TestVault_Manifest(t *testing.T) {
	ctx := context.Background()
	v, _ := newTestVault(t)
	k, _ := testKey(t, 1)
	putKey(t, v, KeyInput{ID: "a", PrivateKey: k})

	m, err := v.Manifest(ctx, KeysNamespace)
	require.NoError(t, err)
	require.Len(t, m.Chunks, 1)
	assert.Equal(t, "a", m.Chunks[0].Chunk.Entries[0].ID)

	m, err = v.Manifest(ctx, ConnectionsNamespace)
	require.NoError(t, err)
	assert.Empty(t, m.Chunks)

	_, err = v.Manifest(ctx, "other")
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)
}

func TestVault_ReopenLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	k, _ := testKey(t, 9)

	v, err := Open(kvstore.NewLocalStore(dir))
	require.NoError(t, err)
	require.NoError(t, v.Keys().Put(ctx, KeyInput{ID: "a", PrivateKey: k, IsDefault: true}))
	id, err := v.Connections().Save(ctx, testConnection(), 0)
	require.NoError(t, err)
	require.NoError(t, v.Close())

	v, err = Open(kvstore.NewLocalStore(dir))
	require.NoError(t, err)
	def, err := v.Keys().Default(ctx)
	require.NoError(t, err)
	assert.Equal(t, k, def.PrivateKey)
	rec, err := v.Connections().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, testConnection(), rec.Connection)
}

func TestVault_CloseReleasesStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.db")
	st, err := bolt.Open(path)
	require.NoError(t, err)

	v, err := Open(st)
	require.NoError(t, err)
	k, _ := testKey(t, 1)
	require.NoError(t, v.Keys().Put(ctx, KeyInput{ID: "a", PrivateKey: k}))
	require.NoError(t, v.Close())

	// The file lock is released, so the database opens again.
	st, err = bolt.Open(path)
	require.NoError(t, err)
	v, err = Open(st)
	require.NoError(t, err)
	defer func() { _ = v.Close() }()
	_, err = v.Keys().Get(ctx, "a")
	require.NoError(t, err)
}

func TestVault_StoreCapSmallerThanLimits(t *testing.T) {
	mem := kvstore.NewMemoryStore()
	_, err := Open(kvstore.Limit(mem, 300))
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Open(kvstore.Limit(mem, 300), WithLimits(300, 200))
	assert.NoError(t, err)
}

func TestVault_HiddenStoreCapFailsAfterDelete(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemoryStore()
	// The wrapper hides MaxValueSize, so Open cannot see the cap.
	v, err := Open(opaqueStore{kvstore.Limit(mem, 300)}, WithPrivateKeyValidation(false))
	require.NoError(t, err)

	require.NoError(t, v.Keys().Put(ctx, KeyInput{ID: "a", PrivateKey: []byte("small")}))

	big := make([]byte, 1000)
	_, err = rand.Read(big)
	require.NoError(t, err)
	err = v.Keys().Put(ctx, KeyInput{ID: "a", PrivateKey: big})
	var tooLarge *kvstore.ValueTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.NotErrorIs(t, err, ErrValidation)

	// The old entry was removed before the value write failed.
	_, err = v.Keys().Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	keys, err := v.Keys().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
