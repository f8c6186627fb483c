package kvstore

import (
	"context"
	"sync"
	"testing"

	"github.com/EthanShoeDev/fressh-sub000/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises the behaviour every Store must share.
func storeContract(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	_, err := st.Get(ctx, "ns-missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Set(ctx, "ns-a", []byte("alpha")))
	require.NoError(t, st.Set(ctx, "ns-b/with/slash", []byte("beta")))
	require.NoError(t, st.Set(ctx, "ns-empty", []byte{}))
	require.NoError(t, st.Set(ctx, "other-c", []byte("gamma")))

	v, err := st.Get(ctx, "ns-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), v)

	v, err = st.Get(ctx, "ns-b/with/slash")
	require.NoError(t, err)
	assert.Equal(t, []byte("beta"), v)

	// Empty values are present, not absent.
	v, err = st.Get(ctx, "ns-empty")
	require.NoError(t, err)
	assert.Empty(t, v)

	// Overwrite
	require.NoError(t, st.Set(ctx, "ns-a", []byte("alpha-2")))
	v, err = st.Get(ctx, "ns-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha-2"), v)

	if l, ok := st.(Lister); ok {
		keys, err := l.List(ctx, "ns-")
		require.NoError(t, err)
		assert.Equal(t, []string{"ns-a", "ns-b/with/slash", "ns-empty"}, keys)
	}

	require.NoError(t, st.Delete(ctx, "ns-a"))
	_, err = st.Get(ctx, "ns-a")
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, st.Delete(ctx, "ns-a"))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	in := []byte("secret")
	require.NoError(t, st.Set(ctx, "k", in))
	in[0] = 'X'

	out, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), out)

	out[0] = 'Y'
	again, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), again)
	assert.Equal(t, 1, st.Len())
}

func TestLocalStore(t *testing.T) {
	storeContract(t, NewLocalStore(t.TempDir()))
}

func TestLocalStore_MissingDirectory(t *testing.T) {
	st := NewLocalStore(t.TempDir() + "/not/yet")

	keys, err := st.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = st.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	st := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, st.Set(ctx, "k", []byte("v")), context.Canceled)
}

func TestLimit(t *testing.T) {
	ctx := context.Background()
	st := Limit(NewMemoryStore(), 4)
	assert.Equal(t, 4, st.MaxValueSize())

	require.NoError(t, st.Set(ctx, "ok", []byte("1234")))

	err := st.Set(ctx, "big", []byte("12345"))
	var tooLarge *ValueTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, "big", tooLarge.Key)
	assert.Equal(t, 5, tooLarge.Size)
	assert.Equal(t, 4, tooLarge.Limit)

	_, err = st.Get(ctx, "big")
	assert.True(t, IsNotFound(err))

	keys, err := st.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, keys)
}

func TestLimit_NestedKeepsSmallerCap(t *testing.T) {
	assert.Equal(t, 4, Limit(Limit(NewMemoryStore(), 4), 16).MaxValueSize())
	assert.Equal(t, 4, Limit(Limit(NewMemoryStore(), 16), 4).MaxValueSize())

	var c Capped = Limit(NewMemoryStore(), 8)
	assert.Equal(t, 8, c.MaxValueSize())
}

type opaqueStore struct{ Store }

func TestLimit_ListUnsupported(t *testing.T) {
	st := Limit(opaqueStore{NewMemoryStore()}, 16)
	_, err := st.List(context.Background(), "")
	assert.ErrorIs(t, err, ErrListUnsupported)
}

func TestThrottle(t *testing.T) {
	rc := resource.NewController(resource.Config{MaxConcurrentCalls: 2})
	st := Throttle(NewMemoryStore(), rc)
	storeContract(t, st)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, st.Set(ctx, "k", []byte("v")))
			assert.LessOrEqual(t, rc.InFlight(), int64(2))
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(0), rc.InFlight())
}
