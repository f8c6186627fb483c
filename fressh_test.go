package fressh

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/pem"
	"sync/atomic"
	"testing"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

const testEpochMs = int64(1700000000000)

// testClock advances one second per call.
func testClock() func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return time.UnixMilli(testEpochMs + n.Add(1)*1000)
	}
}

func newTestVault(t *testing.T, opts ...Option) (*Vault, *kvstore.MemoryStore) {
	t.Helper()
	mem := kvstore.NewMemoryStore()
	v, err := Open(mem, append([]Option{WithClock(testClock())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v, mem
}

func testKey(t *testing.T, seed byte) ([]byte, ed25519.PublicKey) {
	t.Helper()
	priv := ed25519.NewKeyFromSeed(bytes.Repeat([]byte{seed}, ed25519.SeedSize))
	block, err := ssh.MarshalPrivateKey(priv, "test")
	require.NoError(t, err)
	return pem.EncodeToMemory(block), priv.Public().(ed25519.PublicKey)
}

func putKey(t *testing.T, v *Vault, in KeyInput) {
	t.Helper()
	require.NoError(t, v.Keys().Put(context.Background(), in))
}

func testConnection() Connection {
	return Connection{
		Host:     "example.com",
		Port:     22,
		Username: "deploy",
		Security: Security{Type: SecurityKey, KeyID: "laptop"},
	}
}
