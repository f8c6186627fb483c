// Package fressh stores SSH private keys and connection profiles on a secure
// key-value primitive that caps every value at a small size and cannot
// enumerate its keys.
//
// Both directories are built on the chunked directory engine in package
// engine: a root manifest lists manifest chunks, manifest chunks hold entry
// descriptors, and each value is sliced across as many value chunks as it
// needs. Everything the engine writes is self-describing, so a directory can
// be listed again after a restart from nothing but the root key.
//
// # Quick Start
//
//	ctx := context.Background()
//	v, err := fressh.Open(kvstore.NewMemoryStore())
//	if err != nil {
//	    panic(err)
//	}
//	defer v.Close()
//
//	err = v.Keys().Put(ctx, fressh.KeyInput{
//	    ID:         "laptop",
//	    PrivateKey: pem,
//	    Label:      "Laptop ed25519",
//	    IsDefault:  true,
//	})
//
//	id, err := v.Connections().Save(ctx, fressh.Connection{
//	    Host:     "example.com",
//	    Port:     22,
//	    Username: "deploy",
//	    Security: fressh.Security{Type: fressh.SecurityKey, KeyID: "laptop"},
//	}, 0)
//
// # Backing Stores
//
// Any kvstore.Store works. Open wraps it with kvstore.Limit so that the value
// cap configured with WithLimits is enforced exactly as a platform keystore
// would enforce it. Implementations live in the kvstore subpackages: bbolt,
// Pebble, LevelDB, S3, DynamoDB and MinIO, plus an in-memory and a local
// filesystem store in kvstore itself.
//
// # Consistency
//
// Each directory serializes its own writes. Writers in other processes are
// not coordinated. A failed write may leave unreferenced value chunks behind;
// Vault.Sweep removes them on stores that can list keys.
package fressh
