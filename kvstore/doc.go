// Package kvstore defines the backing key-value contract used by the
// directory engine and ships a set of implementations.
//
// A Store holds opaque byte values under string keys. Values may be capped
// in size and the store is not required to enumerate its keys:
//
//	type Store interface {
//	    Get(ctx, key) ([]byte, error)   // ErrNotFound when absent
//	    Set(ctx, key, value) error
//	    Delete(ctx, key) error          // absent is not an error
//	}
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory map, for tests and ephemeral use
//   - LocalStore: one file per key under a directory
//   - s3.Store / s3.DynamoStore: Amazon S3 objects or DynamoDB items
//   - minio.Store: MinIO and other S3-compatible services
//   - pebble.Store, bolt.Store, leveldb.Store: embedded databases
//
// # Wrappers
//
//   - Limit: rejects values larger than a fixed byte budget, modelling a
//     secure enclave or keychain primitive
//   - Throttle: bounds concurrency and call rate through a resource.Controller
package kvstore
