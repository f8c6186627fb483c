// Package engine implements a chunked directory over a size-capped,
// non-enumerable key-value store.
//
// # Architecture
//
//	Root Manifest ──► Manifest Chunks ──► Entry Descriptors ──► Value Chunks
//
// A directory entry is an id, a small metadata record and a byte payload of
// any length. The payload is cut into slices no larger than the configured
// slice size and written to one key per slice. Descriptors are packed into
// manifest chunks first-fit so that no record ever exceeds the store's value
// limit, and the root manifest lists the chunks of a namespace.
//
// # Consistency
//
// The store offers no multi-key transactions, so every mutation is ordered so
// that a crash leaves only unreferenced keys behind:
//
//   - Upsert deletes any existing entry, writes all value slices, and then
//     commits the descriptor by rewriting one manifest chunk. A brand-new
//     chunk is written before the root that references it.
//   - Delete commits by rewriting the manifest chunk without the descriptor,
//     then deletes the value slices and compacts chunks left empty.
//
// Unreferenced keys are inert. Sweep removes them on stores that implement
// kvstore.Lister.
//
// Upsert is a two-phase transition present → absent → present; a concurrent
// reader may observe the entry as absent in between.
//
// # Capacity
//
// The root manifest is one value, so it bounds the number of manifest chunks.
// Chunk ids are 26 characters (unpadded base32 of a random UUID), each costing
// 29 bytes in the root, after roughly 43 bytes of fixed framing. At the default
// 2048-byte limit a namespace holds about 69 manifest chunks; at the 256-byte
// minimum about 7. Each chunk holds at least one descriptor, and usually many,
// since descriptors are first-fit packed.
//
// An upsert that would need one chunk more than the root can list fails with
// ErrDirectoryFull before any write. Entries that still fit into an existing
// chunk, or that replace themselves, keep succeeding.
//
// A store that reports its own cap via kvstore.Capped must accept values of
// the configured MaxValueSize; New rejects it otherwise.
//
// # Concurrency
//
// An Engine serializes its own mutations (UpsertEntry, DeleteEntry, Sweep).
// Reads are not locked and always re-read the manifest from the store. Two
// Engine instances over the same namespace, in one process or several, are
// not coordinated.
//
// # Errors
//
//   - ErrNotFound: the id has no descriptor.
//   - ErrValidation: input rejected before any write (*ValidationError).
//   - ErrCorruptDirectory: a manifest record is missing or unreadable (*CorruptDirectoryError).
//   - ErrCorruptEntry: a value slice is missing or undecodable (*CorruptEntryError).
//   - ErrDirectoryFull: the root manifest cannot list another chunk (*CapacityError).
//
// Backing store errors are returned unchanged and never retried, including
// failures after an upsert has already deleted the previous entry.
//
// # Logging
//
// Internal events (chunk creation, compaction, corrupt records) are always
// logged. Per-operation outcome lines can be turned off with
// WithOperationLogging for callers that log outcomes themselves.
package engine
