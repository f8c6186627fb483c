// Package manifest implements the self-describing directory format stored in a
// size-capped key-value store.
//
// # Overview
//
// Each namespace owns one Root record listing Manifest Chunk ids. Every Chunk
// holds a bounded list of entry Descriptors, and every Descriptor names the
// number of value slices that make up its payload.
//
// # Key Layout
//
//	{namespace}-rootManifest
//	{namespace}-manifestChunk-{chunkId}
//	{namespace}-entry-{entryId}-chunk-{sliceIndex}
//
// Keys are stable across process restarts; the directory is the only record
// of what exists in the store.
//
// # Record Format
//
//	Root:  {"manifestVersion":1,"manifestChunkIds":["..."]}
//	Chunk: {"manifestChunkVersion":1,"entries":[{"id":"...","chunkCount":1,"metadata":{...}}]}
//
// Records are encoded with a codec.Codec. Sizes used for chunk placement are
// measured on the encoded bytes. A record carrying a version newer than this
// package understands fails with ErrIncompatibleVersion.
//
// # Thread Safety
//
// Store holds no mutable state and is safe for concurrent use. Ordering of
// writes across keys is the caller's responsibility.
package manifest
