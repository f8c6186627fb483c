package manifest

import (
	"strconv"
	"strings"
)

const (
	rootSuffix  = "rootManifest"
	chunkInfix  = "manifestChunk-"
	entryInfix  = "entry-"
	sliceInfix  = "-chunk-"
	keySeparate = "-"
)

// Keys derives store keys for one namespace.
type Keys struct {
	Namespace string
}

// Prefix returns the prefix shared by every key of the namespace.
func (k Keys) Prefix() string {
	return k.Namespace + keySeparate
}

// Root returns the root manifest key.
func (k Keys) Root() string {
	return k.Prefix() + rootSuffix
}

// Chunk returns the key of a manifest chunk.
func (k Keys) Chunk(chunkID string) string {
	return k.Prefix() + chunkInfix + chunkID
}

// Value returns the key of one value slice of an entry.
func (k Keys) Value(entryID string, slice int) string {
	return k.Prefix() + entryInfix + entryID + sliceInfix + strconv.Itoa(slice)
}

// KeyKind classifies a store key.
type KeyKind int

const (
	// KindUnknown is a key not produced by this namespace.
	KindUnknown KeyKind = iota
	// KindRoot is the root manifest key.
	KindRoot
	// KindChunk is a manifest chunk key.
	KindChunk
	// KindValue is a value slice key.
	KindValue
)

// ParsedKey is the decomposition of a namespace key.
type ParsedKey struct {
	Kind    KeyKind
	ChunkID string
	EntryID string
	Slice   int
}

// Parse classifies key. Keys outside the namespace, or that do not follow the
// layout exactly, are KindUnknown.
func (k Keys) Parse(key string) ParsedKey {
	rest, ok := strings.CutPrefix(key, k.Prefix())
	if !ok {
		return ParsedKey{}
	}

	if rest == rootSuffix {
		return ParsedKey{Kind: KindRoot}
	}

	if id, ok := strings.CutPrefix(rest, chunkInfix); ok && id != "" {
		return ParsedKey{Kind: KindChunk, ChunkID: id}
	}

	if rest, ok := strings.CutPrefix(rest, entryInfix); ok {
		i := strings.LastIndex(rest, sliceInfix)
		if i <= 0 {
			return ParsedKey{}
		}
		// Only the canonical decimal form written by Value is accepted.
		s := rest[i+len(sliceInfix):]
		slice, err := strconv.Atoi(s)
		if err != nil || slice < 0 || strconv.Itoa(slice) != s {
			return ParsedKey{}
		}
		return ParsedKey{Kind: KindValue, EntryID: rest[:i], Slice: slice}
	}

	return ParsedKey{}
}
