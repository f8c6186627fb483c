package manifest

import (
	"encoding/json"
	"fmt"
)

const (
	// RootVersion is the root record format written by this package.
	RootVersion = 1
	// ChunkVersion is the chunk record format written by this package.
	ChunkVersion = 1
)

// Root lists the manifest chunks of a namespace in creation order.
type Root struct {
	Version  int      `json:"manifestVersion"`
	ChunkIDs []string `json:"manifestChunkIds"`
}

// NewRoot returns an empty root at the current version.
func NewRoot() *Root {
	return &Root{Version: RootVersion, ChunkIDs: []string{}}
}

// Chunk is a bounded set of entry descriptors. Entry order is insignificant.
type Chunk struct {
	Version int          `json:"manifestChunkVersion"`
	Entries []Descriptor `json:"entries"`
}

// NewChunk returns an empty chunk at the current version.
func NewChunk() *Chunk {
	return &Chunk{Version: ChunkVersion, Entries: []Descriptor{}}
}

// Descriptor identifies one logical directory entry.
type Descriptor struct {
	ID         string `json:"id"`
	ChunkCount int    `json:"chunkCount"`
	// Compression is the algorithm applied to the payload before slicing.
	Compression string          `json:"compression,omitempty"`
	Metadata    json.RawMessage `json:"metadata"`
}

func (d *Descriptor) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: descriptor without id", ErrMalformed)
	}
	if d.ChunkCount < 1 {
		return fmt.Errorf("%w: descriptor %q has chunkCount %d", ErrMalformed, d.ID, d.ChunkCount)
	}
	return nil
}

// ChunkInfo is a chunk as read from the store together with its encoded size.
type ChunkInfo struct {
	ID    string
	Chunk *Chunk
	Size  int
}

// Manifest is a consistent read of a namespace directory.
type Manifest struct {
	Root   *Root
	Chunks []ChunkInfo
}

// Find returns the descriptor for id and the index of the chunk holding it.
func (m *Manifest) Find(id string) (Descriptor, int, bool) {
	for ci, info := range m.Chunks {
		for _, d := range info.Chunk.Entries {
			if d.ID == id {
				return d, ci, true
			}
		}
	}
	return Descriptor{}, -1, false
}

// Descriptors flattens all chunks in listed order.
func (m *Manifest) Descriptors() []Descriptor {
	var out []Descriptor
	for _, info := range m.Chunks {
		out = append(out, info.Chunk.Entries...)
	}
	return out
}

// EmptyChunks returns the ids of chunks with no entries.
func (m *Manifest) EmptyChunks() []string {
	var ids []string
	for _, info := range m.Chunks {
		if len(info.Chunk.Entries) == 0 {
			ids = append(ids, info.ID)
		}
	}
	return ids
}

// Without returns a copy of c with the descriptor for id removed.
func (c *Chunk) Without(id string) *Chunk {
	out := &Chunk{Version: ChunkVersion, Entries: make([]Descriptor, 0, len(c.Entries))}
	for _, d := range c.Entries {
		if d.ID != id {
			out.Entries = append(out.Entries, d)
		}
	}
	return out
}

// With returns a copy of c with d appended.
func (c *Chunk) With(d Descriptor) *Chunk {
	out := &Chunk{Version: ChunkVersion, Entries: make([]Descriptor, 0, len(c.Entries)+1)}
	out.Entries = append(out.Entries, c.Entries...)
	out.Entries = append(out.Entries, d)
	return out
}

// Without returns a copy of r with the given chunk ids removed.
func (r *Root) Without(ids ...string) *Root {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := &Root{Version: RootVersion, ChunkIDs: make([]string, 0, len(r.ChunkIDs))}
	for _, id := range r.ChunkIDs {
		if _, ok := drop[id]; !ok {
			out.ChunkIDs = append(out.ChunkIDs, id)
		}
	}
	return out
}

// With returns a copy of r with id appended.
func (r *Root) With(id string) *Root {
	out := &Root{Version: RootVersion, ChunkIDs: make([]string, 0, len(r.ChunkIDs)+1)}
	out.ChunkIDs = append(out.ChunkIDs, r.ChunkIDs...)
	out.ChunkIDs = append(out.ChunkIDs, id)
	return out
}
