package manifest

import (
	"context"
	"errors"
	"fmt"

	"github.com/EthanShoeDev/fressh-sub000/codec"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
)

// Store reads and writes manifest records of one namespace.
//
// Backing store errors other than an absent key are returned unchanged.
type Store struct {
	kv    kvstore.Store
	codec codec.Codec
	keys  Keys
}

// NewStore creates a manifest store. A nil codec selects codec.Default.
func NewStore(kv kvstore.Store, c codec.Codec, namespace string) *Store {
	if c == nil {
		c = codec.Default
	}
	return &Store{
		kv:    kv,
		codec: c,
		keys:  Keys{Namespace: namespace},
	}
}

// Keys returns the key layout of the namespace.
func (s *Store) Keys() Keys { return s.keys }

// Codec returns the record codec.
func (s *Store) Codec() codec.Codec { return s.codec }

// LoadRoot reads the root record. An absent root is an empty manifest.
func (s *Store) LoadRoot(ctx context.Context) (*Root, error) {
	data, err := s.kv.Get(ctx, s.keys.Root())
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return NewRoot(), nil
		}
		return nil, err
	}
	return s.DecodeRoot(data)
}

// DecodeRoot parses and validates a root record.
func (s *Store) DecodeRoot(data []byte) (*Root, error) {
	var r Root
	if err := s.codec.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: root: %v", ErrMalformed, err)
	}
	if r.Version > RootVersion {
		return nil, fmt.Errorf("%w: root version %d (max %d)", ErrIncompatibleVersion, r.Version, RootVersion)
	}
	if r.Version < 1 {
		return nil, fmt.Errorf("%w: root without manifestVersion", ErrMalformed)
	}
	if r.ChunkIDs == nil {
		r.ChunkIDs = []string{}
	}
	return &r, nil
}

// SaveRoot writes the root record.
func (s *Store) SaveRoot(ctx context.Context, r *Root) error {
	data, err := s.codec.Marshal(r)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, s.keys.Root(), data)
}

// RootSize returns the encoded size of r.
func (s *Store) RootSize(r *Root) (int, error) {
	return codec.Size(s.codec, r)
}

// LoadChunk reads one manifest chunk and records its encoded size.
// An absent chunk yields ErrNotFound.
func (s *Store) LoadChunk(ctx context.Context, id string) (ChunkInfo, error) {
	data, err := s.kv.Get(ctx, s.keys.Chunk(id))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return ChunkInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return ChunkInfo{}, err
	}

	c, err := s.DecodeChunk(data)
	if err != nil {
		return ChunkInfo{}, err
	}
	return ChunkInfo{ID: id, Chunk: c, Size: len(data)}, nil
}

// DecodeChunk parses and validates a chunk record.
func (s *Store) DecodeChunk(data []byte) (*Chunk, error) {
	var c Chunk
	if err := s.codec.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: chunk: %v", ErrMalformed, err)
	}
	if c.Version > ChunkVersion {
		return nil, fmt.Errorf("%w: chunk version %d (max %d)", ErrIncompatibleVersion, c.Version, ChunkVersion)
	}
	if c.Version < 1 {
		return nil, fmt.Errorf("%w: chunk without manifestChunkVersion", ErrMalformed)
	}
	if c.Entries == nil {
		c.Entries = []Descriptor{}
	}
	for i := range c.Entries {
		if err := c.Entries[i].validate(); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// EncodeChunk returns the encoded chunk.
func (s *Store) EncodeChunk(c *Chunk) ([]byte, error) {
	return s.codec.Marshal(c)
}

// SaveChunk writes an encoded chunk.
func (s *Store) SaveChunk(ctx context.Context, id string, data []byte) error {
	return s.kv.Set(ctx, s.keys.Chunk(id), data)
}

// DeleteChunk removes a chunk record.
func (s *Store) DeleteChunk(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, s.keys.Chunk(id))
}

// DescriptorSize returns the encoded size of d.
func (s *Store) DescriptorSize(d Descriptor) (int, error) {
	return codec.Size(s.codec, d)
}
