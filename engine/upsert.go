package engine

import (
	"context"
	"errors"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/internal/chunk"
	"github.com/EthanShoeDev/fressh-sub000/manifest"
)

// UpsertEntry creates or replaces the entry in.ID.
//
// Upsert is delete-then-insert: any existing entry is deleted first, so a
// concurrent reader may briefly observe the id as absent. Input is validated
// before any store call; a descriptor whose encoded size is not below half the
// value limit fails with ErrValidation. An upsert that would need a manifest
// chunk the root can no longer list fails with ErrDirectoryFull, also before
// any write. Failures after the first write are not rolled back and the store
// error is returned as is; retrying the same upsert is safe.
func (e *Engine[M]) UpsertEntry(ctx context.Context, in UpsertInput[M]) (err error) {
	start := time.Now()
	defer func() {
		e.metrics.OnOperation(e.namespace, OpUpsert, time.Since(start), err)
		if !e.logOps {
			return
		}
		switch {
		case err == nil:
		case errors.Is(err, ErrValidation), errors.Is(err, ErrDirectoryFull):
			e.logger.WarnContext(ctx, "upsert rejected", "id", in.ID, "error", err)
		default:
			e.logger.ErrorContext(ctx, "upsert failed", "id", in.ID, "error", err)
		}
	}()

	d, payload, err := e.prepare(in)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	reserved, err := e.reserve(ctx, d)
	if err != nil {
		return err
	}

	if err := e.deleteEntry(ctx, in.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := e.writeValue(ctx, in.ID, chunk.Split(payload, e.limits.SliceSize)); err != nil {
		return err
	}

	chunkID, err := e.place(ctx, d, reserved)
	if err != nil {
		return err
	}

	e.metrics.OnValueBytes(e.namespace, OpUpsert, int64(len(payload)))
	if e.logOps {
		e.logger.DebugContext(ctx, "upsert completed",
			"id", in.ID,
			"chunkCount", d.ChunkCount,
			"manifestChunk", chunkID,
		)
	}
	return nil
}

// prepare builds and validates the descriptor and stored payload without
// touching the store.
func (e *Engine[M]) prepare(in UpsertInput[M]) (manifest.Descriptor, []byte, error) {
	if in.ID == "" {
		return manifest.Descriptor{}, nil, &ValidationError{Field: "id"}
	}

	meta, err := e.codec.Marshal(in.Metadata)
	if err != nil {
		return manifest.Descriptor{}, nil, &ValidationError{Field: "metadata", cause: err}
	}

	payload, used, err := chunk.Compress(in.Value, e.compression)
	if err != nil {
		return manifest.Descriptor{}, nil, err
	}

	count := chunk.Count(len(payload), e.limits.SliceSize)
	if count > MaxChunkCount {
		return manifest.Descriptor{}, nil, &ValidationError{
			Field: "value",
			Size:  len(payload),
			Limit: MaxChunkCount*e.limits.SliceSize + 1,
		}
	}

	d := manifest.Descriptor{
		ID:          in.ID,
		ChunkCount:  count,
		Compression: string(used),
		Metadata:    meta,
	}

	size, err := e.manifests.DescriptorSize(d)
	if err != nil {
		return manifest.Descriptor{}, nil, &ValidationError{Field: "descriptor", cause: err}
	}
	if limit := e.limits.MaxDescriptorSize(); size >= limit {
		return manifest.Descriptor{}, nil, &ValidationError{Field: "descriptor", Size: size, Limit: limit}
	}
	return d, payload, nil
}

// writeValue persists all slices of an entry concurrently.
func (e *Engine[M]) writeValue(ctx context.Context, id string, slices [][]byte) error {
	g, gctx := e.group(ctx)
	for i, s := range slices {
		g.Go(func() error {
			return e.store.Set(gctx, e.keys.Value(id, i), s)
		})
	}
	return g.Wait()
}

// reserve replays the placement of d against the manifest as it will be once
// any existing entry d.ID is deleted, without writing. It returns the id for
// a new manifest chunk, or "" when an existing chunk has room. A new chunk
// that would push the root past the value limit fails with *CapacityError.
//
// Must be called with e.mu held.
func (e *Engine[M]) reserve(ctx context.Context, d manifest.Descriptor) (string, error) {
	size, err := e.manifests.DescriptorSize(d)
	if err != nil {
		return "", err
	}

	m, err := e.readManifest(ctx)
	if err != nil {
		return "", err
	}
	_, _, replacing := m.Find(d.ID)

	// Deleting an existing entry compacts every chunk it leaves empty.
	var dropped []string
	for _, info := range m.Chunks {
		n := info.Size
		if replacing {
			c := info.Chunk.Without(d.ID)
			if len(c.Entries) == 0 {
				dropped = append(dropped, info.ID)
				continue
			}
			if len(c.Entries) != len(info.Chunk.Entries) {
				data, err := e.manifests.EncodeChunk(c)
				if err != nil {
					return "", err
				}
				n = len(data)
			}
		}
		if n+size < e.limits.MaxValueSize {
			return "", nil
		}
	}

	id := e.newID()
	if err := e.checkRoot(m.Root.Without(dropped...).With(id)); err != nil {
		return "", err
	}
	return id, nil
}

// checkRoot fails with *CapacityError when r does not fit in one value.
func (e *Engine[M]) checkRoot(r *manifest.Root) error {
	n, err := e.manifests.RootSize(r)
	if err != nil {
		return err
	}
	if n > e.limits.MaxValueSize {
		return &CapacityError{
			Namespace: e.namespace,
			Chunks:    len(r.ChunkIDs),
			RootSize:  n,
			Limit:     e.limits.MaxValueSize,
		}
	}
	return nil
}

// place commits d into the first manifest chunk with room for it, or into a
// new chunk named newID (generated when empty), and returns the chunk id.
func (e *Engine[M]) place(ctx context.Context, d manifest.Descriptor, newID string) (string, error) {
	size, err := e.manifests.DescriptorSize(d)
	if err != nil {
		return "", err
	}

	m, err := e.readManifest(ctx)
	if err != nil {
		return "", err
	}

	// First fit. Strict inequality leaves one byte for the list separator.
	for _, info := range m.Chunks {
		if info.Size+size < e.limits.MaxValueSize {
			data, err := e.manifests.EncodeChunk(info.Chunk.With(d))
			if err != nil {
				return "", err
			}
			return info.ID, e.manifests.SaveChunk(ctx, info.ID, data)
		}
	}

	id := newID
	if id == "" {
		id = e.newID()
	}
	root := m.Root.With(id)
	if err := e.checkRoot(root); err != nil {
		return "", err
	}
	data, err := e.manifests.EncodeChunk(manifest.NewChunk().With(d))
	if err != nil {
		return "", err
	}
	if err := e.manifests.SaveChunk(ctx, id, data); err != nil {
		return "", err
	}
	if err := e.manifests.SaveRoot(ctx, root); err != nil {
		return "", err
	}

	e.logger.InfoContext(ctx, "manifest chunk created", "chunk", id, "chunks", len(m.Chunks)+1)
	return id, nil
}
