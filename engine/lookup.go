package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/internal/chunk"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"github.com/EthanShoeDev/fressh-sub000/manifest"
)

// GetEntry returns the entry for id with its reconstructed value.
func (e *Engine[M]) GetEntry(ctx context.Context, id string) (rec *Record[M], err error) {
	start := time.Now()
	defer func() { e.metrics.OnOperation(e.namespace, OpGet, time.Since(start), err) }()

	m, err := e.readManifest(ctx)
	if err != nil {
		return nil, err
	}

	d, ci, ok := m.Find(id)
	if !ok {
		if e.logOps {
			e.logger.DebugContext(ctx, "entry not found", "id", id)
		}
		return nil, notFound(id)
	}

	entry, err := e.decodeEntry(d, m.Chunks[ci].ID)
	if err != nil {
		return nil, err
	}

	value, err := e.readValue(ctx, d)
	if err != nil {
		return nil, err
	}
	e.metrics.OnValueBytes(e.namespace, OpGet, int64(len(value)))

	return &Record[M]{Entry: entry, Value: value}, nil
}

// ListEntries returns every entry without reading values.
func (e *Engine[M]) ListEntries(ctx context.Context) (entries []Entry[M], err error) {
	start := time.Now()
	defer func() { e.metrics.OnOperation(e.namespace, OpList, time.Since(start), err) }()

	m, err := e.readManifest(ctx)
	if err != nil {
		return nil, err
	}
	entries, _, err = e.entries(m)
	return entries, err
}

// ListEntriesWithValues returns every entry with its value. Values are read
// concurrently. An entry whose value cannot be reconstructed is reported in
// its Result.Err and does not fail the listing; store failures do.
func (e *Engine[M]) ListEntriesWithValues(ctx context.Context) (results []Result[M], err error) {
	start := time.Now()
	defer func() { e.metrics.OnOperation(e.namespace, OpListWithValues, time.Since(start), err) }()

	m, err := e.readManifest(ctx)
	if err != nil {
		return nil, err
	}
	entries, descs, err := e.entries(m)
	if err != nil {
		return nil, err
	}

	results = make([]Result[M], len(entries))
	g, gctx := e.group(ctx)
	for i := range entries {
		results[i].Entry = entries[i]
		g.Go(func() error {
			value, err := e.readValue(gctx, descs[i])
			if err != nil {
				if errors.Is(err, ErrCorruptEntry) {
					results[i].Err = err
					return nil
				}
				return err
			}
			results[i].Value = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int64
	for _, r := range results {
		total += int64(len(r.Value))
	}
	e.metrics.OnValueBytes(e.namespace, OpListWithValues, total)
	return results, nil
}

// readValue fetches slices 0..ChunkCount-1 and joins them in index order.
func (e *Engine[M]) readValue(ctx context.Context, d manifest.Descriptor) ([]byte, error) {
	if d.ChunkCount > MaxChunkCount {
		err := &CorruptEntryError{ID: d.ID, Slice: -1, ChunkCount: d.ChunkCount,
			cause: fmt.Errorf("chunkCount above %d", MaxChunkCount)}
		e.logCorrupt(ctx, d.ID, err)
		return nil, err
	}

	slices := make([][]byte, d.ChunkCount)
	g, gctx := e.group(ctx)
	for i := range d.ChunkCount {
		g.Go(func() error {
			data, err := e.store.Get(gctx, e.keys.Value(d.ID, i))
			if err != nil {
				if errors.Is(err, kvstore.ErrNotFound) {
					return &CorruptEntryError{ID: d.ID, Slice: i, ChunkCount: d.ChunkCount, cause: err}
				}
				return err
			}
			slices[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrCorruptEntry) {
			e.logCorrupt(ctx, d.ID, err)
		}
		return nil, err
	}

	value, err := chunk.Decompress(chunk.Join(slices), chunk.Compression(d.Compression))
	if err != nil {
		err = &CorruptEntryError{ID: d.ID, Slice: -1, ChunkCount: d.ChunkCount, cause: err}
		e.logCorrupt(ctx, d.ID, err)
		return nil, err
	}
	return value, nil
}

func (e *Engine[M]) logCorrupt(ctx context.Context, id string, err error) {
	if e.logOps {
		e.logger.WarnContext(ctx, "corrupt entry", "id", id, "error", err)
	}
}
