package engine

import (
	"context"
	"errors"
	"time"
)

// DeleteEntry removes the entry id and its value chunks, then compacts
// manifest chunks left empty. A missing id fails with ErrNotFound and writes
// nothing.
func (e *Engine[M]) DeleteEntry(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() {
		e.metrics.OnOperation(e.namespace, OpDelete, time.Since(start), err)
		if !e.logOps {
			return
		}
		switch {
		case err == nil:
			e.logger.DebugContext(ctx, "delete completed", "id", id)
		case errors.Is(err, ErrNotFound):
			e.logger.DebugContext(ctx, "delete of missing entry", "id", id)
		default:
			e.logger.ErrorContext(ctx, "delete failed", "id", id, "error", err)
		}
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	return e.deleteEntry(ctx, id)
}

// deleteEntry must be called with e.mu held.
func (e *Engine[M]) deleteEntry(ctx context.Context, id string) error {
	m, err := e.readManifest(ctx)
	if err != nil {
		return err
	}

	d, ci, ok := m.Find(id)
	if !ok {
		return notFound(id)
	}

	info := m.Chunks[ci]
	data, err := e.manifests.EncodeChunk(info.Chunk.Without(id))
	if err != nil {
		return err
	}
	if err := e.manifests.SaveChunk(ctx, info.ID, data); err != nil {
		return err
	}

	if err := e.deleteValue(ctx, id, d.ChunkCount); err != nil {
		return err
	}

	return e.compact(ctx)
}

func (e *Engine[M]) deleteValue(ctx context.Context, id string, chunkCount int) error {
	g, gctx := e.group(ctx)
	for i := range chunkCount {
		g.Go(func() error {
			return e.store.Delete(gctx, e.keys.Value(id, i))
		})
	}
	return g.Wait()
}

// compact drops manifest chunks without entries from the root and deletes
// their keys. The root is rewritten first so a failure leaves only
// unreferenced chunk keys behind.
func (e *Engine[M]) compact(ctx context.Context) (err error) {
	m, err := e.readManifest(ctx)
	if err != nil {
		return err
	}

	empty := m.EmptyChunks()
	if len(empty) == 0 {
		return nil
	}

	defer func() { e.metrics.OnCompaction(e.namespace, len(empty), err) }()

	if err := e.manifests.SaveRoot(ctx, m.Root.Without(empty...)); err != nil {
		return err
	}

	g, gctx := e.group(ctx)
	for _, id := range empty {
		g.Go(func() error {
			return e.manifests.DeleteChunk(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "manifest chunks compacted",
		"removed", len(empty),
		"remaining", len(m.Chunks)-len(empty),
	)
	return nil
}
