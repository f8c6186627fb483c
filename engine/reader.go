package engine

import (
	"context"
	"errors"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/manifest"
)

// GetManifest reads the root manifest and every chunk it lists.
//
// An absent root is an empty directory. A listed chunk that is absent or
// unreadable fails with ErrCorruptDirectory. Chunk sizes are measured on the
// bytes just read.
func (e *Engine[M]) GetManifest(ctx context.Context) (*manifest.Manifest, error) {
	start := time.Now()
	m, err := e.readManifest(ctx)
	e.metrics.OnOperation(e.namespace, OpGetManifest, time.Since(start), err)
	return m, err
}

func (e *Engine[M]) readManifest(ctx context.Context) (*manifest.Manifest, error) {
	root, err := e.manifests.LoadRoot(ctx)
	if err != nil {
		return nil, e.corruptOr(e.keys.Root(), err)
	}

	chunks := make([]manifest.ChunkInfo, len(root.ChunkIDs))
	g, gctx := e.group(ctx)
	for i, id := range root.ChunkIDs {
		g.Go(func() error {
			info, err := e.manifests.LoadChunk(gctx, id)
			if err != nil {
				return e.corruptOr(e.keys.Chunk(id), err)
			}
			chunks[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.metrics.OnManifestChunks(e.namespace, len(chunks))
	return &manifest.Manifest{Root: root, Chunks: chunks}, nil
}

// corruptOr maps manifest format failures to a CorruptDirectoryError and
// passes store failures through unchanged.
func (e *Engine[M]) corruptOr(key string, err error) error {
	if errors.Is(err, manifest.ErrNotFound) ||
		errors.Is(err, manifest.ErrMalformed) ||
		errors.Is(err, manifest.ErrIncompatibleVersion) {
		e.logger.Error("corrupt directory", "key", key, "error", err)
		return &CorruptDirectoryError{Namespace: e.namespace, Key: key, cause: err}
	}
	return err
}
