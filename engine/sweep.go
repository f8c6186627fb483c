package engine

import (
	"context"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"github.com/EthanShoeDev/fressh-sub000/manifest"
)

// SweepReport summarizes an orphan sweep.
type SweepReport struct {
	// Scanned is the number of namespace keys inspected.
	Scanned int
	// Orphans are keys not reachable from the current manifest.
	Orphans []string
	// Deleted is the number of orphans removed. Zero on a dry run.
	Deleted int
}

// Sweep deletes keys of the namespace that the manifest does not reference:
// value slices of entries that were never committed or were only partially
// deleted, and manifest chunks missing from the root. With dryRun set, orphans
// are reported but not deleted.
//
// The store must implement kvstore.Lister; otherwise kvstore.ErrListUnsupported
// is returned. Sweep holds the mutation lock, so it never races with a
// mutation of the same Engine, but it must not run while another process or
// Engine writes the namespace.
func (e *Engine[M]) Sweep(ctx context.Context, dryRun bool) (report *SweepReport, err error) {
	start := time.Now()
	defer func() { e.metrics.OnOperation(e.namespace, OpSweep, time.Since(start), err) }()

	lister, ok := e.store.(kvstore.Lister)
	if !ok {
		return nil, kvstore.ErrListUnsupported
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m, err := e.readManifest(ctx)
	if err != nil {
		return nil, err
	}

	keys, err := lister.List(ctx, e.keys.Prefix())
	if err != nil {
		return nil, err
	}

	chunks := make(map[string]struct{}, len(m.Root.ChunkIDs))
	for _, id := range m.Root.ChunkIDs {
		chunks[id] = struct{}{}
	}
	live := make(map[string]int)
	for _, d := range m.Descriptors() {
		live[d.ID] = d.ChunkCount
	}

	report = &SweepReport{Scanned: len(keys)}
	for _, key := range keys {
		p := e.keys.Parse(key)
		switch p.Kind {
		case manifest.KindChunk:
			if _, ok := chunks[p.ChunkID]; !ok {
				report.Orphans = append(report.Orphans, key)
			}
		case manifest.KindValue:
			if n, ok := live[p.EntryID]; !ok || p.Slice >= n {
				report.Orphans = append(report.Orphans, key)
			}
		}
	}

	if !dryRun && len(report.Orphans) > 0 {
		g, gctx := e.group(ctx)
		for _, key := range report.Orphans {
			g.Go(func() error {
				return e.store.Delete(gctx, key)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		report.Deleted = len(report.Orphans)
	}

	e.metrics.OnSweep(e.namespace, len(report.Orphans), report.Deleted)
	if e.logOps {
		e.logger.InfoContext(ctx, "sweep completed",
			"scanned", report.Scanned,
			"orphans", len(report.Orphans),
			"deleted", report.Deleted,
			"dryRun", dryRun,
		)
	}
	return report, nil
}
