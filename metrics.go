package fressh

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/engine"
)

// MetricsObserver receives engine events for every directory of a Vault.
// Implement it to integrate with monitoring systems; package observability
// provides a Prometheus implementation.
type MetricsObserver = engine.MetricsObserver

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver = engine.NoopMetricsObserver

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
// Counters aggregate over all namespaces.
type BasicMetricsCollector struct {
	UpsertCount      atomic.Int64
	UpsertErrors     atomic.Int64
	UpsertTotalNanos atomic.Int64
	GetCount         atomic.Int64
	GetMisses        atomic.Int64
	GetErrors        atomic.Int64
	GetTotalNanos    atomic.Int64
	ListCount        atomic.Int64
	ListErrors       atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	BytesWritten     atomic.Int64
	BytesRead        atomic.Int64
	CompactedChunks  atomic.Int64
	CompactionErrors atomic.Int64
	ManifestChunks   atomic.Int64
	SweepOrphans     atomic.Int64
	SweepDeleted     atomic.Int64
}

var _ MetricsObserver = (*BasicMetricsCollector)(nil)

// OnOperation implements MetricsObserver.
func (b *BasicMetricsCollector) OnOperation(_ string, op engine.Operation, duration time.Duration, err error) {
	switch op {
	case engine.OpUpsert:
		b.UpsertCount.Add(1)
		b.UpsertTotalNanos.Add(duration.Nanoseconds())
		if err != nil {
			b.UpsertErrors.Add(1)
		}
	case engine.OpGet:
		b.GetCount.Add(1)
		b.GetTotalNanos.Add(duration.Nanoseconds())
		switch {
		case errors.Is(err, engine.ErrNotFound):
			b.GetMisses.Add(1)
		case err != nil:
			b.GetErrors.Add(1)
		}
	case engine.OpList, engine.OpListWithValues:
		b.ListCount.Add(1)
		if err != nil {
			b.ListErrors.Add(1)
		}
	case engine.OpDelete:
		b.DeleteCount.Add(1)
		if err != nil && !errors.Is(err, engine.ErrNotFound) {
			b.DeleteErrors.Add(1)
		}
	}
}

// OnValueBytes implements MetricsObserver.
func (b *BasicMetricsCollector) OnValueBytes(_ string, op engine.Operation, bytes int64) {
	if op == engine.OpUpsert {
		b.BytesWritten.Add(bytes)
		return
	}
	b.BytesRead.Add(bytes)
}

// OnCompaction implements MetricsObserver.
func (b *BasicMetricsCollector) OnCompaction(_ string, removedChunks int, err error) {
	if err != nil {
		b.CompactionErrors.Add(1)
		return
	}
	b.CompactedChunks.Add(int64(removedChunks))
}

// OnManifestChunks implements MetricsObserver. It keeps the last value seen.
func (b *BasicMetricsCollector) OnManifestChunks(_ string, chunks int) {
	b.ManifestChunks.Store(int64(chunks))
}

// OnSweep implements MetricsObserver.
func (b *BasicMetricsCollector) OnSweep(_ string, orphans, deleted int) {
	b.SweepOrphans.Add(int64(orphans))
	b.SweepDeleted.Add(int64(deleted))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		UpsertCount:      b.UpsertCount.Load(),
		UpsertErrors:     b.UpsertErrors.Load(),
		UpsertAvgNanos:   avg(b.UpsertTotalNanos.Load(), b.UpsertCount.Load()),
		GetCount:         b.GetCount.Load(),
		GetMisses:        b.GetMisses.Load(),
		GetErrors:        b.GetErrors.Load(),
		GetAvgNanos:      avg(b.GetTotalNanos.Load(), b.GetCount.Load()),
		ListCount:        b.ListCount.Load(),
		ListErrors:       b.ListErrors.Load(),
		DeleteCount:      b.DeleteCount.Load(),
		DeleteErrors:     b.DeleteErrors.Load(),
		BytesWritten:     b.BytesWritten.Load(),
		BytesRead:        b.BytesRead.Load(),
		CompactedChunks:  b.CompactedChunks.Load(),
		CompactionErrors: b.CompactionErrors.Load(),
		ManifestChunks:   b.ManifestChunks.Load(),
		SweepOrphans:     b.SweepOrphans.Load(),
		SweepDeleted:     b.SweepDeleted.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	UpsertCount      int64
	UpsertErrors     int64
	UpsertAvgNanos   int64
	GetCount         int64
	GetMisses        int64
	GetErrors        int64
	GetAvgNanos      int64
	ListCount        int64
	ListErrors       int64
	DeleteCount      int64
	DeleteErrors     int64
	BytesWritten     int64
	BytesRead        int64
	CompactedChunks  int64
	CompactionErrors int64
	ManifestChunks   int64
	SweepOrphans     int64
	SweepDeleted     int64
}
