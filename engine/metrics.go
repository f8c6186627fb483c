package engine

import "time"

// Operation names a directory operation for metrics.
type Operation string

const (
	OpGetManifest    Operation = "get_manifest"
	OpGet            Operation = "get"
	OpList           Operation = "list"
	OpListWithValues Operation = "list_with_values"
	OpUpsert         Operation = "upsert"
	OpDelete         Operation = "delete"
	OpSweep          Operation = "sweep"
)

// MetricsObserver defines the interface for observing engine events.
type MetricsObserver interface {
	// OnOperation is called when a directory operation completes.
	OnOperation(namespace string, op Operation, duration time.Duration, err error)

	// OnValueBytes reports payload bytes written (upsert) or read (get, list).
	OnValueBytes(namespace string, op Operation, bytes int64)

	// OnCompaction is called after a delete removed empty manifest chunks.
	OnCompaction(namespace string, removedChunks int, err error)

	// OnManifestChunks reports the number of manifest chunks after a read.
	OnManifestChunks(namespace string, chunks int)

	// OnSweep is called when an orphan sweep completes.
	OnSweep(namespace string, orphans, deleted int)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnOperation(namespace string, op Operation, duration time.Duration, err error) {
}
func (o *NoopMetricsObserver) OnValueBytes(namespace string, op Operation, bytes int64)    {}
func (o *NoopMetricsObserver) OnCompaction(namespace string, removedChunks int, err error) {}
func (o *NoopMetricsObserver) OnManifestChunks(namespace string, chunks int)               {}
func (o *NoopMetricsObserver) OnSweep(namespace string, orphans, deleted int)              {}
