// Package observability exports engine metrics to Prometheus.
package observability

import (
	"errors"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/engine"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver implements engine.MetricsObserver.
type PrometheusObserver struct {
	opLatency      *prometheus.HistogramVec
	valueBytes     *prometheus.CounterVec
	compactions    *prometheus.CounterVec
	removedChunks  *prometheus.CounterVec
	manifestChunks *prometheus.GaugeVec
	sweepOrphans   *prometheus.CounterVec
	sweepDeleted   *prometheus.CounterVec
}

var _ engine.MetricsObserver = (*PrometheusObserver)(nil)

// NewPrometheusObserver creates the collectors and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fressh_operation_latency_seconds",
			Help:    "Latency of directory operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"namespace", "op", "status"}),
		valueBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fressh_value_bytes_total",
			Help: "Value payload bytes written by upserts and read by gets and listings",
		}, []string{"namespace", "op"}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fressh_compactions_total",
			Help: "Manifest compactions after deletes",
		}, []string{"namespace", "status"}),
		removedChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fressh_compacted_chunks_total",
			Help: "Empty manifest chunks removed by compaction",
		}, []string{"namespace"}),
		manifestChunks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fressh_manifest_chunks",
			Help: "Manifest chunks seen by the most recent manifest read",
		}, []string{"namespace"}),
		sweepOrphans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fressh_sweep_orphans_total",
			Help: "Unreferenced keys found by sweeps",
		}, []string{"namespace"}),
		sweepDeleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fressh_sweep_deleted_total",
			Help: "Unreferenced keys deleted by sweeps",
		}, []string{"namespace"}),
	}

	for _, c := range []prometheus.Collector{
		o.opLatency,
		o.valueBytes,
		o.compactions,
		o.removedChunks,
		o.manifestChunks,
		o.sweepOrphans,
		o.sweepDeleted,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// status buckets errors with low cardinality. A missing entry is an
// expected outcome, not a failure.
func status(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, engine.ErrNotFound):
		return "not_found"
	case errors.Is(err, engine.ErrValidation):
		return "invalid"
	case errors.Is(err, engine.ErrCorruptDirectory), errors.Is(err, engine.ErrCorruptEntry):
		return "corrupt"
	default:
		return "error"
	}
}

func (o *PrometheusObserver) OnOperation(namespace string, op engine.Operation, d time.Duration, err error) {
	o.opLatency.WithLabelValues(namespace, string(op), status(err)).Observe(d.Seconds())
}

func (o *PrometheusObserver) OnValueBytes(namespace string, op engine.Operation, bytes int64) {
	o.valueBytes.WithLabelValues(namespace, string(op)).Add(float64(bytes))
}

func (o *PrometheusObserver) OnCompaction(namespace string, removedChunks int, err error) {
	o.compactions.WithLabelValues(namespace, status(err)).Inc()
	if err == nil {
		o.removedChunks.WithLabelValues(namespace).Add(float64(removedChunks))
	}
}

func (o *PrometheusObserver) OnManifestChunks(namespace string, chunks int) {
	o.manifestChunks.WithLabelValues(namespace).Set(float64(chunks))
}

func (o *PrometheusObserver) OnSweep(namespace string, orphans, deleted int) {
	o.sweepOrphans.WithLabelValues(namespace).Add(float64(orphans))
	o.sweepDeleted.WithLabelValues(namespace).Add(float64(deleted))
}
