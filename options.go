package fressh

import (
	"log/slog"
	"time"

	"github.com/EthanShoeDev/fressh-sub000/codec"
	"github.com/EthanShoeDev/fressh-sub000/engine"
	"github.com/EthanShoeDev/fressh-sub000/internal/chunk"
	"github.com/EthanShoeDev/fressh-sub000/resource"
)

// DefaultCacheSize is the number of directory listings kept in the read cache.
const DefaultCacheSize = 16

type options struct {
	limits       engine.Limits
	codec        codec.Codec
	compression  chunk.Compression
	rc           *resource.Controller
	metrics      MetricsObserver
	logger       *Logger
	invalidator  func(namespace string)
	validateKeys bool
	cacheSize    int
	now          func() time.Time
}

// Option configures Open.
type Option func(*options)

// WithLimits sets the backing store's value cap and the value slice size.
// Defaults are engine.DefaultMaxValueSize and engine.DefaultSliceSize.
//
// The limits are a breaking-change boundary: a directory written with a
// larger cap cannot be rewritten under a smaller one.
func WithLimits(maxValueSize, sliceSize int) Option {
	return func(o *options) {
		o.limits = engine.Limits{MaxValueSize: maxValueSize, SliceSize: sliceSize}
	}
}

// WithCodec configures the codec used for manifests and metadata.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression compresses values before they are sliced.
//
// Example:
//
//	v, _ := fressh.Open(store, fressh.WithCompression(chunk.ZSTD))
func WithCompression(c chunk.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController bounds concurrency and call rate against the
// backing store. Remote stores with request quotas should set one.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMetricsObserver configures a metrics observer shared by all directories.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &fressh.BasicMetricsCollector{}
//	v, _ := fressh.Open(store, fressh.WithMetricsObserver(metrics))
//	// ... use v ...
//	stats := metrics.GetStats()
//	fmt.Printf("Upserts: %d, Avg latency: %dns\n", stats.UpsertCount, stats.UpsertAvgNanos)
func WithMetricsObserver(m MetricsObserver) Option {
	return func(o *options) {
		if m == nil {
			m = &NoopMetricsObserver{}
		}
		o.metrics = m
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := fressh.NewJSONLogger(slog.LevelInfo)
//	v, _ := fressh.Open(store, fressh.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithInvalidator registers a callback that runs after every mutation of a
// directory, with the directory's namespace. Use it to refresh views that
// hold directory listings.
func WithInvalidator(fn func(namespace string)) Option {
	return func(o *options) {
		o.invalidator = fn
	}
}

// WithPrivateKeyValidation makes KeyDirectory.Put reject bytes that do not
// parse as a private key. Enabled by default. Passphrase-protected keys are
// accepted without being decrypted.
func WithPrivateKeyValidation(enabled bool) Option {
	return func(o *options) {
		o.validateKeys = enabled
	}
}

// WithCacheSize sets how many directory listings the read cache keeps.
// Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithClock overrides the time source for createdAtMs and modifiedAtMs.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		limits:       engine.DefaultLimits(),
		codec:        codec.Default,
		metrics:      &NoopMetricsObserver{},
		logger:       NoopLogger(),
		validateKeys: true,
		cacheSize:    DefaultCacheSize,
		now:          time.Now,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o *options) engineOptions() []engine.Option {
	return []engine.Option{
		engine.WithLimits(o.limits.MaxValueSize, o.limits.SliceSize),
		engine.WithCodec(o.codec),
		engine.WithCompression(o.compression),
		engine.WithResourceController(o.rc),
		engine.WithMetricsObserver(o.metrics),
		engine.WithLogger(o.logger.Logger),
		engine.WithOperationLogging(false),
	}
}
