package engine

import (
	"encoding/base32"
	"fmt"
	"log/slog"
	"strings"

	"github.com/EthanShoeDev/fressh-sub000/codec"
	"github.com/EthanShoeDev/fressh-sub000/internal/chunk"
	"github.com/EthanShoeDev/fressh-sub000/resource"
	"github.com/google/uuid"
)

const (
	// DefaultMaxValueSize is the per-value byte budget of the backing store.
	DefaultMaxValueSize = 2048

	// DefaultSliceSize is the payload bytes written per value chunk.
	DefaultSliceSize = 1800

	// MinMaxValueSize is the smallest supported value budget.
	MinMaxValueSize = 256

	// MaxChunkCount bounds the value slices of one entry. Larger values are
	// rejected on write, and a stored descriptor above it is corrupt.
	MaxChunkCount = 1 << 16
)

// Limits bounds the size of every record the engine writes.
type Limits struct {
	// MaxValueSize is the store's per-value cap (L). Manifest chunks never
	// exceed it and descriptors must stay below half of it.
	MaxValueSize int

	// SliceSize is the payload size of one value chunk (S). Must be below MaxValueSize.
	SliceSize int
}

// DefaultLimits returns the limits used when WithLimits is not given.
func DefaultLimits() Limits {
	return Limits{MaxValueSize: DefaultMaxValueSize, SliceSize: DefaultSliceSize}
}

// Validate checks the limits for consistency.
func (l Limits) Validate() error {
	if l.MaxValueSize < MinMaxValueSize {
		return fmt.Errorf("%w: max value size %d is below %d", ErrInvalidArgument, l.MaxValueSize, MinMaxValueSize)
	}
	if l.SliceSize <= 0 || l.SliceSize >= l.MaxValueSize {
		return fmt.Errorf("%w: slice size %d must be in (0, %d)", ErrInvalidArgument, l.SliceSize, l.MaxValueSize)
	}
	return nil
}

// MaxDescriptorSize is the exclusive upper bound for an encoded descriptor.
func (l Limits) MaxDescriptorSize() int {
	return l.MaxValueSize / 2
}

type options struct {
	limits      Limits
	codec       codec.Codec
	compression chunk.Compression
	rc          *resource.Controller
	metrics     MetricsObserver
	logger      *slog.Logger
	newID       func() string
	logOps      bool
}

func defaultOptions() options {
	return options{
		limits:  DefaultLimits(),
		codec:   codec.Default,
		metrics: &NoopMetricsObserver{},
		logger:  slog.New(slog.DiscardHandler),
		newID:   newChunkID,
		logOps:  true,
	}
}

var chunkIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newChunkID returns a random 26-character chunk id: the 16 bytes of a
// version 4 UUID in unpadded lower-case base32.
func newChunkID() string {
	u := uuid.New()
	return strings.ToLower(chunkIDEncoding.EncodeToString(u[:]))
}

// Option defines a configuration option for the Engine.
type Option func(*options)

// WithLimits sets the store value cap and the value slice size.
func WithLimits(maxValueSize, sliceSize int) Option {
	return func(o *options) {
		o.limits = Limits{MaxValueSize: maxValueSize, SliceSize: sliceSize}
	}
}

// WithCodec sets the codec used for manifest records and metadata.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression compresses payloads before slicing. The algorithm actually
// applied is recorded per entry, so the setting can change between writes.
func WithCompression(c chunk.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithResourceController bounds store concurrency and rate.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMetricsObserver sets the metrics observer for the engine.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(o *options) {
		if observer != nil {
			o.metrics = observer
		}
	}
}

// WithLogger sets the logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOperationLogging controls the per-operation outcome lines (upsert,
// delete, get and sweep results). Layers that log outcomes themselves turn it
// off; internal events such as chunk creation and compaction are always logged.
func WithOperationLogging(enabled bool) Option {
	return func(o *options) {
		o.logOps = enabled
	}
}

// WithIDGenerator overrides how new manifest chunk ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}
