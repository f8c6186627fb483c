package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/EthanShoeDev/fressh-sub000/codec"
	"github.com/EthanShoeDev/fressh-sub000/internal/chunk"
	"github.com/EthanShoeDev/fressh-sub000/kvstore"
	"github.com/EthanShoeDev/fressh-sub000/manifest"
	"github.com/EthanShoeDev/fressh-sub000/resource"
	"golang.org/x/sync/errgroup"
)

// Entry is a directory entry without its value.
type Entry[M any] struct {
	ID         string
	ChunkCount int
	Metadata   M
}

// Record is an entry with its reconstructed value.
type Record[M any] struct {
	Entry[M]
	Value []byte
}

// Result is one entry of ListEntriesWithValues. Err is a *CorruptEntryError
// when the value could not be reconstructed; Value is nil in that case.
type Result[M any] struct {
	Entry[M]
	Value []byte
	Err   error
}

// UpsertInput is the argument of UpsertEntry.
type UpsertInput[M any] struct {
	ID       string
	Metadata M
	Value    []byte
}

// Engine is a chunked directory for one namespace. M is the metadata schema.
type Engine[M any] struct {
	mu sync.Mutex // serializes mutations

	namespace   string
	store       kvstore.Store
	manifests   *manifest.Store
	keys        manifest.Keys
	codec       codec.Codec
	limits      Limits
	compression chunk.Compression
	rc          *resource.Controller
	metrics     MetricsObserver
	logger      *slog.Logger
	newID       func() string
	logOps      bool
}

// New creates an engine for namespace on store.
func New[M any](store kvstore.Store, namespace string, opts ...Option) (*Engine[M], error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidArgument)
	}
	if namespace == "" {
		return nil, fmt.Errorf("%w: empty namespace", ErrInvalidArgument)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.limits.Validate(); err != nil {
		return nil, err
	}
	if _, err := chunk.ParseCompression(string(o.compression)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if c, ok := store.(kvstore.Capped); ok && c.MaxValueSize() < o.limits.MaxValueSize {
		return nil, fmt.Errorf("%w: store caps values at %d bytes, below the max value size %d",
			ErrInvalidArgument, c.MaxValueSize(), o.limits.MaxValueSize)
	}

	if o.rc != nil {
		store = kvstore.Throttle(store, o.rc)
	}

	m := manifest.NewStore(store, o.codec, namespace)
	return &Engine[M]{
		namespace:   namespace,
		store:       store,
		manifests:   m,
		keys:        m.Keys(),
		codec:       o.codec,
		limits:      o.limits,
		compression: o.compression,
		rc:          o.rc,
		metrics:     o.metrics,
		logger:      o.logger.With("namespace", namespace),
		newID:       o.newID,
		logOps:      o.logOps,
	}, nil
}

// Namespace returns the engine's namespace.
func (e *Engine[M]) Namespace() string { return e.namespace }

// Limits returns the configured size limits.
func (e *Engine[M]) Limits() Limits { return e.limits }

// Keys returns the store key layout of the namespace.
func (e *Engine[M]) Keys() manifest.Keys { return e.keys }

func (e *Engine[M]) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.rc.Concurrency())
	return g, gctx
}

func (e *Engine[M]) decodeEntry(d manifest.Descriptor, chunkID string) (Entry[M], error) {
	var meta M
	if len(d.Metadata) > 0 {
		if err := e.codec.Unmarshal(d.Metadata, &meta); err != nil {
			e.logger.Error("undecodable entry metadata", "id", d.ID, "chunk", chunkID, "error", err)
			return Entry[M]{}, &CorruptDirectoryError{
				Namespace: e.namespace,
				Key:       e.keys.Chunk(chunkID),
				cause:     fmt.Errorf("metadata of %q: %w", d.ID, err),
			}
		}
	}
	return Entry[M]{ID: d.ID, ChunkCount: d.ChunkCount, Metadata: meta}, nil
}

// entries decodes every descriptor in listed order.
func (e *Engine[M]) entries(m *manifest.Manifest) ([]Entry[M], []manifest.Descriptor, error) {
	var (
		entries []Entry[M]
		descs   []manifest.Descriptor
	)
	for _, info := range m.Chunks {
		for _, d := range info.Chunk.Entries {
			entry, err := e.decodeEntry(d, info.ID)
			if err != nil {
				return nil, nil, err
			}
			entries = append(entries, entry)
			descs = append(descs, d)
		}
	}
	return entries, descs, nil
}
