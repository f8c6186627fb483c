package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id has no descriptor in the directory.
	ErrNotFound = errors.New("entry not found")

	// ErrValidation is returned when input is rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrCorruptDirectory is returned when the root manifest references a chunk
	// that cannot be read or parsed. It is fatal for the namespace.
	ErrCorruptDirectory = errors.New("corrupt directory")

	// ErrCorruptEntry is returned when an entry's value slices are missing or
	// cannot be decoded. Other entries remain readable.
	ErrCorruptEntry = errors.New("corrupt entry")

	// ErrDirectoryFull is returned when an upsert needs a new manifest chunk
	// but the root manifest cannot list another one within the value limit.
	// Nothing is written.
	ErrDirectoryFull = errors.New("directory full")

	// ErrInvalidArgument is returned for invalid engine configuration.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError describes rejected input.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ValidationError struct {
	Field string
	Size  int
	Limit int
	cause error
}

func (e *ValidationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("validation failed: %s: %v", e.Field, e.cause)
	}
	if e.Limit > 0 {
		return fmt.Sprintf("validation failed: %s is %d bytes, must be less than %d", e.Field, e.Size, e.Limit)
	}
	return fmt.Sprintf("validation failed: %s", e.Field)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.cause }

// CapacityError reports a root manifest that would outgrow the value limit.
type CapacityError struct {
	Namespace string
	Chunks    int
	RootSize  int
	Limit     int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("directory %q is full: root manifest listing %d chunks would be %d bytes, limit is %d",
		e.Namespace, e.Chunks, e.RootSize, e.Limit)
}

func (e *CapacityError) Is(target error) bool { return target == ErrDirectoryFull }

// CorruptDirectoryError identifies the manifest record that could not be read.
type CorruptDirectoryError struct {
	Namespace string
	Key       string
	cause     error
}

func (e *CorruptDirectoryError) Error() string {
	return fmt.Sprintf("corrupt directory %q: %s: %v", e.Namespace, e.Key, e.cause)
}

func (e *CorruptDirectoryError) Is(target error) bool { return target == ErrCorruptDirectory }

func (e *CorruptDirectoryError) Unwrap() error { return e.cause }

// CorruptEntryError identifies an entry whose value cannot be reconstructed.
// Slice is -1 when all slices were read but the payload failed to decode.
type CorruptEntryError struct {
	ID         string
	Slice      int
	ChunkCount int
	cause      error
}

func (e *CorruptEntryError) Error() string {
	if e.Slice < 0 {
		return fmt.Sprintf("corrupt entry %q: %v", e.ID, e.cause)
	}
	return fmt.Sprintf("corrupt entry %q: slice %d of %d: %v", e.ID, e.Slice, e.ChunkCount, e.cause)
}

func (e *CorruptEntryError) Is(target error) bool { return target == ErrCorruptEntry }

func (e *CorruptEntryError) Unwrap() error { return e.cause }

func notFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, id)
}
