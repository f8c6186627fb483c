package fressh

import (
	"errors"
	"fmt"

	"github.com/EthanShoeDev/fressh-sub000/engine"
)

var (
	// ErrNotFound is returned when an id has no entry in a directory.
	ErrNotFound = engine.ErrNotFound

	// ErrValidation is returned when input is rejected before any write.
	ErrValidation = engine.ErrValidation

	// ErrCorruptDirectory is returned when a directory's manifest cannot be read.
	ErrCorruptDirectory = engine.ErrCorruptDirectory

	// ErrCorruptEntry is returned when a stored value cannot be reconstructed
	// or no longer passes validation.
	ErrCorruptEntry = engine.ErrCorruptEntry

	// ErrInvalidArgument is returned for bad options or a store whose value
	// cap is below the configured limits.
	ErrInvalidArgument = engine.ErrInvalidArgument

	// ErrDirectoryFull is returned when an upsert needs a new manifest chunk
	// that the root manifest can no longer list. Nothing is written.
	ErrDirectoryFull = engine.ErrDirectoryFull

	// ErrNoDefaultKey is returned by KeyDirectory.Default when no key is marked default.
	ErrNoDefaultKey = errors.New("no default key")
)

// InvalidKeyError indicates private key bytes that do not parse.
//
// It matches ErrValidation. The parser error can be accessed via errors.Unwrap.
type InvalidKeyError struct {
	ID    string
	cause error
}

func (e *InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid private key %q: %v", e.ID, e.cause)
}

func (e *InvalidKeyError) Is(target error) bool { return target == ErrValidation }

func (e *InvalidKeyError) Unwrap() error { return e.cause }

// InvalidConnectionError lists the fields of a connection profile that
// failed validation.
//
// On write it matches ErrValidation. On read the stored profile is reported
// wrapped in ErrCorruptEntry.
type InvalidConnectionError struct {
	Fields []string
	cause  error
}

func (e *InvalidConnectionError) Error() string {
	return fmt.Sprintf("invalid connection: %v", e.cause)
}

func (e *InvalidConnectionError) Is(target error) bool { return target == ErrValidation }

func (e *InvalidConnectionError) Unwrap() error { return e.cause }

// corrupt reports a stored value of id that was read but is unusable. The
// cause is kept as text only so that it cannot match ErrValidation.
func corrupt(id string, err error) error {
	return fmt.Errorf("%w: %q: %v", ErrCorruptEntry, id, err)
}
