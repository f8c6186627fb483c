package manifest

import "errors"

var (
	// ErrIncompatibleVersion is returned when a record version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible manifest version")

	// ErrNotFound is returned when a manifest chunk does not exist.
	ErrNotFound = errors.New("manifest chunk not found")

	// ErrMalformed is returned when a record cannot be decoded or violates the format.
	ErrMalformed = errors.New("malformed manifest record")
)
