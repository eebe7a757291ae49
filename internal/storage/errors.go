package storage

import "errors"

// Sentinel errors every backend maps its driver failures onto, so callers
// can branch with errors.Is regardless of which store is wired in.
var (
	// ErrNotFound: the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey: the record's key is already present. Every store is
	// append-only, so a key collision is always an error, never an update.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput: the record failed validation before reaching the
	// backend.
	ErrInvalidInput = errors.New("invalid input")
)
