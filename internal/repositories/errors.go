package repositories

import "errors"

// Sentinel errors shared by all repositories. Handlers translate these
// into HTTP status codes; storage-specific errors pass through wrapped.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
)
