package achievement

import "errors"

var (
	// ErrNotFound is returned when a node id or path does not resolve.
	ErrNotFound = errors.New("achievement: node not found")
	// ErrInvalidPath is returned for malformed tree paths.
	ErrInvalidPath = errors.New("achievement: invalid path")
	// ErrAttached is returned when a detached element is required.
	ErrAttached = errors.New("achievement: element already attached")
)
