package store

import "errors"

// Store errors.
var (
	// ErrInvalidSnapshot is returned when a snapshot fails validation
	// (empty or duplicate token ID). The previous canonical state is
	// left untouched.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
