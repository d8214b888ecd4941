package store

import "errors"

// ErrNotFound is returned when a claim identity has never been observed.
var ErrNotFound = errors.New("not found")
