package store

import "errors"

// ErrNotFound is returned when no user row exists for the given ID.
var ErrNotFound = errors.New("user not found")
