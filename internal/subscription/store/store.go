package store

import "errors"

// ErrNotFound is returned when a user has no subscription rows.
var ErrNotFound = errors.New("subscription not found")
