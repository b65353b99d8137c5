package store

import "errors"

// ErrNotFound is returned when a user has no saved predictions.
var ErrNotFound = errors.New("prediction not found")
