package store

import "errors"

// ErrNotFound is returned when a vault item does not exist or belongs to
// another user.
var ErrNotFound = errors.New("vault item not found")
