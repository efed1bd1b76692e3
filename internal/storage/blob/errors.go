package blob

import "errors"

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("blob: object not found")
