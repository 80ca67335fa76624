package metadata

import "errors"

// ErrNotFound means the external id does not exist upstream.
var ErrNotFound = errors.New("metadata not found")
