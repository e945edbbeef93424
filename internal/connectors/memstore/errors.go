package memstore

import "errors"

// ErrClosed is returned (wrapped in a domain error) when an operation is
// attempted on a store that has already been closed.
var ErrClosed = errors.New("memstore: store is closed")
