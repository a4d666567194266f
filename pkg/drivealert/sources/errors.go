package sources

import "errors"

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("store closed")
