package cache

import "errors"

// ErrNetwork is returned when a remote cache backend cannot be reached.
// Callers usually treat it like a miss and carry on without the cache.
var ErrNetwork = errors.New("cache: network error")
