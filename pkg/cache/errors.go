package cache

import "errors"

// ErrCacheMiss is returned by lookups that require a cached entry, such as
// serving a previously rendered diagram by hash.
var ErrCacheMiss = errors.New("cache miss")
