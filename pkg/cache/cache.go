// Package cache provides the byte caches used by the whiteboard server and CLI.
//
// A [Cache] stores opaque values under string keys with an optional TTL.
// Three backends are available:
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance, for servers running more than one replica
//   - [NullCache]: never stores anything
//
// Keys are built with a [Keyer] so every consumer agrees on their shape:
// extracted upload pages are keyed by content hash, chat responses by
// model, system prompt and query.
package cache

import (
	"context"
	"time"
)

// Cache stores byte values by key.
//
// Get reports a miss with ok=false and a nil error. A TTL of 0 means the
// entry does not expire. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// DocumentKey identifies the pages extracted from an uploaded file.
	// The extension is part of the key because it selects the extractor.
	DocumentKey(filename string, data []byte) string

	// ChatKey identifies an assistant response.
	ChatKey(model, system, query string) string
}

// NullCache never stores anything. Every Get is a miss.
type NullCache struct{}

// NewNullCache returns a cache for the "none" backend.
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
