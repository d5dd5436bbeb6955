package document

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/whiteboard/pkg/cache"
	"github.com/matzehuels/whiteboard/pkg/observability"
)

// Loader extracts pages and caches the result by file content, so the
// same upload to several sessions is decoded once.
type Loader struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewLoader returns a loader backed by c. A nil cache disables caching and
// a nil keyer uses cache.NewDefaultKeyer.
func NewLoader(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Loader {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Loader{cache: c, keyer: keyer, ttl: ttl}
}

// Load is Extract with caching. Cache failures are not errors; the file
// is extracted again instead.
func (l *Loader) Load(ctx context.Context, filename string, data []byte) ([]string, error) {
	if err := check(filename, data); err != nil {
		return nil, err
	}

	key := l.keyer.DocumentKey(filename, data)
	if cached, ok, err := l.cache.Get(ctx, key); err == nil && ok {
		var pages []string
		if json.Unmarshal(cached, &pages) == nil && len(pages) > 0 {
			observability.Cache().OnCacheHit(ctx, "doc")
			return pages, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "doc")

	pages, err := Extract(filename, data)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(pages); err == nil {
		if l.cache.Set(ctx, key, encoded, l.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "doc", len(encoded))
		}
	}
	return pages, nil
}
