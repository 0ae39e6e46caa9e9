package tags

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

const defaultCacheSize = 512

// Cached memoizes an upstream Provider in a bounded LRU. Tag assignments are
// fixed for the life of the process.
type Cached struct {
	upstream Provider
	cache    *lru.Cache
}

// NewCached wraps upstream. A size <= 0 selects the default.
func NewCached(upstream Provider, size int) (*Cached, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("tag cache: %w", err)
	}
	return &Cached{upstream: upstream, cache: cache}, nil
}

func (c *Cached) ResourceTags(resourceID string) Set {
	return c.lookup("resource:"+resourceID, func() Set { return c.upstream.ResourceTags(resourceID) })
}

func (c *Cached) LocationTags(locationID string) Set {
	return c.lookup("location:"+locationID, func() Set { return c.upstream.LocationTags(locationID) })
}

func (c *Cached) lookup(key string, load func() Set) Set {
	if v, ok := c.cache.Get(key); ok {
		return v.(Set)
	}
	s := load()
	c.cache.Add(key, s)
	return s
}
