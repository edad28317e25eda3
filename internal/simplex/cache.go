package simplex

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// CacheStats is a point-in-time snapshot of cache activity.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Cache memoises materialised pools by Params.
//
// Thread Safety:
//
//	Cache is safe for concurrent use. Entries are never invalidated because a
//	pool is fully determined by its Params. Concurrent misses for the same
//	Params share one build.
type Cache struct {
	mu     sync.RWMutex
	pools  map[Params][]Vector
	flight singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

func NewCache() *Cache {
	return &Cache{pools: make(map[Params][]Vector)}
}

// Pool returns the full grid for p. The returned slice and its vectors are
// shared between callers and must be treated as read-only.
func (c *Cache) Pool(p Params) ([]Vector, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	pool, ok := c.pools[p]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return pool, nil
	}
	c.misses.Add(1)

	key := fmt.Sprintf("%d/%d/%d/%d", p.Dimension, p.Total, p.Step, p.Floor)
	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		c.mu.RLock()
		existing, ok := c.pools[p]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}
		built, err := Collect(p)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.pools[p] = built
		c.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Vector), nil
}

func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	n := len(c.pools)
	c.mu.RUnlock()
	return CacheStats{Entries: n, Hits: c.hits.Load(), Misses: c.misses.Load()}
}
