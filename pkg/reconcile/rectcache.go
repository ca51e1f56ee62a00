package reconcile

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/oekaki-cafe/drawcore/pkg/types"
)

// RectCache memoizes rectangle-intersection tests behind an LRU-ish cache of
// about maxEntries entries (§4.6: "cached with an LRU of ~1000 entries keyed
// by both rect hashes"), grounded on the teacher's ristretto usage in
// api/pkg/openai/logger/billing_logger.go.
type RectCache struct {
	cache *ristretto.Cache[uint64, bool]
}

// NewRectCache builds a cache sized for roughly maxEntries live keys.
func NewRectCache(maxEntries int64) (*RectCache, error) {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, bool]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &RectCache{cache: cache}, nil
}

// Intersects returns a.Intersects(b), consulting (and populating) the cache
// keyed by the unordered pair of both rects' hashes.
func (c *RectCache) Intersects(a, b types.Rect) bool {
	key := pairKey(rectHash(a), rectHash(b))
	if v, ok := c.cache.Get(key); ok {
		return v
	}
	result := a.Intersects(b)
	c.cache.Set(key, result, 1)
	return result
}

// Wait flushes ristretto's async write buffers; only needed by tests that
// want to assert on cache contents deterministically.
func (c *RectCache) Wait() { c.cache.Wait() }

func rectHash(r types.Rect) uint64 {
	h := uint64(14695981039346656037)
	for _, v := range [4]int{r.MinX, r.MinY, r.MaxX, r.MaxY} {
		h ^= uint64(uint32(v))
		h *= 1099511628211
	}
	return h
}

func pairKey(a, b uint64) uint64 {
	if a > b {
		a, b = b, a
	}
	return a*31 + b
}
