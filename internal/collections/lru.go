package collections

import "container/list"

// LRUCache is a bounded mapping from an opaque key to an opaque value with
// access-order eviction: eviction triggers exactly when Size would exceed
// Capacity. Not safe for concurrent use; callers that share one must
// synchronize.
type LRUCache struct {
	capacity int
	entries  map[any]*list.Element
	order    *list.List // front = most recently used

	hits      int64
	misses    int64
	evictions int64
}

type lruEntry struct {
	key   any
	value any
}

// NewLRUCache returns a cache bounded to capacity entries. A non-positive
// capacity means unbounded.
func NewLRUCache(capacity int) *LRUCache {
	return &LRUCache{
		capacity: capacity,
		entries:  make(map[any]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for key and moves it to most-recently-used position.
func (c *LRUCache) Get(key any) (any, bool) {
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		c.hits++
		return el.Value.(*lruEntry).value, true
	}
	c.misses++
	return nil, false
}

// Put inserts or updates key's value, evicting the least-recently-used entry
// if the cache would otherwise exceed its capacity.
func (c *LRUCache) Put(key, value any) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry).value = value
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&lruEntry{key: key, value: value})
	c.entries[key] = el
	if c.capacity > 0 && c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *LRUCache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.entries, oldest.Value.(*lruEntry).key)
	c.evictions++
}

// Size returns the number of cached entries.
func (c *LRUCache) Size() int { return c.order.Len() }

// Stats returns hit/miss/eviction counters.
func (c *LRUCache) Stats() map[string]int64 {
	total := c.hits + c.misses
	hitRate := int64(0)
	if total > 0 {
		hitRate = c.hits * 100 / total
	}
	return map[string]int64{
		"hits":      c.hits,
		"misses":    c.misses,
		"evictions": c.evictions,
		"hit_rate":  hitRate,
	}
}
