// Package lru implements the Least-Recently-Used eviction engine:
// a hash index over an intrusive recency list with O(1) Put/Get/Remove.
package lru

import (
	"sync"

	"github.com/IvanBrykalov/evictcache/internal/list"
	"github.com/IvanBrykalov/evictcache/policy"
)

// Options configures an LRU engine. The zero value is a disabled
// (zero-capacity) engine; set Capacity to enable it.
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries. <= 0 makes Put a no-op.
	Capacity int

	// Metrics receives Hit/Miss/Evict/Size signals; nil => NoopMetrics.
	Metrics policy.Metrics

	// OnEvict is called for every capacity eviction, under the engine lock.
	// Explicit Remove and Purge do not trigger it.
	OnEvict func(k K, v V, reason policy.EvictReason)
}

// Cache is a classic move-to-back LRU: the list front is the least recently
// used entry and is evicted first; the back is the most recently used.
// All methods are safe for concurrent use.
type Cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	items map[K]*list.Element[K, V]
	ll    list.List[K, V]

	capacity int
	metrics  policy.Metrics
	onEvict  func(K, V, policy.EvictReason)
}

// New constructs an LRU engine.
func New[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	capacity := max(opt.Capacity, 0)
	c := &Cache[K, V]{
		items:    make(map[K]*list.Element[K, V], capacity),
		capacity: capacity,
		metrics:  policy.OrNoop(opt.Metrics),
		onEvict:  opt.OnEvict,
	}
	c.ll.Init()
	return c
}

// Put inserts or overwrites k→v and marks k most recently used.
// When the engine is full, the least recently used entry is evicted first.
func (c *Cache[K, V]) Put(k K, v V) {
	if c.capacity == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[k]; ok {
		e.Value = v
		c.touchLocked(e)
		return
	}
	if len(c.items) >= c.capacity {
		c.evictLocked()
	}
	e := &list.Element[K, V]{Key: k, Value: v, Count: 1}
	c.ll.PushBack(e)
	c.items[k] = e
	c.metrics.Size(len(c.items))
}

// Get returns the value for k and marks k most recently used on a hit.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[k]
	if !ok {
		c.metrics.Miss()
		var zero V
		return zero, false
	}
	c.touchLocked(e)
	c.metrics.Hit()
	return e.Value, true
}

// Peek returns the value for k without changing its recency.
func (c *Cache[K, V]) Peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[k]; ok {
		return e.Value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether k is resident without changing its recency.
func (c *Cache[K, V]) Contains(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[k]
	return ok
}

// Remove deletes k if present and reports whether it was.
// Removing an absent key is a no-op.
func (c *Cache[K, V]) Remove(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[k]
	if !ok {
		return false
	}
	c.ll.Remove(e)
	delete(c.items, k)
	c.metrics.Size(len(c.items))
	return true
}

// Purge drops every entry without calling OnEvict.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	c.ll.Init()
	c.metrics.Size(0)
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Cap returns the configured capacity.
func (c *Cache[K, V]) Cap() int { return c.capacity }

// Keys returns resident keys from least to most recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]K, 0, len(c.items))
	for e := c.ll.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Key)
	}
	return keys
}

// -------------------- internals (mu held) --------------------

func (c *Cache[K, V]) touchLocked(e *list.Element[K, V]) {
	e.Count++
	c.ll.MoveToBack(e)
}

// evictLocked removes the least recently used entry (list front).
func (c *Cache[K, V]) evictLocked() {
	e := c.ll.Front()
	if e == nil {
		return
	}
	c.ll.Remove(e)
	delete(c.items, e.Key)
	c.metrics.Evict(policy.EvictCapacity)
	if cb := c.onEvict; cb != nil {
		cb(e.Key, e.Value, policy.EvictCapacity)
	}
}

var _ policy.Cache[string, int] = (*Cache[string, int])(nil)
