// Package lfu implements the Least-Frequently-Used eviction engine with
// anti-pollution aging: when the average access count per entry exceeds a
// ceiling, every frequency is lowered so long-lived hot keys cannot pin the
// cache forever.
package lfu

import (
	"sync"

	"github.com/IvanBrykalov/evictcache/internal/freq"
	"github.com/IvanBrykalov/evictcache/internal/list"
	"github.com/IvanBrykalov/evictcache/policy"
)

// DefaultMaxAverage is the aging trigger used when Options.MaxAverage is not positive.
const DefaultMaxAverage = 1_000_000

// Options configures an LFU engine.
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries. <= 0 makes Put a no-op.
	Capacity int
	// MaxAverage is the average accesses-per-entry ceiling that triggers aging.
	// <= 0 => DefaultMaxAverage.
	MaxAverage int

	// Metrics receives Hit/Miss/Evict/Size/Decay signals; nil => NoopMetrics.
	Metrics policy.Metrics
	// OnEvict is called for every capacity eviction, under the engine lock.
	OnEvict func(k K, v V, reason policy.EvictReason)
}

// Cache is an O(1) LFU engine. Among entries sharing the minimum frequency
// the oldest one is evicted first.
type Cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.Mutex
	items map[K]*list.Element[K, V]
	table *freq.Table[K, V]
	// total is the running sum of live frequencies; average = total/len(items).
	total   uint64
	average uint64

	capacity   int
	maxAverage uint64
	metrics    policy.Metrics
	onEvict    func(K, V, policy.EvictReason)
}

// New constructs an LFU engine.
func New[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	maxAvg := opt.MaxAverage
	if maxAvg <= 0 {
		maxAvg = DefaultMaxAverage
	}
	capacity := max(opt.Capacity, 0)
	return &Cache[K, V]{
		items:      make(map[K]*list.Element[K, V], capacity),
		table:      freq.New[K, V](),
		capacity:   capacity,
		maxAverage: uint64(maxAvg),
		metrics:    policy.OrNoop(opt.Metrics),
		onEvict:    opt.OnEvict,
	}
}

// Put inserts or overwrites k→v. Overwriting counts as an access.
// A new key enters at frequency 1, evicting the least frequently used entry
// first when the engine is full.
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
	c.items[k] = e
	c.table.Add(e)
	c.metrics.Size(len(c.items))
	c.accessLocked()
}

// Get returns the value for k and bumps its frequency on a hit.
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

// Purge drops every entry and all frequency state. Calling it twice is the
// same as calling it once.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
	c.table.Reset()
	c.total = 0
	c.average = 0
	c.metrics.Size(0)
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// MinFreq returns the smallest frequency held by a resident entry (0 if empty).
func (c *Cache[K, V]) MinFreq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table.Min()
}

// Frequency returns the current frequency of k without counting an access.
func (c *Cache[K, V]) Frequency(k K) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.items[k]; ok {
		return e.Count, true
	}
	return 0, false
}

// -------------------- internals (mu held) --------------------

func (c *Cache[K, V]) touchLocked(e *list.Element[K, V]) {
	c.table.Touch(e)
	c.accessLocked()
}

// accessLocked accounts one access and ages the table when the average
// frequency crosses maxAverage.
func (c *Cache[K, V]) accessLocked() {
	c.total++
	c.recomputeAverageLocked()
	if c.average > c.maxAverage {
		c.decayLocked()
	}
}

func (c *Cache[K, V]) recomputeAverageLocked() {
	if len(c.items) == 0 {
		c.average = 0
		return
	}
	c.average = c.total / uint64(len(c.items))
}

// decayLocked lowers every frequency by maxAverage/2 (floored at 1).
// With maxAverage == 1 the amount is zero and nothing ages.
// The running total follows the frequencies it summarizes.
func (c *Cache[K, V]) decayLocked() {
	if len(c.items) == 0 || c.maxAverage/2 == 0 {
		return
	}
	c.table.Decay(c.maxAverage / 2)
	var total uint64
	c.table.Each(func(e *list.Element[K, V]) bool {
		total += e.Count
		return true
	})
	c.total = total
	c.recomputeAverageLocked()
	c.metrics.Decay()
}

// evictLocked removes the oldest entry at the minimum frequency.
func (c *Cache[K, V]) evictLocked() {
	e := c.table.Oldest()
	if e == nil {
		return
	}
	c.table.Remove(e)
	delete(c.items, e.Key)
	if c.total >= e.Count {
		c.total -= e.Count
	} else {
		c.total = 0
	}
	c.recomputeAverageLocked()
	c.metrics.Evict(policy.EvictCapacity)
	if cb := c.onEvict; cb != nil {
		cb(e.Key, e.Value, policy.EvictCapacity)
	}
}

var _ policy.Cache[string, int] = (*Cache[string, int])(nil)
