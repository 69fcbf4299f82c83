// Package lruk implements LRU-K admission on top of the LRU engine: a key
// earns a main-cache slot only after K observed accesses, which shields the
// main cache from one-off scans.
package lruk

import (
	"sync"

	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/lru"
)

// DefaultK is the promotion threshold used when Options.K is not positive.
const DefaultK = 2

// Options configures an LRU-K engine.
type Options[K comparable, V any] struct {
	// Capacity bounds the main LRU cache. <= 0 disables it.
	Capacity int
	// HistoryCapacity bounds the access-count history. <= 0 => Capacity.
	HistoryCapacity int
	// K is the number of accesses required for promotion. <= 0 => DefaultK.
	K int

	// Metrics receives Hit/Miss for every Get (a promoting Get is a hit),
	// main-cache Evict/Size, Promote and EvictHistory; nil => NoopMetrics.
	Metrics policy.Metrics
	// OnEvict is called for main-cache evictions and for pending values
	// dropped when the history forgets a key.
	OnEvict func(k K, v V, reason policy.EvictReason)
}

// Cache composes a main LRU engine with a history LRU engine mapping
// key → access count, plus the pending values of keys written but not yet
// promoted. Pending keys and main-cache keys are disjoint.
type Cache[K comparable, V any] struct {
	k int

	main    *lru.Cache[K, V]
	history *lru.Cache[K, uint64]

	// mu serializes whole Get/Put sequences so that history, pending and
	// main-cache transitions for a key are observed together.
	mu      sync.Mutex
	pending map[K]V

	metrics policy.Metrics
	onEvict func(K, V, policy.EvictReason)
}

// New constructs an LRU-K engine.
func New[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	k := opt.K
	if k <= 0 {
		k = DefaultK
	}
	hc := opt.HistoryCapacity
	if hc <= 0 {
		hc = opt.Capacity
	}
	c := &Cache[K, V]{
		k:       k,
		pending: make(map[K]V),
		metrics: policy.OrNoop(opt.Metrics),
		onEvict: opt.OnEvict,
	}
	c.main = lru.New[K, V](lru.Options[K, V]{
		Capacity: opt.Capacity,
		Metrics:  mainMetrics{c.metrics},
		OnEvict:  opt.OnEvict,
	})
	c.history = lru.New[K, uint64](lru.Options[K, uint64]{
		Capacity: hc,
		OnEvict:  c.forget,
	})
	return c
}

// Get returns the value for k.
//
// A main-cache hit also bumps the key's history count. On a miss the count is
// bumped and, once it reaches K with a pending value recorded by Put, the
// value is promoted into the main cache and returned. Keys that are only ever
// read never gain a pending value and keep missing.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, inMain := c.main.Get(k)
	count := c.bumpLocked(k)
	if inMain {
		c.metrics.Hit()
		return v, true
	}
	if count >= uint64(c.k) {
		if pv, ok := c.pending[k]; ok {
			c.promoteLocked(k, pv)
			c.metrics.Hit()
			return pv, true
		}
	}
	c.metrics.Miss()
	var zero V
	return zero, false
}

// Put writes k→v. A key already in the main cache is overwritten in place.
// Otherwise the access is counted, v becomes the pending value, and the key
// is promoted as soon as its count reaches K.
func (c *Cache[K, V]) Put(k K, v V) {
	if c.main.Cap() == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.main.Contains(k) {
		c.main.Put(k, v)
		return
	}
	count := c.bumpLocked(k)
	c.pending[k] = v
	if count >= uint64(c.k) {
		c.promoteLocked(k, v)
	}
}

// Len returns the number of entries in the main cache.
func (c *Cache[K, V]) Len() int { return c.main.Len() }

// Pending returns the number of written keys still waiting for promotion.
func (c *Cache[K, V]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// HistoryCount returns the recorded access count for a not-yet-promoted key.
func (c *Cache[K, V]) HistoryCount(k K) uint64 {
	n, _ := c.history.Peek(k)
	return n
}

// bumpLocked increments and returns the history count of k.
func (c *Cache[K, V]) bumpLocked(k K) uint64 {
	n, _ := c.history.Get(k)
	n++
	c.history.Put(k, n)
	return n
}

// promoteLocked moves k from history/pending into the main cache.
func (c *Cache[K, V]) promoteLocked(k K, v V) {
	c.history.Remove(k)
	delete(c.pending, k)
	c.main.Put(k, v)
	c.metrics.Promote()
}

// forget runs when the history engine evicts k (under c.mu, since history
// is only mutated from bumpLocked): the pending value goes with the count.
func (c *Cache[K, V]) forget(k K, _ uint64, _ policy.EvictReason) {
	v, ok := c.pending[k]
	if !ok {
		return
	}
	delete(c.pending, k)
	c.metrics.Evict(policy.EvictHistory)
	if cb := c.onEvict; cb != nil {
		cb(k, v, policy.EvictHistory)
	}
}

// mainMetrics forwards the main cache's Evict/Size signals. Hit and Miss are
// reported by Get, which also counts promoting reads as hits.
type mainMetrics struct {
	policy.Metrics
}

func (mainMetrics) Hit()  {}
func (mainMetrics) Miss() {}

var _ policy.Cache[string, int] = (*Cache[string, int])(nil)
