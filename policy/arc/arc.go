// Package arc implements an Adaptive Replacement Cache that balances recency
// against frequency. It composes an LRU part and an LFU part, each with its
// own ghost list of recently evicted keys. A ghost hit means that side was
// undersized, so one slot of capacity moves from the other side to it.
// LRU entries that reach the transform threshold are copied into the LFU part.
//
// Concurrency: each part has its own mutex. A Put or Get takes the parts'
// locks one after another, never both at once, so a concurrent caller may
// observe the two parts mid-transfer. Individual part operations are atomic;
// a whole ARC operation is not.
//
// Residency is deliberately non-exclusive: a promoted key stays in the LRU
// part as well, and Put refreshes the LFU copy when one exists. The combined
// occupancy of the two parts can therefore drift from strict ARC disjointness.
package arc

import (
	"github.com/IvanBrykalov/evictcache/policy"
)

// DefaultTransformThreshold is used when Options.TransformThreshold is not positive.
const DefaultTransformThreshold = 2

// Options configures an ARC engine.
type Options[K comparable, V any] struct {
	// Capacity seeds the main and ghost capacity of both parts.
	// <= 0 disables the engine.
	Capacity int
	// TransformThreshold is the LRU-part access count at which a key is
	// copied into the LFU part. <= 0 => DefaultTransformThreshold.
	TransformThreshold int

	// Metrics receives Hit/Miss/Evict/Size plus Promote and GhostHit;
	// nil => NoopMetrics.
	Metrics policy.Metrics
	// OnEvict is called when either part evicts a record into its ghost list.
	OnEvict func(k K, v V, reason policy.EvictReason)
}

// Stats is a point-in-time view of both parts. The two parts are read one
// after another, so under concurrent writes the snapshot may be mixed.
type Stats struct {
	LRUCapacity int
	LRULen      int
	LRUGhosts   int
	LFUCapacity int
	LFULen      int
	LFUGhosts   int
}

// Cache is the ARC engine. All methods are safe for concurrent use.
type Cache[K comparable, V any] struct {
	lru     *lruPart[K, V]
	lfu     *lfuPart[K, V]
	metrics policy.Metrics
}

// New constructs an ARC engine.
func New[K comparable, V any](opt Options[K, V]) *Cache[K, V] {
	capacity := max(opt.Capacity, 0)
	threshold := opt.TransformThreshold
	if threshold <= 0 {
		threshold = DefaultTransformThreshold
	}
	m := policy.OrNoop(opt.Metrics)
	return &Cache[K, V]{
		lru:     newLRUPart[K, V](capacity, uint64(threshold), m, opt.OnEvict),
		lfu:     newLFUPart[K, V](capacity, m, opt.OnEvict),
		metrics: m,
	}
}

// Put writes k→v into the LRU part, and into the LFU part too when the key
// already lives there. Ghost hits for k rebalance capacity first.
func (c *Cache[K, V]) Put(k K, v V) {
	c.checkGhostCaches(k)

	inLFU := c.lfu.contains(k)
	c.lru.put(k, v)
	if inLFU {
		c.lfu.put(k, v)
	}
	c.reportSize()
}

// Get looks k up in the LRU part, then in the LFU part. A LRU hit that
// reaches the transform threshold copies the value into the LFU part.
// Ghost hits for k rebalance capacity first.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.checkGhostCaches(k)

	if v, ok, promote := c.lru.get(k); ok {
		// Past the threshold every hit refreshes the LFU copy; only the
		// first copy counts as a promotion.
		if promote && c.lfu.put(k, v) {
			c.metrics.Promote()
		}
		c.metrics.Hit()
		return v, true
	}
	if v, ok := c.lfu.get(k); ok {
		c.metrics.Hit()
		return v, true
	}
	c.metrics.Miss()
	var zero V
	return zero, false
}

// Len returns the number of resident records across both parts. A promoted
// key resident in both parts counts twice.
func (c *Cache[K, V]) Len() int {
	s := c.Stats()
	return s.LRULen + s.LFULen
}

// Stats returns capacities, sizes and ghost counts of both parts.
func (c *Cache[K, V]) Stats() Stats {
	var s Stats
	s.LRUCapacity, s.LRULen, s.LRUGhosts = c.lru.stats()
	s.LFUCapacity, s.LFULen, s.LFUGhosts = c.lfu.stats()
	return s
}

// checkGhostCaches clears a ghost hit for k and shifts one slot of capacity
// towards the part that saw it, but only if the other part could give one up.
func (c *Cache[K, V]) checkGhostCaches(k K) bool {
	switch {
	case c.lru.checkGhost(k):
		c.metrics.GhostHit()
		if c.lfu.decreaseCapacity() {
			c.lru.increaseCapacity()
		}
		return true
	case c.lfu.checkGhost(k):
		c.metrics.GhostHit()
		if c.lru.decreaseCapacity() {
			c.lfu.increaseCapacity()
		}
		return true
	}
	return false
}

func (c *Cache[K, V]) reportSize() {
	c.metrics.Size(c.Len())
}

var _ policy.Cache[string, int] = (*Cache[string, int])(nil)
