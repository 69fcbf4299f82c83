package arc

import (
	"sync"

	"github.com/IvanBrykalov/evictcache/internal/list"
	"github.com/IvanBrykalov/evictcache/policy"
)

// lruPart is ARC's recency side: an LRU main cache whose records count their
// accesses, plus a ghost list of keys it evicted. Front of main is MRU.
type lruPart[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element[K, V]
	main     list.List[K, V]
	ghost    *ghostList[K, V]

	threshold uint64
	metrics   policy.Metrics
	onEvict   func(K, V, policy.EvictReason)
}

func newLRUPart[K comparable, V any](capacity int, threshold uint64, m policy.Metrics, onEvict func(K, V, policy.EvictReason)) *lruPart[K, V] {
	p := &lruPart[K, V]{
		capacity:  capacity,
		items:     make(map[K]*list.Element[K, V], capacity),
		ghost:     newGhostList[K, V](capacity),
		threshold: threshold,
		metrics:   m,
		onEvict:   onEvict,
	}
	p.main.Init()
	return p
}

// put inserts or updates k→v as most recently used.
// It reports false when the part currently has no capacity.
func (p *lruPart[K, V]) put(k K, v V) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capacity <= 0 {
		return false
	}
	if e, ok := p.items[k]; ok {
		e.Value = v
		p.main.MoveToFront(e)
		return true
	}
	if len(p.items) >= p.capacity {
		p.evictLocked(policy.EvictCapacity)
	}
	p.ghost.forget(k)
	e := &list.Element[K, V]{Key: k, Value: v, Count: 1}
	p.main.PushFront(e)
	p.items[k] = e
	return true
}

// get returns the value for k, refreshes it and bumps its access count.
// promote reports whether the count has reached the transform threshold.
func (p *lruPart[K, V]) get(k K) (v V, ok, promote bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.items[k]
	if !ok {
		return v, false, false
	}
	p.main.MoveToFront(e)
	e.Count++
	return e.Value, true, e.Count >= p.threshold
}

// checkGhost reports a ghost hit for k and clears it.
func (p *lruPart[K, V]) checkGhost(k K) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ghost.forget(k)
}

func (p *lruPart[K, V]) increaseCapacity() {
	p.mu.Lock()
	p.capacity++
	p.mu.Unlock()
}

// decreaseCapacity gives one slot away, evicting first when full.
// It fails once the capacity is exhausted.
func (p *lruPart[K, V]) decreaseCapacity() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capacity <= 0 {
		return false
	}
	if len(p.items) >= p.capacity {
		p.evictLocked(policy.EvictRebalance)
	}
	p.capacity--
	return true
}

func (p *lruPart[K, V]) stats() (capacity, size, ghosts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity, len(p.items), p.ghost.len()
}

// evictLocked moves the least recently used record into the ghost list.
func (p *lruPart[K, V]) evictLocked(reason policy.EvictReason) {
	e := p.main.Back()
	if e == nil {
		return
	}
	p.main.Remove(e)
	delete(p.items, e.Key)
	p.metrics.Evict(reason)
	if cb := p.onEvict; cb != nil {
		cb(e.Key, e.Value, reason)
	}
	p.ghost.remember(e)
}
