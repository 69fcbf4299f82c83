package arc

import (
	"sync"

	"github.com/IvanBrykalov/evictcache/internal/freq"
	"github.com/IvanBrykalov/evictcache/internal/list"
	"github.com/IvanBrykalov/evictcache/policy"
)

// lfuPart is ARC's frequency side: an LFU main cache without aging plus a
// ghost list of keys it evicted.
type lfuPart[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element[K, V]
	table    *freq.Table[K, V]
	ghost    *ghostList[K, V]

	metrics policy.Metrics
	onEvict func(K, V, policy.EvictReason)
}

func newLFUPart[K comparable, V any](capacity int, m policy.Metrics, onEvict func(K, V, policy.EvictReason)) *lfuPart[K, V] {
	return &lfuPart[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element[K, V], capacity),
		table:    freq.New[K, V](),
		ghost:    newGhostList[K, V](capacity),
		metrics:  m,
		onEvict:  onEvict,
	}
}

// put inserts k→v at frequency 1, or updates it and bumps its frequency.
// It reports whether k was newly inserted; an update or a part without
// capacity reports false.
func (p *lfuPart[K, V]) put(k K, v V) (inserted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.capacity <= 0 {
		return false
	}
	if e, ok := p.items[k]; ok {
		e.Value = v
		p.table.Touch(e)
		return false
	}
	if len(p.items) >= p.capacity {
		p.evictLocked(policy.EvictCapacity)
	}
	p.ghost.forget(k)
	e := &list.Element[K, V]{Key: k, Value: v, Count: 1}
	p.items[k] = e
	p.table.Add(e)
	return true
}

func (p *lfuPart[K, V]) get(k K) (V, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.items[k]
	if !ok {
		var zero V
		return zero, false
	}
	p.table.Touch(e)
	return e.Value, true
}

func (p *lfuPart[K, V]) contains(k K) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.items[k]
	return ok
}

// checkGhost reports a ghost hit for k and clears it.
func (p *lfuPart[K, V]) checkGhost(k K) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ghost.forget(k)
}

func (p *lfuPart[K, V]) increaseCapacity() {
	p.mu.Lock()
	p.capacity++
	p.mu.Unlock()
}

// decreaseCapacity gives one slot away, evicting first when full.
// It fails once the capacity is exhausted.
func (p *lfuPart[K, V]) decreaseCapacity() bool {
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

func (p *lfuPart[K, V]) stats() (capacity, size, ghosts int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity, len(p.items), p.ghost.len()
}

// evictLocked moves the oldest least frequently used record into the ghost list.
func (p *lfuPart[K, V]) evictLocked(reason policy.EvictReason) {
	e := p.table.Oldest()
	if e == nil {
		return
	}
	p.table.Remove(e)
	delete(p.items, e.Key)
	p.metrics.Evict(reason)
	if cb := p.onEvict; cb != nil {
		cb(e.Key, e.Value, reason)
	}
	p.ghost.remember(e)
}
