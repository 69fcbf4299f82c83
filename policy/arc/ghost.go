package arc

import "github.com/IvanBrykalov/evictcache/internal/list"

// ghostList remembers keys recently evicted from a part's main cache.
// Entries hold no value; front is the newest, back the oldest.
type ghostList[K comparable, V any] struct {
	capacity int
	index    map[K]*list.Element[K, V]
	ll       list.List[K, V]
}

func newGhostList[K comparable, V any](capacity int) *ghostList[K, V] {
	g := &ghostList[K, V]{
		capacity: capacity,
		index:    make(map[K]*list.Element[K, V], capacity),
	}
	g.ll.Init()
	return g
}

// remember records an element just evicted from a main cache, reusing the
// record. The oldest ghost is dropped when the list is full.
func (g *ghostList[K, V]) remember(e *list.Element[K, V]) {
	if g.capacity <= 0 {
		return
	}
	if old, ok := g.index[e.Key]; ok {
		g.ll.Remove(old)
		delete(g.index, e.Key)
	}
	if g.ll.Len() >= g.capacity {
		if oldest := g.ll.Back(); oldest != nil {
			g.ll.Remove(oldest)
			delete(g.index, oldest.Key)
		}
	}
	var zero V
	e.Value = zero
	e.Count = 1
	g.ll.PushFront(e)
	g.index[e.Key] = e
}

// forget removes k and reports whether it was a ghost.
func (g *ghostList[K, V]) forget(k K) bool {
	e, ok := g.index[k]
	if !ok {
		return false
	}
	g.ll.Remove(e)
	delete(g.index, k)
	return true
}

func (g *ghostList[K, V]) len() int { return g.ll.Len() }
