// Package freq implements the frequency-bucketed index used by the LFU engine
// and by ARC's LFU part: frequency → list of records holding that frequency,
// plus the minimum live frequency.
package freq

import (
	"slices"

	"github.com/IvanBrykalov/evictcache/internal/list"
)

// Table groups elements by Element.Count. Within a bucket elements keep
// insertion order (front = oldest), which is the LFU tie-break.
//
// Invariants:
//   - a bucket present in the map is never empty;
//   - when Len() > 0, Min() names a present bucket.
//
// Table is not safe for concurrent use; the owning engine locks around it.
type Table[K comparable, V any] struct {
	buckets map[uint64]*list.List[K, V]
	min     uint64
	len     int
}

// New returns an empty table.
func New[K comparable, V any]() *Table[K, V] {
	return &Table[K, V]{buckets: make(map[uint64]*list.List[K, V])}
}

// Len returns the number of elements across all buckets.
func (t *Table[K, V]) Len() int { return t.len }

// Buckets returns the number of non-empty buckets.
func (t *Table[K, V]) Buckets() int { return len(t.buckets) }

// Min returns the smallest frequency present, or 0 if the table is empty.
func (t *Table[K, V]) Min() uint64 {
	if t.len == 0 {
		return 0
	}
	return t.min
}

// Add appends e to the bucket of its current Count. A zero Count is raised to 1.
func (t *Table[K, V]) Add(e *list.Element[K, V]) {
	if e.Count == 0 {
		e.Count = 1
	}
	b, ok := t.buckets[e.Count]
	if !ok {
		b = list.New[K, V]()
		t.buckets[e.Count] = b
	}
	b.PushBack(e)
	if t.len == 0 || e.Count < t.min {
		t.min = e.Count
	}
	t.len++
}

// Remove unlinks e from its bucket. Emptied buckets are dropped; if that was
// the minimum bucket the minimum is recomputed from the remaining buckets.
// Removing an element that is not in the table is a no-op.
func (t *Table[K, V]) Remove(e *list.Element[K, V]) {
	if !t.detach(e) {
		return
	}
	if t.len > 0 {
		if _, ok := t.buckets[t.min]; !ok {
			t.recomputeMin()
		}
	}
}

// Touch moves e from its bucket to Count+1. If the old bucket empties and it
// was the minimum, the minimum advances to the new frequency.
func (t *Table[K, V]) Touch(e *list.Element[K, V]) {
	old := e.Count
	if !t.detach(e) {
		return
	}
	e.Count = old + 1
	wasMin := t.len == 0 || old == t.min
	t.Add(e)
	if _, ok := t.buckets[old]; !ok && wasMin {
		t.min = e.Count
	}
}

// Oldest returns the oldest element of the minimum bucket, or nil if empty.
func (t *Table[K, V]) Oldest() *list.Element[K, V] {
	if t.len == 0 {
		return nil
	}
	b, ok := t.buckets[t.min]
	if !ok {
		t.recomputeMin()
		b = t.buckets[t.min]
	}
	return b.Front()
}

// Decay lowers every element's frequency by amount, floored at 1, re-buckets
// them and recomputes the minimum. Buckets are visited in ascending frequency
// order, front to back, so merged buckets keep a deterministic age order.
func (t *Table[K, V]) Decay(amount uint64) {
	if t.len == 0 || amount == 0 {
		return
	}
	freqs := t.frequencies()
	old := t.buckets
	t.buckets = make(map[uint64]*list.List[K, V], len(old))
	t.len = 0
	for _, f := range freqs {
		b := old[f]
		for e := b.Front(); e != nil; e = b.Front() {
			b.Remove(e)
			if e.Count > amount {
				e.Count -= amount
			} else {
				e.Count = 1
			}
			t.Add(e)
		}
	}
	t.recomputeMin()
}

// Each calls fn for every element, lowest frequency first.
// fn must not mutate the table.
func (t *Table[K, V]) Each(fn func(e *list.Element[K, V]) bool) {
	for _, f := range t.frequencies() {
		for e := t.buckets[f].Front(); e != nil; e = e.Next() {
			if !fn(e) {
				return
			}
		}
	}
}

// Reset drops every bucket.
func (t *Table[K, V]) Reset() {
	clear(t.buckets)
	t.min = 0
	t.len = 0
}

func (t *Table[K, V]) detach(e *list.Element[K, V]) bool {
	b, ok := t.buckets[e.Count]
	if !ok || !b.Remove(e) {
		return false
	}
	if b.Len() == 0 {
		delete(t.buckets, e.Count)
	}
	t.len--
	return true
}

func (t *Table[K, V]) recomputeMin() {
	t.min = 0
	first := true
	for f := range t.buckets {
		if first || f < t.min {
			t.min = f
			first = false
		}
	}
}

func (t *Table[K, V]) frequencies() []uint64 {
	freqs := make([]uint64, 0, len(t.buckets))
	for f := range t.buckets {
		freqs = append(freqs, f)
	}
	slices.Sort(freqs)
	return freqs
}
