// Package list implements the intrusive doubly linked list shared by the
// eviction engines. Elements carry the cache record itself (key, value and an
// access/frequency counter), so moving a record between lists never allocates.
package list

// Element is a cache record linked into at most one List at a time.
// Key, Value and Count belong to the owning engine; the links are private.
type Element[K comparable, V any] struct {
	Key   K
	Value V
	// Count is an access count (LRU/ARC) or a frequency (LFU).
	Count uint64

	prev, next *Element[K, V]
	list       *List[K, V]
}

// Next returns the element after e, or nil at the back.
func (e *Element[K, V]) Next() *Element[K, V] {
	if n := e.next; e.list != nil && n != &e.list.root {
		return n
	}
	return nil
}

// Prev returns the element before e, or nil at the front.
func (e *Element[K, V]) Prev() *Element[K, V] {
	if p := e.prev; e.list != nil && p != &e.list.root {
		return p
	}
	return nil
}

// Linked reports whether e currently belongs to a list.
func (e *Element[K, V]) Linked() bool { return e.list != nil }

// List is a sentinel-bounded ring: root.next is the front, root.prev the back.
// The zero value is an empty list ready to use.
type List[K comparable, V any] struct {
	root Element[K, V]
	len  int
}

// New returns an initialized list.
func New[K comparable, V any]() *List[K, V] { return new(List[K, V]).Init() }

// Init empties l. Elements still pointing at l are not touched; callers that
// drop a whole list (Purge) also drop their index.
func (l *List[K, V]) Init() *List[K, V] {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
	return l
}

func (l *List[K, V]) lazyInit() {
	if l.root.next == nil {
		l.Init()
	}
}

// Len returns the number of linked elements in O(1).
func (l *List[K, V]) Len() int { return l.len }

// Front returns the first element, or nil if l is empty.
func (l *List[K, V]) Front() *Element[K, V] {
	if l.len == 0 {
		return nil
	}
	return l.root.next
}

// Back returns the last element, or nil if l is empty.
func (l *List[K, V]) Back() *Element[K, V] {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

// insert links e after at.
func (l *List[K, V]) insert(e, at *Element[K, V]) *Element[K, V] {
	e.prev = at
	e.next = at.next
	e.prev.next = e
	e.next.prev = e
	e.list = l
	l.len++
	return e
}

// unlink detaches e and clears its links.
func (l *List[K, V]) unlink(e *Element[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.next = nil
	e.prev = nil
	e.list = nil
	l.len--
}

// PushFront links a detached element at the front.
// An element that already belongs to a list is moved instead.
func (l *List[K, V]) PushFront(e *Element[K, V]) *Element[K, V] {
	l.lazyInit()
	if e.list != nil {
		e.list.unlink(e)
	}
	return l.insert(e, &l.root)
}

// PushBack links a detached element at the back.
// An element that already belongs to a list is moved instead.
func (l *List[K, V]) PushBack(e *Element[K, V]) *Element[K, V] {
	l.lazyInit()
	if e.list != nil {
		e.list.unlink(e)
	}
	return l.insert(e, l.root.prev)
}

// Remove unlinks e if it belongs to l and reports whether it did.
// Removing a detached element, or one owned by another list, is a no-op.
func (l *List[K, V]) Remove(e *Element[K, V]) bool {
	if e == nil || e.list != l {
		return false
	}
	l.unlink(e)
	return true
}

// MoveToFront moves e to the front of l. No-op if e is not in l.
func (l *List[K, V]) MoveToFront(e *Element[K, V]) {
	if e.list != l || l.root.next == e {
		return
	}
	l.unlink(e)
	l.insert(e, &l.root)
}

// MoveToBack moves e to the back of l. No-op if e is not in l.
func (l *List[K, V]) MoveToBack(e *Element[K, V]) {
	if e.list != l || l.root.prev == e {
		return
	}
	l.unlink(e)
	l.insert(e, l.root.prev)
}
