// Package singleflight deduplicates concurrent loads of the same key.
//
// A load is owned by the goroutine that started it. Everyone else who asks
// for the key while it runs joins the load and receives its result, or
// leaves early when their own context ends. A load always finishes for its
// joiners, even when the owner's fn panics: they get an error, the owner
// gets the panic back.
package singleflight

import (
	"context"
	"fmt"
	"sync"
)

// Group tracks the loads currently running, one per key.
// The zero value is ready to use.
type Group[K comparable, V any] struct {
	mu      sync.Mutex
	running map[K]*load[V]
}

// load is one running fn. res is written once by the owner before done
// closes, so joiners read it only after <-done.
type load[V any] struct {
	done chan struct{}
	res  result[V]
}

type result[V any] struct {
	val V
	err error
}

// wait blocks until l finishes or ctx ends.
func (l *load[V]) wait(ctx context.Context) (V, error) {
	select {
	case <-l.done:
		return l.res.val, l.res.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Do returns fn's result for key. If a load for key is already running, Do
// joins it instead of calling fn.
//
// ctx only bounds the wait of a joiner; the owner always runs fn to the end,
// so fn must watch its own context if the work should stop early.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	l, owner := g.join(key)
	if !owner {
		return l.wait(ctx)
	}
	g.finish(key, l, fn)
	return l.res.val, l.res.err
}

// InFlight reports how many keys have a load running. A key is counted from
// the moment its owner registers until its joiners are released.
func (g *Group[K, V]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.running)
}

// join returns the running load for key, or registers a new one owned by
// the caller.
func (g *Group[K, V]) join(key K) (l *load[V], owner bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l, ok := g.running[key]; ok {
		return l, false
	}
	if g.running == nil {
		g.running = make(map[K]*load[V])
	}
	l = &load[V]{done: make(chan struct{})}
	g.running[key] = l
	return l, true
}

// finish runs fn for the owner, unregisters key and releases the joiners.
// A panic in fn becomes the joiners' error and is re-raised for the owner.
func (g *Group[K, V]) finish(key K, l *load[V], fn func() (V, error)) {
	defer func() {
		p := recover()
		if p != nil {
			l.res = result[V]{err: fmt.Errorf("singleflight: load panicked: %v", p)}
		}
		g.mu.Lock()
		delete(g.running, key)
		g.mu.Unlock()
		close(l.done)
		if p != nil {
			panic(p)
		}
	}()
	v, err := fn()
	l.res = result[V]{val: v, err: err}
}
