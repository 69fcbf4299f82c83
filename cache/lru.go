package cache

import (
	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/lru"
)

// LRU is a sharded cache whose shards are independent LRU engines.
type LRU[K comparable, V any] struct {
	*sharded[K, V, *lru.Cache[K, V]]
}

// NewLRU constructs a sharded LRU cache.
func NewLRU[K comparable, V any](opt Options[K, V]) *LRU[K, V] {
	return &LRU[K, V]{
		sharded: newSharded(opt, func(capacity int, m policy.Metrics) *lru.Cache[K, V] {
			return lru.New[K, V](lru.Options[K, V]{
				Capacity: capacity,
				Metrics:  m,
				OnEvict:  opt.OnEvict,
			})
		}),
	}
}

// Remove deletes k from its shard if present and reports whether it was.
func (c *LRU[K, V]) Remove(k K) bool {
	return c.shardFor(k).e.Remove(k)
}

// Purge empties every shard.
func (c *LRU[K, V]) Purge() {
	for _, s := range c.shards {
		s.e.Purge()
	}
}

var _ Cache[string, int] = (*LRU[string, int])(nil)
