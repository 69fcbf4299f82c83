package cache

import (
	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/lfu"
)

// LFU is a sharded cache whose shards are independent LFU engines.
// Each shard ages its own frequencies.
type LFU[K comparable, V any] struct {
	*sharded[K, V, *lfu.Cache[K, V]]
}

// NewLFU constructs a sharded LFU cache.
func NewLFU[K comparable, V any](opt Options[K, V]) *LFU[K, V] {
	maxAvg := opt.MaxAverage
	if maxAvg <= 0 {
		maxAvg = DefaultMaxAverage
	}
	return &LFU[K, V]{
		sharded: newSharded(opt, func(capacity int, m policy.Metrics) *lfu.Cache[K, V] {
			return lfu.New[K, V](lfu.Options[K, V]{
				Capacity:   capacity,
				MaxAverage: maxAvg,
				Metrics:    m,
				OnEvict:    opt.OnEvict,
			})
		}),
	}
}

// Purge empties every shard.
func (c *LFU[K, V]) Purge() {
	for _, s := range c.shards {
		s.e.Purge()
	}
}

var _ Cache[string, int] = (*LFU[string, int])(nil)
