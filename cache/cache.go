package cache

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/IvanBrykalov/evictcache/internal/singleflight"
	"github.com/IvanBrykalov/evictcache/internal/util"
	"github.com/IvanBrykalov/evictcache/policy"
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
var ErrNoLoader = errors.New("cache: no Loader provided")

// engine is what a shard needs from an eviction engine.
type engine[K comparable, V any] interface {
	policy.Cache[K, V]
	Len() int
}

// shard is one partition: an engine with its own lock plus hit/miss counters
// on separate cache lines.
type shard[K comparable, V any, E engine[K, V]] struct {
	e      E
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
}

// sharded routes keys to shards by hash. It holds no lock of its own:
// concurrency safety comes from the per-shard engines.
type sharded[K comparable, V any, E engine[K, V]] struct {
	shards []*shard[K, V, E]
	hash   func(K) uint64
	loader func(ctx context.Context, k K) (V, error)

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[K, V]
}

// newSharded resolves defaults and builds one engine per shard with
// ceil(Capacity/Shards) capacity each.
func newSharded[K comparable, V any, E engine[K, V]](opt Options[K, V], build func(capacity int, m policy.Metrics) E) *sharded[K, V, E] {
	n := opt.Shards
	if n <= 0 {
		n = util.DefaultShardCount()
	}
	hash := opt.Hash
	if hash == nil {
		hash = util.NewHasher[K]().Sum
	}
	base := policy.OrNoop(opt.Metrics)
	total := new(atomic.Int64)

	perShard := util.PerShard(opt.Capacity, n)
	shards := make([]*shard[K, V, E], n)
	for i := range shards {
		shards[i] = &shard[K, V, E]{
			e: build(perShard, &shardMetrics{Metrics: base, total: total}),
		}
	}
	return &sharded[K, V, E]{
		shards: shards,
		hash:   hash,
		loader: opt.Loader,
	}
}

// Put routes k→v to its shard.
func (c *sharded[K, V, E]) Put(k K, v V) {
	c.shardFor(k).e.Put(k, v)
}

// Get routes the lookup to k's shard.
func (c *sharded[K, V, E]) Get(k K) (V, bool) {
	s := c.shardFor(k)
	v, ok := s.e.Get(k)
	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight).
func (c *sharded[K, V, E]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	return c.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join
		if v, ok := c.Get(k); ok {
			return v, nil
		}
		v, err := c.loader(ctx, k)
		if err == nil {
			c.Put(k, v)
		}
		return v, err
	})
}

// Len returns the total number of resident entries across all shards.
func (c *sharded[K, V, E]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.e.Len()
	}
	return total
}

// Shards returns the number of shards.
func (c *sharded[K, V, E]) Shards() int { return len(c.shards) }

// Stats sums the per-shard counters.
func (c *sharded[K, V, E]) Stats() Stats {
	st := Stats{Shards: len(c.shards)}
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Entries += s.e.Len()
	}
	return st
}

// shardIndex picks the shard for k; stable for the lifetime of c.
func (c *sharded[K, V, E]) shardIndex(k K) int {
	return util.ShardIndex(c.hash(k), len(c.shards))
}

func (c *sharded[K, V, E]) shardFor(k K) *shard[K, V, E] {
	return c.shards[c.shardIndex(k)]
}
