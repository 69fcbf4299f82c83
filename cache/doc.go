// Package cache provides sharded, concurrency-friendly wrappers around the
// single-lock engines in policy/lru and policy/lfu.
//
// Design
//
//   - Routing: every key is hashed once and mapped to one of N shards. The
//     mapping depends only on the key and the shard count, so a key always
//     lands in the same shard. Power-of-two shard counts use a mask, other
//     counts use modulo.
//
//   - Capacity: each shard receives ceil(Capacity/Shards) entries, so the
//     total resident bound may slightly exceed Capacity. Eviction is local
//     to a shard; there is no global LRU or LFU order.
//
//   - Concurrency: there is no cache-wide lock. Operations on keys in
//     different shards never contend.
//
//   - GetOrLoad: coalesces concurrent loads for the same key using singleflight.
//     If Loader is nil, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives the shards' Hit/Miss/Evict signals and
//     a cache-wide Size. Stats returns per-shard hit/miss counters summed.
//
// Basic usage
//
//	c := cache.NewLRU[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    Shards:   16,
//	})
//	c.Put("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//	c.Remove("a")
//
// Sharded LFU with aging
//
//	c := cache.NewLFU[int, string](cache.Options[int, string]{
//	    Capacity:   4096,
//	    MaxAverage: 32, // per-shard aging trigger
//	})
//
// With GetOrLoad (singleflight)
//
//	c := cache.NewLRU[string, string](cache.Options[string, string]{
//	    Capacity: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return "v:" + k, nil
//	    },
//	})
//	v, err := c.GetOrLoad(context.Background(), "key")
//
// Exporting metrics
//
//	m := prom.New(nil, "app", "cache", nil)
//	c := cache.NewLRU[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    Metrics:  m,
//	})
package cache
