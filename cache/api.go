package cache

import (
	"context"

	"github.com/IvanBrykalov/evictcache/policy"
)

// Cache is a hash-partitioned cache: every key routes to one of N independent
// engines, each behind its own lock. All methods are safe for concurrent use.
//
// There is no global ordering across shards; eviction decisions are local to
// the shard a key routes to.
type Cache[K comparable, V any] interface {
	policy.Cache[K, V]

	// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
	// Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Len returns the total number of resident entries across all shards.
	Len() int

	// Shards returns the number of shards.
	Shards() int

	// Stats returns hit/miss counters aggregated across shards.
	Stats() Stats
}

// Stats aggregates per-shard counters.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
	Shards  int
}
