package cache

import (
	"context"

	"github.com/IvanBrykalov/evictcache/policy"
)

// DefaultMaxAverage is the per-shard LFU aging trigger used by NewLFU when
// Options.MaxAverage is not positive.
const DefaultMaxAverage = 10

// Options configures a sharded cache. Zero values are safe;
// defaults are applied in NewLRU/NewLFU:
//   - Shards <= 0   => runtime.NumCPU()
//   - nil Hash      => xxhash/FNV-1a/maphash by key type
//   - nil Metrics   => policy.NoopMetrics
//   - MaxAverage <= 0 => DefaultMaxAverage (LFU only)
type Options[K comparable, V any] struct {
	// Capacity is the total entry budget. Each shard gets
	// ceil(Capacity/Shards). <= 0 makes every Put a no-op.
	Capacity int

	// Shards is the number of independent engines. Any positive count works;
	// powers of two route with a mask instead of a modulo.
	Shards int

	// MaxAverage is the LFU aging trigger applied to every shard. Ignored by NewLRU.
	MaxAverage int

	// Hash maps keys to shards. It must be deterministic for the lifetime of
	// the cache.
	Hash func(K) uint64

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// Metrics receives signals from every shard. Size reports the total
	// across shards.
	Metrics policy.Metrics

	// OnEvict is called on eviction under the owning shard's lock.
	OnEvict func(k K, v V, reason policy.EvictReason)
}
