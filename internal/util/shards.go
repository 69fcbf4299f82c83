package util

import "runtime"

// DefaultShardCount is the shard count used when none is configured:
// one shard per logical CPU, never less than one.
func DefaultShardCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return n
}

// ShardIndex maps a 64-bit hash to a shard index in [0, shards).
// Power-of-two counts take the mask path; others use modulo.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}

// PerShard splits total evenly across shards, rounding up.
// A non-positive total yields 0 (every shard ignores Put).
func PerShard(total, shards int) int {
	if total <= 0 || shards <= 0 {
		return 0
	}
	return (total + shards - 1) / shards
}
