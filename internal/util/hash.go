// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps keys to 64-bit hashes for shard routing.
// A Hasher is deterministic for its lifetime: the same key always produces
// the same hash, so a key always lands on the same shard.
type Hasher[K comparable] struct {
	seed maphash.Seed
}

// NewHasher returns a hasher with a fresh seed for the maphash fallback.
func NewHasher[K comparable]() Hasher[K] {
	return Hasher[K]{seed: maphash.MakeSeed()}
}

// Sum hashes k.
//   - string, []byte-like arrays: xxhash64
//   - integer widths, uintptr:    FNV-1a over the little-endian bytes
//   - anything else comparable:   hash/maphash with the hasher's seed
//
// Sum never panics; every comparable key has a hash.
func (h Hasher[K]) Sum(k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case [64]byte:
		return xxhash.Sum64(v[:])

	case uint8:
		return fnv64aFromUint64(uint64(v))
	case uint16:
		return fnv64aFromUint64(uint64(v))
	case uint32:
		return fnv64aFromUint64(uint64(v))
	case uint64:
		return fnv64aFromUint64(v)
	case uint:
		return fnv64aFromUint64(uint64(v))
	case uintptr:
		return fnv64aFromUint64(uint64(v))
	case int8:
		return fnv64aFromUint64(uint64(uint8(v)))
	case int16:
		return fnv64aFromUint64(uint64(uint16(v)))
	case int32:
		return fnv64aFromUint64(uint64(uint32(v)))
	case int64:
		return fnv64aFromUint64(uint64(v))
	case int:
		return fnv64aFromUint64(uint64(v))
	default:
		return maphash.Comparable(h.seed, k)
	}
}

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

func fnv64aFromUint64(u uint64) uint64 {
	// Hash the 8 little-endian bytes of u without allocating.
	h := uint64(fnvOffset64)
	for i := 0; i < 8; i++ {
		h ^= uint64(byte(u))
		h *= fnvPrime64
		u >>= 8
	}
	return h
}
