package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ X, Y int }

func TestHasher_Deterministic(t *testing.T) {
	t.Parallel()

	hs := NewHasher[string]()
	assert.Equal(t, hs.Sum("alpha"), hs.Sum("alpha"))
	assert.NotEqual(t, hs.Sum("alpha"), hs.Sum("beta"))
	// String hashing is seedless: two hashers agree.
	assert.Equal(t, hs.Sum("alpha"), NewHasher[string]().Sum("alpha"))

	hi := NewHasher[int]()
	assert.Equal(t, hi.Sum(42), NewHasher[int]().Sum(42))
	assert.Equal(t, fnv64aFromUint64(42), hi.Sum(42))

	// Struct keys fall back to maphash: stable within one hasher.
	hp := NewHasher[point]()
	assert.Equal(t, hp.Sum(point{1, 2}), hp.Sum(point{1, 2}))
}

func TestShardIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ShardIndex(12345, 0))
	assert.Equal(t, 0, ShardIndex(12345, 1))
	assert.Equal(t, 5, ShardIndex(0b1101, 8), "power of two masks")
	assert.Equal(t, 13%6, ShardIndex(13, 6), "others use modulo")

	for h := uint64(0); h < 1000; h++ {
		i := ShardIndex(h*2654435761, 7)
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 7)
	}
}

func TestPerShard(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, PerShard(10, 4))
	assert.Equal(t, 25, PerShard(100, 4))
	assert.Equal(t, 1, PerShard(1, 16))
	assert.Equal(t, 0, PerShard(0, 4))
	assert.Equal(t, 0, PerShard(-5, 4))
}

func TestDefaultShardCountAndPow2(t *testing.T) {
	t.Parallel()

	assert.GreaterOrEqual(t, DefaultShardCount(), 1)
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(64))
	assert.False(t, IsPowerOfTwo(0))
	assert.False(t, IsPowerOfTwo(6))
}
