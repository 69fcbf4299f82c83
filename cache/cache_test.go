package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/evictcache/policy"
)

// Basic Put/Get/Remove semantics on the sharded LRU.
func TestLRU_BasicPutGetRemove(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](Options[string, int]{Capacity: 64, Shards: 4})

	c.Put("a", 1)
	c.Put("a", 11)
	if v, ok := c.Get("a"); !ok || v != 11 {
		t.Fatalf("Get a want 11, got %v ok=%v", v, ok)
	}

	if !c.Remove("a") {
		t.Fatal("Remove a must be true")
	}
	if c.Remove("a") {
		t.Fatal("second Remove a must be false")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Remove")
	}
}

// Deterministic LRU eviction: single shard, small capacity.
// Accessing "a" promotes it; inserting "c" evicts LRU ("b").
func TestLRU_EvictionSingleShard(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](Options[string, int]{
		Capacity: 2,
		Shards:   1, // force a single shard so LRU is global
	})

	c.Put("a", 1)
	c.Put("b", 2)

	if _, ok := c.Get("a"); !ok {
		t.Fatal("expect hit for a")
	}
	c.Put("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b must be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a must survive (promoted)")
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatal("c must be present")
	}
}

// A key always routes to the same shard, and two caches with the same shard
// count agree on the routing.
func TestSharded_RoutingIsDeterministic(t *testing.T) {
	t.Parallel()

	a := NewLRU[string, int](Options[string, int]{Capacity: 1024, Shards: 7})
	b := NewLRU[string, int](Options[string, int]{Capacity: 1024, Shards: 7})

	for i := 0; i < 500; i++ {
		k := "key-" + strconv.Itoa(i)
		idx := a.shardIndex(k)
		require.GreaterOrEqual(t, idx, 0)
		require.Less(t, idx, 7)
		require.Equal(t, idx, a.shardIndex(k), "same cache, same key")
		require.Equal(t, idx, b.shardIndex(k), "same shard count, same key")
	}
}

// Each shard gets ceil(Capacity/Shards) entries.
func TestSharded_PerShardCapacityRoundsUp(t *testing.T) {
	t.Parallel()

	// Route everything to shard 0 to observe a single shard's bound.
	c := NewLRU[int, int](Options[int, int]{
		Capacity: 10,
		Shards:   4,
		Hash:     func(int) uint64 { return 0 },
	})
	for i := 0; i < 20; i++ {
		c.Put(i, i)
	}
	assert.Equal(t, 3, c.Len(), "ceil(10/4) == 3")
	assert.Equal(t, 3, c.shards[0].e.Cap())

	// The three most recent keys survive.
	for _, k := range []int{17, 18, 19} {
		_, ok := c.Get(k)
		assert.True(t, ok, "key %d", k)
	}
}

// Filling every shard never exceeds Shards*ceil(Capacity/Shards).
func TestSharded_TotalBound(t *testing.T) {
	t.Parallel()

	c := NewLFU[int, int](Options[int, int]{Capacity: 100, Shards: 8})
	for i := 0; i < 10_000; i++ {
		c.Put(i, i)
	}
	assert.LessOrEqual(t, c.Len(), 8*13)
	assert.Equal(t, 8, c.Shards())
}

func TestSharded_DefaultShardCount(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](Options[string, int]{Capacity: 16})
	assert.GreaterOrEqual(t, c.Shards(), 1)
}

func TestSharded_ZeroCapacity(t *testing.T) {
	t.Parallel()

	c := NewLFU[string, int](Options[string, int]{Shards: 4})
	c.Put("a", 1)
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

// Per-shard LFU: the colder key in a shard is evicted first.
func TestLFU_ShardLocalFrequency(t *testing.T) {
	t.Parallel()

	c := NewLFU[string, int](Options[string, int]{
		Capacity: 2,
		Shards:   1,
	})
	c.Put("hot", 1)
	c.Get("hot")
	c.Get("hot")
	c.Put("cold", 2)
	c.Put("new", 3)

	_, ok := c.Get("cold")
	assert.False(t, ok)
	v, ok := c.Get("hot")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestSharded_PurgeEmptiesAllShards(t *testing.T) {
	t.Parallel()

	lruC := NewLRU[int, int](Options[int, int]{Capacity: 64, Shards: 4})
	lfuC := NewLFU[int, int](Options[int, int]{Capacity: 64, Shards: 4})
	for i := 0; i < 32; i++ {
		lruC.Put(i, i)
		lfuC.Put(i, i)
	}
	lruC.Purge()
	lfuC.Purge()
	lfuC.Purge()
	assert.Equal(t, 0, lruC.Len())
	assert.Equal(t, 0, lfuC.Len())
}

func TestSharded_Stats(t *testing.T) {
	t.Parallel()

	c := NewLRU[string, int](Options[string, int]{Capacity: 16, Shards: 2})
	c.Put("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	st := c.Stats()
	assert.Equal(t, Stats{Hits: 2, Misses: 1, Entries: 1, Shards: 2}, st)
}

type sizeRecorder struct {
	policy.NoopMetrics
	mu   sync.Mutex
	last int
}

func (r *sizeRecorder) Size(n int) {
	r.mu.Lock()
	r.last = n
	r.mu.Unlock()
}

// Size reports the cache-wide entry count, not a single shard's.
func TestSharded_SizeMetricIsTotal(t *testing.T) {
	t.Parallel()

	m := &sizeRecorder{}
	c := NewLRU[int, int](Options[int, int]{
		Capacity: 16,
		Shards:   2,
		Hash:     func(k int) uint64 { return uint64(k) },
		Metrics:  m,
	})
	for i := 0; i < 4; i++ {
		c.Put(i, i)
	}
	assert.Equal(t, 4, m.last)

	c.Remove(1)
	assert.Equal(t, 3, m.last)
}

func TestSharded_OnEvictSeesShardEvictions(t *testing.T) {
	t.Parallel()

	var evicted []int
	c := NewLRU[int, int](Options[int, int]{
		Capacity: 2,
		Shards:   1,
		OnEvict:  func(k, _ int, _ policy.EvictReason) { evicted = append(evicted, k) },
	})
	c.Put(1, 1)
	c.Put(2, 2)
	c.Put(3, 3)
	assert.Equal(t, []int{1}, evicted)
}

// Singleflight test: concurrent GetOrLoad calls for the same key
// should trigger the Loader at most once; subsequent calls are cache hits.
func TestSharded_GetOrLoad_Singleflight(t *testing.T) {
	var calls int64

	c := NewLRU[string, string](Options[string, string]{
		Capacity: 64,
		Loader: func(_ context.Context, k string) (string, error) {
			atomic.AddInt64(&calls, 1)
			time.Sleep(5 * time.Millisecond) // simulate I/O
			return "v:" + k, nil
		},
	})

	const N = 64
	var g errgroup.Group
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := make(chan struct{})
	for i := 0; i < N; i++ {
		g.Go(func() error {
			<-start
			v, err := c.GetOrLoad(ctx, "k")
			if err != nil {
				return err
			}
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	// Late arrivals may find the value already cached; the loader never runs twice.
	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader must run exactly once, got %d", got)
	}

	if v, err := c.GetOrLoad(context.Background(), "k"); err != nil || v != "v:k" {
		t.Fatalf("second GetOrLoad failed: v=%q err=%v", v, err)
	}
}

func TestSharded_GetOrLoad_NoLoader(t *testing.T) {
	t.Parallel()

	c := NewLFU[string, int](Options[string, int]{Capacity: 4})
	_, err := c.GetOrLoad(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNoLoader)

	c.Put("x", 1)
	v, err := c.GetOrLoad(context.Background(), "x")
	require.NoError(t, err, "a cached key needs no loader")
	assert.Equal(t, 1, v)
}

// Loader errors are returned and nothing is cached.
func TestSharded_GetOrLoad_ErrorNotCached(t *testing.T) {
	t.Parallel()

	boom := errors.New("backend down")
	fail := true
	c := NewLRU[string, int](Options[string, int]{
		Capacity: 4,
		Loader: func(context.Context, string) (int, error) {
			if fail {
				return 0, boom
			}
			return 5, nil
		},
	})

	_, err := c.GetOrLoad(context.Background(), "k")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	fail = false
	v, err := c.GetOrLoad(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, 1, c.Len())
}
