package cache

import (
	"sync/atomic"

	"github.com/IvanBrykalov/evictcache/policy"
)

// shardMetrics forwards a shard's signals to the shared Metrics, turning the
// shard-local Size into a cache-wide total.
type shardMetrics struct {
	policy.Metrics
	last  atomic.Int64 // this shard's last reported size
	total *atomic.Int64
}

func (m *shardMetrics) Size(entries int) {
	prev := m.last.Swap(int64(entries))
	n := m.total.Add(int64(entries) - prev)
	m.Metrics.Size(int(n))
}

var _ policy.Metrics = (*shardMetrics)(nil)
