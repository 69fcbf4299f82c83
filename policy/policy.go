// Package policy defines the contract shared by every eviction engine in this
// module together with the observability hooks the engines report through.
package policy

// Cache is the minimal contract every eviction engine satisfies.
// Implementations are safe for concurrent use.
type Cache[K comparable, V any] interface {
	// Put inserts or overwrites k→v and records the access according to
	// the engine's policy. A zero-capacity engine ignores Put.
	Put(k K, v V)

	// Get returns the value for k and whether it was found.
	// A hit counts as an access.
	Get(k K) (V, bool)
}

// ValueOf returns the value stored for k, or the zero value of V on a miss.
func ValueOf[K comparable, V any](c Cache[K, V], k K) V {
	v, _ := c.Get(k)
	return v
}

// EvictReason explains why an entry left an engine.
type EvictReason int

const (
	// EvictCapacity: the policy victim chosen to make room for an insert.
	EvictCapacity EvictReason = iota
	// EvictRebalance: removed because ARC shrank a part's capacity.
	EvictRebalance
	// EvictHistory: LRU-K forgot a not-yet-promoted key and its pending value.
	EvictHistory
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictRebalance:
		return "rebalance"
	case EvictHistory:
		return "history"
	default:
		return "capacity"
	}
}

// Metrics exposes engine-level observability hooks.
// Hooks are called while the engine's lock is held; keep them cheap.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Size reports the number of resident entries after a mutation.
	Size(entries int)
	// Promote is reported when a key moves to a stronger tier
	// (LRU-K history → main cache, ARC LRU part → LFU part).
	Promote()
	// GhostHit is reported when ARC finds a key in one of its ghost lists.
	GhostHit()
	// Decay is reported each time LFU ages all frequencies.
	Decay()
}

// NoopMetrics is the default Metrics implementation; it does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Size(int)          {}
func (NoopMetrics) Promote()          {}
func (NoopMetrics) GhostHit()         {}
func (NoopMetrics) Decay()            {}

var _ Metrics = NoopMetrics{}

// OrNoop returns m, or NoopMetrics when m is nil.
func OrNoop(m Metrics) Metrics {
	if m == nil {
		return NoopMetrics{}
	}
	return m
}
