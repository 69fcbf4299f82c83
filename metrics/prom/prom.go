// Package prom exports engine signals as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/evictcache/policy"
)

// Adapter implements policy.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits       prometheus.Counter
	misses     prometheus.Counter
	evicts     *prometheus.CounterVec
	promotions prometheus.Counter
	ghostHits  prometheus.Counter
	decays     prometheus.Counter
	sizeEnt    prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
//
// Registering two adapters with the same ns/sub/labels on one registry panics;
// use constLabels (e.g. {"policy": "arc"}) to tell engines apart.
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:       counter("hits_total", "Cache hits"),
		misses:     counter("misses_total", "Cache misses"),
		promotions: counter("promotions_total", "Keys moved to a stronger tier (LRU-K main, ARC LFU part)"),
		ghostHits:  counter("ghost_hits_total", "ARC ghost list hits"),
		decays:     counter("decays_total", "LFU frequency aging passes"),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.promotions, a.ghostHits, a.decays, a.sizeEnt)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r policy.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Size updates the resident entries gauge.
func (a *Adapter) Size(entries int) { a.sizeEnt.Set(float64(entries)) }

func (a *Adapter) Promote()  { a.promotions.Inc() }
func (a *Adapter) GhostHit() { a.ghostHits.Inc() }
func (a *Adapter) Decay()    { a.decays.Inc() }

// Compile-time check: ensure Adapter implements policy.Metrics.
var _ policy.Metrics = (*Adapter)(nil)
