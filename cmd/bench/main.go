// Command bench runs a synthetic Zipf workload against one eviction engine and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/IvanBrykalov/evictcache/cache"
	"github.com/IvanBrykalov/evictcache/internal/config"
	pmet "github.com/IvanBrykalov/evictcache/metrics/prom"
	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/arc"
	"github.com/IvanBrykalov/evictcache/policy/lfu"
	"github.com/IvanBrykalov/evictcache/policy/lru"
	"github.com/IvanBrykalov/evictcache/policy/lruk"
)

// engine is what the bench drives; every engine in this module satisfies it.
type engine interface {
	policy.Cache[string, string]
	Len() int
}

type counters struct {
	total, reads, writes, hits, misses, scans atomic.Uint64
}

func main() {
	if err := run(); err != nil {
		slog.Error("bench failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	def := config.Default()

	// ---- Flags ----
	var (
		cfgPath = flag.String("config", "", "TOML workload file; explicitly set flags override it")
		verbose = flag.Bool("verbose", false, "debug logging")

		policyName = flag.String("policy", def.Policy, "engine: lru | lruk | lfu | arc | sharded-lru | sharded-lfu")
		capacity   = flag.Int("cap", def.Capacity, "cache capacity (entries)")
		shards     = flag.Int("shards", 0, "number of shards for sharded-* (0=NumCPU)")
		k          = flag.Int("k", 0, "LRU-K promotion threshold (0=2)")
		history    = flag.Int("history", 0, "LRU-K history capacity (0=cap)")
		threshold  = flag.Int("threshold", 0, "ARC transform threshold (0=2)")
		maxAvg     = flag.Int("max_average", 0, "LFU aging trigger (0=engine default)")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", def.Duration.Duration, "benchmark duration")
		readPct  = flag.Int("reads", def.Reads, "read percentage [0..100]")
		keys     = flag.Int("keys", def.Keys, "keyspace size")
		zipfS    = flag.Float64("zipf_s", def.ZipfS, "Zipf s > 1 (skew)")
		zipfV    = flag.Float64("zipf_v", def.ZipfV, "Zipf v")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload  = flag.Int("preload", 0, "preload entries (0 = cap/2)")
		opsRate  = flag.Float64("rate", 0, "max total ops/second (0 = unlimited)")
		scanN    = flag.Int("scan_every", 0, "inject a scan burst every N ops per worker (0 = off)")
		scanLen  = flag.Int("scan_length", def.ScanLength, "unique keys per scan burst")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// ---- Workload: file first, explicit flags on top ----
	w := def
	w.Workers, w.Seed = *workers, *seed
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		w = loaded
		if w.Workers == 0 {
			w.Workers = *workers
		}
		if w.Seed == 0 {
			w.Seed = *seed
		}
		slog.Debug("workload loaded", "path", *cfgPath)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "policy":
			w.Policy = *policyName
		case "cap":
			w.Capacity = *capacity
		case "shards":
			w.Shards = *shards
		case "k":
			w.K = *k
		case "history":
			w.History = *history
		case "threshold":
			w.Threshold = *threshold
		case "max_average":
			w.MaxAverage = *maxAvg
		case "workers":
			w.Workers = *workers
		case "duration":
			w.Duration.Duration = *duration
		case "reads":
			w.Reads = *readPct
		case "keys":
			w.Keys = *keys
		case "zipf_s":
			w.ZipfS = *zipfS
		case "zipf_v":
			w.ZipfV = *zipfV
		case "seed":
			w.Seed = *seed
		case "preload":
			w.Preload = *preload
		case "rate":
			w.Rate = *opsRate
		case "scan_every":
			w.ScanEvery = *scanN
		case "scan_length":
			w.ScanLength = *scanLen
		}
	})
	if err := w.Validate(); err != nil {
		return err
	}
	if w.Workers <= 0 {
		w.Workers = 1
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go serve("pprof", *pprofAddr)
	}

	// ---- Prometheus metrics ----
	metrics := pmet.New(nil, "evictcache", "bench", prometheus.Labels{"policy": w.Policy})
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go serve("metrics", *metricsAddr)
	}

	c, err := build(w, metrics)
	if err != nil {
		return err
	}

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := w.Preload
	if pl == 0 {
		pl = w.Capacity / 2
	}
	for i := 0; i < pl; i++ {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}
	slog.Debug("preloaded", "entries", pl, "resident", c.Len())

	var limiter *rate.Limiter
	if w.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(w.Rate), max(1, int(w.Rate/100)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.Duration.Duration)
	defer cancel()

	var cnt counters
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for id := 0; id < w.Workers; id++ {
		g.Go(func() error {
			return work(gctx, id, w, c, limiter, &cnt)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	report(w, c, &cnt, elapsed)
	return nil
}

// build constructs the engine named by w.Policy.
func build(w config.Workload, m policy.Metrics) (engine, error) {
	switch w.Policy {
	case "lru":
		return lru.New[string, string](lru.Options[string, string]{Capacity: w.Capacity, Metrics: m}), nil
	case "lruk":
		return lruk.New[string, string](lruk.Options[string, string]{
			Capacity: w.Capacity, HistoryCapacity: w.History, K: w.K, Metrics: m,
		}), nil
	case "lfu":
		return lfu.New[string, string](lfu.Options[string, string]{
			Capacity: w.Capacity, MaxAverage: w.MaxAverage, Metrics: m,
		}), nil
	case "arc":
		return arc.New[string, string](arc.Options[string, string]{
			Capacity: w.Capacity, TransformThreshold: w.Threshold, Metrics: m,
		}), nil
	case "sharded-lru":
		return cache.NewLRU[string, string](cache.Options[string, string]{
			Capacity: w.Capacity, Shards: w.Shards, Metrics: m,
		}), nil
	case "sharded-lfu":
		return cache.NewLFU[string, string](cache.Options[string, string]{
			Capacity: w.Capacity, Shards: w.Shards, MaxAverage: w.MaxAverage, Metrics: m,
		}), nil
	}
	return nil, fmt.Errorf("%w: policy %q", config.ErrInvalidConfig, w.Policy)
}

// work runs one worker until ctx ends. Each worker gets its own RNG + Zipf
// (rand.Rand is NOT goroutine-safe).
func work(ctx context.Context, id int, w config.Workload, c engine, limiter *rate.Limiter, cnt *counters) error {
	r := rand.New(rand.NewSource(w.Seed + int64(id)*9973))
	zipf := rand.NewZipf(r, w.ZipfS, w.ZipfV, uint64(w.Keys-1))

	for n := 1; ; n++ {
		if ctx.Err() != nil {
			return nil
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				// deadline reached while waiting for a token
				return nil
			}
		}

		cnt.total.Add(1)
		k := "k:" + strconv.FormatUint(zipf.Uint64(), 10)
		if int(r.Int31n(100)) < w.Reads {
			cnt.reads.Add(1)
			if _, ok := c.Get(k); ok {
				cnt.hits.Add(1)
			} else {
				cnt.misses.Add(1)
			}
		} else {
			cnt.writes.Add(1)
			c.Put(k, "v"+strconv.Itoa(r.Int()))
		}

		if w.ScanEvery > 0 && n%w.ScanEvery == 0 {
			scan(c, w.ScanLength)
			cnt.scans.Add(1)
		}
	}
}

// scan touches length keys that are never seen again, the access pattern
// LRU-K and ARC are meant to absorb.
func scan(c engine, length int) {
	for i := 0; i < length; i++ {
		k := "scan:" + uuid.NewString()
		c.Put(k, k)
		c.Get(k)
	}
}

func report(w config.Workload, c engine, cnt *counters, elapsed time.Duration) {
	ops := cnt.total.Load()
	readsN := cnt.reads.Load()
	hitsN := cnt.hits.Load()

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("policy=%s cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		w.Policy, w.Capacity, w.Shards, w.Workers, w.Keys, elapsed, w.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  scans=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, cnt.writes.Load(), cnt.scans.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, cnt.misses.Load(), hitRate)
	fmt.Printf("Len()=%d\n", c.Len())

	switch e := c.(type) {
	case *arc.Cache[string, string]:
		s := e.Stats()
		slog.Info("arc parts",
			"lru_cap", s.LRUCapacity, "lru_len", s.LRULen, "lru_ghosts", s.LRUGhosts,
			"lfu_cap", s.LFUCapacity, "lfu_len", s.LFULen, "lfu_ghosts", s.LFUGhosts)
	case cache.Cache[string, string]:
		s := e.Stats()
		slog.Info("shards", "shards", s.Shards, "hits", s.Hits, "misses", s.Misses, "entries", s.Entries)
	}
}

func serve(name, addr string) {
	slog.Info("serving", "endpoint", name, "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server stopped", "endpoint", name, "err", err)
	}
}
