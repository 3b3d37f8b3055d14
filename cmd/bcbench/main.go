// Command bcbench runs a synthetic file-system workload against the block
// cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/blockcache/cache"
	"github.com/IvanBrykalov/blockcache/device/filedisk"
	"github.com/IvanBrykalov/blockcache/device/memdisk"
	"github.com/IvanBrykalov/blockcache/device/throttle"
	pmet "github.com/IvanBrykalov/blockcache/metrics/prom"
	"github.com/IvanBrykalov/blockcache/policy"
	"github.com/IvanBrykalov/blockcache/policy/lru"
	"github.com/IvanBrykalov/blockcache/policy/recycle"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "bcbench:", err)
		os.Exit(2)
	}
	level, _ := cfg.level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, log); err != nil {
		log.Error("benchmark failed", "err", err)
		os.Exit(1)
	}
}

// counters are shared by all workers.
type counters struct {
	ops, reads, writes, pins atomic.Uint64
}

func run(cfg Config, log *slog.Logger) error {
	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			log.Info("pprof: serving", "addr", cfg.PprofAddr)
			log.Error("pprof server stopped", "err", http.ListenAndServe(cfg.PprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	var metrics cache.Metrics = cache.NoopMetrics{}
	if cfg.MetricsAddr != "" {
		metrics = pmet.New(nil, "blockcache", "bench", nil)
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info("metrics: serving", "addr", cfg.MetricsAddr)
			log.Error("metrics server stopped", "err", http.ListenAndServe(cfg.MetricsAddr, nil))
		}()
	}

	// ---- Device ----
	dev, closeDev, err := openDevice(cfg)
	if err != nil {
		return err
	}
	defer closeDev()

	// ---- Build cache ----
	var pol policy.Policy = recycle.New()
	if cfg.Policy == "lru" {
		pol = lru.New()
	}
	c := cache.New(cache.Options{
		Buckets:   cfg.Buckets,
		Slots:     cfg.Slots,
		BlockSize: cfg.BlockSize,
		Device:    dev,
		Policy:    pol,
		Metrics:   metrics,
		Logger:    log,
	})
	defer func() { _ = c.Close() }()

	dur, _ := cfg.duration()
	ctx, cancel := context.WithTimeout(context.Background(), dur)
	defer cancel()

	// ---- Load generation ----
	var cnt counters
	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error { return worker(ctx, c, cfg, int64(w), &cnt) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	// ---- Report ----
	st := c.Stats()
	ops := cnt.ops.Load()
	hitRate := 0.0
	if st.Hits+st.Misses > 0 {
		hitRate = float64(st.Hits) / float64(st.Hits+st.Misses) * 100
	}
	fmt.Printf("policy=%s slots=%d buckets=%d block=%dB workers=%d blocks=%d dur=%v seed=%d\n",
		cfg.Policy, cfg.Slots, cfg.Buckets, cfg.BlockSize, cfg.Workers, cfg.Blocks, elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  pins=%d\n",
		ops, float64(ops)/elapsed.Seconds(), cnt.reads.Load(), cnt.writes.Load(), cnt.pins.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d\n", st.Hits, st.Misses, hitRate, st.Evictions)
	fmt.Printf("device reads=%d  device writes=%d\n", st.Reads, st.Writes)
	return nil
}

// worker reads Zipf-distributed blocks, writes some of them back and pins
// a few across the release, as a log would.
func worker(ctx context.Context, c cache.Cache, cfg Config, id int64, cnt *counters) error {
	// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
	r := rand.New(rand.NewSource(cfg.Seed + id*9973))
	zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, uint64(cfg.Blocks-1))

	for ctx.Err() == nil {
		s, err := c.Read(0, zipf.Uint64())
		if err != nil {
			return err
		}
		cnt.ops.Add(1)
		cnt.reads.Add(1)

		if r.Intn(100) < cfg.WritePct {
			data := s.Data()
			data[r.Intn(len(data))]++
			if err := c.Write(s); err != nil {
				c.Release(s)
				return err
			}
			cnt.writes.Add(1)
		}

		pinned := r.Intn(100) < cfg.PinPct
		if pinned {
			c.Pin(s)
			cnt.pins.Add(1)
		}
		c.Release(s)
		if pinned {
			c.Unpin(s)
		}
	}
	return nil
}

// openDevice returns the configured device and a function that closes it.
func openDevice(cfg Config) (cache.BlockDevice, func(), error) {
	var (
		dev     cache.BlockDevice
		closeFn = func() {}
	)
	if cfg.Image == "" {
		dev = memdisk.New(cfg.BlockSize, nil)
	} else {
		if _, err := os.Stat(cfg.Image); errors.Is(err, os.ErrNotExist) {
			if err := filedisk.Create(cfg.Image, uint64(cfg.Blocks), cfg.BlockSize); err != nil {
				return nil, nil, err
			}
		}
		fd := filedisk.New(cfg.BlockSize)
		if err := fd.Attach(0, cfg.Image); err != nil {
			return nil, nil, err
		}
		dev = fd
		closeFn = func() { _ = fd.Close() }
	}
	if cfg.IOPS > 0 {
		dev = throttle.New(dev, cfg.IOPS, 1)
	}
	return dev, closeFn, nil
}
