package prom

import (
	"github.com/IvanBrykalov/blockcache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evicts    prometheus.Counter
	transfers *prometheus.CounterVec
	exhausted prometheus.Counter
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
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
		hits:      counter("hits_total", "Acquires served by a resident block"),
		misses:    counter("misses_total", "Acquires that recycled a slot"),
		evicts:    counter("evictions_total", "Slots reassigned to another block"),
		exhausted: counter("exhausted_total", "Misses that found no free slot"),
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "transfers_total",
				Help:        "Device transfers by direction",
				ConstLabels: constLabels,
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.exhausted, a.transfers)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter.
func (a *Adapter) Evict() { a.evicts.Inc() }

// Transfer counts one device transfer under op="read" or op="write".
func (a *Adapter) Transfer(write bool) {
	a.transfers.WithLabelValues(op(write)).Inc()
}

// Exhausted counts a miss that found every slot referenced.
func (a *Adapter) Exhausted() { a.exhausted.Inc() }

// op maps a transfer direction to a stable label value.
func op(write bool) string {
	if write {
		return "write"
	}
	return "read"
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
