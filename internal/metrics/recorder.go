// Package metrics mirrors the cache's counters into Prometheus metrics:
// current occupancy gauges plus eviction and over-budget counters. It is
// an opt-in exporter standing in for the source material's
// GR_CACHE_STATS compile-time flag; the high-water marks are not
// exported here and are read through Cache.Stats instead.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder publishes cache occupancy as Prometheus gauges. The zero
// value is not usable; construct with [NewRecorder].
type Recorder struct {
	count         prometheus.Gauge
	bytes         prometheus.Gauge
	budgetedCount prometheus.Gauge
	budgetedBytes prometheus.Gauge
	evictions     prometheus.Counter
	overBudget    prometheus.Counter
}

// NewRecorder creates a Recorder and registers its metrics with reg. The
// namespace prefixes every metric name, so a backend embedding multiple
// caches can register one Recorder per cache instance without name
// collisions.
func NewRecorder(reg prometheus.Registerer, namespace string) *Recorder {
	r := &Recorder{
		count: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gpu_resource_cache",
			Name:      "resources",
			Help:      "Number of resources currently tracked by the cache.",
		}),
		bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gpu_resource_cache",
			Name:      "bytes",
			Help:      "Total GPU memory, in bytes, tracked by the cache.",
		}),
		budgetedCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gpu_resource_cache",
			Name:      "budgeted_resources",
			Help:      "Number of resources counted against the budget.",
		}),
		budgetedBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "gpu_resource_cache",
			Name:      "budgeted_bytes",
			Help:      "GPU memory, in bytes, counted against the budget.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gpu_resource_cache",
			Name:      "evictions_total",
			Help:      "Number of resources released by purgeAsNeeded.",
		}),
		overBudget: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gpu_resource_cache",
			Name:      "over_budget_total",
			Help:      "Number of times the over-budget callback fired.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.count, r.bytes, r.budgetedCount, r.budgetedBytes, r.evictions, r.overBudget)
	}
	return r
}

// SetOccupancy updates the gauges to reflect the cache's current totals.
func (r *Recorder) SetOccupancy(count int, bytes uint64, budgetedCount int, budgetedBytes uint64) {
	r.count.Set(float64(count))
	r.bytes.Set(float64(bytes))
	r.budgetedCount.Set(float64(budgetedCount))
	r.budgetedBytes.Set(float64(budgetedBytes))
}

// IncEvictions increments the eviction counter by n.
func (r *Recorder) IncEvictions(n int) {
	r.evictions.Add(float64(n))
}

// IncOverBudget increments the over-budget-callback counter.
func (r *Recorder) IncOverBudget() {
	r.overBudget.Inc()
}
