package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the Prometheus instruments of the pricing engine. A nil
// *Metrics is valid and records nothing, so unit tests can pass nil.
type Metrics struct {
	SimulationsTotal   *prometheus.CounterVec
	SimulationDuration prometheus.Histogram
	ItemsApplied       prometheus.Counter
	ItemsRolledBack    prometheus.Counter
	GuardBlocks        prometheus.Counter
	QueueJobs          *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		SimulationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_simulations_total",
				Help: "Simulation pipeline outcomes by resulting status.",
			},
			[]string{"status"},
		),
		SimulationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pricing_simulation_duration_seconds",
				Help:    "Wall time of a simulation / apply / rollback pass.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		ItemsApplied: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pricing_items_applied_total",
				Help: "Price changes committed to the catalog.",
			},
		),
		ItemsRolledBack: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pricing_items_rolled_back_total",
				Help: "Price changes reverted from the ledger.",
			},
		),
		GuardBlocks: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pricing_guard_blocks_total",
				Help: "Proposals lifted to the margin floor by a guard rule.",
			},
		),
		QueueJobs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricing_queue_jobs_total",
				Help: "Background jobs by queue and outcome.",
			},
			[]string{"queue", "outcome"},
		),
	}
}

func (m *Metrics) RecordSimulation(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.SimulationsTotal.WithLabelValues(status).Inc()
	m.SimulationDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordItemsApplied(n int) {
	if m == nil {
		return
	}
	m.ItemsApplied.Add(float64(n))
}

func (m *Metrics) RecordItemsRolledBack(n int) {
	if m == nil {
		return
	}
	m.ItemsRolledBack.Add(float64(n))
}

func (m *Metrics) RecordGuardBlock() {
	if m == nil {
		return
	}
	m.GuardBlocks.Inc()
}

func (m *Metrics) RecordQueueJob(queue, outcome string) {
	if m == nil {
		return
	}
	m.QueueJobs.WithLabelValues(queue, outcome).Inc()
}
