package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes orchestrator instrumentation on a caller-provided
// registry. A nil Metrics disables instrumentation entirely.
type Metrics struct {
	mutations         *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "metasync",
			Subsystem: "orchestrator",
			Name:      "mutations_total",
			Help:      "Mutation operations by type and outcome.",
		}, []string{"operation", "outcome"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "metasync",
			Subsystem: "orchestrator",
			Name:      "reconcile_duration_seconds",
			Help:      "Wall time spent classifying local and remote snapshots.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if registerer != nil {
		registerer.MustRegister(metrics.mutations, metrics.reconcileDuration)
	}
	return metrics
}

func (m *Metrics) observeMutation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) observeReconcile(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reconcileDuration.Observe(elapsed.Seconds())
}
