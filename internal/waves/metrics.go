package waves

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the wave runner's Prometheus collectors.
type Metrics struct {
	// nodes counts finished nodes.
	// Labels: status (succeeded, failed, skipped, canceled)
	nodes *prometheus.CounterVec

	// waveDuration measures the wall time of each wave, barrier included.
	waveDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is what tests that read them directly
// want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "depgraph",
			Subsystem: "waves",
			Name:      "nodes_total",
			Help:      "Nodes processed by the wave runner, by final status",
		}, []string{"status"}),
		waveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "depgraph",
			Subsystem: "waves",
			Name:      "wave_duration_seconds",
			Help:      "Wall time of one wave including its barrier",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120, 600},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.nodes, m.waveDuration)
	}
	return m
}

func (m *Metrics) observeNode(s Status) {
	if m == nil {
		return
	}
	m.nodes.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) observeWave(seconds float64) {
	if m == nil {
		return
	}
	m.waveDuration.Observe(seconds)
}
