// Package measure times pipeline steps and exports the timings as prometheus metrics.
package measure

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Measure keeps per-step timings and mirrors them into prometheus collectors.
//
// Metrics:
//   - pipeline_step_items_total{step} - elements produced or consumed by a step
//   - pipeline_step_duration_seconds{step} - computation time per element
//   - pipeline_step_transport_seconds{step,parent} - wait plus computation per element
//   - pipeline_sink_total_seconds{step} - time from pipeline start to sink end
type Measure struct {
	mu    sync.Mutex
	steps map[string]*Metric

	items     *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	transport *prometheus.HistogramVec
	sinkTotal *prometheus.GaugeVec
}

// New registers the step collectors with reg.
func New(reg prometheus.Registerer) *Measure {
	factory := promauto.With(reg)

	return &Measure{
		steps: make(map[string]*Metric),
		items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeline_step_items_total",
				Help: "Total number of elements handled by a pipeline step",
			},
			[]string{"step"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_step_duration_seconds",
				Help:    "Computation time per element of a pipeline step",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
			[]string{"step"},
		),
		transport: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_step_transport_seconds",
				Help:    "Time per element from reading the parent output to pushing the result",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"step", "parent"},
		),
		sinkTotal: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pipeline_sink_total_seconds",
				Help: "Time from pipeline start until a sink drained its input",
			},
			[]string{"step"},
		),
	}
}

// AddMetric registers a step.
func (m *Measure) AddMetric(name string, concurrent int) *Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := newMetric(concurrent)
	m.steps[name] = mt

	return mt
}

// GetMetric returns the metric of a step, nil if unknown.
func (m *Measure) GetMetric(name string) *Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.steps[name]
}

// AllMetrics returns a copy of the metrics keyed by step.
func (m *Measure) AllMetrics() map[string]*Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]*Metric, len(m.steps))
	for name, mt := range m.steps {
		out[name] = mt
	}

	return out
}

// Steps returns the known step names in lexical order.
func (m *Measure) Steps() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.steps))
	for name := range m.steps {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
