// Package metrics exports domain counters for normalization and validation runs.
//
// Metrics:
//   - locohub_trials_total - trials segmented
//   - locohub_cycles_total - gait cycles accepted
//   - locohub_cycles_rejected_total - heel-strike pairs outside the duration window
//   - locohub_tier1_violations_total{column} - out-of-range samples
//   - locohub_tier1_columns{verdict} - columns by tier-1 verdict
//   - locohub_tier2_failures_total{task,type} - checkpoint and pattern failures
//   - locohub_tier2_steps{task,verdict} - steps by tier-2 verdict
//   - locohub_tier2_unchecked_total{task} - patterns that could not be evaluated
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jmontp/LocoHub-sub005/pkg/gait"
	"github.com/jmontp/LocoHub-sub005/pkg/validation"
)

// Recorder implements normalize.Observer and validation.Observer.
type Recorder struct {
	gatherer prometheus.Gatherer

	Trials          prometheus.Counter
	Cycles          prometheus.Counter
	Rejected        prometheus.Counter
	Tier1Violations *prometheus.CounterVec
	Tier1Columns    *prometheus.GaugeVec
	Tier2Failures   *prometheus.CounterVec
	Tier2Steps      *prometheus.GaugeVec
	Tier2Unchecked  *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		gatherer: reg,
		Trials: factory.NewCounter(prometheus.CounterOpts{
			Name: "locohub_trials_total",
			Help: "Total number of trials segmented",
		}),
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "locohub_cycles_total",
			Help: "Total number of gait cycles accepted",
		}),
		Rejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "locohub_cycles_rejected_total",
			Help: "Total number of heel-strike pairs rejected for their duration",
		}),
		Tier1Violations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "locohub_tier1_violations_total",
			Help: "Out-of-range samples per column",
		}, []string{"column"}),
		Tier1Columns: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locohub_tier1_columns",
			Help: "Columns per tier-1 verdict",
		}, []string{"verdict"}),
		Tier2Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "locohub_tier2_failures_total",
			Help: "Tier-2 failures per task and failure type",
		}, []string{"task", "type"}),
		Tier2Steps: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "locohub_tier2_steps",
			Help: "Steps per task and tier-2 verdict",
		}, []string{"task", "verdict"}),
		Tier2Unchecked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "locohub_tier2_unchecked_total",
			Help: "Patterns recorded as unchecked per task",
		}, []string{"task"}),
	}
}

// ObserveSegmentation counts one segmented trial.
func (r *Recorder) ObserveSegmentation(_ *gait.Trial, seg gait.Segmentation) {
	r.Trials.Inc()
	r.Cycles.Add(float64(len(seg.Cycles)))
	r.Rejected.Add(float64(seg.Rejected))
}

// ObserveTier1 records column verdicts and violation counts.
func (r *Recorder) ObserveTier1(res *validation.Tier1Result) {
	var passed, failed, skipped float64
	for _, col := range res.Columns {
		switch {
		case col.Skipped:
			skipped++
		case col.Passed:
			passed++
		default:
			failed++
		}
		if col.Violations > 0 {
			r.Tier1Violations.WithLabelValues(col.Column).Add(float64(col.Violations))
		}
	}

	r.Tier1Columns.WithLabelValues("passed").Set(passed)
	r.Tier1Columns.WithLabelValues("failed").Set(failed)
	r.Tier1Columns.WithLabelValues("skipped").Set(skipped)
}

// ObserveTier2 records the failures and step verdicts of one task.
func (r *Recorder) ObserveTier2(res *validation.Tier2Result) {
	for _, f := range res.Failures {
		r.Tier2Failures.WithLabelValues(res.Task, string(f.Type)).Inc()
	}
	if n := len(res.Unchecked); n > 0 {
		r.Tier2Unchecked.WithLabelValues(res.Task).Add(float64(n))
	}

	r.Tier2Steps.WithLabelValues(res.Task, "passed").Set(float64(res.StepsChecked - res.StepsFailed))
	r.Tier2Steps.WithLabelValues(res.Task, "failed").Set(float64(res.StepsFailed))
}

// WriteToTextfile writes every gathered metric in the text exposition format.
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.gatherer); err != nil {
		return errors.Wrapf(err, "unable to write metrics to %s", path)
	}

	return nil
}
