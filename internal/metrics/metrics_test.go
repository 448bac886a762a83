package metrics_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmontp/LocoHub-sub005/internal/metrics"
	"github.com/jmontp/LocoHub-sub005/pkg/gait"
	"github.com/jmontp/LocoHub-sub005/pkg/validation"
)

func TestObserveSegmentation(t *testing.T) {
	t.Parallel()

	rec := metrics.New(prometheus.NewRegistry())
	rec.ObserveSegmentation(&gait.Trial{}, gait.Segmentation{Cycles: make([]gait.GaitCycle, 3), Rejected: 1})
	rec.ObserveSegmentation(&gait.Trial{}, gait.Segmentation{})

	assert.InDelta(t, 2.0, testutil.ToFloat64(rec.Trials), 0)
	assert.InDelta(t, 3.0, testutil.ToFloat64(rec.Cycles), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.Rejected), 0)
}

func TestObserveValidation(t *testing.T) {
	t.Parallel()

	rec := metrics.New(prometheus.NewRegistry())
	rec.ObserveTier1(&validation.Tier1Result{Columns: []validation.ColumnResult{
		{Column: "hip_flexion_angle_ipsi_rad", Passed: true, Violations: 2},
		{Column: "knee_flexion_angle_ipsi_rad", Violations: 40},
		{Column: "custom", Skipped: true},
	}})
	rec.ObserveTier2(&validation.Tier2Result{
		Task:         "level_walking",
		StepsChecked: 4,
		StepsFailed:  1,
		Failures: []validation.Failure{
			{Type: validation.TypeCheckpointRange},
			{Type: validation.TypePattern},
			{Type: validation.TypePattern},
		},
		Unchecked: []validation.Unchecked{{Task: "level_walking"}},
	})

	assert.InDelta(t, 40.0, testutil.ToFloat64(rec.Tier1Violations.WithLabelValues("knee_flexion_angle_ipsi_rad")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.Tier1Columns.WithLabelValues("failed")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.Tier1Columns.WithLabelValues("skipped")), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(rec.Tier2Failures.WithLabelValues("level_walking", "pattern")), 0)
	assert.InDelta(t, 3.0, testutil.ToFloat64(rec.Tier2Steps.WithLabelValues("level_walking", "passed")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(rec.Tier2Unchecked.WithLabelValues("level_walking")), 0)
}

func TestWriteToTextfile(t *testing.T) {
	t.Parallel()

	rec := metrics.New(prometheus.NewRegistry())
	rec.ObserveSegmentation(&gait.Trial{}, gait.Segmentation{Cycles: make([]gait.GaitCycle, 2)})

	path := filepath.Join(t.TempDir(), "locohub.prom")
	require.NoError(t, rec.WriteToTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "locohub_cycles_total 2")
	assert.Contains(t, string(content), "# HELP locohub_trials_total")

	require.Error(t, rec.WriteToTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
