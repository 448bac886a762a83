package gait_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmontp/LocoHub-sub005/pkg/errs"
	"github.com/jmontp/LocoHub-sub005/pkg/gait"
)

func TestDetectHeelStrikes(t *testing.T) {
	t.Parallel()

	force := []float64{0, 0, 60, 70, 10, 0, 55, 80, 0}
	assert.Equal(t, []int{2, 6}, gait.DetectHeelStrikes(force, 50))
	// A recording that starts in stance has no transition at index 0.
	assert.Equal(t, []int{3}, gait.DetectHeelStrikes([]float64{90, 90, 0, 90}, 50))
}

func TestSegmentSingleCycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		t0, t1   float64
		expected int
	}{
		{name: "one second", t0: 0.25, t1: 1.25, expected: 1},
		{name: "lower bound", t0: 0.25, t1: 0.75, expected: 1},
		{name: "upper bound", t0: 0.25, t1: 2.75, expected: 1},
		{name: "too short", t0: 0.25, t1: 0.625, expected: 0},
		{name: "too long", t0: 0.25, t1: 2.875, expected: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			time := timeVector(t, 400, 128)
			force := pulseForce(t, time, 0.25, tc.t0, tc.t1)

			seg, err := gait.Segment(force, time, gait.DefaultStanceThreshold)
			require.NoError(t, err)
			require.Len(t, seg.Cycles, tc.expected)
			assert.Len(t, seg.HeelStrikes, 2)
			assert.Equal(t, 1-tc.expected, seg.Rejected)
			if tc.expected == 1 {
				assert.InDelta(t, tc.t0, seg.Cycles[0].StartTime, 1e-9)
				assert.InDelta(t, tc.t1, seg.Cycles[0].EndTime, 1e-9)
			}
		})
	}
}

func TestSegmentFewerThanTwoStrikes(t *testing.T) {
	t.Parallel()

	time := timeVector(t, 200, 128)
	seg, err := gait.Segment(pulseForce(t, time, 0.25, 0.5), time, gait.DefaultStanceThreshold)
	require.NoError(t, err)
	assert.Empty(t, seg.Cycles)

	seg, err = gait.Segment(make([]float64, len(time)), time, gait.DefaultStanceThreshold)
	require.NoError(t, err)
	assert.Empty(t, seg.Cycles)
	assert.Empty(t, seg.HeelStrikes)
}

func TestSegmentLengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := gait.Segment([]float64{0, 1}, []float64{0}, 50)
	assert.Equal(t, errs.KindStructural, errs.KindOf(err))
}

func TestSegmentTrialLabelsCycles(t *testing.T) {
	t.Parallel()

	time := timeVector(t, 400, 128)
	trial := &gait.Trial{
		Subject: "S01",
		Task:    "level_walking",
		Time:    time,
		Force:   "vertical_grf_ipsi_N",
		Channels: map[string][]float64{
			"vertical_grf_ipsi_N": pulseForce(t, time, 0.375, 0.125, 1.125, 2.125),
		},
	}

	seg, err := gait.SegmentTrial(trial, gait.DefaultStanceThreshold)
	require.NoError(t, err)
	require.Len(t, seg.Cycles, 2)
	for i, cycle := range seg.Cycles {
		assert.Equal(t, "S01", cycle.Subject)
		assert.Equal(t, "level_walking", cycle.Task)
		assert.Equal(t, i, cycle.CycleIndex)
		assert.InDelta(t, 1.0, cycle.Duration(), 1e-9)
	}

	trial.Force = "missing"
	_, err = gait.SegmentTrial(trial, gait.DefaultStanceThreshold)
	assert.True(t, errs.IsFatal(err))
}
