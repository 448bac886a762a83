package classify_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmontp/LocoHub-sub005/pkg/classify"
	"github.com/jmontp/LocoHub-sub005/pkg/validation"
)

func hipFailures() []validation.Failure {
	return []validation.Failure{
		{Task: "A", Step: 0, Variable: "hip_flexion_angle_ipsi", Type: validation.TypeCheckpointRange},
		{Task: "A", Step: 1, Variable: "hip_flexion_angle_ipsi", Type: validation.TypePattern},
	}
}

func TestForFeature(t *testing.T) {
	t.Parallel()

	steps := []string{"A", "A", "A", "A"}

	got := classify.ForFeature(hipFailures(), steps, "hip_flexion_angle_ipsi", classify.ModeKinematic)
	assert.Equal(t, []classify.Color{classify.Red, classify.Red, classify.Gray, classify.Gray}, got)

	got = classify.ForFeature(hipFailures(), steps, "ankle_flexion_angle_ipsi", classify.ModeKinematic)
	assert.Equal(t, []classify.Color{classify.Pink, classify.Pink, classify.Gray, classify.Gray}, got)
}

func TestForFeatureMatchesUnits(t *testing.T) {
	t.Parallel()

	failures := []validation.Failure{{Task: "A", Step: 1, Variable: "knee_flexion_angle_ipsi_rad"}}
	got := classify.ForFeature(failures, []string{"A", "A"}, "knee_flexion_angle_ipsi", classify.ModeAll)
	assert.Equal(t, []classify.Color{classify.Gray, classify.Red}, got)
}

func TestModeFiltersFamilies(t *testing.T) {
	t.Parallel()

	failures := []validation.Failure{{Task: "A", Step: 0, Variable: "knee_flexion_moment_ipsi_Nm_kg"}}
	steps := []string{"A"}

	assert.Equal(t, []classify.Color{classify.Gray},
		classify.ForFeature(failures, steps, "knee_flexion_angle_ipsi_rad", classify.ModeKinematic))
	assert.Equal(t, []classify.Color{classify.Pink},
		classify.ForFeature(failures, steps, "hip_flexion_moment_ipsi_Nm_kg", classify.ModeKinetic))
	assert.Equal(t, []classify.Color{classify.Red},
		classify.ForFeature(failures, steps, "knee_flexion_moment_ipsi_Nm_kg", classify.ModeKinetic))
}

func TestTaskLevelFailures(t *testing.T) {
	t.Parallel()

	failures := []validation.Failure{{Task: "B", Step: -1, Variable: "hip_flexion_angle_ipsi"}}
	steps := []string{"A", "B", "B", "A"}

	c := classify.New(failures, steps, classify.ModeAll)
	assert.Equal(t, []classify.Color{classify.Gray, classify.Red, classify.Red, classify.Gray},
		c.ForFeature("hip_flexion_angle_ipsi"))
	assert.Equal(t, []classify.Color{classify.Gray, classify.Red, classify.Red, classify.Gray}, c.Summary())
}

func TestStepTaskMismatchIgnored(t *testing.T) {
	t.Parallel()

	failures := []validation.Failure{
		{Task: "B", Step: 0, Variable: "hip_flexion_angle_ipsi"},
		{Task: "A", Step: 7, Variable: "hip_flexion_angle_ipsi"},
	}
	got := classify.New(failures, []string{"A"}, classify.ModeAll).Summary()
	assert.Equal(t, []classify.Color{classify.Gray}, got)
}

func TestMatrixAndCSV(t *testing.T) {
	t.Parallel()

	c := classify.New(hipFailures(), []string{"A", "A", "A"}, classify.ModeAll)
	features := []string{"hip_flexion_angle_ipsi", "knee_flexion_angle_ipsi"}

	m := c.Matrix(features)
	require.Len(t, m, 2)
	assert.Equal(t, []classify.Color{classify.Red, classify.Red, classify.Gray}, m[0])
	assert.Equal(t, []classify.Color{classify.Pink, classify.Pink, classify.Gray}, m[1])

	var buf bytes.Buffer
	require.NoError(t, c.WriteCSV(&buf, features))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.Equal(t, []string{"feature", "step", "task", "color", "hex"}, records[0])
	assert.Equal(t, "red", records[1][3])
	assert.True(t, strings.EqualFold("#ff0000", records[1][4]))
	assert.Equal(t, "pink", records[4][3])
}

func TestColorHex(t *testing.T) {
	t.Parallel()

	tests := map[classify.Color]string{
		classify.Gray: "#808080",
		classify.Red:  "#ff0000",
		classify.Pink: "#ffc0cb",
	}
	for col, want := range tests {
		got, err := col.Hex()
		require.NoError(t, err)
		assert.True(t, strings.EqualFold(want, got), "%s: %s", col, got)
	}

	_, err := classify.Color("blue").Hex()
	require.Error(t, err)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := classify.ParseMode("kinetic")
	require.NoError(t, err)
	assert.Equal(t, classify.ModeKinetic, m)

	m, err = classify.ParseMode("all")
	require.NoError(t, err)
	assert.Equal(t, classify.ModeAll, m)

	_, err = classify.ParseMode("emg")
	require.Error(t, err)
}
