package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jmontp/LocoHub-sub005/pkg/errs"
	"github.com/jmontp/LocoHub-sub005/pkg/rules"
)

const document = `# Validation rules

Free text before the first task.

### Task: level_walking

| variable | phase-range | min | max | expected-pattern | tolerance | units | notes |
|---|---|---|---|---|---|---|---|
| hip_flexion_angle_ipsi_rad | 0-10 | 0.1 | 0.6 | peak_at_5, increasing | 10% | rad | early stance |
| knee_flexion_angle_ipsi_rad | | 0 | 1.2 | | 0.05 | rad | |
| ankle_dorsiflexion_angle_ipsi_rad | 40–60% | -0.3 | N/A | | | rad | bad max |
| hip_moment_ipsi_Nm_kg | oops | -1 | 1.5 | wiggly, near_zero | abc | Nm_kg | |

### Task: incline_walking

| variable | phase-range | min | max | expected-pattern | tolerance | units | notes |
|---|---|---|---|---|---|---|---|
| knee_flexion_angle_ipsi_rad | 60-80 | 0.5 | 1.3 | peak_at_70 | | rad | swing |
`

func TestParse(t *testing.T) {
	t.Parallel()

	table := rules.Parse([]byte(document))

	assert.Equal(t, []string{"incline_walking", "level_walking"}, table.Tasks())
	assert.Equal(t, 4, table.Len())

	walking, ok := table.Rules("level_walking")
	require.True(t, ok)
	require.Len(t, walking, 3)

	want := []rules.Rule{
		{
			Variable:        "hip_flexion_angle_ipsi_rad",
			Task:            "level_walking",
			PhaseRange:      rules.PhaseRange{Start: 0, End: 10},
			Min:             0.1,
			Max:             0.6,
			ExpectedPattern: "peak_at_5, increasing",
			Patterns:        []rules.Pattern{{Kind: rules.PatternPeakAt, At: 5}, {Kind: rules.PatternIncreasing}},
			Tolerance:       0.1,
			ToleranceType:   rules.ToleranceRelative,
			Units:           "rad",
			Notes:           "early stance",
		},
		{
			Variable:      "knee_flexion_angle_ipsi_rad",
			Task:          "level_walking",
			PhaseRange:    rules.FullCycle,
			Min:           0,
			Max:           1.2,
			Tolerance:     0.05,
			ToleranceType: rules.ToleranceAbsolute,
			Units:         "rad",
		},
		{
			Variable:        "hip_moment_ipsi_Nm_kg",
			Task:            "level_walking",
			PhaseRange:      rules.FullCycle,
			Min:             -1,
			Max:             1.5,
			ExpectedPattern: "wiggly, near_zero",
			Patterns:        []rules.Pattern{{Kind: rules.PatternNearZero}},
			Tolerance:       rules.DefaultTolerance,
			ToleranceType:   rules.ToleranceAbsolute,
			Units:           "Nm_kg",
		},
	}
	if diff := cmp.Diff(want, walking); diff != "" {
		t.Errorf("level_walking rules mismatch (-want +got):\n%s", diff)
	}

	incline, ok := table.Rules("incline_walking")
	require.True(t, ok)
	require.Len(t, incline, 1)
	assert.Equal(t, rules.PhaseRange{Start: 60, End: 80}, incline[0].PhaseRange)
	assert.Equal(t, rules.DefaultTolerance, incline[0].Tolerance)

	_, ok = table.Rules("running")
	assert.False(t, ok)
}

func TestParseWarnings(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	table := rules.Parse([]byte(document), rules.WithLogger(zap.New(core)))

	// bad max row, malformed phase range, unknown pattern
	warnings := table.Warnings()
	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.ErrorIs(t, w, errs.ErrParseWarning)
		assert.False(t, errs.IsFatal(w))
	}
	assert.Equal(t, 3, logs.Len())
	assert.Equal(t, "level_walking", logs.All()[0].ContextMap()["task"])
}

func TestParseIgnoresTableOutsideTask(t *testing.T) {
	t.Parallel()

	src := `## Notes

| variable | phase-range | min | max |
|---|---|---|---|
| hip_flexion_angle_ipsi_rad | 0-100 | 0 | 1 |
`
	table := rules.Parse([]byte(src))
	assert.Empty(t, table.Tasks())
	assert.Len(t, table.Warnings(), 1)
}

func TestParseHeaderOrder(t *testing.T) {
	t.Parallel()

	src := `### Task: run

| min | max | variable |
|---|---|---|
| -1 | 1 | pelvis_tilt_angle_ipsi_rad |
`
	table := rules.Parse([]byte(src))
	got, ok := table.Rules("run")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "pelvis_tilt_angle_ipsi_rad", got[0].Variable)
	assert.Equal(t, -1.0, got[0].Min)
	assert.Equal(t, 1.0, got[0].Max)
	assert.Equal(t, rules.FullCycle, got[0].PhaseRange)
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.md")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	table, err := rules.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())

	_, err = rules.ParseFile(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
}

func TestParsePhaseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want rules.PhaseRange
		ok   bool
	}{
		{in: "0-100", want: rules.FullCycle, ok: true},
		{in: "10 - 30", want: rules.PhaseRange{Start: 10, End: 30}, ok: true},
		{in: "40%-60%", want: rules.PhaseRange{Start: 40, End: 60}, ok: true},
		{in: "62.5–75", want: rules.PhaseRange{Start: 62.5, End: 75}, ok: true},
		{in: "", want: rules.FullCycle},
		{in: "swing", want: rules.FullCycle},
		{in: "80-20", want: rules.FullCycle},
		{in: "-5", want: rules.FullCycle},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := rules.ParsePhaseRange(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestParseTolerance(t *testing.T) {
	t.Parallel()

	v, typ := rules.ParseTolerance("10%")
	assert.InDelta(t, 0.1, v, 1e-12)
	assert.Equal(t, rules.ToleranceRelative, typ)

	v, typ = rules.ParseTolerance("0.25")
	assert.Equal(t, 0.25, v)
	assert.Equal(t, rules.ToleranceAbsolute, typ)

	for _, in := range []string{"", "n/a", "x%"} {
		v, typ = rules.ParseTolerance(in)
		assert.Equal(t, rules.DefaultTolerance, v, in)
		assert.Equal(t, rules.ToleranceAbsolute, typ, in)
	}
}

func TestParsePattern(t *testing.T) {
	t.Parallel()

	p, ok := rules.ParsePattern("valley_at_62.5")
	require.True(t, ok)
	assert.Equal(t, rules.Pattern{Kind: rules.PatternValleyAt, At: 62.5}, p)
	assert.Equal(t, "valley_at_62.5", p.String())

	p, ok = rules.ParsePattern("U_shaped")
	require.True(t, ok)
	assert.Equal(t, rules.PatternUShaped, p.Kind)

	_, ok = rules.ParsePattern("peak_at_mid")
	assert.False(t, ok)
	_, ok = rules.ParsePattern("sometimes")
	assert.False(t, ok)
}

func TestRuleBounds(t *testing.T) {
	t.Parallel()

	r := rules.Rule{Min: 0, Max: 1, PhaseRange: rules.PhaseRange{Start: 10, End: 20}}
	assert.True(t, r.InRange(0))
	assert.True(t, r.InRange(1))
	assert.False(t, r.InRange(1.0000001))
	assert.True(t, r.PhaseRange.Contains(10))
	assert.True(t, r.PhaseRange.Contains(20))
	assert.False(t, r.PhaseRange.Contains(20.5))
}

func TestNewTableCopies(t *testing.T) {
	t.Parallel()

	src := []rules.Rule{{Variable: "a", Min: 0, Max: 1}}
	table := rules.NewTable(map[string][]rules.Rule{"walk": src})
	src[0].Variable = "b"

	got, ok := table.Rules("walk")
	require.True(t, ok)
	assert.Equal(t, "a", got[0].Variable)
	assert.True(t, table.Has("walk"))
}

func TestTableRulesReturnsCopy(t *testing.T) {
	t.Parallel()

	src := []rules.Rule{{Variable: "a", Min: 0, Max: 1, Patterns: []rules.Pattern{{Kind: rules.PatternIncreasing}}}}
	table := rules.NewTable(map[string][]rules.Rule{"walk": src})

	got, ok := table.Rules("walk")
	require.True(t, ok)
	got[0].Variable = "b"
	got[0].Patterns[0].Kind = rules.PatternDecreasing

	again, ok := table.Rules("walk")
	require.True(t, ok)
	assert.Equal(t, "a", again[0].Variable)
	assert.Equal(t, rules.PatternIncreasing, again[0].Patterns[0].Kind)

	_, ok = table.Rules("run")
	assert.False(t, ok)
}
