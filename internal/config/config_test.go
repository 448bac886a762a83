package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmontp/LocoHub-sub005/internal/config"
	"github.com/jmontp/LocoHub-sub005/pkg/errs"
	"github.com/jmontp/LocoHub-sub005/pkg/gait"
	"github.com/jmontp/LocoHub-sub005/pkg/validation"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, gait.DefaultStanceThreshold, cfg.Normalize.StanceThreshold, 0)
	assert.Equal(t, runtime.NumCPU(), cfg.Normalize.Concurrency)
	assert.InDelta(t, validation.DefaultViolationThreshold, cfg.Validation.ViolationThreshold, 0)
	assert.Equal(t, validation.DefaultMaxFailures, cfg.Validation.MaxFailures)
	assert.Equal(t, validation.DefaultCheckpoints(), cfg.Validation.Checkpoints)
}

func TestLoadBytes(t *testing.T) {
	t.Parallel()

	content := []byte(`
log:
  level: debug
  format: json
normalize:
  stance_threshold: 20
  knee_extension_positive: true
validation:
  max_failures: 5
  strict_tasks: true
  checkpoints: [10, 90]
  task_checkpoints:
    run: [50]
`)

	cfg, err := config.LoadBytes(content)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, 20.0, cfg.Normalize.StanceThreshold, 0)
	assert.True(t, cfg.Normalize.KneeExtensionPositive)
	assert.Equal(t, 5, cfg.Validation.MaxFailures)
	assert.True(t, cfg.Validation.StrictTasks)
	assert.Equal(t, []float64{10, 90}, cfg.Validation.Checkpoints)
	assert.Equal(t, map[string][]float64{"run": {50}}, cfg.Validation.TaskCheckpoints)
	// untouched fields keep their defaults
	assert.InDelta(t, validation.DefaultViolationThreshold, cfg.Validation.ViolationThreshold, 0)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LOCOHUB_LOG_LEVEL", "warn")
	t.Setenv("LOCOHUB_VALIDATION_MAX_FAILURES", "7")
	t.Setenv("LOCOHUB_NORMALIZE_STANCE_THRESHOLD", "35.5")

	cfg, err := config.LoadBytes([]byte("log:\n  level: debug\nvalidation:\n  max_failures: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 7, cfg.Validation.MaxFailures)
	assert.InDelta(t, 35.5, cfg.Normalize.StanceThreshold, 0)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "locohub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("validation:\n  violation_threshold: 0.1\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, cfg.Validation.ViolationThreshold, 1e-12)

	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Validation, cfg.Validation)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.False(t, errs.IsFatal(err))
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"level", "log:\n  level: loud\n", "log.level"},
		{"format", "log:\n  format: xml\n", "log.format"},
		{"threshold", "validation:\n  violation_threshold: 1.5\n", "violation_threshold"},
		{"checkpoint", "validation:\n  checkpoints: [0, 120]\n", "checkpoint 120"},
		{"task checkpoint", "validation:\n  task_checkpoints:\n    run: [-1]\n", "task_checkpoints.run"},
		{"concurrency", "normalize:\n  concurrency: -2\n", "normalize.concurrency"},
		{"yaml", "log: [\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadBytes([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
