package validation

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jmontp/LocoHub-sub005/pkg/dataset"
	"github.com/jmontp/LocoHub-sub005/pkg/errs"
	"github.com/jmontp/LocoHub-sub005/pkg/gait"
	"github.com/jmontp/LocoHub-sub005/pkg/rules"
	"github.com/jmontp/LocoHub-sub005/pkg/schema"
)

// CheckpointWindow is the half-width, in phase percent, searched around a checkpoint.
const CheckpointWindow = 2.5

// DefaultCheckpoints returns the phase checkpoints used when a task has none configured.
func DefaultCheckpoints() []float64 {
	return []float64{0, 25, 50, 75}
}

// Unchecked records a pattern that was accepted without evaluation.
type Unchecked struct {
	Task     string `yaml:"task"`
	Variable string `yaml:"variable"`
	Pattern  string `yaml:"pattern"`
	Reason   string `yaml:"reason"`
}

// Tier2Result is the outcome of a PatternValidator run on one task.
type Tier2Result struct {
	Task         string      `yaml:"task"`
	Failures     []Failure   `yaml:"failures"`
	Unchecked    []Unchecked `yaml:"unchecked,omitempty"`
	StepsChecked int         `yaml:"steps_checked"`
	StepsFailed  int         `yaml:"steps_failed"`
	Passed       bool        `yaml:"passed"`
}

// PatternValidator applies a rule table. The table is shared and never modified.
type PatternValidator struct {
	table       *rules.Table
	checkpoints map[string][]float64
	defaults    []float64
	logger      *zap.Logger
}

// PatternOption configures a PatternValidator.
type PatternOption func(*PatternValidator)

// WithCheckpoints sets the checkpoints of one task.
func WithCheckpoints(task string, checkpoints []float64) PatternOption {
	return func(v *PatternValidator) {
		v.checkpoints[task] = append([]float64(nil), checkpoints...)
	}
}

// WithDefaultCheckpoints sets the checkpoints of tasks without their own.
func WithDefaultCheckpoints(checkpoints []float64) PatternOption {
	return func(v *PatternValidator) {
		v.defaults = append([]float64(nil), checkpoints...)
	}
}

// WithPatternLogger sets the logger.
func WithPatternLogger(logger *zap.Logger) PatternOption {
	return func(v *PatternValidator) {
		v.logger = logger
	}
}

func NewPatternValidator(table *rules.Table, opts ...PatternOption) *PatternValidator {
	v := &PatternValidator{
		table:       table,
		checkpoints: map[string][]float64{},
		defaults:    DefaultCheckpoints(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Checkpoints returns the checkpoints used for task.
func (v *PatternValidator) Checkpoints(task string) []float64 {
	if cps, ok := v.checkpoints[task]; ok {
		return cps
	}

	return v.defaults
}

// Validate checks the cycles of one task. It fails with a structural error when a
// cycle is off the phase grid, and with a configuration error when the task has no
// rules or a rule names a variable the task's cycles lack.
func (v *PatternValidator) Validate(ds *dataset.Dataset, task string) (*Tier2Result, error) {
	cycles := ds.ByTask(task)
	for _, c := range cycles {
		if err := c.CheckShape(); err != nil {
			return nil, err
		}
	}

	taskRules, ok := v.table.Rules(task)
	if !ok {
		return nil, errs.Configuration("no validation rules for task %q", task)
	}

	res := &Tier2Result{Task: task, StepsChecked: len(cycles)}
	if len(cycles) == 0 {
		res.Passed = true

		return res, nil
	}

	columns := make([]string, len(taskRules))
	for i, rule := range taskRules {
		column, ok := resolveColumn(cycles, rule.Variable)
		if !ok {
			return nil, errs.Configuration("task %q: rule variable %q not present in data", task, rule.Variable)
		}
		columns[i] = column
	}

	checkpoints := v.Checkpoints(task)
	for i, rule := range taskRules {
		scale := ruleScale(columns[i], rule)
		for _, cp := range checkpoints {
			if !rule.PhaseRange.Contains(cp) {
				continue
			}
			for _, c := range cycles {
				if f, failed := checkpoint(c, columns[i], rule, cp, scale); failed {
					res.Failures = append(res.Failures, f)
				}
			}
		}

		for _, p := range rule.Patterns {
			if p.Kind == rules.PatternBilateral {
				res.Unchecked = append(res.Unchecked, Unchecked{
					Task:     task,
					Variable: rule.Variable,
					Pattern:  p.String(),
					Reason:   "bilateral symmetry is not evaluated",
				})

				continue
			}
			for _, c := range cycles {
				raw, ok := c.Channel(columns[i])
				if !ok {
					continue
				}
				out := checkPattern(p, rule, cycleSeries(c.Phase, scaled(raw, scale)))
				if out.ok {
					continue
				}
				res.Failures = append(res.Failures, Failure{
					Subject:     c.Subject,
					Task:        task,
					Step:        c.Step,
					Variable:    rule.Variable,
					Phase:       out.phase,
					Value:       out.value,
					ExpectedMin: rule.Min,
					ExpectedMax: rule.Max,
					Reason:      fmt.Sprintf("%s: %s", p, out.reason),
					Type:        TypePattern,
				})
			}
		}
	}

	SortFailures(res.Failures)
	res.StepsFailed = len(FailedSteps(res.Failures))
	res.Passed = len(res.Failures) == 0

	v.logger.Debug("tier2 task validated",
		zap.String("task", task),
		zap.Int("steps", res.StepsChecked),
		zap.Int("failed_steps", res.StepsFailed),
		zap.Int("failures", len(res.Failures)),
	)

	return res, nil
}

func checkpoint(c *gait.PhaseCycle, column string, rule rules.Rule, cp, scale float64) (Failure, bool) {
	values, ok := c.Channel(column)
	if !ok {
		return Failure{}, false
	}

	best, bestDist := -1, math.Inf(1)
	for i, p := range c.Phase {
		d := math.Abs(p - cp)
		if d <= CheckpointWindow && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Failure{}, false
	}

	x := values[best] * scale
	f := Failure{
		Subject:     c.Subject,
		Task:        c.Task,
		Step:        c.Step,
		Variable:    rule.Variable,
		Phase:       c.Phase[best],
		Value:       x,
		ExpectedMin: rule.Min,
		ExpectedMax: rule.Max,
		Type:        TypeCheckpointRange,
	}
	switch {
	case math.IsNaN(x):
		f.Reason = fmt.Sprintf("missing value at %g%%", cp)
	case !rule.InRange(x):
		f.Reason = fmt.Sprintf("%g outside [%g, %g] at %g%%", x, rule.Min, rule.Max, cp)
	default:
		return Failure{}, false
	}

	return f, true
}

// resolveColumn maps a rule variable onto a channel name, matching either the full
// column name or its unit-less canonical form.
func resolveColumn(cycles []*gait.PhaseCycle, variable string) (string, bool) {
	for _, c := range cycles {
		if _, ok := c.Channels[variable]; ok {
			return variable, true
		}
	}
	for _, c := range cycles {
		for _, name := range c.Names() {
			if schema.CanonicalName(name) == variable {
				return name, true
			}
		}
	}

	return "", false
}

// ruleScale converts column values into the rule's units where both are known.
func ruleScale(column string, rule rules.Rule) float64 {
	scale, ok := unitScale(schema.ParseVariable(column).Unit, rule.Units)
	if !ok {
		return 1
	}

	return scale
}

func scaled(values []float64, scale float64) []float64 {
	if scale == 1 {
		return values
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v * scale
	}

	return out
}
