package validation

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/jmontp/LocoHub-sub005/pkg/dataset"
	"github.com/jmontp/LocoHub-sub005/pkg/schema"
)

// DefaultViolationThreshold is the share of out-of-range samples at which a column fails.
const DefaultViolationThreshold = 0.05

// ColumnResult is the Tier 1 outcome of one column.
type ColumnResult struct {
	Column      string  `yaml:"column"`
	Base        string  `yaml:"base"`
	Unit        string  `yaml:"unit"`
	ExpectedMin float64 `yaml:"expected_min"`
	ExpectedMax float64 `yaml:"expected_max"`
	ObservedMin float64 `yaml:"observed_min"`
	ObservedMax float64 `yaml:"observed_max"`
	Samples     int     `yaml:"samples"`
	Violations  int     `yaml:"violations"`
	Rate        float64 `yaml:"rate"`
	Passed      bool    `yaml:"passed"`
	Skipped     bool    `yaml:"skipped,omitempty"`
	Reason      string  `yaml:"reason,omitempty"`
}

// Tier1Result is the outcome of a RangeValidator run. Failures holds the worst sample of
// each step, for failing columns only.
type Tier1Result struct {
	Columns  []ColumnResult `yaml:"columns"`
	Failures []Failure      `yaml:"failures"`
	Passed   bool           `yaml:"passed"`
}

// RangeValidator checks columns against generic ranges.
type RangeValidator struct {
	ranges    RangeTable
	threshold float64
	logger    *zap.Logger
}

// RangeOption configures a RangeValidator.
type RangeOption func(*RangeValidator)

// WithRanges replaces the default range table.
func WithRanges(ranges RangeTable) RangeOption {
	return func(v *RangeValidator) {
		v.ranges = ranges
	}
}

// WithViolationThreshold sets the failing share of out-of-range samples.
func WithViolationThreshold(threshold float64) RangeOption {
	return func(v *RangeValidator) {
		v.threshold = threshold
	}
}

// WithRangeLogger sets the logger.
func WithRangeLogger(logger *zap.Logger) RangeOption {
	return func(v *RangeValidator) {
		v.logger = logger
	}
}

func NewRangeValidator(opts ...RangeOption) *RangeValidator {
	v := &RangeValidator{
		ranges:    DefaultRanges(),
		threshold: DefaultViolationThreshold,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate checks every column of ds. Columns without a known range, or whose unit
// cannot be converted into the range unit, are reported as skipped.
func (v *RangeValidator) Validate(ds *dataset.Dataset) (*Tier1Result, error) {
	if err := ds.Check(); err != nil {
		return nil, err
	}

	res := &Tier1Result{Passed: true}
	for _, column := range ds.Columns() {
		cr, failures := v.column(ds, column)
		res.Columns = append(res.Columns, cr)
		res.Failures = append(res.Failures, failures...)
		if !cr.Passed {
			res.Passed = false
		}
	}

	return res, nil
}

func (v *RangeValidator) column(ds *dataset.Dataset, column string) (ColumnResult, []Failure) {
	variable := schema.ParseVariable(column)
	cr := ColumnResult{
		Column:      column,
		Base:        variable.Base,
		Unit:        variable.Unit,
		ObservedMin: math.NaN(),
		ObservedMax: math.NaN(),
		Passed:      true,
	}

	r, ok := v.ranges[variable.Base]
	if !ok {
		cr.Skipped, cr.Reason = true, "no range for "+variable.Base

		return cr, nil
	}
	cr.ExpectedMin, cr.ExpectedMax = r.Min, r.Max

	scale, ok := unitScale(variable.Unit, r.Unit)
	if !ok {
		cr.Skipped, cr.Reason = true, fmt.Sprintf("unit %s not convertible to %s", variable.Unit, r.Unit)
		v.logger.Debug("tier1 column skipped", zap.String("column", column), zap.String("reason", cr.Reason))

		return cr, nil
	}

	var failures []Failure
	for _, c := range ds.Cycles() {
		values, ok := c.Channel(column)
		if !ok {
			continue
		}

		worst, worstDist := -1, 0.0
		for i, raw := range values {
			if math.IsNaN(raw) {
				continue
			}
			x := raw * scale
			cr.Samples++
			if math.IsNaN(cr.ObservedMin) || x < cr.ObservedMin {
				cr.ObservedMin = x
			}
			if math.IsNaN(cr.ObservedMax) || x > cr.ObservedMax {
				cr.ObservedMax = x
			}

			dist := outside(x, r.Min, r.Max)
			if dist == 0 {
				continue
			}
			cr.Violations++
			if dist > worstDist {
				worst, worstDist = i, dist
			}
		}

		if worst >= 0 {
			x := values[worst] * scale
			failures = append(failures, Failure{
				Subject:     c.Subject,
				Task:        c.Task,
				Step:        c.Step,
				Variable:    column,
				Phase:       c.Phase[worst],
				Value:       x,
				ExpectedMin: r.Min,
				ExpectedMax: r.Max,
				Reason:      fmt.Sprintf("%g %s outside [%g, %g]", x, r.Unit, r.Min, r.Max),
				Type:        TypeTier1Range,
			})
		}
	}

	if cr.Samples > 0 {
		cr.Rate = float64(cr.Violations) / float64(cr.Samples)
	}
	cr.Passed = cr.Rate < v.threshold
	if cr.Passed {
		// stray samples in a passing column do not fail their steps
		return cr, nil
	}
	v.logger.Info("tier1 column failed",
		zap.String("column", column),
		zap.Int("violations", cr.Violations),
		zap.Int("samples", cr.Samples),
		zap.Float64("rate", cr.Rate),
	)

	return cr, failures
}

// outside returns how far x lies outside [lo,hi], 0 when inside. Bounds are inclusive.
func outside(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return lo - x
	case x > hi:
		return x - hi
	default:
		return 0
	}
}
