package validation

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jmontp/LocoHub-sub005/pkg/dataset"
	"github.com/jmontp/LocoHub-sub005/pkg/errs"
	"github.com/jmontp/LocoHub-sub005/pkg/rules"
)

// Observer receives validation results as they are produced.
type Observer interface {
	ObserveTier1(res *Tier1Result)
	ObserveTier2(res *Tier2Result)
}

// Engine runs both tiers over a dataset and assembles a Report.
type Engine struct {
	table       *rules.Table
	ranges      *RangeValidator
	patterns    *PatternValidator
	concurrency int
	maxFailures int
	strictTasks bool
	observer    Observer
	logger      *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRangeValidator replaces the Tier 1 validator.
func WithRangeValidator(v *RangeValidator) EngineOption {
	return func(e *Engine) {
		e.ranges = v
	}
}

// WithPatternOptions configures the Tier 2 validator built by the engine.
func WithPatternOptions(opts ...PatternOption) EngineOption {
	return func(e *Engine) {
		e.patterns = NewPatternValidator(e.table, opts...)
	}
}

// WithConcurrency bounds the number of tasks validated at once.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithMaxFailures caps the failures listed in the report summary.
func WithMaxFailures(n int) EngineOption {
	return func(e *Engine) {
		e.maxFailures = n
	}
}

// WithStrictTasks makes a dataset task without rules a configuration error instead of
// a skipped task.
func WithStrictTasks(strict bool) EngineOption {
	return func(e *Engine) {
		e.strictTasks = strict
	}
}

func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		e.observer = o
	}
}

func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an engine over a parsed rule table.
func NewEngine(table *rules.Table, opts ...EngineOption) *Engine {
	e := &Engine{
		table:       table,
		ranges:      NewRangeValidator(),
		concurrency: runtime.NumCPU(),
		maxFailures: DefaultMaxFailures,
		logger:      zap.NewNop(),
	}
	e.patterns = NewPatternValidator(table)
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run validates ds. Tasks absent from the rule table are skipped and listed in the
// report, or abort the run under WithStrictTasks. Any structural or configuration
// error aborts the run.
func (e *Engine) Run(ctx context.Context, ds *dataset.Dataset) (*Report, error) {
	t1, err := e.ranges.Validate(ds)
	if err != nil {
		return nil, errors.Wrap(err, "tier 1")
	}
	if e.observer != nil {
		e.observer.ObserveTier1(t1)
	}

	var tasks, skipped []string
	for _, task := range ds.Tasks() {
		if !e.table.Has(task) {
			if e.strictTasks {
				return nil, errs.Configuration("no validation rules for task %s", task)
			}
			e.logger.Warn("no validation rules for task, skipping", zap.String("task", task))
			skipped = append(skipped, task)

			continue
		}
		tasks = append(tasks, task)
	}

	t2 := make([]*Tier2Result, len(tasks))
	errGrp, gCtx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		errGrp.SetLimit(e.concurrency)
	}
	for i, task := range tasks {
		errGrp.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			res, err := e.patterns.Validate(ds, task)
			if err != nil {
				return errors.Wrapf(err, "tier 2 task %s", task)
			}
			t2[i] = res

			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		return nil, err
	}

	if e.observer != nil {
		for _, res := range t2 {
			e.observer.ObserveTier2(res)
		}
	}

	report := buildReport(ds, t1, t2, e.maxFailures)
	report.RunID = uuid.NewString()
	report.SkippedTasks = skipped

	e.logger.Info("validation finished",
		zap.String("run_id", report.RunID),
		zap.Int("steps", report.Steps),
		zap.Int("failures", len(report.Failures)),
		zap.Float64("pass_rate", report.PassRate),
		zap.Bool("passed", report.Passed),
	)

	return report, nil
}
