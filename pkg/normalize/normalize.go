// Package normalize turns time-indexed trials into a phase-normalized dataset by
// running segmentation and resampling as pipeline stages.
package normalize

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/jmontp/LocoHub-sub005/pkg/dataset"
	"github.com/jmontp/LocoHub-sub005/pkg/gait"
	"github.com/jmontp/LocoHub-sub005/pkg/pipeline"
	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/model"
)

// Stage names, also used as pipeline step names.
const (
	StageTrials   = "trials"
	StageSegment  = "segment"
	StageResample = "resample"
	StageCollect  = "collect"
)

// Stats summarises a run.
type Stats struct {
	Trials int
	// Empty counts trials that produced no cycle.
	Empty    int
	Cycles   int
	Rejected int
}

// Observer is told about each segmented trial.
type Observer interface {
	ObserveSegmentation(trial *gait.Trial, seg gait.Segmentation)
}

type job struct {
	trial *gait.Trial
	cycle gait.GaitCycle
}

// Normalizer runs trials through segmentation and resampling.
type Normalizer struct {
	threshold   float64
	concurrency int
	resample    []gait.ResampleOption
	pipeOpts    []model.PipelineOption
	observer    Observer
	logger      *zap.Logger
}

type Option func(*Normalizer)

// WithStanceThreshold sets the contact force above which a sample is in stance.
func WithStanceThreshold(threshold float64) Option {
	return func(n *Normalizer) {
		n.threshold = threshold
	}
}

// WithConcurrency sets the number of resampling workers.
func WithConcurrency(concurrency int) Option {
	return func(n *Normalizer) {
		n.concurrency = concurrency
	}
}

func WithResampleOptions(opts ...gait.ResampleOption) Option {
	return func(n *Normalizer) {
		n.resample = append(n.resample, opts...)
	}
}

// WithPipelineOptions adds pipeline options such as a measure or a drawer.
func WithPipelineOptions(opts ...model.PipelineOption) Option {
	return func(n *Normalizer) {
		n.pipeOpts = append(n.pipeOpts, opts...)
	}
}

func WithObserver(o Observer) Option {
	return func(n *Normalizer) {
		n.observer = o
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		threshold:   gait.DefaultStanceThreshold,
		concurrency: runtime.NumCPU(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Run segments and resamples trials. The cycles of the returned dataset are ordered
// by subject, task and cycle index and carry contiguous step ids.
func (n *Normalizer) Run(ctx context.Context, trials []*gait.Trial) (*dataset.Dataset, Stats, error) {
	var stats Stats

	pipe, err := pipeline.New(ctx, n.pipeOpts...)
	if err != nil {
		return nil, stats, errors.Wrap(err, "unable to create pipeline")
	}

	root, err := pipeline.AddRootStep(pipe, StageTrials, func(ctx context.Context, out chan<- *gait.Trial) error {
		for _, trial := range trials {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- trial:
			}
		}

		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	jobs, err := pipeline.AddStepOneToMany(pipe, StageSegment, root, func(_ context.Context, trial *gait.Trial) ([]job, error) {
		seg, err := gait.SegmentTrial(trial, n.threshold)
		if err != nil {
			return nil, errors.Wrapf(err, "segment %s/%s", trial.Subject, trial.Task)
		}

		stats.Trials++
		stats.Cycles += len(seg.Cycles)
		stats.Rejected += seg.Rejected
		if len(seg.Cycles) == 0 {
			stats.Empty++
		}
		if n.observer != nil {
			n.observer.ObserveSegmentation(trial, seg)
		}
		n.logger.Debug("trial segmented",
			zap.String("subject", trial.Subject),
			zap.String("task", trial.Task),
			zap.Int("cycles", len(seg.Cycles)),
			zap.Int("rejected", seg.Rejected),
		)

		out := make([]job, len(seg.Cycles))
		for i, c := range seg.Cycles {
			out[i] = job{trial: trial, cycle: c}
		}

		return out, nil
	})
	if err != nil {
		return nil, stats, err
	}

	cycles, err := pipeline.AddStepOneToOne(pipe, StageResample, jobs, func(_ context.Context, j job) (*gait.PhaseCycle, error) {
		pc, err := gait.Resample(j.cycle, j.trial, n.resample...)
		if err != nil {
			return nil, errors.Wrapf(err, "resample %s/%s cycle %d", j.cycle.Subject, j.cycle.Task, j.cycle.CycleIndex)
		}

		return pc, nil
	}, pipeline.StepConcurrency[*gait.PhaseCycle](n.concurrency))
	if err != nil {
		return nil, stats, err
	}

	var collected []*gait.PhaseCycle
	err = pipeline.AddSink(pipe, StageCollect, cycles, func(_ context.Context, pc *gait.PhaseCycle) error {
		collected = append(collected, pc)

		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	if err := pipe.Run(); err != nil {
		return nil, stats, err
	}

	n.logger.Info("normalization finished",
		zap.Int("trials", stats.Trials),
		zap.Int("cycles", stats.Cycles),
		zap.Int("rejected", stats.Rejected),
		zap.Int("empty_trials", stats.Empty),
	)

	return dataset.New(collected), stats, nil
}
