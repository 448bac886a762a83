package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/model"
)

// Pipeline is a pipeline of steps.
type Pipeline struct {
	ctx       context.Context
	cancel    context.CancelFunc
	stages    *stageErrors
	opts      []model.PipelineOption
	startTime time.Time
}

// New creates a new pipeline. Steps start as soon as they are added and stop when ctx
// is cancelled.
func New(ctx context.Context, opts ...model.PipelineOption) (*Pipeline, error) {
	dCtx, cancel := context.WithCancel(ctx)
	pipe := &Pipeline{
		ctx:       dCtx,
		cancel:    cancel,
		stages:    &stageErrors{},
		startTime: time.Now(),
		opts:      opts,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			cancel()

			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// waitForPipeline drains every stage until all have closed. The first error cancels
// the pipeline and is returned.
func waitForPipeline(cancel context.CancelFunc, stages ...stageErr) error {
	var first error
	for err := range mergeErrors(stages...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}

	return first
}

// Run waits for the pipeline to finish.
func (p *Pipeline) Run() error {
	defer p.cancel()

	err := waitForPipeline(p.cancel, p.stages.snapshot()...)
	if err != nil {
		return err
	}

	return p.finishRun()
}

func (p *Pipeline) finishRun() error {
	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

func (p *Pipeline) prepareStep(parent, step *model.StepInfo) error {
	for _, opt := range p.opts {
		err := opt.PrepareStep(parent, step)
		if err != nil {
			return errors.Wrapf(err, "unable to prepare step %s", step.Name)
		}
	}

	return nil
}

func (p *Pipeline) onStepOutput(parent, step *model.StepInfo, iteration, computation time.Duration) error {
	for _, opt := range p.opts {
		err := opt.OnStepOutput(parent, step, iteration, computation)
		if err != nil {
			return errors.Wrapf(err, "step %s output hook", step.Name)
		}
	}

	return nil
}
