package pipeline

import (
	"context"

	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/model"
)

// AddRootStep adds a step that produces elements from nothing. stepFn must stop
// sending once ctx is done; the output is closed when it returns.
func AddRootStep[O any](p *Pipeline, name string, stepFn func(ctx context.Context, rootChan chan<- O) error,
	opts ...StepOption[O],
) (*model.Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type:       model.RootStepType,
			Name:       name,
			Concurrent: 1,
		},
	}
	for _, opt := range opts {
		opt(step)
	}
	step.Output = make(chan O, step.Details.BufferSize)

	err := p.prepareStep(model.StartStep.Details, step.Details)
	if err != nil {
		return nil, err
	}

	errC := make(chan error, 1)
	go func() {
		defer close(errC)
		defer close(step.Output)

		err := stepFn(p.ctx, step.Output)
		if err != nil {
			errC <- err
		}
	}()
	p.stages.watch(name, errC)

	return step, nil
}
