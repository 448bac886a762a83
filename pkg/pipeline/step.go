package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/model"
)

func sequentialOneToManyFn[I any, O any](ctx context.Context, p *Pipeline, goIdx int, input *model.Step[I],
	output *model.Step[O], oneToManyFn func(context.Context, I) ([]O, error),
) error {
	for {
		start := time.Now()
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}
			startFn := time.Now()
			outs, err := oneToManyFn(ctx, in)
			if err != nil {
				return errors.Wrapf(err, "go routine %d", goIdx)
			}
			endFn := time.Since(startFn)
			for _, out := range outs {
				// the context is checked again so running workers stop feeding a
				// cancelled pipeline
				select {
				case <-ctx.Done():
					return errors.Wrapf(ctx.Err(), "go routine %d", goIdx)
				case output.Output <- out:
					err := p.onStepOutput(input.Info(), output.Details, time.Since(start), endFn)
					if err != nil {
						return err
					}
				}
			}
		}
	}
}

func oneToMany[I any, O any](ctx context.Context, p *Pipeline, input *model.Step[I], output *model.Step[O],
	oneToManyFn func(context.Context, I) ([]O, error),
) error {
	if output.Details.Concurrent <= 1 {
		return sequentialOneToManyFn(ctx, p, 0, input, output, oneToManyFn)
	}

	errGrp, dCtx := errgroup.WithContext(ctx)
	errGrp.SetLimit(output.Details.Concurrent)
	// every worker stops as soon as one of them fails
	for goIdx := 0; goIdx < output.Details.Concurrent; goIdx++ {
		errGrp.Go(func() error {
			return sequentialOneToManyFn(dCtx, p, goIdx, input, output, oneToManyFn)
		})
	}

	return errGrp.Wait()
}

func prepareStep[I, O any](p *Pipeline, name string, input *model.Step[I], opts ...StepOption[O]) (*model.Step[O], error) {
	if p == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}

	step := &model.Step[O]{
		Details: &model.StepInfo{
			Type:       model.NormalStepType,
			Name:       name,
			Concurrent: 1,
		},
	}
	for _, opt := range opts {
		opt(step)
	}
	step.Output = make(chan O, step.Details.BufferSize)

	err := p.prepareStep(input.Info(), step.Details)
	if err != nil {
		return nil, err
	}

	return step, nil
}

func addStep[I any, O any](p *Pipeline, input *model.Step[I], step *model.Step[O],
	stepToStepFn func(ctx context.Context, input *model.Step[I], output *model.Step[O]) error,
) *model.Step[O] {
	errC := make(chan error, 1)

	go func() {
		defer close(errC)
		defer close(step.Output)

		err := stepToStepFn(p.ctx, input, step)
		if err != nil {
			errC <- err
		}
	}()
	p.stages.watch(step.Details.Name, errC)

	return step
}

// AddStepOneToOne adds a step producing one output per input.
func AddStepOneToOne[I any, O any](p *Pipeline, name string, input *model.Step[I],
	oneToOneFn func(context.Context, I) (O, error), opts ...StepOption[O],
) (*model.Step[O], error) {
	step, err := prepareStep(p, name, input, opts...)
	if err != nil {
		return nil, err
	}

	fn := func(ctx context.Context, in I) ([]O, error) {
		out, err := oneToOneFn(ctx, in)
		if err != nil {
			return nil, err
		}

		return []O{out}, nil
	}

	return addStep(p, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return oneToMany(ctx, p, in, out, fn)
	}), nil
}

// AddStepOneToMany adds a step producing any number of outputs per input, pushed in
// order.
func AddStepOneToMany[I any, O any](p *Pipeline, name string, input *model.Step[I],
	oneToManyFn func(context.Context, I) ([]O, error), opts ...StepOption[O],
) (*model.Step[O], error) {
	step, err := prepareStep(p, name, input, opts...)
	if err != nil {
		return nil, err
	}

	return addStep(p, input, step, func(ctx context.Context, in *model.Step[I], out *model.Step[O]) error {
		return oneToMany(ctx, p, in, out, oneToManyFn)
	}), nil
}
