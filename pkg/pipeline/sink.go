package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/model"
)

// AddSink consumes the output of a step. The sink stops at its first error.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	if pipe == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}

	details := &model.StepInfo{
		Type:       model.SinkStepType,
		Name:       name,
		Concurrent: 1,
	}
	for _, opt := range pipe.opts {
		err := opt.PrepareSink(input.Info(), details)
		if err != nil {
			return errors.Wrap(err, "unable to prepare sink")
		}
	}

	errC := make(chan error, 1)
	go func() {
		defer close(errC)

		err := consume(pipe, input, details, sinkFn)
		if err == nil {
			err = afterSink(pipe, details)
		}
		if err != nil {
			errC <- err
		}
	}()
	pipe.stages.watch(name, errC)

	return nil
}

func consume[I any](pipe *Pipeline, input *model.Step[I], details *model.StepInfo, sinkFn func(context.Context, I) error) error {
	for {
		startInputChan := time.Now()
		select {
		case <-pipe.ctx.Done():
			return pipe.ctx.Err()
		case in, ok := <-input.Output:
			if !ok {
				return nil
			}

			startFn := time.Now()
			err := sinkFn(pipe.ctx, in)
			if err != nil {
				return err
			}
			endFn := time.Since(startFn)

			for _, opt := range pipe.opts {
				err := opt.OnSinkOutput(input.Info(), details, time.Since(startInputChan), endFn)
				if err != nil {
					return errors.Wrap(err, "sink output hook")
				}
			}
		}
	}
}

func afterSink(pipe *Pipeline, details *model.StepInfo) error {
	total := time.Since(pipe.startTime)
	for _, opt := range pipe.opts {
		err := opt.AfterSink(details, total)
		if err != nil {
			return errors.Wrap(err, "unable to run after sink function")
		}
	}

	return nil
}
