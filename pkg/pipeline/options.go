package pipeline

import "github.com/jmontp/LocoHub-sub005/pkg/pipeline/model"

type StepOption[O any] func(s *model.Step[O])

// StepConcurrency sets the number of workers of a step.
func StepConcurrency[O any](concurrent int) StepOption[O] {
	return func(s *model.Step[O]) {
		s.Details.Concurrent = concurrent
	}
}

// StepBufferSize sets the capacity of the output channel of a step.
func StepBufferSize[O any](size int) StepOption[O] {
	return func(s *model.Step[O]) {
		s.Details.BufferSize = size
	}
}
