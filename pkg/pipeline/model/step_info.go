package model

// StepType is the role of a step in the pipeline graph.
type StepType string

const (
	RootStepType   StepType = "root"
	NormalStepType StepType = "step"
	SinkStepType   StepType = "sink"
	FrontierType   StepType = "frontier"
)

// StepInfo describes a step to pipeline options.
type StepInfo struct {
	Type       StepType
	Name       string
	Concurrent int
	BufferSize int
}

var (
	// StartStep is the virtual parent of root steps and of external inputs.
	StartStep = &Step[any]{Details: &StepInfo{Type: FrontierType, Name: "start"}}
	// EndStep is the virtual child of every sink.
	EndStep = &Step[any]{Details: &StepInfo{Type: FrontierType, Name: "end"}}
)

// Step is a handle on the output of a step. A Step built outside the pipeline, with
// only Output set, can be used as the input of the first step.
type Step[O any] struct {
	Output  chan O
	Details *StepInfo
}

// Info returns the step details, or StartStep's for a step built outside the pipeline.
func (s *Step[O]) Info() *StepInfo {
	if s.Details == nil {
		return StartStep.Details
	}

	return s.Details
}
