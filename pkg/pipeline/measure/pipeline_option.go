package measure

import (
	"time"

	"github.com/pkg/errors"

	"github.com/jmontp/LocoHub-sub005/pkg/pipeline/model"
)

var ErrUnknownStep = errors.New("unknown step")

type pipelineMeasure struct {
	*Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStep.Details.Name, 1)
	pm.AddMetric(model.EndStep.Details.Name, 1)

	return nil
}

func (pm *pipelineMeasure) PrepareStep(_, step *model.StepInfo) error {
	pm.AddMetric(step.Name, step.Concurrent)

	return nil
}

func (pm *pipelineMeasure) PrepareSink(_, step *model.StepInfo) error {
	pm.AddMetric(step.Name, step.Concurrent)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

func (pm *pipelineMeasure) record(parentStep, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	mt := pm.GetMetric(step.Name)
	if mt == nil {
		return errors.Wrap(ErrUnknownStep, step.Name)
	}
	mt.addDuration(computationDuration)
	mt.addTransportDuration(parentStep.Name, iterationDuration)

	pm.items.WithLabelValues(step.Name).Inc()
	pm.duration.WithLabelValues(step.Name).Observe(computationDuration.Seconds())
	pm.transport.WithLabelValues(step.Name, parentStep.Name).Observe(iterationDuration.Seconds())

	return nil
}

func (pm *pipelineMeasure) OnStepOutput(parentStep, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	return pm.record(parentStep, step, iterationDuration, computationDuration)
}

func (pm *pipelineMeasure) OnSinkOutput(parentStep, step *model.StepInfo, iterationDuration, computationDuration time.Duration) error {
	return pm.record(parentStep, step, iterationDuration, computationDuration)
}

func (pm *pipelineMeasure) AfterSink(step *model.StepInfo, totalDuration time.Duration) error {
	mt := pm.GetMetric(step.Name)
	if mt == nil {
		return errors.Wrap(ErrUnknownStep, step.Name)
	}
	mt.setTotalDuration(totalDuration)
	pm.sinkTotal.WithLabelValues(step.Name).Set(totalDuration.Seconds())

	return nil
}

// PipelineMeasure returns a pipeline option recording into m.
func PipelineMeasure(m *Measure) model.PipelineOption {
	return &pipelineMeasure{m}
}
