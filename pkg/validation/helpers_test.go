package validation_test

import (
	"github.com/jmontp/LocoHub-sub005/pkg/dataset"
	"github.com/jmontp/LocoHub-sub005/pkg/gait"
)

type shape func(phase float64) float64

func constant(v float64) shape {
	return func(float64) float64 { return v }
}

func newCycle(subject, task string, index int, channels map[string]shape) *gait.PhaseCycle {
	grid := gait.PhaseGrid()
	c := &gait.PhaseCycle{
		Subject:    subject,
		Task:       task,
		CycleIndex: index,
		Step:       -1,
		Duration:   1,
		Phase:      grid,
		Channels:   make(map[string][]float64, len(channels)),
	}
	for name, f := range channels {
		values := make([]float64, len(grid))
		for i, p := range grid {
			values[i] = f(p)
		}
		c.Channels[name] = values
	}

	return c
}

func single(task string, channels map[string]shape) *dataset.Dataset {
	return dataset.New([]*gait.PhaseCycle{newCycle("s01", task, 0, channels)})
}
