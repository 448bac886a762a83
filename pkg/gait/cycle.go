package gait

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/jmontp/LocoHub-sub005/pkg/errs"
)

const (
	// PhasePoints is the fixed length of every resampled cycle.
	PhasePoints = 150
	// ContralateralShift is half a cycle on the phase grid.
	ContralateralShift = PhasePoints / 2

	MinCycleDuration = 0.5
	MaxCycleDuration = 2.5

	// DefaultStanceThreshold is the contact force, in newtons, above which the foot is
	// considered in stance.
	DefaultStanceThreshold = 50.0
)

// Trial is one time-indexed recording.
type Trial struct {
	Subject string
	Task    string
	Time    []float64
	// Force names the contact-force channel used for segmentation.
	Force    string
	Channels map[string][]float64
}

// ForceChannel returns the samples of the contact-force channel.
func (t *Trial) ForceChannel() ([]float64, error) {
	force, ok := t.Channels[t.Force]
	if !ok {
		return nil, errs.Structural("trial %s/%s has no force channel %q", t.Subject, t.Task, t.Force)
	}

	return force, nil
}

// GaitCycle is one detected cycle, heel strike to heel strike.
type GaitCycle struct {
	Subject    string
	Task       string
	CycleIndex int
	StartTime  float64
	EndTime    float64
}

// Duration of the cycle in seconds.
func (c GaitCycle) Duration() float64 {
	return c.EndTime - c.StartTime
}

// PhaseCycle is a cycle resampled onto the phase grid. It is never mutated once built.
type PhaseCycle struct {
	Subject    string
	Task       string
	CycleIndex int
	// Step is the dataset-wide step id, -1 until the cycle joins a dataset.
	Step     int
	Duration float64
	Phase    []float64
	Channels map[string][]float64
}

// Channel returns the samples of one channel.
func (c *PhaseCycle) Channel(name string) ([]float64, bool) {
	values, ok := c.Channels[name]

	return values, ok
}

// Names returns the channel names in lexical order.
func (c *PhaseCycle) Names() []string {
	names := make([]string, 0, len(c.Channels))
	for name := range c.Channels {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// WithStep returns a shallow copy carrying a step id. Sample slices are shared.
func (c *PhaseCycle) WithStep(step int) *PhaseCycle {
	cp := *c
	cp.Step = step

	return &cp
}

// CheckShape verifies the phase grid invariants: exactly PhasePoints samples per
// channel and a strictly increasing phase.
func (c *PhaseCycle) CheckShape() error {
	if len(c.Phase) != PhasePoints {
		return errs.Structural("cycle %s/%s/%d has %d phase samples, want %d",
			c.Subject, c.Task, c.CycleIndex, len(c.Phase), PhasePoints)
	}
	for i := 1; i < len(c.Phase); i++ {
		if !(c.Phase[i] > c.Phase[i-1]) {
			return errs.Structural("cycle %s/%s/%d phase is not strictly increasing at sample %d",
				c.Subject, c.Task, c.CycleIndex, i)
		}
	}
	for name, values := range c.Channels {
		if len(values) != PhasePoints {
			return errs.Structural("cycle %s/%s/%d channel %s has %d samples, want %d",
				c.Subject, c.Task, c.CycleIndex, name, len(values), PhasePoints)
		}
	}

	return nil
}

// PhaseGrid returns PhasePoints equally spaced values over [0,100].
func PhaseGrid() []float64 {
	grid := floats.Span(make([]float64, PhasePoints), 0, 100)
	grid[PhasePoints-1] = 100

	return grid
}
