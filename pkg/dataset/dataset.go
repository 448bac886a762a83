// Package dataset holds phase-normalized cycles and reads and writes them as CSV.
package dataset

import (
	"sort"

	"github.com/jmontp/LocoHub-sub005/pkg/gait"
)

// Dataset is an ordered set of phase cycles. Step i is Cycles()[i].
type Dataset struct {
	cycles []*gait.PhaseCycle
}

// New orders cycles by subject, task and cycle index and assigns contiguous step ids.
// The input cycles are not modified.
func New(cycles []*gait.PhaseCycle) *Dataset {
	sorted := append([]*gait.PhaseCycle(nil), cycles...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Task != b.Task {
			return a.Task < b.Task
		}

		return a.CycleIndex < b.CycleIndex
	})

	ds := &Dataset{cycles: make([]*gait.PhaseCycle, len(sorted))}
	for i, c := range sorted {
		ds.cycles[i] = c.WithStep(i)
	}

	return ds
}

func (d *Dataset) Cycles() []*gait.PhaseCycle {
	return d.cycles
}

func (d *Dataset) Len() int {
	return len(d.cycles)
}

// Tasks returns the distinct task names in lexical order.
func (d *Dataset) Tasks() []string {
	seen := map[string]struct{}{}
	var tasks []string
	for _, c := range d.cycles {
		if _, ok := seen[c.Task]; ok {
			continue
		}
		seen[c.Task] = struct{}{}
		tasks = append(tasks, c.Task)
	}
	sort.Strings(tasks)

	return tasks
}

// ByTask returns the cycles of one task in step order.
func (d *Dataset) ByTask(task string) []*gait.PhaseCycle {
	var out []*gait.PhaseCycle
	for _, c := range d.cycles {
		if c.Task == task {
			out = append(out, c)
		}
	}

	return out
}

// Steps maps each step id to its task.
func (d *Dataset) Steps() []string {
	steps := make([]string, len(d.cycles))
	for i, c := range d.cycles {
		steps[i] = c.Task
	}

	return steps
}

// Columns returns the union of channel names in lexical order.
func (d *Dataset) Columns() []string {
	seen := map[string]struct{}{}
	var cols []string
	for _, c := range d.cycles {
		for name := range c.Channels {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			cols = append(cols, name)
		}
	}
	sort.Strings(cols)

	return cols
}

// Check verifies the phase grid of every cycle.
func (d *Dataset) Check() error {
	for _, c := range d.cycles {
		if err := c.CheckShape(); err != nil {
			return err
		}
	}

	return nil
}
