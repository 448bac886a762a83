package validation

import (
	"fmt"
	"sort"
)

// FailureType is the check that produced a failure.
type FailureType string

const (
	TypeTier1Range      FailureType = "tier1_range"
	TypeCheckpointRange FailureType = "checkpoint_range"
	TypePattern         FailureType = "pattern"
)

// Failure is one data-quality finding. Step is -1 for task-level findings.
type Failure struct {
	Subject     string      `yaml:"subject"`
	Task        string      `yaml:"task"`
	Step        int         `yaml:"step"`
	Variable    string      `yaml:"variable"`
	Phase       float64     `yaml:"phase"`
	Value       float64     `yaml:"value"`
	ExpectedMin float64     `yaml:"expected_min"`
	ExpectedMax float64     `yaml:"expected_max"`
	Reason      string      `yaml:"reason"`
	Type        FailureType `yaml:"type"`
}

func (f Failure) String() string {
	return fmt.Sprintf("%s step %d %s/%s %s @%.1f%%: %s", f.Type, f.Step, f.Subject, f.Task, f.Variable, f.Phase, f.Reason)
}

// SortFailures orders failures by step, variable, phase and type.
func SortFailures(failures []Failure) {
	sort.SliceStable(failures, func(i, j int) bool {
		a, b := failures[i], failures[j]
		if a.Step != b.Step {
			return a.Step < b.Step
		}
		if a.Variable != b.Variable {
			return a.Variable < b.Variable
		}
		if a.Phase != b.Phase {
			return a.Phase < b.Phase
		}

		return a.Type < b.Type
	})
}

// FailedSteps returns the distinct steps with at least one failure, ascending.
func FailedSteps(failures []Failure) []int {
	seen := map[int]struct{}{}
	var steps []int
	for _, f := range failures {
		if _, ok := seen[f.Step]; ok {
			continue
		}
		seen[f.Step] = struct{}{}
		steps = append(steps, f.Step)
	}
	sort.Ints(steps)

	return steps
}
