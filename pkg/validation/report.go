package validation

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jmontp/LocoHub-sub005/pkg/dataset"
)

// DefaultMaxFailures is the number of failures listed in a report summary.
const DefaultMaxFailures = 20

// TaskSummary counts passing and failing steps of one task.
type TaskSummary struct {
	Task     string  `yaml:"task"`
	Steps    int     `yaml:"steps"`
	Passed   int     `yaml:"passed"`
	Failed   int     `yaml:"failed"`
	PassRate float64 `yaml:"pass_rate"`
}

// VariableSummary counts the failures of one variable within a task.
type VariableSummary struct {
	Task     string              `yaml:"task"`
	Variable string              `yaml:"variable"`
	Failures int                 `yaml:"failures"`
	Steps    int                 `yaml:"steps"`
	ByType   map[FailureType]int `yaml:"by_type"`
}

// Report is the merged outcome of a validation run.
type Report struct {
	RunID           string            `yaml:"run_id"`
	Steps           int               `yaml:"steps"`
	Passed          bool              `yaml:"passed"`
	PassRate        float64           `yaml:"pass_rate"`
	Tasks           []TaskSummary     `yaml:"tasks"`
	Variables       []VariableSummary `yaml:"variables"`
	Tier1           *Tier1Result      `yaml:"tier1"`
	Tier2           []*Tier2Result    `yaml:"tier2"`
	TopFailures     []Failure         `yaml:"top_failures"`
	Recommendations []string          `yaml:"recommendations"`
	Unchecked       []Unchecked       `yaml:"unchecked,omitempty"`
	SkippedTasks    []string          `yaml:"skipped_tasks,omitempty"`
	// Failures holds every failure of both tiers ordered by step.
	Failures []Failure `yaml:"-"`
}

func buildReport(ds *dataset.Dataset, t1 *Tier1Result, t2 []*Tier2Result, maxFailures int) *Report {
	r := &Report{
		Steps: ds.Len(),
		Tier1: t1,
		Tier2: t2,
	}

	r.Failures = append(r.Failures, t1.Failures...)
	passed := t1.Passed
	for _, res := range t2 {
		r.Failures = append(r.Failures, res.Failures...)
		r.Unchecked = append(r.Unchecked, res.Unchecked...)
		passed = passed && res.Passed
	}
	SortFailures(r.Failures)
	r.Passed = passed

	failedSteps := map[int]struct{}{}
	for _, step := range FailedSteps(r.Failures) {
		failedSteps[step] = struct{}{}
	}

	failed := 0
	for _, task := range ds.Tasks() {
		s := TaskSummary{Task: task}
		for _, c := range ds.ByTask(task) {
			s.Steps++
			if _, hit := failedSteps[c.Step]; hit {
				s.Failed++
			}
		}
		s.Passed = s.Steps - s.Failed
		failed += s.Failed
		if s.Steps > 0 {
			s.PassRate = float64(s.Passed) / float64(s.Steps)
		}
		r.Tasks = append(r.Tasks, s)
	}
	if r.Steps > 0 {
		r.PassRate = float64(r.Steps-failed) / float64(r.Steps)
	}

	r.Variables = variableSummaries(r.Failures)

	n := len(r.Failures)
	if maxFailures >= 0 && n > maxFailures {
		n = maxFailures
	}
	r.TopFailures = append([]Failure(nil), r.Failures[:n]...)
	r.Recommendations = recommendations(r.Failures)

	return r
}

func variableSummaries(failures []Failure) []VariableSummary {
	type key struct{ task, variable string }
	byKey := map[key]*VariableSummary{}
	steps := map[key]map[int]struct{}{}
	for _, f := range failures {
		k := key{f.Task, f.Variable}
		s, ok := byKey[k]
		if !ok {
			s = &VariableSummary{Task: f.Task, Variable: f.Variable, ByType: map[FailureType]int{}}
			byKey[k] = s
			steps[k] = map[int]struct{}{}
		}
		s.Failures++
		s.ByType[f.Type]++
		steps[k][f.Step] = struct{}{}
	}

	out := make([]VariableSummary, 0, len(byKey))
	for k, s := range byKey {
		s.Steps = len(steps[k])
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Task != out[j].Task {
			return out[i].Task < out[j].Task
		}

		return out[i].Variable < out[j].Variable
	})

	return out
}

func recommendations(failures []Failure) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, f := range failures {
		var rec string
		switch f.Type {
		case TypeTier1Range:
			rec = fmt.Sprintf("%s in %s exceeds its generic range [%g, %g]; check units, sign convention and sensor offsets",
				f.Variable, f.Task, f.ExpectedMin, f.ExpectedMax)
		case TypeCheckpointRange:
			rec = fmt.Sprintf("%s in %s falls outside [%g, %g] at phase checkpoints; review the rule or the affected steps",
				f.Variable, f.Task, f.ExpectedMin, f.ExpectedMax)
		case TypePattern:
			rec = fmt.Sprintf("%s in %s does not follow its expected shape; inspect the cycle waveforms", f.Variable, f.Task)
		}
		if _, ok := seen[rec]; ok || rec == "" {
			continue
		}
		seen[rec] = struct{}{}
		out = append(out, rec)
	}

	return out
}

// WriteYAML encodes the report.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return errors.Wrap(err, "encode report")
	}

	return errors.Wrap(enc.Close(), "close report encoder")
}

// Save writes the report to path as YAML.
func (r *Report) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := r.WriteYAML(f); err != nil {
		_ = f.Close()

		return err
	}

	return errors.Wrapf(f.Close(), "close %s", path)
}
