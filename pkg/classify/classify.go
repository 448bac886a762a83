// Package classify turns validation failures into per-step colours for plotting.
package classify

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/jmontp/LocoHub-sub005/pkg/schema"
	"github.com/jmontp/LocoHub-sub005/pkg/validation"
)

// Mode restricts which failures are considered.
type Mode string

const (
	// ModeAll considers every failure.
	ModeAll       Mode = ""
	ModeKinematic Mode = "kinematic"
	ModeKinetic   Mode = "kinetic"
)

// ParseMode parses a mode name. The empty string and "all" select ModeAll.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "all":
		return ModeAll, nil
	case string(ModeKinematic):
		return ModeKinematic, nil
	case string(ModeKinetic):
		return ModeKinetic, nil
	}

	return ModeAll, errors.Errorf("unknown data mode %q", s)
}

func (m Mode) accepts(variable schema.Variable) bool {
	switch m {
	case ModeKinematic:
		return variable.Measure.Kinematic()
	case ModeKinetic:
		return variable.Measure.Kinetic()
	default:
		return true
	}
}

type variableSet map[string]struct{}

// Classifier indexes failures by step. Failures with Step -1 apply to every step of
// their task.
type Classifier struct {
	steps  []string
	byStep []variableSet
}

// New builds a classifier. steps maps each step id to its task.
func New(failures []validation.Failure, steps []string, mode Mode) *Classifier {
	c := &Classifier{
		steps:  steps,
		byStep: make([]variableSet, len(steps)),
	}
	for i := range c.byStep {
		c.byStep[i] = variableSet{}
	}

	for _, f := range failures {
		variable := schema.ParseVariable(f.Variable)
		if !mode.accepts(variable) {
			continue
		}

		if f.Step >= 0 {
			if f.Step < len(steps) && steps[f.Step] == f.Task {
				c.byStep[f.Step][variable.Canonical] = struct{}{}
			}

			continue
		}
		for i, task := range steps {
			if task == f.Task {
				c.byStep[i][variable.Canonical] = struct{}{}
			}
		}
	}

	return c
}

// ForFeature classifies every step for one feature.
func (c *Classifier) ForFeature(feature string) []Color {
	canonical := schema.CanonicalName(feature)
	out := make([]Color, len(c.steps))
	for i, failed := range c.byStep {
		switch _, own := failed[canonical]; {
		case own:
			out[i] = Red
		case len(failed) > 0:
			out[i] = Pink
		default:
			out[i] = Gray
		}
	}

	return out
}

// Matrix classifies every step for each feature, one row per feature.
func (c *Classifier) Matrix(features []string) [][]Color {
	out := make([][]Color, len(features))
	for i, feature := range features {
		out[i] = c.ForFeature(feature)
	}

	return out
}

// Summary marks every step with any violation red.
func (c *Classifier) Summary() []Color {
	out := make([]Color, len(c.steps))
	for i, failed := range c.byStep {
		out[i] = Gray
		if len(failed) > 0 {
			out[i] = Red
		}
	}

	return out
}

// ForFeature classifies the steps of a single feature.
func ForFeature(failures []validation.Failure, steps []string, feature string, mode Mode) []Color {
	return New(failures, steps, mode).ForFeature(feature)
}

// WriteCSV writes the feature by step matrix as feature,step,task,color,hex rows.
func (c *Classifier) WriteCSV(w io.Writer, features []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"feature", "step", "task", "color", "hex"}); err != nil {
		return errors.Wrap(err, "write header")
	}

	hex := map[Color]string{}
	for _, col := range []Color{Gray, Red, Pink} {
		h, err := col.Hex()
		if err != nil {
			return err
		}
		hex[col] = h
	}

	for i, row := range c.Matrix(features) {
		for step, col := range row {
			rec := []string{features[i], strconv.Itoa(step), c.steps[step], string(col), hex[col]}
			if err := cw.Write(rec); err != nil {
				return errors.Wrapf(err, "write %s step %d", features[i], step)
			}
		}
	}
	cw.Flush()

	return errors.Wrap(cw.Error(), "flush csv")
}
