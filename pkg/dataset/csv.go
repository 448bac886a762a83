package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/jmontp/LocoHub-sub005/pkg/errs"
	"github.com/jmontp/LocoHub-sub005/pkg/gait"
	"github.com/jmontp/LocoHub-sub005/pkg/schema"
)

// Header names written by WritePhase.
const (
	ColumnSubject = "subject"
	ColumnTask    = "task"
	ColumnCycle   = "cycle"
	ColumnPhase   = "phase_ipsi"
)

type key struct {
	subject, task, cycle string
}

// ReadPhase reads a long-format phase table, PhasePoints rows per cycle.
func ReadPhase(r io.Reader, reg *schema.Registry) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, errs.Structural("read phase header: %v", err)
	}
	layout, err := reg.Resolve(header, schema.ModePhase)
	if err != nil {
		return nil, err
	}
	subjectIdx, _ := layout.Index(layout.Subject)
	taskIdx, _ := layout.Index(layout.Task)
	cycleIdx, _ := layout.Index(layout.Cycle)
	phaseIdx, _ := layout.Index(layout.Phase)

	var order []key
	cycles := map[key]*gait.PhaseCycle{}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Structural("line %d: %v", line, err)
		}

		k := key{subject: rec[subjectIdx], task: rec[taskIdx], cycle: rec[cycleIdx]}
		c, ok := cycles[k]
		if !ok {
			index, err := parseCycleIndex(k.cycle)
			if err != nil {
				return nil, errs.Structural("line %d: cycle %q: %v", line, k.cycle, err)
			}
			c = &gait.PhaseCycle{
				Subject:    k.subject,
				Task:       k.task,
				CycleIndex: index,
				Step:       -1,
				Channels:   make(map[string][]float64, len(layout.Features)),
			}
			cycles[k] = c
			order = append(order, k)
		}

		phase, err := parseValue(rec[phaseIdx])
		if err != nil {
			return nil, errs.Structural("line %d: phase: %v", line, err)
		}
		c.Phase = append(c.Phase, phase)

		for _, f := range layout.Features {
			i, _ := layout.Index(f.Name)
			v, err := parseValue(rec[i])
			if err != nil {
				return nil, errs.Structural("line %d: column %s: %v", line, f.Name, err)
			}
			c.Channels[f.Name] = append(c.Channels[f.Name], v)
		}
	}

	out := make([]*gait.PhaseCycle, 0, len(order))
	for _, k := range order {
		c := cycles[k]
		if err := c.CheckShape(); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	return New(out), nil
}

// ReadTrials reads a time-indexed table into one trial per subject and task.
func ReadTrials(r io.Reader, reg *schema.Registry) ([]*gait.Trial, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, errs.Structural("read trial header: %v", err)
	}
	layout, err := reg.Resolve(header, schema.ModeTime)
	if err != nil {
		return nil, err
	}
	subjectIdx, _ := layout.Index(layout.Subject)
	taskIdx, _ := layout.Index(layout.Task)
	timeIdx, _ := layout.Index(layout.Time)

	type trialKey struct{ subject, task string }
	var order []trialKey
	trials := map[trialKey]*gait.Trial{}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.Structural("line %d: %v", line, err)
		}

		k := trialKey{subject: rec[subjectIdx], task: rec[taskIdx]}
		t, ok := trials[k]
		if !ok {
			t = &gait.Trial{
				Subject:  k.subject,
				Task:     k.task,
				Force:    layout.Force,
				Channels: make(map[string][]float64, len(layout.Features)),
			}
			trials[k] = t
			order = append(order, k)
		}

		ts, err := parseValue(rec[timeIdx])
		if err != nil || math.IsNaN(ts) {
			return nil, errs.Structural("line %d: invalid time %q", line, rec[timeIdx])
		}
		if n := len(t.Time); n > 0 && ts < t.Time[n-1] {
			return nil, errs.Structural("line %d: time goes backwards in %s/%s", line, k.subject, k.task)
		}
		t.Time = append(t.Time, ts)

		for _, f := range layout.Features {
			i, _ := layout.Index(f.Name)
			v, err := parseValue(rec[i])
			if err != nil {
				return nil, errs.Structural("line %d: column %s: %v", line, f.Name, err)
			}
			t.Channels[f.Name] = append(t.Channels[f.Name], v)
		}
	}

	out := make([]*gait.Trial, 0, len(order))
	for _, k := range order {
		out = append(out, trials[k])
	}

	return out, nil
}

// WritePhase writes the dataset in long format. NaN samples are written as empty cells.
func WritePhase(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	columns := ds.Columns()

	header := append([]string{ColumnSubject, ColumnTask, ColumnCycle, ColumnPhase}, columns...)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	rec := make([]string, len(header))
	for _, c := range ds.Cycles() {
		for i, phase := range c.Phase {
			rec[0], rec[1], rec[2] = c.Subject, c.Task, strconv.Itoa(c.CycleIndex)
			rec[3] = formatValue(phase)
			for j, name := range columns {
				rec[4+j] = ""
				if values, ok := c.Channels[name]; ok && i < len(values) {
					rec[4+j] = formatValue(values[i])
				}
			}
			if err := cw.Write(rec); err != nil {
				return errors.Wrapf(err, "write step %d", c.Step)
			}
		}
	}
	cw.Flush()

	return errors.Wrap(cw.Error(), "flush csv")
}

// LoadPhase reads a phase CSV file.
func LoadPhase(path string, reg *schema.Registry) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return ReadPhase(f, reg)
}

// LoadTrials reads a time-series CSV file.
func LoadTrials(path string, reg *schema.Registry) ([]*gait.Trial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return ReadTrials(f, reg)
}

// SavePhase writes a phase CSV file.
func SavePhase(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := WritePhase(f, ds); err != nil {
		_ = f.Close()

		return err
	}

	return errors.Wrapf(f.Close(), "close %s", path)
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}

	return strconv.ParseFloat(s, 64)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseCycleIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return int(f), nil
}
