// Package schema maps dataset column names onto typed roles.
//
// Columns are recognised from fixed name tables rather than patterns: a registry lists,
// for every role, the names it accepts in order of preference, and Resolve validates a
// header once at load time, returning a Layout that downstream code indexes by role.
package schema

import (
	"github.com/jmontp/LocoHub-sub005/pkg/errs"
)

// Role is what a column is used for.
type Role string

const (
	RoleSubject Role = "subject"
	RoleTask    Role = "task"
	RoleCycle   Role = "cycle"
	RolePhase   Role = "phase"
	RoleTime    Role = "time"
	RoleForce   Role = "force"
	RoleFeature Role = "feature"
)

// Mode selects which roles a header must provide.
type Mode int

const (
	// ModePhase is a phase-normalized table: subject, task, cycle and phase required.
	ModePhase Mode = iota
	// ModeTime is a time-indexed recording: subject, task, time and force required.
	ModeTime
)

// Registry holds the recognised column names per role.
type Registry struct {
	names map[Role][]string
}

// DefaultRegistry returns the registry used by the CLI.
func DefaultRegistry() *Registry {
	return &Registry{
		names: map[Role][]string{
			RoleSubject: {"subject", "subject_id"},
			RoleTask:    {"task", "task_name"},
			RoleCycle:   {"cycle", "cycle_id", "cycle_index", "step"},
			RolePhase:   {"phase_ipsi", "phase", "phase_percent"},
			RoleTime:    {"time_s", "time"},
			RoleForce: {
				"vertical_grf_ipsi_N", "vertical_grf_ipsi_BW", "vertical_grf_N",
				"grf_vertical_ipsi_N", "grf_vertical_N", "force_z_N", "fz",
			},
		},
	}
}

// PhaseColumns returns the recognised phase column names, in preference order.
func (r *Registry) PhaseColumns() []string {
	return append([]string(nil), r.names[RolePhase]...)
}

// RoleOf returns the identifier role of a column, or RoleFeature.
// Force columns are reported as RoleForce.
func (r *Registry) RoleOf(column string) Role {
	for _, role := range []Role{RoleSubject, RoleTask, RoleCycle, RolePhase, RoleTime, RoleForce} {
		for _, name := range r.names[role] {
			if name == column {
				return role
			}
		}
	}

	return RoleFeature
}

// Layout is a validated header.
type Layout struct {
	Subject string
	Task    string
	Cycle   string
	Phase   string
	Time    string
	Force   string
	// Features lists every data column in header order, force included.
	Features []Variable

	index map[string]int
}

// Index returns the position of a column in the header.
func (l *Layout) Index(name string) (int, bool) {
	i, ok := l.index[name]

	return i, ok
}

func (r *Registry) pick(role Role, index map[string]int) string {
	for _, name := range r.names[role] {
		if _, ok := index[name]; ok {
			return name
		}
	}

	return ""
}

// Resolve validates a header for the given mode.
func (r *Registry) Resolve(header []string, mode Mode) (*Layout, error) {
	layout := &Layout{index: make(map[string]int, len(header))}
	for i, name := range header {
		if _, dup := layout.index[name]; dup {
			return nil, errs.Structural("duplicate column %q", name)
		}
		layout.index[name] = i
	}

	layout.Subject = r.pick(RoleSubject, layout.index)
	layout.Task = r.pick(RoleTask, layout.index)
	layout.Cycle = r.pick(RoleCycle, layout.index)
	layout.Phase = r.pick(RolePhase, layout.index)
	layout.Time = r.pick(RoleTime, layout.index)
	layout.Force = r.pick(RoleForce, layout.index)

	required := map[Role]string{RoleSubject: layout.Subject, RoleTask: layout.Task}
	switch mode {
	case ModePhase:
		required[RoleCycle] = layout.Cycle
		required[RolePhase] = layout.Phase
	case ModeTime:
		required[RoleTime] = layout.Time
		required[RoleForce] = layout.Force
	}

	for _, role := range []Role{RoleSubject, RoleTask, RoleCycle, RolePhase, RoleTime, RoleForce} {
		name, needed := required[role]
		if needed && name == "" {
			return nil, errs.Structural("missing %s column, expected one of %v", role, r.names[role])
		}
	}

	for _, name := range header {
		switch name {
		case layout.Subject, layout.Task, layout.Cycle, layout.Phase, layout.Time:
			continue
		}
		layout.Features = append(layout.Features, ParseVariable(name))
	}

	return layout, nil
}
