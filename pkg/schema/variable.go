package schema

import (
	"strings"
)

// Measure is the measurement family of a feature column.
type Measure string

const (
	MeasureAngle        Measure = "angle"
	MeasureVelocity     Measure = "velocity"
	MeasureAcceleration Measure = "acceleration"
	MeasureMoment       Measure = "moment"
	MeasurePower        Measure = "power"
	MeasureGRF          Measure = "grf"
	MeasureCOP          Measure = "cop"
)

// Kinematic reports whether the measure describes motion.
func (m Measure) Kinematic() bool {
	return m == MeasureAngle || m == MeasureVelocity || m == MeasureAcceleration
}

// Kinetic reports whether the measure describes forces or their effects.
func (m Measure) Kinetic() bool {
	return m == MeasureMoment || m == MeasurePower || m == MeasureGRF || m == MeasureCOP
}

// Side is the limb a feature belongs to, relative to the reference leg.
type Side string

const (
	SideNone   Side = ""
	SideIpsi   Side = "ipsi"
	SideContra Side = "contra"
)

// Opposite returns the other side. SideNone is its own opposite.
func (s Side) Opposite() Side {
	switch s {
	case SideIpsi:
		return SideContra
	case SideContra:
		return SideIpsi
	default:
		return SideNone
	}
}

// units are matched longest first so rad_s2 wins over rad_s and rad.
var units = []string{
	"rad_s2", "deg_s2", "Nm_kg", "rad_s", "deg_s", "W_kg",
	"rad", "deg", "Nm", "BW", "N", "W", "m",
}

var measures = map[string]Measure{
	"angle":        MeasureAngle,
	"velocity":     MeasureVelocity,
	"acceleration": MeasureAcceleration,
	"moment":       MeasureMoment,
	"power":        MeasurePower,
	"grf":          MeasureGRF,
	"cop":          MeasureCOP,
}

// Variable is a feature column name split into its roles, following the
// <joint>_<measure>_<side>_<unit> convention.
type Variable struct {
	// Name is the full column name.
	Name string
	// Canonical drops the unit but keeps the side, e.g. hip_flexion_angle_ipsi.
	Canonical string
	// Base drops side and unit, e.g. hip_flexion_angle.
	Base    string
	Joint   string
	Measure Measure
	Side    Side
	Unit    string
}

// ParseVariable splits a column name. Names that do not follow the convention are
// returned with empty roles and Base == Canonical == Name.
func ParseVariable(name string) Variable {
	v := Variable{Name: name}
	rest := name

	for _, unit := range units {
		if strings.HasSuffix(rest, "_"+unit) && len(rest) > len(unit)+1 {
			v.Unit = unit
			rest = strings.TrimSuffix(rest, "_"+unit)

			break
		}
	}

	v.Canonical = rest

	tokens := strings.Split(rest, "_")
	if n := len(tokens); n > 1 {
		switch Side(tokens[n-1]) {
		case SideIpsi, SideContra:
			v.Side = Side(tokens[n-1])
			tokens = tokens[:n-1]
		}
	}

	v.Base = strings.Join(tokens, "_")

	joint := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if m, ok := measures[tok]; ok && v.Measure == "" {
			v.Measure = m

			continue
		}
		joint = append(joint, tok)
	}
	v.Joint = strings.Join(joint, "_")

	return v
}

// CanonicalName strips the unit suffix from a column name, keeping the side.
func CanonicalName(name string) string {
	return ParseVariable(name).Canonical
}

// BaseName strips side and unit suffixes from a column name.
func BaseName(name string) string {
	return ParseVariable(name).Base
}

// Compose builds a column name from a base, a side and a unit. Empty parts are skipped.
func Compose(base string, side Side, unit string) string {
	parts := []string{base}
	if side != SideNone {
		parts = append(parts, string(side))
	}
	if unit != "" {
		parts = append(parts, unit)
	}

	return strings.Join(parts, "_")
}

// WithSide returns the column name of the same variable on another side.
func (v Variable) WithSide(side Side) string {
	return Compose(v.Base, side, v.Unit)
}
