package validation

import (
	"math"
)

// Range is a plausible value interval for a base variable, in Unit.
type Range struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Unit string  `yaml:"unit"`
}

// RangeTable maps base variable names (no side, no unit) to a range.
type RangeTable map[string]Range

// DefaultRanges returns the generic anatomical ranges used by Tier 1.
func DefaultRanges() RangeTable {
	return RangeTable{
		// joint angles
		"hip_flexion_angle":        {Min: -0.7, Max: 2.1, Unit: "rad"},
		"hip_adduction_angle":      {Min: -0.6, Max: 0.6, Unit: "rad"},
		"hip_rotation_angle":       {Min: -0.8, Max: 0.8, Unit: "rad"},
		"knee_flexion_angle":       {Min: -0.3, Max: 2.6, Unit: "rad"},
		"ankle_dorsiflexion_angle": {Min: -1.0, Max: 0.8, Unit: "rad"},
		"pelvis_tilt_angle":        {Min: -0.8, Max: 0.8, Unit: "rad"},
		"pelvis_obliquity_angle":   {Min: -0.5, Max: 0.5, Unit: "rad"},
		"pelvis_rotation_angle":    {Min: -0.8, Max: 0.8, Unit: "rad"},

		// segment angles
		"thigh_angle": {Min: -1.5, Max: 2.8, Unit: "rad"},
		"shank_angle": {Min: -2.5, Max: 1.8, Unit: "rad"},
		"foot_angle":  {Min: -3.0, Max: 2.0, Unit: "rad"},

		// joint rates
		"hip_flexion_velocity":            {Min: -15, Max: 15, Unit: "rad_s"},
		"knee_flexion_velocity":           {Min: -15, Max: 15, Unit: "rad_s"},
		"ankle_dorsiflexion_velocity":     {Min: -15, Max: 15, Unit: "rad_s"},
		"hip_flexion_acceleration":        {Min: -400, Max: 400, Unit: "rad_s2"},
		"knee_flexion_acceleration":       {Min: -400, Max: 400, Unit: "rad_s2"},
		"ankle_dorsiflexion_acceleration": {Min: -400, Max: 400, Unit: "rad_s2"},

		// moments and powers, normalised to body mass
		"hip_flexion_moment":        {Min: -3, Max: 3, Unit: "Nm_kg"},
		"knee_flexion_moment":       {Min: -2, Max: 2.5, Unit: "Nm_kg"},
		"ankle_dorsiflexion_moment": {Min: -3, Max: 1, Unit: "Nm_kg"},
		"hip_power":                 {Min: -6, Max: 6, Unit: "W_kg"},
		"knee_power":                {Min: -6, Max: 6, Unit: "W_kg"},
		"ankle_power":               {Min: -6, Max: 8, Unit: "W_kg"},

		// ground reaction force in body weights, centre of pressure in metres
		"vertical_grf": {Min: -0.1, Max: 3, Unit: "BW"},
		"anterior_grf": {Min: -0.6, Max: 0.6, Unit: "BW"},
		"lateral_grf":  {Min: -0.4, Max: 0.4, Unit: "BW"},
		"cop_anterior": {Min: -0.4, Max: 0.4, Unit: "m"},
		"cop_lateral":  {Min: -0.2, Max: 0.2, Unit: "m"},
		"cop_vertical": {Min: -0.1, Max: 0.1, Unit: "m"},
	}
}

// unitScale returns the factor converting values in from into to. An empty from unit
// is taken to already be in to.
func unitScale(from, to string) (float64, bool) {
	if from == to || from == "" || to == "" {
		return 1, true
	}

	switch from + ">" + to {
	case "deg>rad", "deg_s>rad_s", "deg_s2>rad_s2":
		return math.Pi / 180, true
	case "rad>deg", "rad_s>deg_s", "rad_s2>deg_s2":
		return 180 / math.Pi, true
	}

	return 0, false
}
