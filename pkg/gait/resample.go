package gait

import (
	"sort"
	"strings"

	"github.com/jmontp/LocoHub-sub005/pkg/errs"
	"github.com/jmontp/LocoHub-sub005/pkg/schema"
)

// shiftedJoints have their contralateral series derived from the ipsilateral one on
// gait tasks.
var shiftedJoints = []string{"hip", "knee", "ankle"}

var shiftedMeasures = map[schema.Measure]bool{
	schema.MeasureAngle:        true,
	schema.MeasureVelocity:     true,
	schema.MeasureAcceleration: true,
	schema.MeasureMoment:       true,
}

type resampleOptions struct {
	kneeExtensionPositive bool
	chain                 *Chain
}

// ResampleOption configures Resample.
type ResampleOption func(o *resampleOptions)

// KneeExtensionPositive negates knee angle channels recorded with extension positive,
// so the chain sees the flexion-positive convention.
func KneeExtensionPositive() ResampleOption {
	return func(o *resampleOptions) {
		o.kneeExtensionPositive = true
	}
}

// WithChain replaces the kinematic chain used for segment angles.
func WithChain(chain *Chain) ResampleOption {
	return func(o *resampleOptions) {
		o.chain = chain
	}
}

// Resample converts the samples of trial spanning cycle into a PhaseCycle.
func Resample(cycle GaitCycle, trial *Trial, opts ...ResampleOption) (*PhaseCycle, error) {
	o := resampleOptions{chain: defaultChain}
	for _, opt := range opts {
		opt(&o)
	}

	duration := cycle.Duration()
	if duration <= 0 {
		return nil, errs.Structural("cycle %s/%s/%d has non-positive duration %g",
			cycle.Subject, cycle.Task, cycle.CycleIndex, duration)
	}

	first, last := window(trial.Time, cycle.StartTime, cycle.EndTime)
	grid := PhaseGrid()
	channels := make(map[string][]float64, len(trial.Channels)*2)

	for name, values := range trial.Channels {
		if len(values) != len(trial.Time) {
			return nil, errs.Structural("channel %s has %d samples but time has %d", name, len(values), len(trial.Time))
		}
		src := values[first:last]
		if o.kneeExtensionPositive && isKneeAngle(name) {
			src = negate(src)
		}
		channels[name] = interpolate(src, grid)
	}

	dt := duration / float64(PhasePoints-1)
	deriveRates(channels, dt)

	switch ClassifyTask(cycle.Task) {
	case ClassGait:
		shiftContralateral(channels, ContralateralShift, true)
	case ClassBilateral:
		shiftContralateral(channels, 0, false)
	}

	for _, side := range []schema.Side{schema.SideIpsi, schema.SideContra} {
		for name, values := range segmentAngles(o.chain, channels, side) {
			channels[name] = values
		}
	}

	return &PhaseCycle{
		Subject:    cycle.Subject,
		Task:       cycle.Task,
		CycleIndex: cycle.CycleIndex,
		Step:       -1,
		Duration:   duration,
		Phase:      grid,
		Channels:   channels,
	}, nil
}

// window returns the [first,last) sample range with start <= t <= end.
func window(time []float64, start, end float64) (int, int) {
	first := sort.SearchFloat64s(time, start)
	last := sort.Search(len(time), func(i int) bool { return time[i] > end })
	if last < first {
		last = first
	}

	return first, last
}

func isKneeAngle(name string) bool {
	v := schema.ParseVariable(name)

	return v.Measure == schema.MeasureAngle && strings.HasPrefix(v.Joint, "knee_flexion")
}

func negate(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = -v
	}

	return out
}

func rateUnit(unit string) string {
	switch unit {
	case "rad", "deg":
		return unit + "_s"
	case "rad_s", "deg_s":
		return unit + "2"
	default:
		return unit
	}
}

// deriveRates adds velocity and acceleration channels for every angle channel that
// lacks them. Channels present in the source are kept as they are.
func deriveRates(channels map[string][]float64, dt float64) {
	for _, name := range sortedNames(channels) {
		v := schema.ParseVariable(name)
		if v.Measure != schema.MeasureAngle || !strings.HasSuffix(v.Base, "_angle") {
			continue
		}
		joint := strings.TrimSuffix(v.Base, "_angle")

		velName := schema.Compose(joint+"_velocity", v.Side, rateUnit(v.Unit))
		velocity, ok := channels[velName]
		if !ok {
			velocity = gradient(channels[name], dt)
			channels[velName] = velocity
		}

		accName := schema.Compose(joint+"_acceleration", v.Side, rateUnit(rateUnit(v.Unit)))
		if _, ok := channels[accName]; !ok {
			channels[accName] = gradient(velocity, dt)
		}
	}
}

func isShiftedJoint(joint string) bool {
	for _, prefix := range shiftedJoints {
		if joint == prefix || strings.HasPrefix(joint, prefix+"_") {
			return true
		}
	}

	return false
}

// shiftContralateral fills contralateral channels from their ipsilateral counterpart
// rolled by shift samples. With overwrite unset, contralateral channels already in the
// source win.
func shiftContralateral(channels map[string][]float64, shift int, overwrite bool) {
	for _, name := range sortedNames(channels) {
		v := schema.ParseVariable(name)
		if v.Side != schema.SideIpsi || !shiftedMeasures[v.Measure] || !isShiftedJoint(v.Joint) {
			continue
		}
		contra := v.WithSide(schema.SideContra)
		if _, exists := channels[contra]; exists && !overwrite {
			continue
		}
		channels[contra] = Roll(channels[name], shift)
	}
}

func segmentAngles(chain *Chain, channels map[string][]float64, side schema.Side) map[string][]float64 {
	root, ok := lookupAngle(channels, chain.Root()+"_tilt", side, true)
	if !ok {
		return nil
	}

	angles := chain.Evaluate(root, func(joint string) ([]float64, bool) {
		return lookupAngle(channels, joint, side, false)
	})

	out := make(map[string][]float64, len(angles))
	for segment, values := range angles {
		out[schema.Compose(segment+"_angle", side, "rad")] = values
	}

	return out
}

// lookupAngle finds <joint>_angle_<side>_rad. Shared segments such as the pelvis fall
// back to the ipsilateral or unsided channel.
func lookupAngle(channels map[string][]float64, joint string, side schema.Side, shared bool) ([]float64, bool) {
	candidates := []string{schema.Compose(joint+"_angle", side, "rad")}
	if shared {
		candidates = append(candidates,
			schema.Compose(joint+"_angle", schema.SideIpsi, "rad"),
			schema.Compose(joint+"_angle", schema.SideNone, "rad"),
		)
	}
	for _, name := range candidates {
		if values, ok := channels[name]; ok {
			return values, true
		}
	}

	return nil, false
}

func sortedNames(channels map[string][]float64) []string {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
