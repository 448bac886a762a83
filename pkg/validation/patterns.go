package validation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jmontp/LocoHub-sub005/pkg/rules"
)

const (
	// PeakTolerance is how far, in phase percent, a peak or valley may sit from its
	// expected position.
	PeakTolerance = 15.0
	// Predominance is the share of samples required by predominantly_* patterns.
	Predominance = 0.7
)

// series is the non-NaN part of a cycle.
type series struct {
	phase  []float64
	values []float64
}

func cycleSeries(phase, values []float64) series {
	var s series
	for i, p := range phase {
		if math.IsNaN(values[i]) {
			continue
		}
		s.phase = append(s.phase, p)
		s.values = append(s.values, values[i])
	}

	return s
}

// outcome is the verdict of one pattern on one cycle. ok with an empty reason means
// the pattern could not be evaluated for lack of samples.
type outcome struct {
	ok     bool
	phase  float64
	value  float64
	reason string
}

func checkPattern(p rules.Pattern, rule rules.Rule, s series) outcome {
	if len(s.values) < 2 {
		return outcome{ok: true}
	}

	switch p.Kind {
	case rules.PatternPeakAt:
		i := floats.MaxIdx(s.values)
		return extremeOutcome("peak", p.At, s.phase[i], s.values[i])
	case rules.PatternValleyAt:
		i := floats.MinIdx(s.values)
		return extremeOutcome("valley", p.At, s.phase[i], s.values[i])
	case rules.PatternIncreasing, rules.PatternDecreasing:
		return monotonicOutcome(p.Kind, rule, s)
	case rules.PatternPredominantlyPositive, rules.PatternPredominantlyNegative:
		return predominantOutcome(p.Kind, s)
	case rules.PatternNearZero:
		return nearZeroOutcome(rule, s)
	case rules.PatternUShaped, rules.PatternInvertedU:
		return curvatureOutcome(p.Kind, s)
	}

	return outcome{ok: true}
}

func extremeOutcome(what string, at, phase, value float64) outcome {
	if math.Abs(phase-at) <= PeakTolerance {
		return outcome{ok: true}
	}

	return outcome{
		phase:  phase,
		value:  value,
		reason: fmt.Sprintf("%s at %.1f%%, expected %g±%g%%", what, phase, at, PeakTolerance),
	}
}

func monotonicOutcome(kind rules.PatternKind, rule rules.Rule, s series) outcome {
	good := 0
	for i := 1; i < len(s.values); i++ {
		d := s.values[i] - s.values[i-1]
		if (kind == rules.PatternIncreasing && d > 0) || (kind == rules.PatternDecreasing && d < 0) {
			good++
		}
	}

	tol := math.Min(math.Max(rule.Tolerance, 0), 1)
	share := float64(good) / float64(len(s.values)-1)
	if share >= 1-tol {
		return outcome{ok: true}
	}

	return outcome{
		phase:  s.phase[0],
		value:  share,
		reason: fmt.Sprintf("%s for %.0f%% of the cycle, expected at least %.0f%%", kind, share*100, (1-tol)*100),
	}
}

func predominantOutcome(kind rules.PatternKind, s series) outcome {
	signed := func(v float64) bool { return v > 0 }
	if kind == rules.PatternPredominantlyNegative {
		signed = func(v float64) bool { return v < 0 }
	}

	share := float64(floats.Count(signed, s.values)) / float64(len(s.values))
	if share >= Predominance {
		return outcome{ok: true}
	}

	return outcome{
		phase:  s.phase[0],
		value:  share,
		reason: fmt.Sprintf("%s for %.0f%% of samples, expected at least %.0f%%", kind, share*100, Predominance*100),
	}
}

// nearZeroOutcome bounds the mean magnitude by the rule tolerance alone. A relative
// tolerance is a share of the rule's Max-Min span.
func nearZeroOutcome(rule rules.Rule, s series) outcome {
	limit := rule.Tolerance
	if rule.ToleranceType == rules.ToleranceRelative {
		limit *= rule.Max - rule.Min
	}

	meanAbs := floats.Norm(s.values, 1) / float64(len(s.values))
	if meanAbs <= limit {
		return outcome{ok: true}
	}

	return outcome{
		phase:  s.phase[floats.MaxIdx(absolute(s.values))],
		value:  meanAbs,
		reason: fmt.Sprintf("mean |x| %.4g exceeds %.4g (std %.4g)", meanAbs, limit, stat.PopStdDev(s.values, nil)),
	}
}

func absolute(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}

	return out
}

func curvatureOutcome(kind rules.PatternKind, s series) outcome {
	if len(s.values) < 4 {
		return outcome{ok: true}
	}

	half := len(s.values) / 2
	left := slope(s.phase[:half], s.values[:half])
	right := slope(s.phase[half:], s.values[half:])

	ok := left < 0 && right > 0
	if kind == rules.PatternInvertedU {
		ok = left > 0 && right < 0
	}
	if ok {
		return outcome{ok: true}
	}

	return outcome{
		phase:  s.phase[half],
		value:  right - left,
		reason: fmt.Sprintf("%s not matched: slopes %.4g then %.4g", kind, left, right),
	}
}

// slope is the least-squares slope of y over x.
func slope(x, y []float64) float64 {
	if stat.Variance(x, nil) == 0 {
		return 0
	}
	_, beta := stat.LinearRegression(x, y, nil, false)

	return beta
}
