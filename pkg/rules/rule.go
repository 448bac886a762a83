package rules

import (
	"strconv"
	"strings"
)

// ToleranceType tells how a rule tolerance is applied.
type ToleranceType string

const (
	ToleranceAbsolute ToleranceType = "absolute"
	ToleranceRelative ToleranceType = "relative"
)

// DefaultTolerance is used when a tolerance cell cannot be parsed.
const DefaultTolerance = 0.1

// PhaseRange is an inclusive phase window in percent.
type PhaseRange struct {
	Start float64
	End   float64
}

// FullCycle covers the whole cycle.
var FullCycle = PhaseRange{Start: 0, End: 100}

// Contains reports whether phase lies within the range, bounds included.
func (r PhaseRange) Contains(phase float64) bool {
	return phase >= r.Start && phase <= r.End
}

func (r PhaseRange) String() string {
	return strconv.FormatFloat(r.Start, 'g', -1, 64) + "-" + strconv.FormatFloat(r.End, 'g', -1, 64)
}

// PatternKind is an expected-shape keyword.
type PatternKind string

const (
	PatternPeakAt                PatternKind = "peak_at"
	PatternValleyAt              PatternKind = "valley_at"
	PatternIncreasing            PatternKind = "increasing"
	PatternDecreasing            PatternKind = "decreasing"
	PatternPredominantlyPositive PatternKind = "predominantly_positive"
	PatternPredominantlyNegative PatternKind = "predominantly_negative"
	PatternNearZero              PatternKind = "near_zero"
	PatternUShaped               PatternKind = "U_shaped"
	PatternInvertedU             PatternKind = "inverted_U"
	PatternBilateral             PatternKind = "bilateral"
)

var plainPatterns = map[string]PatternKind{
	"increasing":             PatternIncreasing,
	"decreasing":             PatternDecreasing,
	"predominantly_positive": PatternPredominantlyPositive,
	"predominantly_negative": PatternPredominantlyNegative,
	"near_zero":              PatternNearZero,
	"u_shaped":               PatternUShaped,
	"inverted_u":             PatternInvertedU,
	"bilateral":              PatternBilateral,
}

// Pattern is one parsed expected-shape keyword. At is only set for peak_at and valley_at.
type Pattern struct {
	Kind PatternKind
	At   float64
}

func (p Pattern) String() string {
	if p.Kind == PatternPeakAt || p.Kind == PatternValleyAt {
		return string(p.Kind) + "_" + strconv.FormatFloat(p.At, 'g', -1, 64)
	}

	return string(p.Kind)
}

// ParsePattern parses a single keyword such as "peak_at_50" or "increasing".
func ParsePattern(keyword string) (Pattern, bool) {
	kw := strings.TrimSpace(keyword)
	lower := strings.ToLower(kw)

	for _, kind := range []PatternKind{PatternPeakAt, PatternValleyAt} {
		prefix := string(kind) + "_"
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		at, err := strconv.ParseFloat(strings.TrimSuffix(lower[len(prefix):], "%"), 64)
		if err != nil {
			return Pattern{}, false
		}

		return Pattern{Kind: kind, At: at}, true
	}

	if kind, ok := plainPatterns[lower]; ok {
		return Pattern{Kind: kind}, true
	}

	return Pattern{}, false
}

// Rule is one validation row. Rules are shared read-only between validator calls.
type Rule struct {
	Variable        string
	Task            string
	PhaseRange      PhaseRange
	Min             float64
	Max             float64
	ExpectedPattern string
	Patterns        []Pattern
	Tolerance       float64
	ToleranceType   ToleranceType
	Units           string
	Notes           string
}

// InRange reports whether v lies within [Min,Max], bounds included.
func (r Rule) InRange(v float64) bool {
	return v >= r.Min && v <= r.Max
}
