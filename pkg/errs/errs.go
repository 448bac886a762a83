// Package errs defines the error taxonomy shared by every stage of the
// phase-normalization pipeline.
//
// Structural and configuration errors are fatal: they abort a validation run and
// propagate to the caller. Data-quality problems are never returned as errors,
// they are accumulated as validation failures. Parse warnings are logged and
// collected next to the parsed value.
package errs

import (
	"github.com/pkg/errors"
)

// Kind classifies an error.
type Kind int

const (
	// KindStructural covers a missing or malformed phase column, cycles whose length is
	// not 150 and other shape problems detected before validation starts.
	KindStructural Kind = iota + 1
	// KindConfiguration covers rule/data mismatches such as an unknown task or variable.
	KindConfiguration
	// KindDataQuality covers out-of-range or missing measurements.
	KindDataQuality
	// KindParseWarning covers malformed rule-table rows.
	KindParseWarning
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindConfiguration:
		return "configuration"
	case KindDataQuality:
		return "data_quality"
	case KindParseWarning:
		return "parse_warning"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this kind abort a run.
func (k Kind) Fatal() bool {
	return k == KindStructural || k == KindConfiguration
}

// Error is a classified error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + " error"
	}

	return e.Kind.String() + " error: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, errs.ErrStructural) works
// on wrapped chains.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Err == nil && t.Kind == e.Kind
}

var (
	ErrStructural    = &Error{Kind: KindStructural}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrDataQuality   = &Error{Kind: KindDataQuality}
	ErrParseWarning  = &Error{Kind: KindParseWarning}
)

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// Structural returns a new structural error.
func Structural(format string, args ...any) error {
	return newf(KindStructural, format, args...)
}

// Configuration returns a new configuration error.
func Configuration(format string, args ...any) error {
	return newf(KindConfiguration, format, args...)
}

// DataQuality returns a new data-quality error.
func DataQuality(format string, args ...any) error {
	return newf(KindDataQuality, format, args...)
}

// ParseWarning returns a new parse warning.
func ParseWarning(format string, args ...any) error {
	return newf(KindParseWarning, format, args...)
}

// KindOf returns the kind of the first classified error in the chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// IsFatal reports whether err (or anything it wraps) is structural or configuration.
func IsFatal(err error) bool {
	return KindOf(err).Fatal()
}
