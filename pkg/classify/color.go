package classify

import (
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint
)

// Color is the classification of one step for one feature.
type Color string

const (
	// Gray marks a step without violations.
	Gray Color = "gray"
	// Red marks a violation of the rendered feature itself.
	Red Color = "red"
	// Pink marks a violation of another feature of the same step.
	Pink Color = "pink"
)

var rgb = map[Color][3]uint8{
	Gray: {128, 128, 128},
	Red:  {255, 0, 0},
	Pink: {255, 192, 203},
}

// Hex returns the colour as a #rrggbb string.
func (c Color) Hex() (string, error) {
	v, ok := rgb[c]
	if !ok {
		return "", errors.Errorf("unknown colour %q", c)
	}

	col, err := colors.RGB(v[0], v[1], v[2])
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return col.ToHEX().String(), nil
}
