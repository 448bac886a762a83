package gait_test

import (
	"math"
	"testing"
)

// timeVector returns n samples at rate hz starting at zero.
func timeVector(t *testing.T, n int, hz float64) []float64 {
	t.Helper()

	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / hz
	}

	return out
}

// pulseForce is 800 N during [on, on+stance) of every listed onset and 0 elsewhere.
func pulseForce(t *testing.T, time []float64, stance float64, onsets ...float64) []float64 {
	t.Helper()

	out := make([]float64, len(time))
	for i, ts := range time {
		for _, on := range onsets {
			if ts >= on-1e-9 && ts < on+stance-1e-9 {
				out[i] = 800
			}
		}
	}

	return out
}

func sine(t *testing.T, time []float64, offset, amplitude, period float64) []float64 {
	t.Helper()

	out := make([]float64, len(time))
	for i, ts := range time {
		out[i] = offset + amplitude*math.Sin(2*math.Pi*ts/period)
	}

	return out
}
