package gait

import (
	"math"
	"sort"
)

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// interpolate maps src, whose sample indices are spread over [0,100], onto grid.
// NaN samples are ignored; points outside the valid span are linearly extrapolated.
func interpolate(src, grid []float64) []float64 {
	if len(src) < 2 {
		return nanSlice(len(grid))
	}

	xs := make([]float64, 0, len(src))
	ys := make([]float64, 0, len(src))
	last := float64(len(src) - 1)
	for i, y := range src {
		if math.IsNaN(y) {
			continue
		}
		xs = append(xs, float64(i)/last*100)
		ys = append(ys, y)
	}
	if len(xs) < 2 {
		return nanSlice(len(grid))
	}

	out := make([]float64, len(grid))
	for i, x := range grid {
		// j is the right end of the bracketing segment, clamped to extrapolate at the edges.
		j := sort.SearchFloat64s(xs, x)
		switch {
		case j == 0:
			j = 1
		case j >= len(xs):
			j = len(xs) - 1
		}
		x0, x1 := xs[j-1], xs[j]
		y0, y1 := ys[j-1], ys[j]
		out[i] = y0 + (x-x0)*(y1-y0)/(x1-x0)
	}

	return out
}

// gradient follows numpy.gradient: central differences inside, one-sided differences
// at both edges.
func gradient(y []float64, dt float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = (y[1] - y[0]) / dt
	out[n-1] = (y[n-1] - y[n-2]) / dt
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / (2 * dt)
	}

	return out
}

// Roll circularly shifts x by k positions like numpy.roll: out[(i+k) mod n] = x[i].
func Roll(x []float64, k int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	k %= n
	if k < 0 {
		k += n
	}
	for i, v := range x {
		out[(i+k)%n] = v
	}

	return out
}
