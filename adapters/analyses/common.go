// Package analyses implements the patch-clamp analysis functions.
// Each file registers one (or a closely related family of) analyses
// into domain/registry via an init() function, so the full set
// self-assembles before any dispatch happens.
package analyses

import (
	"math"

	"ephyscore/domain/registry"
)

// windowIndices converts [tStart, tEnd] into a half-open sample range
// against a monotonically non-decreasing time vector.
func windowIndices(time []float64, tStart, tEnd float64) (lo, hi int, ok bool) {
	n := len(time)
	if n == 0 || tStart >= tEnd {
		return 0, 0, false
	}
	if tStart < time[0] || tEnd > time[n-1] {
		return 0, 0, false
	}
	lo = -1
	for i, t := range time {
		if t >= tStart && lo == -1 {
			lo = i
		}
		if t <= tEnd {
			hi = i + 1
		}
	}
	if lo == -1 || hi <= lo {
		return 0, 0, false
	}
	return lo, hi, true
}

func meanOf(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func stdOf(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean := meanOf(x)
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(x)))
}

func minOf(x []float64) (float64, int) {
	if len(x) == 0 {
		return 0, -1
	}
	m, idx := x[0], 0
	for i, v := range x {
		if v < m {
			m, idx = v, i
		}
	}
	return m, idx
}

func maxOf(x []float64) (float64, int) {
	if len(x) == 0 {
		return 0, -1
	}
	m, idx := x[0], 0
	for i, v := range x {
		if v > m {
			m, idx = v, i
		}
	}
	return m, idx
}

// derivative returns dV/dt (units of x per second) via forward
// differences scaled by the sampling rate; last sample repeats the
// previous slope so the array keeps the input's length.
func derivative(x []float64, samplingRate float64) []float64 {
	n := len(x)
	d := make([]float64, n)
	for i := 0; i < n-1; i++ {
		d[i] = (x[i+1] - x[i]) * samplingRate
	}
	if n > 1 {
		d[n-1] = d[n-2]
	}
	return d
}

// interpCross linearly interpolates the fractional sample index at which
// a monotone run between (i0, y0) and (i1, y1) crosses level.
func interpCross(i0 int, y0 float64, i1 int, y1 float64, level float64) float64 {
	if y1 == y0 {
		return float64(i0)
	}
	return float64(i0) + (level-y0)*float64(i1-i0)/(y1-y0)
}

func errorResult(key, message string) registry.Result {
	return registry.Result{key: registry.Str(message)}
}
