package dsp

import "ephyscore/internal/apperr"

// windowIndices converts a [tStart, tEnd] time window into a half-open
// sample index range [lo, hi) against timeVector, assumed monotonically
// non-decreasing.
func windowIndices(timeVector []float64, tStart, tEnd float64) (lo, hi int, err error) {
	if tStart >= tEnd {
		return 0, 0, apperr.InvalidInput("window start must be before end")
	}
	n := len(timeVector)
	if n == 0 {
		return 0, 0, apperr.WindowOutOfRange("trace has no samples")
	}
	if tStart < timeVector[0] || tEnd > timeVector[n-1] {
		return 0, 0, apperr.WindowOutOfRange("window outside trace bounds")
	}
	lo = -1
	for i, t := range timeVector {
		if t >= tStart && lo == -1 {
			lo = i
		}
		if t <= tEnd {
			hi = i + 1
		}
	}
	if lo == -1 || hi <= lo {
		return 0, 0, apperr.WindowOutOfRange("window contains no samples")
	}
	return lo, hi, nil
}
