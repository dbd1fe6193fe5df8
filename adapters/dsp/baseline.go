package dsp

import (
	"ephyscore/adapters/kernels"

	"gonum.org/v1/gonum/stat"
)

// BaselineMean subtracts the mean of the full trace; idempotent on repeat calls.
func BaselineMean(x []float64) []float64 {
	mean := stat.Mean(x, nil)
	return offsetBy(x, mean)
}

// BaselineMedian subtracts the median of the full trace.
func BaselineMedian(x []float64) []float64 {
	return offsetBy(x, kernels.Median(x))
}

// BaselineMode rounds to decimals digits and subtracts the statistical
// mode.
func BaselineMode(x []float64, decimals int) []float64 {
	return offsetBy(x, kernels.Mode(x, decimals))
}

// BaselineLinear detrends by subtracting the OLS linear trend over
// sample index.
func BaselineLinear(x []float64) []float64 {
	n := len(x)
	if n == 0 {
		return x
	}
	idx := make([]float64, n)
	for i := range idx {
		idx[i] = float64(i)
	}
	intercept, slope := stat.LinearRegression(idx, x, nil, false)
	out := make([]float64, n)
	for i, v := range x {
		out[i] = v - (intercept + slope*float64(i))
	}
	return out
}

// BaselineWindow subtracts the mean of samples within [tStart, tEnd].
func BaselineWindow(x, timeVector []float64, tStart, tEnd float64) ([]float64, error) {
	lo, hi, err := windowIndices(timeVector, tStart, tEnd)
	if err != nil {
		return nil, err
	}
	mean := stat.Mean(x[lo:hi], nil)
	return offsetBy(x, mean), nil
}

func offsetBy(x []float64, offset float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v - offset
	}
	return out
}
