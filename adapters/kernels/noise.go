package kernels

import (
	"math"

	mstats "github.com/montanaflynn/stats"
)

// MinMAD is the epsilon substituted for a zero MAD to avoid downstream
// division-by-zero.
const MinMAD = 1e-12

// StandardDeviation is the population standard deviation of the full
// sample array.
func StandardDeviation(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sd, err := mstats.StandardDeviationPopulation(mstats.Float64Data(x))
	if err != nil {
		return 0
	}
	return sd
}

// MAD returns the median absolute deviation scaled by the 1.4826
// consistency factor to approximate a Gaussian standard deviation (spec
// §4.1.2), substituting MinMAD when the raw MAD is zero.
func MAD(x []float64) float64 {
	if len(x) == 0 {
		return MinMAD
	}
	med, err := mstats.Median(mstats.Float64Data(x))
	if err != nil {
		return MinMAD
	}
	deviations := make([]float64, len(x))
	for i, v := range x {
		deviations[i] = math.Abs(v - med)
	}
	rawMAD, err := mstats.Median(mstats.Float64Data(deviations))
	if err != nil {
		return MinMAD
	}
	mad := 1.4826 * rawMAD
	if mad == 0 {
		return MinMAD
	}
	return mad
}

// Median is a thin re-export so callers in adapters/analyses don't need
// to import montanaflynn/stats directly for the common case.
func Median(x []float64) float64 {
	med, err := mstats.Median(mstats.Float64Data(x))
	if err != nil {
		return 0
	}
	return med
}

// Mode rounds x to decimals digits and returns the statistical mode.
func Mode(x []float64, decimals int) float64 {
	if len(x) == 0 {
		return 0
	}
	scale := math.Pow(10, float64(decimals))
	rounded := make([]float64, len(x))
	for i, v := range x {
		rounded[i] = math.Round(v*scale) / scale
	}
	modes, err := mstats.Mode(mstats.Float64Data(rounded))
	if err != nil || len(modes) == 0 {
		return rounded[0]
	}
	return modes[0]
}
