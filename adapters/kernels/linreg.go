package kernels

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LinearFit is an ordinary-least-squares fit of y vs x.
type LinearFit struct {
	Ok        bool
	Slope     float64
	Intercept float64
	RSquared  float64
	SlopeSE   float64
	DOF       int
	SlopePVal float64
}

// FitLinear computes the closed-form OLS solution via gonum/stat, along
// with the slope's standard error, residual degrees of freedom, and a
// two-tailed p-value for the slope being non-zero (via Distributions,
// the regression-significance check I-V and F-I curves report alongside
// their fit). It is defined only when x has at least two distinct
// values; otherwise Ok is false when there is insufficient data.
func FitLinear(x, y []float64) LinearFit {
	if len(x) != len(y) || len(x) < 2 || !hasVariance(x) {
		return LinearFit{Ok: false}
	}
	intercept, slope := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, intercept, slope)

	dof := len(x) - 2
	se := math.NaN()
	pVal := 1.0
	if dof > 0 {
		xMean := stat.Mean(x, nil)
		var ssRes, ssX float64
		for i := range x {
			resid := y[i] - (intercept + slope*x[i])
			ssRes += resid * resid
			ssX += (x[i] - xMean) * (x[i] - xMean)
		}
		if ssX > 0 {
			se = math.Sqrt((ssRes / float64(dof)) / ssX)
			pVal = Distributions{}.SlopePValue(slope, se, dof)
		}
	}

	return LinearFit{
		Ok: true, Slope: slope, Intercept: intercept, RSquared: r2,
		SlopeSE: se, DOF: dof, SlopePVal: pVal,
	}
}

func hasVariance(x []float64) bool {
	if len(x) == 0 {
		return false
	}
	first := x[0]
	for _, v := range x[1:] {
		if v != first {
			return true
		}
	}
	return false
}
