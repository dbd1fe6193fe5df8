package kernels

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions wraps gonum/stat/distuv for the handful of p-values the
// analyses surface alongside effect sizes. SlopePValue backs
// LinearFit.SlopePVal, which iv_curve and excitability report as
// iv_slope_p_value/fi_slope_p_value.
type Distributions struct{}

// SlopePValue computes a two-tailed p-value for a regression slope being
// non-zero, given its standard error and the residual degrees of freedom.
func (Distributions) SlopePValue(slope, stdErr float64, dof int) float64 {
	if dof <= 0 {
		return 1.0
	}
	if stdErr == 0 {
		if slope == 0 {
			return 1.0
		}
		return 0
	}
	t := slope / stdErr
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(dof)}
	return 2 * (1 - dist.CDF(math.Abs(t)))
}

// NormalCDF is the standard normal CDF. No analysis currently calls it;
// the TTL midpoint fallback in opto_sync is a plain min/max midpoint.
func (Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
