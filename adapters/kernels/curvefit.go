package kernels

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// FitResult is the outcome of a bounded non-linear least-squares fit.
// Ok is false when the fit failed for any of the documented reasons;
// Params and Curve are then nil.
type FitResult struct {
	Ok     bool
	Reason string
	Params []float64 // in the order the model function expects
	Curve  []float64 // model evaluated at every input t
}

// Bound is an inclusive [Min, Max] constraint on one fit parameter.
type Bound struct {
	Min, Max float64
}

func clampToBound(v float64, b Bound) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// model evaluates the fit function at t given a parameter vector.
type model func(t float64, p []float64) float64

// jacobianModel evaluates the partial derivative of model w.r.t. each
// parameter at t.
type jacobianModel func(t float64, p []float64) []float64

// gaussNewtonFit runs a bounded Gauss-Newton least-squares fit. Each
// iteration solves the normal equations J^T J * delta = J^T r via
// gonum/mat, then clamps the updated parameters to bounds, a
// hand-rolled stand-in for a true Levenberg-Marquardt-with-bounds
// optimizer (gonum has no off-the-shelf bounded nonlinear least squares
// solver).
func gaussNewtonFit(t, y []float64, init []float64, bounds []Bound, fn model, jac jacobianModel, maxIter int) ([]float64, bool) {
	n := len(t)
	p := make([]float64, len(init))
	for i, v := range init {
		p[i] = clampToBound(v, bounds[i])
	}

	const tol = 1e-9
	var prevSSE = math.Inf(1)

	for iter := 0; iter < maxIter; iter++ {
		resid := mat.NewVecDense(n, nil)
		jacM := mat.NewDense(n, len(p), nil)
		sse := 0.0
		for i := 0; i < n; i++ {
			r := y[i] - fn(t[i], p)
			resid.SetVec(i, r)
			sse += r * r
			row := jac(t[i], p)
			for k, v := range row {
				jacM.Set(i, k, v)
			}
		}
		if math.Abs(prevSSE-sse) < tol*(1+prevSSE) {
			return p, true
		}
		prevSSE = sse

		var jt mat.Dense
		jt.CloneFrom(jacM.T())
		var jtj mat.Dense
		jtj.Mul(&jt, jacM)
		var jtr mat.VecDense
		jtr.MulVec(&jt, resid)

		for k := range p {
			jtj.Set(k, k, jtj.At(k, k)+1e-8)
		}

		var delta mat.VecDense
		if err := delta.SolveVec(&jtj, &jtr); err != nil {
			return p, false
		}
		for k := range p {
			p[k] = clampToBound(p[k]+delta.AtVec(k), bounds[k])
		}
	}
	return p, true
}

// FitMonoExponential fits V(t) = Vss + (V0 - Vss)*exp(-(t-t0)/tau).
// t0 is fixed to stimOnset; tau is bounded to [tauMin, tauMax]
// expressed in the same time units as t (seconds).
func FitMonoExponential(t, y []float64, stimOnset, tauMin, tauMax float64) FitResult {
	const nMin = 3
	if len(t) < nMin || len(t) != len(y) {
		return FitResult{Ok: false, Reason: "fit failed"}
	}

	vss0 := Median(y[max(0, len(y)-len(y)/5):])
	v00 := y[0]
	if math.Abs(v00-vss0) < 1e-9 {
		return FitResult{Ok: false, Reason: "fit failed"}
	}
	tau0 := clampToBound((tauMin+tauMax)/2, Bound{tauMin, tauMax})

	init := []float64{vss0, v00 - vss0, tau0}
	bounds := []Bound{
		{math.Inf(-1), math.Inf(1)},
		{math.Inf(-1), math.Inf(1)},
		{tauMin, tauMax},
	}
	fn := func(ti float64, p []float64) float64 {
		return p[0] + p[1]*math.Exp(-(ti-stimOnset)/p[2])
	}
	jac := func(ti float64, p []float64) []float64 {
		e := math.Exp(-(ti - stimOnset) / p[2])
		dA := e
		dtau := p[1] * e * (ti - stimOnset) / (p[2] * p[2])
		return []float64{1, dA, dtau}
	}

	fitted, converged := gaussNewtonFit(t, y, init, bounds, fn, jac, 200)
	if !converged {
		return FitResult{Ok: false, Reason: "fit failed"}
	}
	curve := make([]float64, len(t))
	for i := range t {
		curve[i] = fn(t[i], fitted)
	}
	return FitResult{Ok: true, Params: fitted, Curve: curve}
}

// FitBiExponential fits a two-component decay with tauFast < tauSlow
// enforced by bound ordering.
func FitBiExponential(t, y []float64, stimOnset, tauMin, tauMax float64) FitResult {
	const nMin = 6
	if len(t) < nMin || len(t) != len(y) {
		return FitResult{Ok: false, Reason: "fit failed"}
	}

	vss0 := Median(y[max(0, len(y)-len(y)/5):])
	amp0 := (y[0] - vss0) / 2
	if math.Abs(y[0]-vss0) < 1e-9 {
		return FitResult{Ok: false, Reason: "fit failed"}
	}
	tauFast0 := tauMin + (tauMax-tauMin)*0.1
	tauSlow0 := tauMin + (tauMax-tauMin)*0.5

	init := []float64{vss0, amp0, tauFast0, amp0, tauSlow0}
	mid := tauMin + (tauMax-tauMin)/2
	bounds := []Bound{
		{math.Inf(-1), math.Inf(1)},
		{math.Inf(-1), math.Inf(1)},
		{tauMin, mid},
		{math.Inf(-1), math.Inf(1)},
		{mid, tauMax},
	}
	fn := func(ti float64, p []float64) float64 {
		dt := ti - stimOnset
		return p[0] + p[1]*math.Exp(-dt/p[2]) + p[3]*math.Exp(-dt/p[4])
	}
	jac := func(ti float64, p []float64) []float64 {
		dt := ti - stimOnset
		eFast := math.Exp(-dt / p[2])
		eSlow := math.Exp(-dt / p[4])
		return []float64{
			1,
			eFast,
			p[1] * eFast * dt / (p[2] * p[2]),
			eSlow,
			p[3] * eSlow * dt / (p[4] * p[4]),
		}
	}

	fitted, converged := gaussNewtonFit(t, y, init, bounds, fn, jac, 300)
	if !converged || fitted[2] >= fitted[4] {
		return FitResult{Ok: false, Reason: "fit failed"}
	}
	curve := make([]float64, len(t))
	for i := range t {
		curve[i] = fn(t[i], fitted)
	}
	return FitResult{Ok: true, Params: fitted, Curve: curve}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
