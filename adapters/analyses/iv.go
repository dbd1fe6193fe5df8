package analyses

import (
	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:              "iv_curve",
		Label:             "I-V curve",
		ClampMode:         registry.ClampCurrent,
		RequiresAllTrials: true,
		UIParams: []registry.ParamDescriptor{
			{Name: "start_current", Type: registry.ParamTypeFloat, Label: "Starting current (pA)"},
			{Name: "step_current", Type: registry.ParamTypeFloat, Label: "Current step (pA)"},
			{Name: "baseline_window", Type: registry.ParamTypeFloat, Label: "Baseline window end (s)"},
			{Name: "response_window", Type: registry.ParamTypeFloat, Label: "Response window end (s)"},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotTrace, Label: "I-V relation", SourceKey: "delta_vs"}},
		Fn:    runIVCurve,
	})
}

// runIVCurve requires more than one trial: each sweep n carries a known
// injected current start_current + n*step_current, and the regression of
// steady-state ΔV against ΔI gives the aggregate input resistance.
func runIVCurve(data, time []float64, samplingRate float64, trials [][]float64, params registry.Params) registry.Result {
	if len(trials) < 2 {
		return errorResult("iv_error", "I-V curve requires multiple trials")
	}
	startCurrent := params.FloatOr("start_current", 0)
	stepCurrent := params.FloatOr("step_current", 0)
	baselineEnd := params.FloatOr("baseline_window", 0)
	responseEnd := params.FloatOr("response_window", 0)
	if baselineEnd <= 0 || responseEnd <= baselineEnd {
		return errorResult("iv_error", "baseline_window and response_window must describe two ordered windows")
	}

	blo, bhi, ok := windowIndices(time, 0, baselineEnd)
	if !ok {
		return errorResult("iv_error", "baseline window outside trace bounds")
	}
	rlo, rhi, ok := windowIndices(time, baselineEnd, responseEnd)
	if !ok {
		return errorResult("iv_error", "response window outside trace bounds")
	}

	deltaVs := make([]float64, 0, len(trials))
	currentSteps := make([]float64, 0, len(trials))
	currentStepsNA := make([]float64, 0, len(trials))
	for n, trial := range trials {
		if bhi > len(trial) || rhi > len(trial) {
			continue
		}
		deltaV := meanOf(trial[rlo:rhi]) - meanOf(trial[blo:bhi])
		current := startCurrent + float64(n)*stepCurrent
		deltaVs = append(deltaVs, deltaV)
		currentSteps = append(currentSteps, current)
		currentStepsNA = append(currentStepsNA, current/1000)
	}
	if len(deltaVs) < 2 {
		return errorResult("iv_error", "fewer than two usable trials")
	}

	fit := kernels.FitLinear(currentStepsNA, deltaVs)
	if !fit.Ok {
		return errorResult("iv_error", "regression failed: insufficient current variation")
	}

	return registry.Result{
		"rin_aggregate_mohm": registry.Float(fit.Slope),
		"iv_intercept":       registry.Float(fit.Intercept),
		"iv_r_squared":       registry.Float(fit.RSquared),
		"iv_slope_p_value":   registry.Float(fit.SlopePVal),
		"delta_vs":           registry.FloatArray(deltaVs),
		"current_steps":      registry.FloatArray(currentSteps),
	}
}
