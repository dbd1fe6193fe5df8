package analyses

import (
	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "tau",
		Label:     "Membrane time constant",
		ClampMode: registry.ClampAny,
		UIParams: []registry.ParamDescriptor{
			{Name: "stim_start_time", Type: registry.ParamTypeFloat, Label: "Stimulus start (s)"},
			{Name: "fit_duration", Type: registry.ParamTypeFloat, Label: "Fit duration (s)", Default: registry.Float(0.1)},
			{Name: "tau_model", Type: registry.ParamTypeChoice, Label: "Decay model", Choices: []string{"mono", "bi"}, Default: registry.Str("mono")},
			{Name: "artifact_blanking", Type: registry.ParamTypeFloat, Label: "Artifact blanking (ms)", Default: registry.Float(0)},
			{Name: "tau_bound_min_ms", Type: registry.ParamTypeFloat, Label: "Tau lower bound (ms)", Default: registry.Float(0.1)},
			{Name: "tau_bound_max_ms", Type: registry.ParamTypeFloat, Label: "Tau upper bound (ms)", Default: registry.Float(5000)},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotTrace, Label: "Fitted decay", SourceKey: "tau_fit_curve"}},
		Fn:    runTau,
	})
}

func runTau(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	stimStart := params.FloatOr("stim_start_time", 0)
	fitDuration := params.FloatOr("fit_duration", 0.1)
	blankingMs := params.FloatOr("artifact_blanking", 0)
	tauMinMs := params.FloatOr("tau_bound_min_ms", 0.1)
	tauMaxMs := params.FloatOr("tau_bound_max_ms", 5000)

	fitStart := stimStart + blankingMs/1000
	fitEnd := stimStart + fitDuration
	lo, hi, ok := windowIndices(time, fitStart, fitEnd)
	if !ok {
		return errorResult("tau_error", "fit failed")
	}

	t := time[lo:hi]
	y := data[lo:hi]
	tauMin := tauMinMs / 1000
	tauMax := tauMaxMs / 1000

	if params.StrOr("tau_model", "mono") == "bi" {
		fit := kernels.FitBiExponential(t, y, stimStart, tauMin, tauMax)
		if !fit.Ok {
			return errorResult("tau_error", "fit failed")
		}
		return registry.Result{
			"tau_fast_ms":    registry.Float(fit.Params[2] * 1000),
			"tau_slow_ms":    registry.Float(fit.Params[4] * 1000),
			"amplitude_fast": registry.Float(fit.Params[1]),
			"amplitude_slow": registry.Float(fit.Params[3]),
			"steady_state":   registry.Float(fit.Params[0]),
			"tau_fit_curve":  registry.FloatArray(fit.Curve),
		}
	}

	fit := kernels.FitMonoExponential(t, y, stimStart, tauMin, tauMax)
	if !fit.Ok {
		return errorResult("tau_error", "fit failed")
	}
	return registry.Result{
		"tau_ms":        registry.Float(fit.Params[2] * 1000),
		"amplitude":     registry.Float(fit.Params[1]),
		"steady_state":  registry.Float(fit.Params[0]),
		"tau_fit_curve": registry.FloatArray(fit.Curve),
	}
}
