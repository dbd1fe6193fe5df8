package analyses

import "ephyscore/domain/registry"

func init() {
	registry.Register(registry.Descriptor{
		Name:      "input_resistance",
		Label:     "Input resistance",
		ClampMode: registry.ClampAny,
		UIParams: []registry.ParamDescriptor{
			{Name: "mode", Type: registry.ParamTypeChoice, Label: "Clamp mode", Choices: []string{"CC", "VC"}, Default: registry.Str("CC")},
			{Name: "baseline_window", Type: registry.ParamTypeFloat, Label: "Baseline window end (s)"},
			{Name: "response_window", Type: registry.ParamTypeFloat, Label: "Response window end (s)"},
			{Name: "current_amplitude", Type: registry.ParamTypeFloat, Label: "Injected current (pA)", VisibleWhen: &registry.VisibleWhen{Param: "mode", Equals: registry.Str("CC")}},
			{Name: "command_voltage_mv", Type: registry.ParamTypeFloat, Label: "Command voltage step (mV)", VisibleWhen: &registry.VisibleWhen{Param: "mode", Equals: registry.Str("VC")}},
		},
		Fn: runInputResistance,
	})
}

// runInputResistance: current-clamp divides a
// measured ΔV by a known injected ΔI; voltage-clamp divides a known
// command ΔV by a measured ΔI (the trace itself is the current record).
func runInputResistance(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	baselineEnd := params.FloatOr("baseline_window", 0)
	responseEnd := params.FloatOr("response_window", 0)
	if baselineEnd <= 0 || responseEnd <= baselineEnd {
		return errorResult("rin_error", "baseline_window and response_window must describe two ordered windows")
	}

	blo, bhi, ok := windowIndices(time, 0, baselineEnd)
	if !ok {
		return errorResult("rin_error", "baseline window outside trace bounds")
	}
	rlo, rhi, ok := windowIndices(time, baselineEnd, responseEnd)
	if !ok {
		return errorResult("rin_error", "response window outside trace bounds")
	}

	baselineLevel := meanOf(data[blo:bhi])
	responseLevel := meanOf(data[rlo:rhi])

	if params.StrOr("mode", "CC") == "VC" {
		commandV, hasCommand := params.RequireFloat("command_voltage_mv")
		if !hasCommand || commandV == 0 {
			return errorResult("rin_error", "missing required parameter \"command_voltage_mv\"")
		}
		deltaINA := (responseLevel - baselineLevel) / 1000
		if deltaINA == 0 {
			return errorResult("rin_error", "zero current deflection")
		}
		rin := absF(commandV) / absF(deltaINA)
		return rinResult(rin, commandV, responseLevel-baselineLevel, baselineLevel, responseLevel, data[rlo:rhi])
	}

	currentPA, hasCurrent := params.RequireFloat("current_amplitude")
	if !hasCurrent || currentPA == 0 {
		return errorResult("rin_error", "missing required parameter \"current_amplitude\"")
	}
	deltaV := responseLevel - baselineLevel
	deltaINA := currentPA / 1000
	rin := absF(deltaV) / absF(deltaINA)
	return rinResult(rin, deltaV, currentPA, baselineLevel, responseLevel, data[rlo:rhi])
}

func rinResult(rinMohm, deltaV, currentInjectionPA, baseline, steadyState float64, response []float64) registry.Result {
	return registry.Result{
		"rin_mohm":                registry.Float(rinMohm),
		"conductance_us":          registry.Float(1 / rinMohm),
		"voltage_deflection_mv":   registry.Float(deltaV),
		"current_injection_pa":    registry.Float(currentInjectionPA),
		"baseline_voltage_mv":     registry.Float(baseline),
		"steady_state_voltage_mv": registry.Float(steadyState),
		"sag_ratio":               registry.Float(sagRatio(response, baseline, steadyState)),
	}
}

// sagRatio is (V_peak - V_baseline) / (V_ss - V_baseline), the transient
// deflection's peak measured against its own steady state; the ratio is
// >= 1 whenever the response sags back toward baseline after an initial
// overshoot. V_peak is the response-window sample furthest from baseline;
// V_ss is the last response-window sample, where the sag has settled
// (the steadyState argument, a mean over the whole window, is not used).
func sagRatio(response []float64, baseline, _ float64) float64 {
	if len(response) == 0 {
		return 0
	}
	steadyState := response[len(response)-1]
	peak := response[0]
	peakDeviation := absF(peak - baseline)
	for _, v := range response[1:] {
		if d := absF(v - baseline); d > peakDeviation {
			peak, peakDeviation = v, d
		}
	}
	denom := steadyState - baseline
	if absF(denom) < 1e-12 {
		denom = 1e-12
	}
	return (peak - baseline) / denom
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
