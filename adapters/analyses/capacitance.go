package analyses

import "ephyscore/domain/registry"

func init() {
	registry.Register(registry.Descriptor{
		Name:      "capacitance",
		Label:     "Membrane capacitance",
		ClampMode: registry.ClampAny,
		UIParams: []registry.ParamDescriptor{
			{Name: "mode", Type: registry.ParamTypeChoice, Label: "Clamp mode", Choices: []string{"CC", "VC"}, Default: registry.Str("CC")},
			{Name: "baseline_window", Type: registry.ParamTypeFloat, Label: "Baseline window end (s)"},
			{Name: "response_window", Type: registry.ParamTypeFloat, Label: "Response window end (s)"},
			{Name: "tau_ms", Type: registry.ParamTypeFloat, Label: "Membrane tau (ms, CC mode)", VisibleWhen: &registry.VisibleWhen{Param: "mode", Equals: registry.Str("CC")}},
			{Name: "rin_mohm", Type: registry.ParamTypeFloat, Label: "Input resistance (MOhm, CC mode)", VisibleWhen: &registry.VisibleWhen{Param: "mode", Equals: registry.Str("CC")}},
			{Name: "command_voltage_mv", Type: registry.ParamTypeFloat, Label: "Command voltage step (mV, VC mode)", VisibleWhen: &registry.VisibleWhen{Param: "mode", Equals: registry.Str("VC")}},
		},
		Fn: runCapacitance,
	})
}

func runCapacitance(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	if params.StrOr("mode", "CC") == "VC" {
		return runCapacitanceVC(data, time, params)
	}
	return runCapacitanceCC(params)
}

// runCapacitanceCC uses C_m [pF] = tau [ms] / R_in [MOhm]; the units
// cancel directly with no scaling factor.
func runCapacitanceCC(params registry.Params) registry.Result {
	tauMs, hasTau := params.RequireFloat("tau_ms")
	rinMohm, hasRin := params.RequireFloat("rin_mohm")
	if !hasTau || !hasRin {
		return errorResult("capacitance_error", "CC mode requires tau_ms and rin_mohm")
	}
	if rinMohm == 0 {
		return errorResult("capacitance_error", "zero input resistance")
	}
	return registry.Result{"capacitance_pf": registry.Float(tauMs / rinMohm)}
}

// runCapacitanceVC integrates the transient minus steady-state current
// over the response window (trapezoidal rule) and divides by the known
// command voltage step to get C_m = Q / ΔV.
func runCapacitanceVC(data, time []float64, params registry.Params) registry.Result {
	baselineEnd := params.FloatOr("baseline_window", 0)
	responseEnd := params.FloatOr("response_window", 0)
	if baselineEnd <= 0 || responseEnd <= baselineEnd {
		return errorResult("capacitance_error", "baseline_window and response_window must describe two ordered windows")
	}
	blo, bhi, ok := windowIndices(time, 0, baselineEnd)
	if !ok {
		return errorResult("capacitance_error", "baseline window outside trace bounds")
	}
	rlo, rhi, ok := windowIndices(time, baselineEnd, responseEnd)
	if !ok {
		return errorResult("capacitance_error", "response window outside trace bounds")
	}
	commandV, hasCommand := params.RequireFloat("command_voltage_mv")
	if !hasCommand || commandV == 0 {
		return errorResult("capacitance_error", "missing required parameter \"command_voltage_mv\"")
	}

	iSS := meanOf(data[blo:bhi])
	charge := trapezoidalIntegral(data[rlo:rhi], time[rlo:rhi], iSS)
	return registry.Result{
		"capacitance_pf": registry.Float(charge / commandV * 1000),
		"charge_pc":       registry.Float(charge),
	}
}

// trapezoidalIntegral integrates (y - baseline) dt across x via the
// trapezoidal rule.
func trapezoidalIntegral(y, x []float64, baseline float64) float64 {
	if len(y) < 2 {
		return 0
	}
	total := 0.0
	for i := 1; i < len(y); i++ {
		dt := x[i] - x[i-1]
		total += 0.5 * dt * ((y[i] - baseline) + (y[i-1] - baseline))
	}
	return total
}
