package analyses

import (
	"math"

	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:              "excitability",
		Label:             "F-I curve (excitability)",
		ClampMode:         registry.ClampCurrent,
		RequiresAllTrials: true,
		UIParams: []registry.ParamDescriptor{
			{Name: "start_current", Type: registry.ParamTypeFloat, Label: "Starting current (pA)"},
			{Name: "step_current", Type: registry.ParamTypeFloat, Label: "Current step (pA)"},
			{Name: "threshold", Type: registry.ParamTypeFloat, Label: "Spike threshold (mV)", Default: registry.Float(-20)},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotTrace, Label: "F-I relation", SourceKey: "frequencies"}},
		Fn:    runExcitability,
	})
}

func runExcitability(data, time []float64, samplingRate float64, trials [][]float64, params registry.Params) registry.Result {
	if len(trials) < 2 {
		return errorResult("excitability_error", "excitability requires multiple trials")
	}
	startCurrent := params.FloatOr("start_current", 0)
	stepCurrent := params.FloatOr("step_current", 0)
	threshold := params.FloatOr("threshold", -20)

	sp := SpikeDetectionParams{
		Threshold:        threshold,
		RefractoryPeriod: 0.002,
		PeakSearchWindow: 0.005,
		DVDTThresholdVs:  10,
		AHPWindow:        0.02,
		OnsetLookback:    0.003,
	}

	duration := 0.0
	if len(time) > 1 {
		duration = time[len(time)-1] - time[0]
	}

	currentSteps := make([]float64, len(trials))
	frequencies := make([]float64, len(trials))
	adaptationRatios := make([]float64, len(trials))
	rheobasePA := math.NaN()

	for n, trial := range trials {
		current := startCurrent + float64(n)*stepCurrent
		currentSteps[n] = current

		spikes := DetectSpikes(trial, time, samplingRate, sp)
		if duration > 0 {
			frequencies[n] = float64(len(spikes)) / duration
		}

		if len(spikes) >= 1 && math.IsNaN(rheobasePA) {
			rheobasePA = current
		}

		if len(spikes) < 2 {
			adaptationRatios[n] = math.NaN()
			continue
		}
		isi := isiOf(spikes)
		adaptationRatios[n] = isi[len(isi)-1] / isi[0]
	}

	fit := kernels.FitLinear(currentSteps, frequencies)
	maxFreq, _ := maxOf(frequencies)

	result := registry.Result{
		"rheobase_pa":       registry.Float(rheobasePA),
		"max_freq_hz":       registry.Float(maxFreq),
		"frequencies":       registry.FloatArray(frequencies),
		"adaptation_ratios": registry.FloatArray(adaptationRatios),
		"current_steps":     registry.FloatArray(currentSteps),
	}
	if fit.Ok {
		result["fi_slope"] = registry.Float(fit.Slope)
		result["fi_r_squared"] = registry.Float(fit.RSquared)
		result["fi_slope_p_value"] = registry.Float(fit.SlopePVal)
	} else {
		result["fi_slope"] = registry.Float(0)
		result["fi_r_squared"] = registry.Float(0)
		result["fi_slope_p_value"] = registry.Float(1)
	}
	return result
}
