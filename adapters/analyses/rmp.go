package analyses

import (
	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "baseline_rmp",
		Label:     "Resting membrane potential",
		ClampMode: registry.ClampCurrent,
		UIParams: []registry.ParamDescriptor{
			{Name: "baseline_start", Type: registry.ParamTypeFloat, Label: "Baseline start (s)", Default: registry.Float(0)},
			{Name: "baseline_end", Type: registry.ParamTypeFloat, Label: "Baseline end (s)", Default: registry.Float(0.5)},
			{Name: "auto_detect", Type: registry.ParamTypeBool, Label: "Auto-detect quiet window", Default: registry.Bool(false)},
			{Name: "window_duration", Type: registry.ParamTypeFloat, Label: "Auto window duration (s)", Default: registry.Float(0.1), Hidden: true},
			{Name: "step_duration", Type: registry.ParamTypeFloat, Label: "Auto window step (s)", Default: registry.Float(0.01), Hidden: true},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotVLines, Label: "Baseline window", SourceKey: "rmp_window"}},
		Fn:    runRMP,
	})
}

func runRMP(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	var lo, hi int
	var ok bool

	if params.BoolOr("auto_detect", false) {
		windowDur := params.FloatOr("window_duration", 0.1)
		stepDur := params.FloatOr("step_duration", 0.01)
		lo, hi, ok = autoDetectQuietWindow(data, time, windowDur, stepDur)
		if !ok {
			return errorResult("rmp_error", "could not find a quiet window")
		}
	} else {
		start := params.FloatOr("baseline_start", 0)
		end := params.FloatOr("baseline_end", 0.5)
		lo, hi, ok = windowIndices(time, start, end)
		if !ok {
			return errorResult("rmp_error", "baseline window outside trace bounds")
		}
	}

	segment := data[lo:hi]
	if len(segment) == 0 {
		return errorResult("rmp_error", "empty baseline window")
	}

	mean := meanOf(segment)
	std := stdOf(segment)

	idx := make([]float64, len(segment))
	for i := range idx {
		idx[i] = time[lo+i]
	}
	fit := kernels.FitLinear(idx, segment)
	drift := 0.0
	if fit.Ok {
		drift = fit.Slope
	}

	return registry.Result{
		"rmp_mv":       registry.Float(mean),
		"rmp_std":      registry.Float(std),
		"rmp_drift":    registry.Float(drift),
		"rmp_duration": registry.Float(time[hi-1] - time[lo]),
		"rmp_window":   registry.FloatArray([]float64{time[lo], time[hi-1]}),
	}
}

// autoDetectQuietWindow slides a window across the trace and returns the
// bounds of the one with minimum variance.
func autoDetectQuietWindow(data, time []float64, windowDuration, stepDuration float64) (lo, hi int, ok bool) {
	n := len(time)
	if n == 0 {
		return 0, 0, false
	}
	duration := time[n-1] - time[0]
	if windowDuration <= 0 || windowDuration > duration {
		return 0, 0, false
	}

	bestVariance := -1.0
	for t := time[0]; t+windowDuration <= time[n-1]; t += stepDuration {
		wlo, whi, candidateOk := windowIndices(time, t, t+windowDuration)
		if !candidateOk {
			continue
		}
		variance := stdOf(data[wlo:whi])
		variance *= variance
		if bestVariance < 0 || variance < bestVariance {
			bestVariance = variance
			lo, hi, ok = wlo, whi, true
		}
	}
	return lo, hi, ok
}
