package analyses

import (
	"ephyscore/adapters/dsp"
	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "event_detection_baseline_peak",
		Label:     "Event detection (baseline peak)",
		ClampMode: registry.ClampAny,
		UIParams: []registry.ParamDescriptor{
			{Name: "direction", Type: registry.ParamTypeChoice, Label: "Event direction", Choices: []string{"positive", "negative"}, Default: registry.Str("negative")},
			{Name: "auto_baseline", Type: registry.ParamTypeBool, Label: "Auto-detect baseline window", Default: registry.Bool(true)},
			{Name: "baseline_window", Type: registry.ParamTypeFloat, Label: "Baseline window duration (s)", Default: registry.Float(0.1), Hidden: true},
			{Name: "baseline_step", Type: registry.ParamTypeFloat, Label: "Baseline window step (s)", Default: registry.Float(0.01), Hidden: true},
			{Name: "threshold_sd_factor", Type: registry.ParamTypeFloat, Label: "Threshold (baseline SD multiples)", Default: registry.Float(4)},
			{Name: "min_event_separation_ms", Type: registry.ParamTypeFloat, Label: "Minimum event separation (ms)", Default: registry.Float(2)},
			{Name: "lowpass_cutoff_hz", Type: registry.ParamTypeFloat, Label: "Lowpass pre-filter cutoff (Hz)", Default: registry.Float(0)},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotPoints, Label: "Detected events", SourceKey: "event_indices"}},
		Fn:    runEventDetectionBaselinePeak,
	})
}

func runEventDetectionBaselinePeak(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	direction := params.StrOr("direction", "negative")
	rectified := rectify(data, direction)

	cutoff := params.FloatOr("lowpass_cutoff_hz", 0)
	if cutoff > 0 {
		sections := dsp.Lowpass(4, cutoff, samplingRate)
		rectified = dsp.ZeroPhase(sections, rectified)
	}

	var blo, bhi int
	var ok bool
	if params.BoolOr("auto_baseline", true) {
		windowDur := params.FloatOr("baseline_window", 0.1)
		stepDur := params.FloatOr("baseline_step", 0.01)
		blo, bhi, ok = autoDetectQuietWindow(rectified, time, windowDur, stepDur)
	} else {
		blo, bhi, ok = windowIndices(time, params.FloatOr("baseline_window", 0), params.FloatOr("baseline_step", 0))
	}
	if !ok {
		return errorResult("event_detection_baseline_peak_error", "could not determine a baseline window")
	}

	baselineMean := meanOf(rectified[blo:bhi])
	baselineSD := stdOf(rectified[blo:bhi])
	thresholdValue := baselineMean + params.FloatOr("threshold_sd_factor", 4)*baselineSD

	minSeparationMs := params.FloatOr("min_event_separation_ms", 2)
	distance := int(minSeparationMs / 1000 * samplingRate)

	peaks := kernels.FindPeaks(rectified, kernels.PeakOptions{MinHeight: &thresholdValue, MinDistance: distance})

	result := eventResult(peaks, data, time)
	result["baseline_mean"] = registry.Float(baselineMean)
	result["baseline_sd"] = registry.Float(baselineSD)
	result["threshold_value"] = registry.Float(thresholdValue)
	return result
}
