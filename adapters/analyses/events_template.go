package analyses

import (
	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "event_detection_template",
		Label:     "Event detection (template match)",
		ClampMode: registry.ClampAny,
		UIParams: []registry.ParamDescriptor{
			{Name: "tau_rise_ms", Type: registry.ParamTypeFloat, Label: "Template rise tau (ms)", Default: registry.Float(0.5)},
			{Name: "tau_decay_ms", Type: registry.ParamTypeFloat, Label: "Template decay tau (ms)", Default: registry.Float(3)},
			{Name: "threshold_sd", Type: registry.ParamTypeFloat, Label: "Match threshold (SD)", Default: registry.Float(4)},
			{Name: "direction", Type: registry.ParamTypeChoice, Label: "Event direction", Choices: []string{"positive", "negative"}, Default: registry.Str("negative")},
			{Name: "reject_artifacts", Type: registry.ParamTypeBool, Label: "Reject artifact gradients", Default: registry.Bool(false)},
			{Name: "artifact_slope_threshold", Type: registry.ParamTypeFloat, Label: "Artifact slope threshold", Default: registry.Float(1000)},
			{Name: "artifact_padding_ms", Type: registry.ParamTypeFloat, Label: "Artifact mask padding (ms)", Default: registry.Float(1)},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotPoints, Label: "Matched events", SourceKey: "event_indices"}},
		Fn:    runEventDetectionTemplate,
	})
}

func runEventDetectionTemplate(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	tauRiseMs := params.FloatOr("tau_rise_ms", 0.5)
	tauDecayMs := params.FloatOr("tau_decay_ms", 3)
	thresholdSD := params.FloatOr("threshold_sd", 4)
	direction := params.StrOr("direction", "negative")

	tauRise := tauRiseMs / 1000
	tauDecay := tauDecayMs / 1000

	rectified := rectify(data, direction)
	kernel := kernels.BuildKernel(tauRise, tauDecay, samplingRate)
	filtered := kernels.MatchedFilter(rectified, kernel)
	z := kernels.ZScore(filtered)

	distance := int(tauDecay * samplingRate)
	if distance < 1 {
		distance = 1
	}
	peaks := kernels.FindPeaks(z, kernels.PeakOptions{MinHeight: &thresholdSD, MinDistance: distance})

	if params.BoolOr("reject_artifacts", false) {
		mask := artifactMask(data, samplingRate, params.FloatOr("artifact_slope_threshold", 1000), params.FloatOr("artifact_padding_ms", 1))
		peaks = rejectMasked(peaks, mask)
	}

	result := eventResult(peaks, data, time)
	result["tau_rise_ms"] = registry.Float(tauRiseMs)
	result["tau_decay_ms"] = registry.Float(tauDecayMs)
	result["threshold_sd"] = registry.Float(thresholdSD)
	return result
}
