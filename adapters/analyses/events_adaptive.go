package analyses

import (
	"math"

	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "event_detection_adaptive",
		Label:     "Event detection (adaptive threshold)",
		ClampMode: registry.ClampAny,
		UIParams: []registry.ParamDescriptor{
			{Name: "threshold", Type: registry.ParamTypeFloat, Label: "Amplitude threshold"},
			{Name: "direction", Type: registry.ParamTypeChoice, Label: "Event direction", Choices: []string{"positive", "negative"}, Default: registry.Str("negative")},
			{Name: "refractory_period", Type: registry.ParamTypeFloat, Label: "Refractory period (s)", Default: registry.Float(0.002)},
			{Name: "reject_artifacts", Type: registry.ParamTypeBool, Label: "Reject artifact gradients", Default: registry.Bool(false)},
			{Name: "artifact_slope_threshold", Type: registry.ParamTypeFloat, Label: "Artifact slope threshold", Default: registry.Float(1000)},
			{Name: "artifact_padding_ms", Type: registry.ParamTypeFloat, Label: "Artifact mask padding (ms)", Default: registry.Float(1)},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotPoints, Label: "Detected events", SourceKey: "event_indices"}},
		Fn:    runEventDetectionAdaptive,
	})
}

func runEventDetectionAdaptive(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	threshold := params.FloatOr("threshold", 0)
	direction := params.StrOr("direction", "negative")
	refractoryPeriod := params.FloatOr("refractory_period", 0.002)

	rectified := rectify(data, direction)
	noiseSD := kernels.MAD(rectified)
	minProminence := math.Max(math.Abs(threshold), 2*noiseSD)
	distance := int(refractoryPeriod * samplingRate)

	peaks := kernels.FindPeaks(rectified, kernels.PeakOptions{MinProminence: &minProminence, MinDistance: distance})

	if params.BoolOr("reject_artifacts", false) {
		mask := artifactMask(data, samplingRate, params.FloatOr("artifact_slope_threshold", 1000), params.FloatOr("artifact_padding_ms", 1))
		peaks = rejectMasked(peaks, mask)
	}

	return eventResult(peaks, data, time)
}

// rectify negates the signal for negative-going events so peak detection
// always looks for upward deflections.
func rectify(x []float64, direction string) []float64 {
	if direction != "negative" {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = -v
	}
	return out
}

// artifactMask flags samples where the absolute gradient of the raw
// signal exceeds slopeThreshold, then dilates the flagged region by
// paddingMs on each side.
func artifactMask(x []float64, samplingRate, slopeThreshold, paddingMs float64) []bool {
	n := len(x)
	mask := make([]bool, n)
	for i := 1; i < n; i++ {
		grad := math.Abs(x[i]-x[i-1]) * samplingRate
		if grad > slopeThreshold {
			mask[i] = true
		}
	}
	padding := int(paddingMs / 1000 * samplingRate)
	if padding <= 0 {
		return mask
	}
	dilated := make([]bool, n)
	for i, flagged := range mask {
		if !flagged {
			continue
		}
		lo, hi := i-padding, i+padding
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		for j := lo; j <= hi; j++ {
			dilated[j] = true
		}
	}
	return dilated
}

func rejectMasked(peaks []kernels.Peak, mask []bool) []kernels.Peak {
	out := peaks[:0:0]
	for _, p := range peaks {
		if p.Index < len(mask) && mask[p.Index] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// eventResult flattens detected peaks into the common event-detection
// result shape, reading amplitudes from the raw (unrectified) data.
func eventResult(peaks []kernels.Peak, data, time []float64) registry.Result {
	indices := make([]int, len(peaks))
	times := make([]float64, len(peaks))
	amplitudes := make([]float64, len(peaks))
	for i, p := range peaks {
		indices[i] = p.Index
		times[i] = time[p.Index]
		amplitudes[i] = data[p.Index]
	}

	duration := 0.0
	if len(time) > 1 {
		duration = time[len(time)-1] - time[0]
	}
	freq := 0.0
	if duration > 0 {
		freq = float64(len(peaks)) / duration
	}

	return registry.Result{
		"event_count":      registry.Int(len(peaks)),
		"frequency_hz":     registry.Float(freq),
		"mean_amplitude":   registry.Float(meanOf(amplitudes)),
		"amplitude_sd":     registry.Float(stdOf(amplitudes)),
		"event_indices":    registry.IntArray(indices),
		"event_times":      registry.FloatArray(times),
		"event_amplitudes": registry.FloatArray(amplitudes),
	}
}
