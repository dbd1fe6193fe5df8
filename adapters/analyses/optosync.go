package analyses

import (
	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "opto_sync",
		Label:     "Optogenetic synchronization",
		ClampMode: registry.ClampAny,
		RequiresSecondaryChannel: &registry.SecondaryChannel{
			ParamName: "ttl",
			Label:     "TTL stimulus channel",
		},
		UIParams: []registry.ParamDescriptor{
			{Name: "ttl_threshold", Type: registry.ParamTypeFloat, Label: "TTL threshold (V)", Default: registry.Float(2.5)},
			{Name: "response_window_ms", Type: registry.ParamTypeFloat, Label: "Response window (ms)", Default: registry.Float(20)},
			{Name: "event_mode", Type: registry.ParamTypeChoice, Label: "Event detection mode", Choices: []string{"spikes", "event_threshold", "event_template"}, Default: registry.Str("spikes")},
			{Name: "spike_threshold", Type: registry.ParamTypeFloat, Label: "Spike threshold (mV)", Default: registry.Float(-20)},
			{Name: "event_threshold", Type: registry.ParamTypeFloat, Label: "Event amplitude threshold", Default: registry.Float(5)},
			{Name: "tau_rise_ms", Type: registry.ParamTypeFloat, Label: "Template rise tau (ms)", Default: registry.Float(0.5)},
			{Name: "tau_decay_ms", Type: registry.ParamTypeFloat, Label: "Template decay tau (ms)", Default: registry.Float(3)},
			{Name: "threshold_sd", Type: registry.ParamTypeFloat, Label: "Template match threshold (SD)", Default: registry.Float(4)},
		},
		Fn: runOptoSync,
	})
}

func runOptoSync(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	ttlData, hasTTL := params["ttl_data"]
	if !hasTTL {
		return errorResult("opto_sync_error", "missing secondary TTL channel")
	}
	ttl := ttlData.FloatArray()
	if len(ttl) != len(data) {
		return errorResult("opto_sync_error", "TTL channel length does not match primary channel")
	}

	threshold := params.FloatOr("ttl_threshold", 2.5)
	onsets := detectTTLOnsets(ttl, threshold)
	if len(onsets) == 0 {
		return errorResult("opto_sync_error", "no TTL stimulus onsets detected")
	}

	eventTimes := detectOptoEvents(data, samplingRate, params)

	windowS := params.FloatOr("response_window_ms", 20) / 1000
	latencies := make([]float64, 0, len(onsets))
	responded := 0
	for _, onsetIdx := range onsets {
		t0 := time[onsetIdx]
		firstLatency, found := -1.0, false
		for _, et := range eventTimes {
			if et >= t0 && et <= t0+windowS {
				if !found || et-t0 < firstLatency {
					firstLatency = et - t0
					found = true
				}
			}
		}
		if found {
			latencies = append(latencies, firstLatency)
			responded++
		}
	}

	onsetTimes := make([]float64, len(onsets))
	for i, idx := range onsets {
		onsetTimes[i] = time[idx]
	}

	result := registry.Result{
		"response_probability": registry.Float(float64(responded) / float64(len(onsets))),
		"stimulus_count":        registry.Int(len(onsets)),
		"stimulus_onsets":       registry.FloatArray(onsetTimes),
		"event_count":           registry.Int(len(eventTimes)),
		"event_times":           registry.FloatArray(eventTimes),
	}
	if len(latencies) > 0 {
		result["optical_latency_ms"] = registry.Float(meanOf(latencies) * 1000)
		result["spike_jitter_ms"] = registry.Float(stdOf(latencies) * 1000)
	} else {
		result["optical_latency_ms"] = registry.Float(0)
		result["spike_jitter_ms"] = registry.Float(0)
	}
	return result
}

// detectTTLOnsets binarizes a TTL trace by threshold and returns rising
// edges. If the supplied threshold yields zero or one edge, it falls back
// to the midpoint of the signal's min/max range.
func detectTTLOnsets(ttl []float64, threshold float64) []int {
	onsets := risingEdges(ttl, threshold)
	if len(onsets) >= 2 {
		return onsets
	}
	lo, _ := minOf(ttl)
	hi, _ := maxOf(ttl)
	mid := lo + (hi-lo)/2
	return risingEdges(ttl, mid)
}

func risingEdges(x []float64, threshold float64) []int {
	var edges []int
	prevHigh := x[0] >= threshold
	for i := 1; i < len(x); i++ {
		high := x[i] >= threshold
		if high && !prevHigh {
			edges = append(edges, i)
		}
		prevHigh = high
	}
	return edges
}

func detectOptoEvents(data []float64, samplingRate float64, params registry.Params) []float64 {
	switch params.StrOr("event_mode", "spikes") {
	case "event_threshold":
		return detectOptoThresholdEvents(data, samplingRate, params)
	case "event_template":
		return detectOptoTemplateEvents(data, samplingRate, params)
	default:
		sp := SpikeDetectionParams{
			Threshold:        params.FloatOr("spike_threshold", -20),
			RefractoryPeriod: 0.002,
			PeakSearchWindow: 0.005,
			DVDTThresholdVs:  10,
			AHPWindow:        0.02,
			OnsetLookback:    0.003,
		}
		time := make([]float64, len(data))
		for i := range time {
			time[i] = float64(i) / samplingRate
		}
		spikes := DetectSpikes(data, time, samplingRate, sp)
		times := make([]float64, len(spikes))
		for i, sp := range spikes {
			times[i] = sp.PeakTime
		}
		return times
	}
}

func detectOptoThresholdEvents(data []float64, samplingRate float64, params registry.Params) []float64 {
	threshold := params.FloatOr("event_threshold", 5)
	peaks := kernels.FindPeaks(data, kernels.PeakOptions{MinHeight: &threshold, MinDistance: int(0.001 * samplingRate)})
	times := make([]float64, len(peaks))
	for i, p := range peaks {
		times[i] = float64(p.Index) / samplingRate
	}
	return times
}

func detectOptoTemplateEvents(data []float64, samplingRate float64, params registry.Params) []float64 {
	tauRise := params.FloatOr("tau_rise_ms", 0.5) / 1000
	tauDecay := params.FloatOr("tau_decay_ms", 3) / 1000
	thresholdSD := params.FloatOr("threshold_sd", 4)

	kernel := kernels.BuildKernel(tauRise, tauDecay, samplingRate)
	filtered := kernels.MatchedFilter(data, kernel)
	z := kernels.ZScore(filtered)

	distance := int(tauDecay * samplingRate)
	if distance < 1 {
		distance = 1
	}
	peaks := kernels.FindPeaks(z, kernels.PeakOptions{MinHeight: &thresholdSD, MinDistance: distance})
	times := make([]float64, len(peaks))
	for i, p := range peaks {
		times[i] = float64(p.Index) / samplingRate
	}
	return times
}
