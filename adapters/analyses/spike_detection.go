package analyses

import (
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "spike_detection",
		Label:     "Spike detection",
		ClampMode: registry.ClampCurrent,
		UIParams: []registry.ParamDescriptor{
			{Name: "threshold", Type: registry.ParamTypeFloat, Label: "Threshold (mV)", Default: registry.Float(-20)},
			{Name: "refractory_period", Type: registry.ParamTypeFloat, Label: "Refractory period (s)", Default: registry.Float(0.002)},
			{Name: "peak_search_window", Type: registry.ParamTypeFloat, Label: "Peak search window (s)", Default: registry.Float(0.005)},
			{Name: "dvdt_threshold", Type: registry.ParamTypeFloat, Label: "dV/dt onset threshold (V/s)", Default: registry.Float(10)},
			{Name: "ahp_window", Type: registry.ParamTypeFloat, Label: "AHP search window (s)", Default: registry.Float(0.02)},
			{Name: "onset_lookback", Type: registry.ParamTypeFloat, Label: "Onset lookback (s)", Default: registry.Float(0.003)},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotPoints, Label: "Spike peaks", SourceKey: "spike_indices"}},
		Fn:    runSpikeDetection,
	})
}

func runSpikeDetection(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	spikes := DetectSpikes(data, time, samplingRate, spikeParamsFrom(params))
	return spikeDetectionResult(spikes, time)
}

// spikeDetectionResult flattens a Spike slice into the result map of
// into counts, per-spike arrays, and per-feature mean/SD.
func spikeDetectionResult(spikes []Spike, time []float64) registry.Result {
	result := registry.Result{"spike_count": registry.Int(len(spikes))}

	if len(spikes) == 0 {
		result["mean_freq_hz"] = registry.Float(0)
		return result
	}

	// With two or more spikes the mean frequency is 1/mean ISI; a single
	// spike falls back to one spike over the trace duration.
	count, duration := float64(len(spikes)), 0.0
	if len(spikes) >= 2 {
		count, duration = float64(len(spikes)-1), spikes[len(spikes)-1].PeakTime-spikes[0].PeakTime
	} else if len(time) > 0 {
		duration = time[len(time)-1] - time[0]
	}
	if duration > 0 {
		result["mean_freq_hz"] = registry.Float(count / duration)
	} else {
		result["mean_freq_hz"] = registry.Float(0)
	}

	times := make([]float64, len(spikes))
	indices := make([]int, len(spikes))
	amplitudes := make([]float64, len(spikes))
	halfWidths := make([]float64, len(spikes))
	riseTimes := make([]float64, len(spikes))
	decayTimes := make([]float64, len(spikes))
	ahpDepths := make([]float64, len(spikes))
	ahpHalfDur := make([]float64, len(spikes))
	adpAmps := make([]float64, len(spikes))
	maxDVDTs := make([]float64, len(spikes))
	minDVDTs := make([]float64, len(spikes))

	for i, sp := range spikes {
		times[i] = sp.PeakTime
		indices[i] = sp.PeakIndex
		amplitudes[i] = sp.Amplitude
		halfWidths[i] = sp.HalfWidth
		riseTimes[i] = sp.RiseTime1090
		decayTimes[i] = sp.DecayTime9010
		ahpDepths[i] = sp.AHPDepth
		ahpHalfDur[i] = sp.AHPHalfDuration
		adpAmps[i] = sp.ADPAmplitude
		maxDVDTs[i] = sp.MaxDVDT
		minDVDTs[i] = sp.MinDVDT
	}

	result["spike_times"] = registry.FloatArray(times)
	result["spike_indices"] = registry.IntArray(indices)

	addFeature(result, "amplitude", amplitudes)
	addFeature(result, "half_width", halfWidths)
	addFeature(result, "rise_time_10_90", riseTimes)
	addFeature(result, "decay_time_90_10", decayTimes)
	addFeature(result, "ahp_depth", ahpDepths)
	addFeature(result, "ahp_half_duration", ahpHalfDur)
	addFeature(result, "adp_amplitude", adpAmps)
	addFeature(result, "max_dvdt", maxDVDTs)
	addFeature(result, "min_dvdt", minDVDTs)

	return result
}

func addFeature(result registry.Result, name string, values []float64) {
	result[name+"_mean"] = registry.Float(meanOf(values))
	result[name+"_std"] = registry.Float(stdOf(values))
}
