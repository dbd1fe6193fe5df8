package analyses

import "ephyscore/domain/registry"

func init() {
	registry.Register(registry.Descriptor{
		Name:      "burst_analysis",
		Label:     "Burst analysis",
		ClampMode: registry.ClampCurrent,
		UIParams: []registry.ParamDescriptor{
			{Name: "threshold", Type: registry.ParamTypeFloat, Label: "Spike threshold (mV)", Default: registry.Float(-20)},
			{Name: "max_isi_start", Type: registry.ParamTypeFloat, Label: "Max ISI to start a burst (s)", Default: registry.Float(0.02)},
			{Name: "max_isi_end", Type: registry.ParamTypeFloat, Label: "Max ISI to continue a burst (s)", Default: registry.Float(0.05)},
			{Name: "min_spikes", Type: registry.ParamTypeInt, Label: "Minimum spikes per burst", Default: registry.Int(3)},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotVLines, Label: "Burst boundaries", SourceKey: "burst_starts"}},
		Fn:    runBurstAnalysis,
	})
}

type burst struct {
	startSpike, endSpike int
}

func runBurstAnalysis(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	threshold := params.FloatOr("threshold", -20)
	maxISIStart := params.FloatOr("max_isi_start", 0.02)
	maxISIEnd := params.FloatOr("max_isi_end", 0.05)
	minSpikes := params.IntOr("min_spikes", 3)

	sp := SpikeDetectionParams{
		Threshold:        threshold,
		RefractoryPeriod: 0.002,
		PeakSearchWindow: 0.005,
		DVDTThresholdVs:  10,
		AHPWindow:        0.02,
		OnsetLookback:    0.003,
	}
	spikes := DetectSpikes(data, time, samplingRate, sp)
	if len(spikes) < 2 {
		return registry.Result{
			"burst_count":           registry.Int(0),
			"spikes_per_burst_avg":  registry.Float(0),
			"burst_duration_avg_s":  registry.Float(0),
			"burst_freq_hz":         registry.Float(0),
		}
	}

	bursts := groupBursts(spikes, maxISIStart, maxISIEnd, minSpikes)

	starts := make([]float64, len(bursts))
	ends := make([]float64, len(bursts))
	totalSpikes := 0
	totalDuration := 0.0
	for i, b := range bursts {
		starts[i] = spikes[b.startSpike].PeakTime
		ends[i] = spikes[b.endSpike].PeakTime
		totalSpikes += b.endSpike - b.startSpike + 1
		totalDuration += ends[i] - starts[i]
	}

	recordingDuration := time[len(time)-1] - time[0]
	result := registry.Result{
		"burst_count":          registry.Int(len(bursts)),
		"burst_starts":         registry.FloatArray(starts),
		"burst_ends":           registry.FloatArray(ends),
	}
	if len(bursts) == 0 {
		result["spikes_per_burst_avg"] = registry.Float(0)
		result["burst_duration_avg_s"] = registry.Float(0)
		result["burst_freq_hz"] = registry.Float(0)
		return result
	}
	result["spikes_per_burst_avg"] = registry.Float(float64(totalSpikes) / float64(len(bursts)))
	result["burst_duration_avg_s"] = registry.Float(totalDuration / float64(len(bursts)))
	if recordingDuration > 0 {
		result["burst_freq_hz"] = registry.Float(float64(len(bursts)) / recordingDuration)
	} else {
		result["burst_freq_hz"] = registry.Float(0)
	}
	return result
}

// groupBursts implements the burst-grouping rule: a burst begins at the
// first spike whose following ISI is at most maxISIStart, and continues
// while successive ISIs stay at or below maxISIEnd. Groups shorter than
// minSpikes are discarded.
func groupBursts(spikes []Spike, maxISIStart, maxISIEnd float64, minSpikes int) []burst {
	var bursts []burst
	i := 0
	for i < len(spikes)-1 {
		isi := spikes[i+1].PeakTime - spikes[i].PeakTime
		if isi > maxISIStart {
			i++
			continue
		}
		start := i
		end := i + 1
		for end < len(spikes)-1 {
			nextISI := spikes[end+1].PeakTime - spikes[end].PeakTime
			if nextISI > maxISIEnd {
				break
			}
			end++
		}
		if end-start+1 >= minSpikes {
			bursts = append(bursts, burst{startSpike: start, endSpike: end})
		}
		i = end + 1
	}
	return bursts
}
