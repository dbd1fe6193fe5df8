package analyses

import (
	"math"

	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "phase_plane",
		Label:     "Phase-plane analysis",
		ClampMode: registry.ClampCurrent,
		UIParams: []registry.ParamDescriptor{
			{Name: "sigma_ms", Type: registry.ParamTypeFloat, Label: "Smoothing sigma (ms)", Default: registry.Float(0.1)},
			{Name: "dvdt_threshold", Type: registry.ParamTypeFloat, Label: "dV/dt spike onset threshold (V/s)", Default: registry.Float(10)},
			{Name: "spike_threshold", Type: registry.ParamTypeFloat, Label: "Spike threshold (mV)", Default: registry.Float(-20)},
			{Name: "kink_slope", Type: registry.ParamTypeFloat, Label: "Kink dV/dt (V/s)", Default: registry.Float(5)},
			{Name: "search_window_ms", Type: registry.ParamTypeFloat, Label: "Kink search window (ms)", Default: registry.Float(3)},
		},
		Plots: []registry.PlotDescriptor{{Kind: registry.PlotTrace, Label: "Phase plane", SourceKey: "dvdt"}},
		Fn:    runPhasePlane,
	})
}

func runPhasePlane(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	sigmaMs := params.FloatOr("sigma_ms", 0.1)
	dvdtThresholdVs := params.FloatOr("dvdt_threshold", 10)
	spikeThreshold := params.FloatOr("spike_threshold", -20)
	kinkSlope := params.FloatOr("kink_slope", 5)
	searchWindowMs := params.FloatOr("search_window_ms", 3)

	dvdt := centralDifference(data, samplingRate)
	sigmaSamples := sigmaMs / 1000 * samplingRate
	dvdt = gaussianSmooth(dvdt, sigmaSamples)

	sp := SpikeDetectionParams{
		Threshold:        spikeThreshold,
		RefractoryPeriod: 0.002,
		PeakSearchWindow: 0.005,
		DVDTThresholdVs:  dvdtThresholdVs,
		AHPWindow:        0.02,
		OnsetLookback:    0.003,
	}
	spikes := DetectSpikes(data, time, samplingRate, sp)

	searchSamples := int(searchWindowMs / 1000 * samplingRate)
	thresholds := make([]float64, len(spikes))
	maxDVDTs := make([]float64, len(spikes))
	kinkTimes := make([]float64, len(spikes))

	for i, sp := range spikes {
		thresholds[i] = sp.OnsetValue
		start := sp.PeakIndex - searchSamples
		if start < 0 {
			start = 0
		}
		maxDVDTs[i], _ = maxOf(dvdt[start : sp.PeakIndex+1])

		kinkIdx := -1
		for j := sp.PeakIndex; j > start; j-- {
			if dvdt[j] >= kinkSlope {
				kinkIdx = j
			} else {
				break
			}
		}
		if kinkIdx >= 0 {
			kinkTimes[i] = time[kinkIdx]
		} else {
			kinkTimes[i] = math.NaN()
		}
	}

	return registry.Result{
		"dvdt":           registry.FloatArray(dvdt),
		"spike_count":    registry.Int(len(spikes)),
		"thresholds_mv":  registry.FloatArray(thresholds),
		"max_dvdt":       registry.FloatArray(maxDVDTs),
		"kink_times":     registry.FloatArray(kinkTimes),
	}
}

func centralDifference(x []float64, samplingRate float64) []float64 {
	n := len(x)
	d := make([]float64, n)
	if n < 2 {
		return d
	}
	for i := 1; i < n-1; i++ {
		d[i] = (x[i+1] - x[i-1]) * samplingRate / 2
	}
	d[0] = (x[1] - x[0]) * samplingRate
	d[n-1] = (x[n-1] - x[n-2]) * samplingRate
	return d
}

// gaussianSmooth convolves x with a normalized Gaussian kernel truncated
// at ±3 sigma samples.
func gaussianSmooth(x []float64, sigmaSamples float64) []float64 {
	if sigmaSamples <= 0 {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	radius := int(3 * sigmaSamples)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigmaSamples * sigmaSamples))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	n := len(x)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for k := -radius; k <= radius; k++ {
			idx := i + k
			if idx < 0 {
				idx = 0
			}
			if idx >= n {
				idx = n - 1
			}
			acc += x[idx] * kernel[k+radius]
		}
		out[i] = acc
	}
	return out
}
