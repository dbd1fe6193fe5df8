package analyses

import (
	"ephyscore/adapters/kernels"
	"ephyscore/domain/registry"
)

func init() {
	registry.Register(registry.Descriptor{
		Name:      "spike_train_dynamics",
		Label:     "Spike-train dynamics",
		ClampMode: registry.ClampCurrent,
		UIParams: []registry.ParamDescriptor{
			{Name: "threshold", Type: registry.ParamTypeFloat, Label: "Spike threshold (mV)", Default: registry.Float(-20)},
		},
		Fn: runSpikeTrainDynamics,
	})
}

func runSpikeTrainDynamics(data, time []float64, samplingRate float64, _ [][]float64, params registry.Params) registry.Result {
	sp := SpikeDetectionParams{
		Threshold:        params.FloatOr("threshold", -20),
		RefractoryPeriod: 0.002,
		PeakSearchWindow: 0.005,
		DVDTThresholdVs:  10,
		AHPWindow:        0.02,
		OnsetLookback:    0.003,
	}
	spikes := DetectSpikes(data, time, samplingRate, sp)
	isi := isiOf(spikes)
	if len(isi) < 1 {
		return errorResult("spike_train_dynamics_error", "fewer than two spikes")
	}

	stats := kernels.ComputeSpikeTrainStats(isi)
	if !stats.Ok {
		return errorResult("spike_train_dynamics_error", "insufficient data for spike-train statistics")
	}

	return registry.Result{
		"isi_s":       registry.FloatArray(isi),
		"mean_isi_s":  registry.Float(meanOf(isi)),
		"cv":          registry.Float(stats.CV),
		"cv2":         registry.Float(stats.CV2),
		"lv":          registry.Float(stats.LV),
	}
}
