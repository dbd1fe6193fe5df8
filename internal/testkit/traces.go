// Package testkit generates synthetic electrophysiology traces for the
// quantified invariants and end-to-end scenarios: a flat resting trace,
// a rectangular voltage step, triangular spikes, a charging curve, a sag
// trace, and an artifact-bearing trace, each paired with its time vector.
package testkit

import "math"

// TraceConfig is shared across every generator: sampling rate and trace
// duration determine the time vector every generator returns alongside
// its data.
type TraceConfig struct {
	SamplingRate float64 // Hz
	Duration     float64 // seconds
}

func (c TraceConfig) timeVector() []float64 {
	n := int(c.Duration * c.SamplingRate)
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / c.SamplingRate
	}
	return t
}

// FlatTrace holds every sample at level, the RMP scenario's input.
func FlatTrace(cfg TraceConfig, level float64) (data, time []float64) {
	time = cfg.timeVector()
	data = make([]float64, len(time))
	for i := range data {
		data[i] = level
	}
	return data, time
}

// RectangularStep steps from baseline to baseline+delta over
// [stepStart, stepEnd) and back, the Rin scenario's input.
func RectangularStep(cfg TraceConfig, baseline, delta, stepStart, stepEnd float64) (data, time []float64) {
	time = cfg.timeVector()
	data = make([]float64, len(time))
	for i, t := range time {
		if t >= stepStart && t < stepEnd {
			data[i] = baseline + delta
		} else {
			data[i] = baseline
		}
	}
	return data, time
}

// TriangularSpikes is a baseline trace with a triangular spike of the
// given peak amplitude and full width centered at each entry of
// peakTimes, the spike-count scenario's input.
func TriangularSpikes(cfg TraceConfig, baseline, peak, fullWidth float64, peakTimes []float64) (data, time []float64) {
	time = cfg.timeVector()
	data = make([]float64, len(time))
	for i := range data {
		data[i] = baseline
	}
	halfWidth := fullWidth / 2
	for _, pt := range peakTimes {
		for i, t := range time {
			dist := math.Abs(t - pt)
			if dist > halfWidth {
				continue
			}
			v := baseline + (1-dist/halfWidth)*(peak-baseline)
			if v > data[i] {
				data[i] = v
			}
		}
	}
	return data, time
}

// ChargingCurve holds baseline until stepStart, then relaxes
// exponentially toward baseline+amplitude with time constant tau, the
// tau-fit scenario's input.
func ChargingCurve(cfg TraceConfig, baseline, amplitude, tau, stepStart float64) (data, time []float64) {
	time = cfg.timeVector()
	data = make([]float64, len(time))
	for i, t := range time {
		if t < stepStart {
			data[i] = baseline
			continue
		}
		data[i] = baseline + amplitude*(1-math.Exp(-(t-stepStart)/tau))
	}
	return data, time
}

// SagTrace steps to peakDelta immediately at onset, then relaxes
// exponentially to steadyDelta for the remainder of [stepStart, stepEnd),
// the sag-ratio scenario's input.
func SagTrace(cfg TraceConfig, baseline, peakDelta, steadyDelta, stepStart, stepEnd, sagTau float64) (data, time []float64) {
	time = cfg.timeVector()
	data = make([]float64, len(time))
	for i, t := range time {
		if t < stepStart || t >= stepEnd {
			data[i] = baseline
			continue
		}
		elapsed := t - stepStart
		data[i] = baseline + steadyDelta + (peakDelta-steadyDelta)*math.Exp(-elapsed/sagTau)
	}
	return data, time
}

// ArtifactTrace is a flat baseline trace with a rectangular artifact of
// artifactAmplitude inserted over [artifactStart, artifactEnd), the
// artifact-blanking scenario's input.
func ArtifactTrace(cfg TraceConfig, baseline, artifactAmplitude, artifactStart, artifactEnd float64) (data, time []float64) {
	return RectangularStep(cfg, baseline, artifactAmplitude-baseline, artifactStart, artifactEnd)
}
