package analyses

import (
	"math"

	"ephyscore/domain/registry"
)

// Spike holds the per-spike features detected in one trace.
type Spike struct {
	PeakIndex       int
	PeakTime        float64
	PeakValue       float64
	OnsetIndex      int
	OnsetValue      float64
	Amplitude       float64
	HalfWidth       float64
	RiseTime1090    float64
	DecayTime9010   float64
	AHPDepth        float64
	AHPHalfDuration float64
	ADPAmplitude    float64
	MaxDVDT         float64
	MinDVDT         float64
}

// SpikeDetectionParams holds the tunable thresholds for spike detection.
type SpikeDetectionParams struct {
	Threshold        float64
	RefractoryPeriod float64
	PeakSearchWindow float64
	DVDTThresholdVs  float64
	AHPWindow        float64
	OnsetLookback    float64
}

func spikeParamsFrom(p registry.Params) SpikeDetectionParams {
	return SpikeDetectionParams{
		Threshold:        p.FloatOr("threshold", -20),
		RefractoryPeriod: p.FloatOr("refractory_period", 0.002),
		PeakSearchWindow: p.FloatOr("peak_search_window", 0.005),
		DVDTThresholdVs:  p.FloatOr("dvdt_threshold", 10),
		AHPWindow:        p.FloatOr("ahp_window", 0.02),
		OnsetLookback:    p.FloatOr("onset_lookback", 0.003),
	}
}

// DetectSpikes implements the threshold-crossing algorithm of spec
// §4.5.2, steps 1-4.
func DetectSpikes(data, time []float64, samplingRate float64, p SpikeDetectionParams) []Spike {
	n := len(data)
	if n < 2 {
		return nil
	}
	dvdt := derivative(data, samplingRate)

	crossings := upwardCrossings(data, p.Threshold)
	crossings = enforceRefractory(crossings, int(p.RefractoryPeriod*samplingRate))

	peakSearchSamples := int(p.PeakSearchWindow * samplingRate)
	lookbackSamples := int(p.OnsetLookback * samplingRate)
	ahpSamples := int(p.AHPWindow * samplingRate)
	dvdtThresholdMvS := p.DVDTThresholdVs * 1000

	var spikes []Spike
	for _, c := range crossings {
		end := c + peakSearchSamples
		if end > n {
			end = n
		}
		if end <= c {
			continue
		}
		_, relPeak := maxOf(data[c:end])
		peakIdx := c + relPeak

		onsetIdx := findOnset(data, dvdt, peakIdx, lookbackSamples, dvdtThresholdMvS)
		onsetVal := data[onsetIdx]
		peakVal := data[peakIdx]
		amplitude := peakVal - onsetVal
		if amplitude <= 0 {
			continue
		}

		sp := Spike{
			PeakIndex:  peakIdx,
			PeakTime:   time[minInt(peakIdx, len(time)-1)],
			PeakValue:  peakVal,
			OnsetIndex: onsetIdx,
			OnsetValue: onsetVal,
			Amplitude:  amplitude,
		}
		sp.HalfWidth = widthAtLevel(data, samplingRate, onsetIdx, peakIdx, onsetVal+0.5*amplitude)
		sp.RiseTime1090 = riseTime(data, samplingRate, onsetIdx, peakIdx, onsetVal+0.1*amplitude, onsetVal+0.9*amplitude)
		sp.DecayTime9010 = decayTime(data, samplingRate, peakIdx, onsetVal+0.9*amplitude, onsetVal+0.1*amplitude)

		ahpEnd := peakIdx + ahpSamples
		if ahpEnd > n {
			ahpEnd = n
		}
		if ahpEnd > peakIdx {
			ahpMin, ahpMinRel := minOf(data[peakIdx:ahpEnd])
			sp.AHPDepth = onsetVal - ahpMin
			sp.AHPHalfDuration, sp.ADPAmplitude = ahpRecovery(data, samplingRate, peakIdx, peakIdx+ahpMinRel, ahpEnd, onsetVal, ahpMin)
		} else {
			sp.ADPAmplitude = math.NaN()
		}

		maxEnd := peakIdx + int(0.005*samplingRate)
		if maxEnd > n {
			maxEnd = n
		}
		if maxEnd > onsetIdx {
			sp.MaxDVDT, _ = maxOf(dvdt[onsetIdx:maxEnd])
			sp.MinDVDT, _ = minOf(dvdt[onsetIdx:maxEnd])
		}

		spikes = append(spikes, sp)
	}
	return spikes
}

func upwardCrossings(data []float64, threshold float64) []int {
	var crossings []int
	for i := 1; i < len(data); i++ {
		if data[i-1] < threshold && data[i] >= threshold {
			crossings = append(crossings, i)
		}
	}
	return crossings
}

// enforceRefractory keeps the first of any pair of crossings closer than
// minDistance samples. The refractory period applies to crossings, not peaks.
func enforceRefractory(crossings []int, minDistance int) []int {
	if len(crossings) == 0 {
		return crossings
	}
	out := []int{crossings[0]}
	for _, c := range crossings[1:] {
		if c-out[len(out)-1] >= minDistance {
			out = append(out, c)
		}
	}
	return out
}

func findOnset(data, dvdt []float64, peakIdx, lookback int, dvdtThreshold float64) int {
	start := peakIdx - lookback
	if start < 0 {
		start = 0
	}
	for i := start; i <= peakIdx; i++ {
		if dvdt[i] >= dvdtThreshold {
			return i
		}
	}
	return start
}

func widthAtLevel(data []float64, samplingRate float64, onsetIdx, peakIdx int, level float64) float64 {
	riseIdx := -1.0
	for i := onsetIdx; i < peakIdx; i++ {
		if data[i] < level && data[i+1] >= level {
			riseIdx = interpCross(i, data[i], i+1, data[i+1], level)
			break
		}
	}
	fallIdx := -1.0
	for i := peakIdx; i < len(data)-1; i++ {
		if data[i] >= level && data[i+1] < level {
			fallIdx = interpCross(i, data[i], i+1, data[i+1], level)
			break
		}
	}
	if riseIdx < 0 || fallIdx < 0 {
		return math.NaN()
	}
	return (fallIdx - riseIdx) / samplingRate
}

func riseTime(data []float64, samplingRate float64, onsetIdx, peakIdx int, lowLevel, highLevel float64) float64 {
	var lowIdx, highIdx float64 = -1, -1
	for i := onsetIdx; i < peakIdx; i++ {
		if data[i] < lowLevel && data[i+1] >= lowLevel {
			lowIdx = interpCross(i, data[i], i+1, data[i+1], lowLevel)
		}
		if data[i] < highLevel && data[i+1] >= highLevel {
			highIdx = interpCross(i, data[i], i+1, data[i+1], highLevel)
			break
		}
	}
	if lowIdx < 0 || highIdx < 0 {
		return math.NaN()
	}
	return (highIdx - lowIdx) / samplingRate
}

func decayTime(data []float64, samplingRate float64, peakIdx int, highLevel, lowLevel float64) float64 {
	var highIdx, lowIdx float64 = -1, -1
	for i := peakIdx; i < len(data)-1; i++ {
		if data[i] >= highLevel && data[i+1] < highLevel {
			highIdx = interpCross(i, data[i], i+1, data[i+1], highLevel)
		}
		if data[i] >= lowLevel && data[i+1] < lowLevel {
			lowIdx = interpCross(i, data[i], i+1, data[i+1], lowLevel)
			break
		}
	}
	if highIdx < 0 || lowIdx < 0 {
		return math.NaN()
	}
	return (lowIdx - highIdx) / samplingRate
}

// ahpRecovery returns the AHP half-duration and the ADP amplitude
// (NaN if recovery back toward onset is monotonic).
func ahpRecovery(data []float64, samplingRate float64, peakIdx, troughIdx, windowEnd int, onsetVal, troughVal float64) (halfDuration, adpAmplitude float64) {
	halfLevel := troughVal + 0.5*(onsetVal-troughVal)
	for i := troughIdx; i < windowEnd-1; i++ {
		if data[i] < halfLevel && data[i+1] >= halfLevel {
			crossing := interpCross(i, data[i], i+1, data[i+1], halfLevel)
			halfDuration = (crossing - float64(troughIdx)) / samplingRate
			break
		}
	}
	adpAmplitude = math.NaN()
	monotonic := true
	prev := troughVal
	for i := troughIdx + 1; i < windowEnd; i++ {
		if data[i] < prev-1e-9 {
			monotonic = false
			break
		}
		prev = data[i]
	}
	if !monotonic {
		localMax, _ := maxOf(data[troughIdx:windowEnd])
		adpAmplitude = localMax - troughVal
	}
	return halfDuration, adpAmplitude
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func isiOf(spikes []Spike) []float64 {
	if len(spikes) < 2 {
		return nil
	}
	isi := make([]float64, len(spikes)-1)
	for i := 1; i < len(spikes); i++ {
		isi[i-1] = spikes[i].PeakTime - spikes[i-1].PeakTime
	}
	return isi
}
