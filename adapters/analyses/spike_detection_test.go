package analyses

import (
	"math"
	"testing"

	"ephyscore/domain/registry"
	"ephyscore/internal/testkit"
)

func TestSpikeDetectionCountsEvenlySpacedSpikes(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	peakTimes := []float64{0.2, 0.4, 0.6, 0.8}
	data, time := testkit.TriangularSpikes(cfg, -70, 30, 0.001, peakTimes)

	result := runSpikeDetection(data, time, cfg.SamplingRate, nil, registry.Params{
		"threshold":         registry.Float(-20),
		"refractory_period": registry.Float(0.002),
	})

	if got := result["spike_count"].Int(); got != len(peakTimes) {
		t.Fatalf("spike_count = %d, want %d", got, len(peakTimes))
	}
	times := result["spike_times"].FloatArray()
	for i, want := range peakTimes {
		if i >= len(times) {
			t.Fatalf("missing spike time at index %d", i)
		}
		if math.Abs(times[i]-want) > 0.0001 {
			t.Fatalf("spike %d peak time = %v, want within 0.1ms of %v", i, times[i], want)
		}
	}
}

// Spec §8 refractory-period invariant: two crossings closer than the
// refractory period collapse to one detected spike.
func TestSpikeDetectionRefractoryCollapsesCloseCrossings(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 0.1}
	data, time := testkit.TriangularSpikes(cfg, -70, 30, 0.0005, []float64{0.05, 0.0505})

	result := runSpikeDetection(data, time, cfg.SamplingRate, nil, registry.Params{
		"threshold":         registry.Float(-20),
		"refractory_period": registry.Float(0.002),
	})
	if got := result["spike_count"].Int(); got != 1 {
		t.Fatalf("spike_count = %d, want 1 (crossings within the refractory period must collapse)", got)
	}
}

// Spec §4.5 convention: every spike time feature is reported in seconds,
// not sample counts.
func TestAHPRecoveryHalfDurationIsInSeconds(t *testing.T) {
	samplingRate := 1000.0
	// peakIdx is unused by ahpRecovery's own math, only troughIdx onward.
	data := []float64{-70, -70, -10, 30, -40, -80, -77, -73, -70}
	onsetVal, troughVal := -70.0, -80.0
	troughIdx, windowEnd := 5, len(data)

	halfDuration, _ := ahpRecovery(data, samplingRate, 3, troughIdx, windowEnd, onsetVal, troughVal)

	// halfLevel = -80 + 0.5*(-70 - -80) = -75, crossed between index 6
	// (-77) and index 7 (-73) at a fractional index of 6.5, 1.5 samples
	// after the trough at index 5.
	want := 1.5 / samplingRate
	if diff := halfDuration - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("AHP half duration = %v, want %v (seconds, not samples)", halfDuration, want)
	}
}

func TestSpikeDetectionNoCrossingsReportsZero(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 10000, Duration: 0.5}
	data, time := testkit.FlatTrace(cfg, -70)
	result := runSpikeDetection(data, time, cfg.SamplingRate, nil, registry.Params{"threshold": registry.Float(-20)})
	if got := result["spike_count"].Int(); got != 0 {
		t.Fatalf("spike_count = %d, want 0 for a flat trace", got)
	}
	if got := result["mean_freq_hz"].Float(); got != 0 {
		t.Fatalf("mean_freq_hz = %v, want 0", got)
	}
}
