package testkit

import (
	"math"
	"testing"
)

func TestFlatTraceIsConstant(t *testing.T) {
	data, time := FlatTrace(TraceConfig{SamplingRate: 1000, Duration: 1}, -65)
	if len(data) != len(time) {
		t.Fatalf("data/time length mismatch: %d vs %d", len(data), len(time))
	}
	for _, v := range data {
		if v != -65 {
			t.Fatalf("expected every sample at -65, got %v", v)
		}
	}
}

func TestRectangularStepBoundaries(t *testing.T) {
	data, time := RectangularStep(TraceConfig{SamplingRate: 1000, Duration: 1}, -70, -10, 0.2, 0.7)
	for i, tt := range time {
		inStep := tt >= 0.2 && tt < 0.7
		want := -70.0
		if inStep {
			want = -80.0
		}
		if data[i] != want {
			t.Fatalf("sample at t=%v = %v, want %v", tt, data[i], want)
		}
	}
}

func TestChargingCurveApproachesAsymptote(t *testing.T) {
	data, time := ChargingCurve(TraceConfig{SamplingRate: 1000, Duration: 1}, -70, -10, 0.03, 0.1)
	last := data[len(data)-1]
	if math.Abs(last-(-80)) > 0.01 {
		t.Fatalf("expected the curve to have nearly reached its asymptote by t=%v, got %v", time[len(time)-1], last)
	}
	if data[0] != -70 {
		t.Fatalf("expected baseline before the step, got %v", data[0])
	}
}

func TestSagTraceOvershootsThenSettles(t *testing.T) {
	data, time := SagTrace(TraceConfig{SamplingRate: 2000, Duration: 1}, -70, -20, -10, 0.2, 0.7, 0.05)
	var onsetIdx, justBeforeEndIdx int
	for i, tt := range time {
		if tt >= 0.2 && onsetIdx == 0 {
			onsetIdx = i
		}
		if tt < 0.69 {
			justBeforeEndIdx = i
		}
	}
	if math.Abs(data[onsetIdx]-(-90)) > 1 {
		t.Fatalf("expected the sag trace to peak near -90 at onset, got %v", data[onsetIdx])
	}
	if math.Abs(data[justBeforeEndIdx]-(-80)) > 1 {
		t.Fatalf("expected the sag trace to settle near -80 by the end of the step, got %v", data[justBeforeEndIdx])
	}
}
