package recording

import (
	"math"
	"testing"
)

func testChannel(trials [][]float64, rate float64) *Channel {
	return &Channel{ID: "ch0", Name: "Vm", Units: "mV", SamplingRate: rate, DataTrials: trials}
}

// Spec §8 property 1: relative time vector spacing equals 1/rate exactly.
func TestRelativeTimeVectorSpacing(t *testing.T) {
	ch := testChannel([][]float64{make([]float64, 1000)}, 20000)
	tv, ok := ch.GetRelativeTimeVector(0)
	if !ok {
		t.Fatal("expected time vector")
	}
	want := 1.0 / 20000
	for i := 1; i < len(tv); i++ {
		got := tv[i] - tv[i-1]
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("spacing at %d = %v, want %v", i, got, want)
		}
	}
	if tv[0] != 0 {
		t.Fatalf("relative time vector must start at 0, got %v", tv[0])
	}
}

// Spec §8 property 2: averaging a single-trial channel is idempotent.
func TestAveragedDataIdempotentSingleTrial(t *testing.T) {
	trial := []float64{1, 2, 3, 4, 5}
	ch := testChannel([][]float64{trial}, 1000)
	avg, ok := ch.GetAveragedData()
	if !ok {
		t.Fatal("expected average to exist")
	}
	for i := range trial {
		if avg[i] != trial[i] {
			t.Fatalf("avg[%d] = %v, want %v", i, avg[i], trial[i])
		}
	}
}

func TestAveragedDataMismatchedLengthsFails(t *testing.T) {
	ch := testChannel([][]float64{{1, 2, 3}, {1, 2}}, 1000)
	if _, ok := ch.GetAveragedData(); ok {
		t.Fatal("expected average to fail for mismatched trial lengths")
	}
}

func TestZeroTrialChannelReturnsAbsent(t *testing.T) {
	ch := testChannel(nil, 1000)
	if _, ok := ch.GetData(0); ok {
		t.Fatal("expected GetData to report absent for empty channel")
	}
	if _, ok := ch.GetAveragedData(); ok {
		t.Fatal("expected GetAveragedData to report absent for empty channel")
	}
}

func TestGetDataOutOfRangeReturnsAbsent(t *testing.T) {
	ch := testChannel([][]float64{{1, 2, 3}}, 1000)
	if _, ok := ch.GetData(5); ok {
		t.Fatal("expected absent for out-of-range trial index")
	}
	if _, ok := ch.GetData(-1); ok {
		t.Fatal("expected absent for negative trial index")
	}
}

func TestAveragedTimeVectorUsesChannelRate(t *testing.T) {
	ch := testChannel([][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}}, 500)
	tv, ok := ch.GetAveragedTimeVector()
	if !ok {
		t.Fatal("expected averaged time vector")
	}
	if len(tv) != 4 {
		t.Fatalf("expected length 4, got %d", len(tv))
	}
	if math.Abs(tv[1]-tv[0]-1.0/500) > 1e-12 {
		t.Fatalf("unexpected spacing: %v", tv[1]-tv[0])
	}
}
