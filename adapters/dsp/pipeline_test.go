package dsp

import (
	"testing"

	"ephyscore/domain/pipeline"
)

func flatTrace(n int, level float64) ([]float64, []float64, float64) {
	rate := 20000.0
	data := make([]float64, n)
	time := make([]float64, n)
	for i := range data {
		data[i] = level
		time[i] = float64(i) / rate
	}
	return data, time, rate
}

func TestProcessAppliesStepsInOrder(t *testing.T) {
	data, time, rate := flatTrace(2000, -70)
	plan := pipeline.NewPlan([]pipeline.Step{
		{Tag: pipeline.StepBaselineMean},
	})
	out, err := Process(plan, data, time, rate)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d = %v after baseline subtraction, want 0", i, v)
		}
	}
}

func TestProcessUnknownStepFails(t *testing.T) {
	data, time, rate := flatTrace(10, 0)
	plan := pipeline.NewPlan([]pipeline.Step{{Tag: "not-a-real-step"}})
	_, err := Process(plan, data, time, rate)
	if err == nil {
		t.Fatal("expected an error for an unrecognized step tag")
	}
	stepErr, ok := err.(*pipeline.StepError)
	if !ok {
		t.Fatalf("expected *pipeline.StepError, got %T", err)
	}
	if stepErr.Index != 0 {
		t.Fatalf("expected the failing step to be index 0, got %d", stepErr.Index)
	}
}

func TestProcessLeavesInputUntouched(t *testing.T) {
	data, time, rate := flatTrace(100, 5)
	original := append([]float64(nil), data...)
	plan := pipeline.NewPlan([]pipeline.Step{{Tag: pipeline.StepBaselineMean}})
	if _, err := Process(plan, data, time, rate); err != nil {
		t.Fatal(err)
	}
	for i := range data {
		if data[i] != original[i] {
			t.Fatalf("Process mutated its input at %d", i)
		}
	}
}

func TestArtifactZeroBlanksOnlyTheWindow(t *testing.T) {
	data, time, rate := flatTrace(20000, -70)
	plan := pipeline.NewPlan([]pipeline.Step{
		{Tag: pipeline.StepArtifact, Params: map[string]interface{}{
			"onset_time":  0.4,
			"duration_ms": 10.0,
			"method":      "zero",
		}},
	})
	out, err := Process(plan, data, time, rate)
	if err != nil {
		t.Fatal(err)
	}
	for i, t2 := range time {
		inWindow := t2 >= 0.4 && t2 <= 0.41
		switch {
		case inWindow && out[i] != 0:
			t.Fatalf("sample %d in blanked window = %v, want 0", i, out[i])
		case !inWindow && out[i] != -70:
			t.Fatalf("sample %d outside blanked window = %v, want unchanged -70", i, out[i])
		}
	}
}
