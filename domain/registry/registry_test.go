package registry

import "testing"

func TestRunUnknownAnalysisReturnsError(t *testing.T) {
	_, err := Run("does_not_exist", []float64{1, 2, 3}, []float64{0, 1, 2}, 1000, nil)
	if err == nil {
		t.Fatal("expected an error for an unregistered analysis name")
	}
}

func TestRunRecoversPanicIntoErrorField(t *testing.T) {
	Register(Descriptor{
		Name: "registry_test_panicking",
		Fn: func(data, time []float64, samplingRate float64, trials [][]float64, params Params) Result {
			panic("boom")
		},
	})

	result, err := Run("registry_test_panicking", []float64{1}, []float64{0}, 1000, nil)
	if err != nil {
		t.Fatalf("Run returned an error instead of recovering the panic: %v", err)
	}
	v, ok := result["registry_test_panicking_error"]
	if !ok {
		t.Fatal("expected a <name>_error field in the result")
	}
	if v.Str() == "" {
		t.Fatal("expected a non-empty panic message")
	}
}

func TestRunPassesSingleTraceAsSoleTrial(t *testing.T) {
	Register(Descriptor{
		Name: "registry_test_trials",
		Fn: func(data, time []float64, samplingRate float64, trials [][]float64, params Params) Result {
			return Result{"n_trials": Int(len(trials))}
		},
	})
	result, err := Run("registry_test_trials", []float64{1, 2}, []float64{0, 1}, 1000, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := result["n_trials"].Int(); got != 1 {
		t.Fatalf("expected Run to wrap the trace as a single trial, got %d trials", got)
	}
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Register to panic on a duplicate name")
		}
	}()
	Register(Descriptor{Name: "registry_test_dup", Fn: func(d, t []float64, r float64, tr [][]float64, p Params) Result { return nil }})
	Register(Descriptor{Name: "registry_test_dup", Fn: func(d, t []float64, r float64, tr [][]float64, p Params) Result { return nil }})
}

func TestListIsSorted(t *testing.T) {
	Register(Descriptor{Name: "registry_test_zzz", Fn: func(d, t []float64, r float64, tr [][]float64, p Params) Result { return nil }})
	Register(Descriptor{Name: "registry_test_aaa", Fn: func(d, t []float64, r float64, tr [][]float64, p Params) Result { return nil }})
	names := List()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("List is not sorted: %v", names)
		}
	}
}
