package analyses

import (
	"math"
	"testing"

	"ephyscore/domain/registry"
	"ephyscore/internal/testkit"
)

func TestBaselineRMPFlatTrace(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 10000, Duration: 1}
	data, time := testkit.FlatTrace(cfg, -65.0)

	result := runRMP(data, time, cfg.SamplingRate, nil, registry.Params{
		"baseline_start": registry.Float(0),
		"baseline_end":   registry.Float(0.99),
	})

	if got := result["rmp_mv"].Float(); math.Abs(got-(-65.0)) > 1e-9 {
		t.Fatalf("rmp_mv = %v, want -65", got)
	}
	if got := result["rmp_std"].Float(); got > 1e-9 {
		t.Fatalf("rmp_std = %v, want ~0 for a flat trace", got)
	}
}

func TestBaselineRMPWindowOutOfBoundsErrors(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 1000, Duration: 0.1}
	data, time := testkit.FlatTrace(cfg, -60)
	result := runRMP(data, time, cfg.SamplingRate, nil, registry.Params{
		"baseline_start": registry.Float(0),
		"baseline_end":   registry.Float(5),
	})
	if _, ok := result["rmp_error"]; !ok {
		t.Fatal("expected rmp_error for a window past the end of the trace")
	}
}
