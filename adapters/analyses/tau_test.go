package analyses

import (
	"testing"

	"ephyscore/domain/registry"
	"ephyscore/internal/testkit"
)

func TestTauMonoExponentialFit(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 0.5}
	data, time := testkit.ChargingCurve(cfg, -70, -10, 0.030, 0.1)

	result := runTau(data, time, cfg.SamplingRate, nil, registry.Params{
		"stim_start_time": registry.Float(0.1),
		"fit_duration":    registry.Float(0.3),
		"tau_model":       registry.Str("mono"),
	})

	if _, failed := result["tau_error"]; failed {
		t.Fatalf("fit failed: %v", result["tau_error"])
	}
	tauMs := result["tau_ms"].Float()
	if withinPctForTest(tauMs, 30.0, 0.15) == false {
		t.Fatalf("tau_ms = %v, want ~30 (within 15%%)", tauMs)
	}
}

func TestTauFitFailsOutsideTraceBounds(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 0.1}
	data, time := testkit.ChargingCurve(cfg, -70, -10, 0.030, 0.05)

	result := runTau(data, time, cfg.SamplingRate, nil, registry.Params{
		"stim_start_time": registry.Float(0.05),
		"fit_duration":    registry.Float(5),
	})
	if _, failed := result["tau_error"]; !failed {
		t.Fatal("expected tau_error when the fit window exceeds the trace")
	}
}
