package analyses

import (
	"testing"

	"ephyscore/domain/registry"
	"ephyscore/internal/testkit"
)

func TestInputResistanceCurrentClamp(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	data, time := testkit.RectangularStep(cfg, -70, -10, 0.2, 0.7)

	result := runInputResistance(data, time, cfg.SamplingRate, nil, registry.Params{
		"mode":              registry.Str("CC"),
		"baseline_window":   registry.Float(0.2),
		"response_window":   registry.Float(0.6),
		"current_amplitude": registry.Float(-50),
	})

	if rin := result["rin_mohm"].Float(); withinPctForTest(rin, 200, 0.02) == false {
		t.Fatalf("rin_mohm = %v, want ~200", rin)
	}
}

func TestInputResistanceVoltageClamp(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	// I(t) steps by -0.05 nA in response to a -10 mV command: Rin = 10/0.05 = 200 MOhm.
	data, time := testkit.RectangularStep(cfg, -100, -50, 0.2, 0.7)

	result := runInputResistance(data, time, cfg.SamplingRate, nil, registry.Params{
		"mode":                registry.Str("VC"),
		"baseline_window":     registry.Float(0.2),
		"response_window":     registry.Float(0.6),
		"command_voltage_mv":  registry.Float(-10),
	})

	if rin := result["rin_mohm"].Float(); withinPctForTest(rin, 200, 0.02) == false {
		t.Fatalf("rin_mohm = %v, want ~200", rin)
	}
}

func TestInputResistanceMissingCurrentErrors(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	data, time := testkit.RectangularStep(cfg, -70, -10, 0.2, 0.7)
	result := runInputResistance(data, time, cfg.SamplingRate, nil, registry.Params{
		"baseline_window": registry.Float(0.2),
		"response_window": registry.Float(0.6),
	})
	if _, ok := result["rin_error"]; !ok {
		t.Fatal("expected rin_error when current_amplitude is missing")
	}
}

func TestSagRatioOnASaggingTrace(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	data, time := testkit.SagTrace(cfg, -70, -20, -10, 0.2, 0.7, 0.05)

	result := runInputResistance(data, time, cfg.SamplingRate, nil, registry.Params{
		"mode":              registry.Str("CC"),
		"baseline_window":   registry.Float(0.2),
		"response_window":   registry.Float(0.6),
		"current_amplitude": registry.Float(-50),
	})

	if sag := result["sag_ratio"].Float(); withinPctForTest(sag, 2.0, 0.05) == false {
		t.Fatalf("sag_ratio = %v, want ~2.0", sag)
	}
}

func TestSagRatioFlatResponseIsOne(t *testing.T) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	data, time := testkit.RectangularStep(cfg, -70, -10, 0.2, 0.7)
	result := runInputResistance(data, time, cfg.SamplingRate, nil, registry.Params{
		"mode":              registry.Str("CC"),
		"baseline_window":   registry.Float(0.2),
		"response_window":   registry.Float(0.6),
		"current_amplitude": registry.Float(-50),
	})
	if sag := result["sag_ratio"].Float(); withinPctForTest(sag, 1.0, 0.01) == false {
		t.Fatalf("sag_ratio = %v, want ~1.0 for a response with no sag", sag)
	}
}

func withinPctForTest(got, want, pctTol float64) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	if want == 0 {
		return d <= pctTol
	}
	aw := want
	if aw < 0 {
		aw = -aw
	}
	return d/aw <= pctTol
}
