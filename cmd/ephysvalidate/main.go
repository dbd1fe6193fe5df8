// Command ephysvalidate runs the synthetic end-to-end scenarios against the
// registered analyses and the preprocessing pipeline, then reports pass/fail
// against each scenario's tolerance. It exists to catch a regression in the
// core analysis math without needing a real recording on disk.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	_ "ephyscore/adapters/analyses"
	"ephyscore/adapters/dsp"
	"ephyscore/domain/pipeline"
	"ephyscore/domain/registry"
	"ephyscore/internal/testkit"
)

type scenario struct {
	name string
	run  func() (ok bool, detail string, err error)
}

func main() {
	verbose := flag.Bool("verbose", false, "print every scenario's measured values, not just failures")
	flag.Parse()

	scenarios := []scenario{
		{"S1 resting membrane potential", scenarioRMP},
		{"S2 input resistance", scenarioRin},
		{"S3 spike detection", scenarioSpikes},
		{"S4 membrane time constant", scenarioTau},
		{"S5 sag ratio", scenarioSag},
		{"S6 artifact blanking", scenarioArtifact},
	}

	failures := 0
	for _, s := range scenarios {
		ok, detail, err := s.run()
		switch {
		case err != nil:
			failures++
			fmt.Printf("FAIL %-32s error: %v\n", s.name, err)
		case !ok:
			failures++
			fmt.Printf("FAIL %-32s %s\n", s.name, detail)
		case *verbose:
			fmt.Printf("PASS %-32s %s\n", s.name, detail)
		default:
			fmt.Printf("PASS %-32s\n", s.name)
		}
	}

	if failures > 0 {
		fmt.Printf("\n%d of %d scenarios failed\n", failures, len(scenarios))
		os.Exit(1)
	}
	fmt.Printf("\nall %d scenarios passed\n", len(scenarios))
}

func withinPct(got, want, pctTol float64) bool {
	if want == 0 {
		return math.Abs(got) <= pctTol
	}
	return math.Abs(got-want)/math.Abs(want) <= pctTol
}

func scenarioRMP() (bool, string, error) {
	cfg := testkit.TraceConfig{SamplingRate: 10000, Duration: 1}
	data, time := testkit.FlatTrace(cfg, -65.0)

	result, err := registry.Run("baseline_rmp", data, time, cfg.SamplingRate, registry.Params{
		"baseline_start": registry.Float(0),
		"baseline_end":   registry.Float(0.99),
	})
	if err != nil {
		return false, "", err
	}
	rmp := result["rmp_mv"].Float()
	std := result["rmp_std"].Float()
	ok := withinPct(rmp, -65.0, 0.01) && std < 1e-9
	return ok, fmt.Sprintf("rmp=%.4f mV std=%.6f", rmp, std), nil
}

func scenarioRin() (bool, string, error) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	data, time := testkit.RectangularStep(cfg, -70.0, -10.0, 0.2, 0.7)

	result, err := registry.Run("input_resistance", data, time, cfg.SamplingRate, registry.Params{
		"mode":              registry.Str("CC"),
		"baseline_window":   registry.Float(0.2),
		"response_window":   registry.Float(0.6),
		"current_amplitude": registry.Float(-50),
	})
	if err != nil {
		return false, "", err
	}
	rin := result["rin_mohm"].Float()
	ok := withinPct(rin, 200.0, 0.02)
	return ok, fmt.Sprintf("rin=%.4f MOhm", rin), nil
}

func scenarioSpikes() (bool, string, error) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	peakTimes := []float64{0.2, 0.4, 0.6, 0.8}
	data, time := testkit.TriangularSpikes(cfg, -70.0, 30.0, 0.001, peakTimes)

	result, err := registry.Run("spike_detection", data, time, cfg.SamplingRate, registry.Params{
		"threshold":         registry.Float(-20),
		"refractory_period": registry.Float(0.002),
	})
	if err != nil {
		return false, "", err
	}
	count := result["spike_count"].Int()
	freq := result["mean_freq_hz"].Float()
	if count != len(peakTimes) {
		return false, fmt.Sprintf("spike_count=%d want %d", count, len(peakTimes)), nil
	}
	times := result["spike_times"].FloatArray()
	maxOffset := 0.0
	for i, want := range peakTimes {
		if i >= len(times) {
			break
		}
		if d := math.Abs(times[i] - want); d > maxOffset {
			maxOffset = d
		}
	}
	ok := withinPct(freq, 5.0, 0.02) && maxOffset <= 0.0001
	return ok, fmt.Sprintf("count=%d freq=%.4f Hz max_peak_offset=%.6f s", count, freq, maxOffset), nil
}

func scenarioTau() (bool, string, error) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 0.5}
	data, time := testkit.ChargingCurve(cfg, -70.0, -10.0, 0.030, 0.1)

	result, err := registry.Run("tau", data, time, cfg.SamplingRate, registry.Params{
		"stim_start_time": registry.Float(0.1),
		"fit_duration":    registry.Float(0.3),
		"tau_model":       registry.Str("mono"),
	})
	if err != nil {
		return false, "", err
	}
	tauMs := result["tau_ms"].Float()
	ok := withinPct(tauMs, 30.0, 0.15)
	return ok, fmt.Sprintf("tau=%.4f ms", tauMs), nil
}

func scenarioSag() (bool, string, error) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	data, time := testkit.SagTrace(cfg, -70.0, -20.0, -10.0, 0.2, 0.7, 0.05)

	result, err := registry.Run("input_resistance", data, time, cfg.SamplingRate, registry.Params{
		"mode":              registry.Str("CC"),
		"baseline_window":   registry.Float(0.2),
		"response_window":   registry.Float(0.6),
		"current_amplitude": registry.Float(-50),
	})
	if err != nil {
		return false, "", err
	}
	sag := result["sag_ratio"].Float()
	ok := withinPct(sag, 2.0, 0.05)
	return ok, fmt.Sprintf("sag_ratio=%.4f", sag), nil
}

func scenarioArtifact() (bool, string, error) {
	cfg := testkit.TraceConfig{SamplingRate: 20000, Duration: 1}
	data, time := testkit.ArtifactTrace(cfg, -70.0, 500.0, 0.4, 0.41)

	plan := pipeline.NewPlan([]pipeline.Step{
		{Tag: pipeline.StepArtifact, Params: map[string]interface{}{
			"onset_time":  0.4,
			"duration_ms": 10.0,
			"method":      "zero",
		}},
	})
	out, err := dsp.Process(plan, data, time, cfg.SamplingRate)
	if err != nil {
		return false, "", err
	}

	lo, hi := -1, -1
	for i, t := range time {
		if t >= 0.4 && lo == -1 {
			lo = i
		}
		if t <= 0.41 {
			hi = i + 1
		}
	}
	for i := lo; i < hi; i++ {
		if out[i] != 0 {
			return false, fmt.Sprintf("sample %d in blanked window = %g, want 0", i, out[i]), nil
		}
	}
	for i := range out {
		if i >= lo && i < hi {
			continue
		}
		if out[i] != data[i] {
			return false, fmt.Sprintf("sample %d outside blanked window changed: %g -> %g", i, data[i], out[i]), nil
		}
	}
	return true, fmt.Sprintf("blanked %d samples, %d unchanged", hi-lo, len(out)-(hi-lo)), nil
}
