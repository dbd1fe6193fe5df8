package dsp

import (
	"fmt"

	"ephyscore/domain/pipeline"
)

// Process applies a validated Plan to data in order, dispatching each
// step tag to its implementation. An unknown tag or an out-of-range
// parameter fails with a *pipeline.StepError identifying the offending step.
func Process(plan *pipeline.Plan, data, timeVector []float64, samplingRate float64) ([]float64, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	out := make([]float64, len(data))
	copy(out, data)

	for i, step := range plan.Steps {
		next, err := applyStep(step, out, timeVector, samplingRate)
		if err != nil {
			return nil, &pipeline.StepError{Index: i, Tag: step.Tag, Message: err.Error()}
		}
		out = next
	}
	return out, nil
}

func applyStep(step pipeline.Step, x, timeVector []float64, rate float64) ([]float64, error) {
	p := stepParams(step.Params)

	switch step.Tag {
	case pipeline.StepLowpass:
		cutoff, order, err := filterParams(p, rate)
		if err != nil {
			return nil, err
		}
		return ZeroPhase(Lowpass(order, cutoff, rate), x), nil

	case pipeline.StepHighpass:
		cutoff, order, err := filterParams(p, rate)
		if err != nil {
			return nil, err
		}
		return ZeroPhase(Highpass(order, cutoff, rate), x), nil

	case pipeline.StepBandpass:
		low := p.floatOr("low", 0)
		high := p.floatOr("high", 0)
		order := p.intOr("order", 2)
		nyquist := rate / 2
		if !(low > 0 && low < high && high < nyquist) {
			return nil, fmt.Errorf("bandpass requires 0 < low < high < nyquist (got low=%g high=%g nyquist=%g)", low, high, nyquist)
		}
		return ZeroPhase(Bandpass(order, low, high, rate), x), nil

	case pipeline.StepNotch:
		center := p.floatOr("center", 0)
		q := p.floatOr("q", 30)
		if center <= 0 || center >= rate/2 {
			return nil, fmt.Errorf("notch center must be within (0, nyquist)")
		}
		return ZeroPhase([]Biquad{Notch(center, q, rate)}, x), nil

	case pipeline.StepComb:
		base := p.floatOr("base", 0)
		q := p.floatOr("q", 30)
		n := p.intOr("n_harmonics", 1)
		if base <= 0 || n < 1 {
			return nil, fmt.Errorf("comb requires base > 0 and n_harmonics >= 1")
		}
		return ZeroPhase(Comb(base, q, n, rate), x), nil

	case pipeline.StepBaselineMean:
		return BaselineMean(x), nil

	case pipeline.StepBaselineMedian:
		return BaselineMedian(x), nil

	case pipeline.StepBaselineMode:
		decimals := p.intOr("decimals", 2)
		return BaselineMode(x, decimals), nil

	case pipeline.StepBaselineLinear:
		return BaselineLinear(x), nil

	case pipeline.StepBaselineWindow:
		tStart := p.floatOr("t_start", 0)
		tEnd := p.floatOr("t_end", 0)
		return BaselineWindow(x, timeVector, tStart, tEnd)

	case pipeline.StepArtifact:
		onset := p.floatOr("onset_time", 0)
		durationMs := p.floatOr("duration_ms", 0)
		method := ArtifactMethod(p.strOr("method", string(ArtifactZero)))
		return Artifact(x, timeVector, onset, durationMs, method)

	default:
		return nil, fmt.Errorf("unknown step: %s", step.Tag)
	}
}

func filterParams(p stepParamMap, rate float64) (cutoff float64, order int, err error) {
	cutoff = p.floatOr("cutoff", 0)
	order = p.intOr("order", 2)
	if cutoff <= 0 || cutoff >= rate/2 {
		return 0, 0, fmt.Errorf("cutoff must be within (0, nyquist=%g), got %g", rate/2, cutoff)
	}
	if order < 1 {
		return 0, 0, fmt.Errorf("order must be >= 1")
	}
	return cutoff, order, nil
}

type stepParamMap map[string]interface{}

func stepParams(m map[string]interface{}) stepParamMap {
	if m == nil {
		return stepParamMap{}
	}
	return stepParamMap(m)
}

func (p stepParamMap) floatOr(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return def
	}
}

func (p stepParamMap) intOr(key string, def int) int {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return def
	}
}

func (p stepParamMap) strOr(key string, def string) string {
	v, ok := p[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return def
}
