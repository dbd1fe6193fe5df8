// Package dsp implements the signal-processing pipeline steps of spec
// §4.2: Butterworth filters, notch/comb, baseline-subtraction variants,
// and artifact blanking, plus the Pipeline executor that applies a
// domain/pipeline.Plan in order. Filter design is hand-rolled (bilinear
// transform of the classical analog Butterworth/notch prototypes) —
// no IIR filter-design library appears anywhere in the retrieved corpus,
// so this is a justified standard-library implementation (see DESIGN.md).
package dsp

// Biquad is a single second-order IIR section in direct form I:
// y[n] = b0*x[n] + b1*x[n-1] + b2*x[n-2] - a1*y[n-1] - a2*y[n-2].
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Apply runs x through the section causally, returning a new array of
// the same length: pipeline steps preserve length.
func (bq Biquad) Apply(x []float64) []float64 {
	y := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for i, xn := range x {
		yn := bq.B0*xn + bq.B1*x1 + bq.B2*x2 - bq.A1*y1 - bq.A2*y2
		y[i] = yn
		x2, x1 = x1, xn
		y2, y1 = y1, yn
	}
	return y
}

// applyCascade applies a sequence of sections in order.
func applyCascade(sections []Biquad, x []float64) []float64 {
	out := x
	for _, bq := range sections {
		out = bq.Apply(out)
	}
	return out
}

// ZeroPhase applies a cascade of sections forward, then backward, so the
// combined response has zero phase and never shifts event timing.
func ZeroPhase(sections []Biquad, x []float64) []float64 {
	if len(x) == 0 {
		return x
	}
	forward := applyCascade(sections, x)
	reversed := reverse(forward)
	backward := applyCascade(sections, reversed)
	return reverse(backward)
}

func reverse(x []float64) []float64 {
	out := make([]float64, len(x))
	n := len(x)
	for i, v := range x {
		out[n-1-i] = v
	}
	return out
}
