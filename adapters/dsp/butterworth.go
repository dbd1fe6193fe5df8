package dsp

import "math"

// prototypePole is one pole of the normalized (cutoff = 1 rad/s)
// Butterworth lowpass prototype, expressed as its left-half-plane
// conjugate-pair representative: s = -sigma ± j*omega (omega = 0 for a
// real pole).
type prototypePole struct {
	sigma, omega float64
}

// butterworthPrototype returns one representative pole per conjugate
// pair (and the lone real pole when order is odd) for an order-N
// Butterworth filter. The set is self-reciprocal on the unit circle, so
// the same poles serve both the lowpass and highpass designs below.
func butterworthPrototype(order int) []prototypePole {
	poles := make([]prototypePole, 0, (order+1)/2)
	for k := 0; k < order; k++ {
		theta := math.Pi/2 + float64(2*k+1)*math.Pi/float64(2*order)
		re, im := math.Cos(theta), math.Sin(theta)
		if im < -1e-12 {
			continue // skip the conjugate twin; keep omega >= 0 representative
		}
		poles = append(poles, prototypePole{sigma: -re, omega: im})
	}
	return poles
}

// prewarp converts a digital cutoff frequency to the matching analog
// angular frequency for the bilinear transform.
func prewarp(cutoffHz, samplingRate float64) float64 {
	return 2 * samplingRate * math.Tan(math.Pi*cutoffHz/samplingRate)
}

// bilinearSOS converts one analog second-order section, scaled by wc and
// shaped for either a lowpass or highpass response, into a digital
// Biquad via the bilinear transform with K = 2*samplingRate.
func bilinearSOS(p prototypePole, wc, k float64, highpass bool) Biquad {
	sigma := p.sigma * wc
	omega := p.omega * wc
	a2, a1, a0 := 1.0, 2*sigma, sigma*sigma+omega*omega

	var b2, b1, b0 float64
	if highpass {
		b2 = 1
	} else {
		b0 = a0
	}

	d := a0 + a1*k + a2*k*k
	return Biquad{
		B0: (b0 + b1*k + b2*k*k) / d,
		B1: (2*b0 - 2*b2*k*k) / d,
		B2: (b0 - b1*k + b2*k*k) / d,
		A1: (2*a0 - 2*a2*k*k) / d,
		A2: (a0 - a1*k + a2*k*k) / d,
	}
}

// bilinearFirstOrder handles the odd-order real pole, which has no
// second-order section.
func bilinearFirstOrder(p prototypePole, wc, k float64, highpass bool) Biquad {
	sigma := p.sigma * wc
	a1, a0 := 1.0, sigma

	var b1, b0 float64
	if highpass {
		b1 = 1
	} else {
		b0 = sigma
	}

	d := a0 + a1*k
	return Biquad{
		B0: (b0 + b1*k) / d,
		B1: (b0 - b1*k) / d,
		B2: 0,
		A1: (a0 - a1*k) / d,
		A2: 0,
	}
}

// design builds the cascaded-biquad realization of an order-N
// Butterworth lowpass (highpass = false) or highpass (highpass = true)
// filter with the given cutoff.
func design(order int, cutoffHz, samplingRate float64, highpass bool) []Biquad {
	wc := prewarp(cutoffHz, samplingRate)
	k := 2 * samplingRate
	prototype := butterworthPrototype(order)

	sections := make([]Biquad, 0, len(prototype))
	for _, p := range prototype {
		if p.omega < 1e-12 {
			sections = append(sections, bilinearFirstOrder(p, wc, k, highpass))
		} else {
			sections = append(sections, bilinearSOS(p, wc, k, highpass))
		}
	}
	return sections
}

// Lowpass designs a zero-phase-ready Butterworth lowpass as a cascade of
// biquads; apply with ZeroPhase for the forward-backward response the
// pipeline requires.
func Lowpass(order int, cutoffHz, samplingRate float64) []Biquad {
	return design(order, cutoffHz, samplingRate, false)
}

// Highpass designs the corresponding highpass cascade.
func Highpass(order int, cutoffHz, samplingRate float64) []Biquad {
	return design(order, cutoffHz, samplingRate, true)
}

// Bandpass cascades an order-N highpass at low and an order-N lowpass at
// high, and requires 0 < low < high < Nyquist. This composes
// two independently stable prototypes rather than deriving a single
// coupled 2N-pole bandpass prototype; zero-phase filtfilt application
// removes any phase concern either design would otherwise introduce.
func Bandpass(order int, low, high, samplingRate float64) []Biquad {
	sections := make([]Biquad, 0, 2*len(butterworthPrototype(order)))
	sections = append(sections, Highpass(order, low, samplingRate)...)
	sections = append(sections, Lowpass(order, high, samplingRate)...)
	return sections
}
