package kernels

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// BuildKernel constructs the matched-filter template:
// an alpha function when tauRise == tauDecay, otherwise a difference of
// exponentials, normalized so its peak absolute value is 1.
func BuildKernel(tauRise, tauDecay, samplingRate float64) []float64 {
	duration := 5 * math.Max(tauRise, tauDecay)
	n := int(duration * samplingRate)
	if n < 2 {
		n = 2
	}
	k := make([]float64, n)
	for i := range k {
		t := float64(i) / samplingRate
		if tauRise == tauDecay {
			k[i] = t * math.Exp(-t/tauDecay)
		} else {
			k[i] = math.Exp(-t/tauDecay) - math.Exp(-t/tauRise)
		}
	}
	peak := 0.0
	for _, v := range k {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	if peak == 0 {
		return k
	}
	for i := range k {
		k[i] /= peak
	}
	return k
}

// MatchedFilter cross-correlates data with kernel via FFT convolution in
// "same" mode: the kernel is time-reversed and convolved
// with the data so the output has the same length as the input.
func MatchedFilter(data, kernelShape []float64) []float64 {
	if len(data) == 0 || len(kernelShape) == 0 {
		return make([]float64, len(data))
	}
	reversed := make([]float64, len(kernelShape))
	for i, v := range kernelShape {
		reversed[len(kernelShape)-1-i] = v
	}
	return fftConvolveSame(data, reversed)
}

// fftConvolveSame computes the linear convolution of a and b via an
// FFT of the combined length, then crops to a's length, centered —
// scipy/numpy's "same" convolution mode (spec design note §9: "use an
// FFT-based convolution primitive with same-mode output length").
func fftConvolveSame(a, b []float64) []float64 {
	n, m := len(a), len(b)
	full := n + m - 1

	fft := fourier.NewCmplxFFT(full)
	ca := make([]complex128, full)
	for i, v := range a {
		ca[i] = complex(v, 0)
	}
	cb := make([]complex128, full)
	for i, v := range b {
		cb[i] = complex(v, 0)
	}

	fa := fft.Coefficients(nil, ca)
	fb := fft.Coefficients(nil, cb)
	prod := make([]complex128, full)
	for i := range prod {
		prod[i] = fa[i] * fb[i]
	}
	conv := fft.Sequence(nil, prod)

	start := (m - 1) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = real(conv[start+i])
	}
	return out
}

// ZScore subtracts the median and divides by the MAD (normal-consistent,
// see MAD), as used to normalize a matched-filter output before peak
// detection.
func ZScore(x []float64) []float64 {
	med := Median(x)
	mad := MAD(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - med) / mad
	}
	return out
}
