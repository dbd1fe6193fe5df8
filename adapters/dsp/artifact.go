package dsp

// ArtifactMethod selects how samples inside a blanked window are
// replaced.
type ArtifactMethod string

const (
	ArtifactHold   ArtifactMethod = "hold"
	ArtifactZero   ArtifactMethod = "zero"
	ArtifactLinear ArtifactMethod = "linear"
)

// Artifact replaces samples in [onset, onset+durationMs/1000] according
// to method: hold keeps the value immediately before the window, zero
// sets to zero, linear interpolates between the window boundaries.
func Artifact(x, timeVector []float64, onset, durationMs float64, method ArtifactMethod) ([]float64, error) {
	lo, hi, err := windowIndices(timeVector, onset, onset+durationMs/1000)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	copy(out, x)

	switch method {
	case ArtifactZero:
		for i := lo; i < hi; i++ {
			out[i] = 0
		}
	case ArtifactHold:
		var hold float64
		if lo > 0 {
			hold = x[lo-1]
		}
		for i := lo; i < hi; i++ {
			out[i] = hold
		}
	case ArtifactLinear:
		startVal, endVal := 0.0, 0.0
		if lo > 0 {
			startVal = x[lo-1]
		}
		if hi < len(x) {
			endVal = x[hi]
		} else if hi > 0 {
			endVal = x[hi-1]
		}
		span := hi - lo
		for i := lo; i < hi; i++ {
			frac := float64(i-lo+1) / float64(span+1)
			out[i] = startVal + frac*(endVal-startVal)
		}
	default:
		for i := lo; i < hi; i++ {
			out[i] = 0
		}
	}
	return out, nil
}
