package kernels

import "testing"

func TestFitLinearRecoversKnownSlope(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9} // y = 1 + 2x, exact fit.

	fit := FitLinear(x, y)
	if !fit.Ok {
		t.Fatal("expected a valid fit")
	}
	if diff := fit.Slope - 2; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("slope = %v, want 2", fit.Slope)
	}
	if fit.DOF != len(x)-2 {
		t.Fatalf("dof = %d, want %d", fit.DOF, len(x)-2)
	}
	// A perfect linear fit has zero residual variance, so the standard
	// error collapses to 0 and the slope is maximally significant.
	if fit.SlopeSE > 1e-9 {
		t.Fatalf("expected ~0 standard error for an exact fit, got %v", fit.SlopeSE)
	}
	if fit.SlopePVal > 1e-6 {
		t.Fatalf("expected a near-zero p-value for an unambiguous slope, got %v", fit.SlopePVal)
	}
}

func TestFitLinearOfNoisyFlatDataHasAHighPValue(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5}
	y := []float64{5.1, 4.9, 5.2, 4.8, 5.0, 5.1} // no real trend, just noise.

	fit := FitLinear(x, y)
	if !fit.Ok {
		t.Fatal("expected a valid fit")
	}
	if fit.SlopePVal < 0.1 {
		t.Fatalf("expected a large p-value for a slope indistinguishable from zero, got %v", fit.SlopePVal)
	}
}

func TestFitLinearInsufficientDataIsNotOk(t *testing.T) {
	if FitLinear([]float64{1}, []float64{1}).Ok {
		t.Fatal("expected Ok=false with fewer than 2 points")
	}
	if FitLinear([]float64{1, 1, 1}, []float64{1, 2, 3}).Ok {
		t.Fatal("expected Ok=false when x has no variance")
	}
}

func TestSlopePValueIsOneWhenDegreesOfFreedomAreZero(t *testing.T) {
	if got := (Distributions{}).SlopePValue(5, 1, 0); got != 1.0 {
		t.Fatalf("SlopePValue with dof=0 = %v, want 1.0 (can't reject the null with no residual freedom)", got)
	}
}

func TestNormalCDFAtZeroIsOneHalf(t *testing.T) {
	got := (Distributions{}).NormalCDF(0)
	if diff := got - 0.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("NormalCDF(0) = %v, want 0.5", got)
	}
}
