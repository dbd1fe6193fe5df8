package config

import (
	"os"
	"testing"

	"ephyscore/internal/apperr"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoadUsesDefaultsWhenUnset(t *testing.T) {
	clearEnv(t, "EPHYS_BATCH_CONCURRENCY", "EPHYS_TAU_BOUND_MIN_MS", "EPHYS_TAU_BOUND_MAX_MS", "EPHYS_MIN_MAD")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Batch.MaxConcurrency != 1 {
		t.Fatalf("MaxConcurrency = %d, want 1", cfg.Batch.MaxConcurrency)
	}
	if cfg.Kernels.TauBoundMinMs != 0.1 || cfg.Kernels.TauBoundMaxMs != 5000 {
		t.Fatalf("unexpected tau bounds: %+v", cfg.Kernels)
	}
}

func TestLoadHonorsEnvOverrides(t *testing.T) {
	clearEnv(t, "EPHYS_BATCH_CONCURRENCY")
	os.Setenv("EPHYS_BATCH_CONCURRENCY", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Batch.MaxConcurrency != 4 {
		t.Fatalf("MaxConcurrency = %d, want 4", cfg.Batch.MaxConcurrency)
	}
}

func TestLoadRejectsZeroConcurrency(t *testing.T) {
	clearEnv(t, "EPHYS_BATCH_CONCURRENCY")
	os.Setenv("EPHYS_BATCH_CONCURRENCY", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error for EPHYS_BATCH_CONCURRENCY=0")
	}
	if apperr.GetCode(err) != apperr.CodeConfigInvalid {
		t.Fatalf("code = %q, want %q (Wrap preserves the code of an already-coded AppError)", apperr.GetCode(err), apperr.CodeConfigInvalid)
	}
}

func TestLoadRejectsInvertedTauBounds(t *testing.T) {
	clearEnv(t, "EPHYS_TAU_BOUND_MIN_MS", "EPHYS_TAU_BOUND_MAX_MS")
	os.Setenv("EPHYS_TAU_BOUND_MIN_MS", "100")
	os.Setenv("EPHYS_TAU_BOUND_MAX_MS", "10")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error when min >= max")
	}
}

func TestGetEnvIntOrDefaultIgnoresGarbage(t *testing.T) {
	clearEnv(t, "EPHYS_TEST_INT")
	os.Setenv("EPHYS_TEST_INT", "not-a-number")
	if got := getEnvIntOrDefault("EPHYS_TEST_INT", 7); got != 7 {
		t.Fatalf("got %d, want fallback 7", got)
	}
}

func TestGetEnvFloatOrDefaultIgnoresGarbage(t *testing.T) {
	clearEnv(t, "EPHYS_TEST_FLOAT")
	os.Setenv("EPHYS_TEST_FLOAT", "not-a-float")
	if got := getEnvFloatOrDefault("EPHYS_TEST_FLOAT", 2.5); got != 2.5 {
		t.Fatalf("got %v, want fallback 2.5", got)
	}
}
