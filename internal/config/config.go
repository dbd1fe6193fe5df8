// Package config loads batch-engine and kernel defaults from the
// environment, via getEnvIntOrDefault/getEnvFloatOrDefault helpers and a
// validate-after-load step.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"ephyscore/internal/apperr"
)

// Config holds process-wide defaults. The batch engine reads Batch; the
// Kernels values are loaded and validated, but the analyses and kernels
// use their own built-in defaults and do not read them.
type Config struct {
	Batch   BatchConfig
	Kernels KernelConfig
}

// BatchConfig controls the batch engine.
type BatchConfig struct {
	// MaxConcurrency bounds the optional parallel item execution mode.
	// 1 means strictly sequential, the spec's default ordering guarantee.
	MaxConcurrency int
}

// KernelConfig holds numeric-kernel defaults.
type KernelConfig struct {
	TauBoundMinMs float64
	TauBoundMaxMs float64
	MinMAD        float64
}

// Load reads configuration from the environment, optionally after
// best-effort loading a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Batch: BatchConfig{
			MaxConcurrency: getEnvIntOrDefault("EPHYS_BATCH_CONCURRENCY", 1),
		},
		Kernels: KernelConfig{
			TauBoundMinMs: getEnvFloatOrDefault("EPHYS_TAU_BOUND_MIN_MS", 0.1),
			TauBoundMaxMs: getEnvFloatOrDefault("EPHYS_TAU_BOUND_MAX_MS", 5000),
			MinMAD:        getEnvFloatOrDefault("EPHYS_MIN_MAD", 1e-12),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, apperr.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Batch.MaxConcurrency < 1 {
		return apperr.ConfigInvalid("EPHYS_BATCH_CONCURRENCY must be >= 1")
	}
	if cfg.Kernels.TauBoundMinMs <= 0 || cfg.Kernels.TauBoundMaxMs <= cfg.Kernels.TauBoundMinMs {
		return apperr.ConfigInvalid("tau bounds must satisfy 0 < min < max")
	}
	return nil
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
