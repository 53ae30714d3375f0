package config

import "runtime"

// Setting resolution chain (highest priority first):
//   1. CLI flags
//   2. Environment variables (PSERIES_TRUNCATION, etc.)
//   3. YAML settings file (--config)
//   4. Calibration (--calibrate) or adaptive hardware estimation (this file)
//   5. Static defaults (Default)

// Calibration holds settings measured on this machine. Zero fields were not
// measured.
type Calibration struct {
	MinLoadFactor float64
	ParallelGrain int
}

// ApplyAdaptiveDefaults fills the settings left at zero with estimates from
// the hardware. Measured settings replace the defaults and the estimates,
// but never a setting pinned by a flag, the environment or the settings file.
func ApplyAdaptiveDefaults(cfg AppConfig, measured ...Calibration) AppConfig {
	for _, m := range measured {
		if m.MinLoadFactor > 0 && !cfg.Pinned("min-load-factor") {
			cfg.MinLoadFactor = m.MinLoadFactor
		}
		if m.ParallelGrain > 0 && !cfg.Pinned("parallel-grain") {
			cfg.ParallelGrain = m.ParallelGrain
		}
	}
	if cfg.ParallelGrain == 0 {
		cfg.ParallelGrain = EstimateParallelGrain()
	}
	return cfg
}

// EstimateParallelGrain estimates the smallest evaluation chunk worth a
// goroutine: fewer cores make parallel chunks costlier to coordinate.
func EstimateParallelGrain() int {
	numCPU := runtime.NumCPU()

	switch {
	case numCPU == 1:
		return 1 << 20 // No parallelism
	case numCPU <= 4:
		return 512
	case numCPU <= 16:
		return 256
	default:
		return 128
	}
}
