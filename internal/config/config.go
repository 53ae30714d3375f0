// Package config parses the pseries command line, the PSERIES_ environment
// and the optional YAML settings file into an AppConfig.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/pseries/internal/errors"
	"github.com/agbru/pseries/internal/series"
	"github.com/agbru/pseries/internal/ui"
	"github.com/agbru/pseries/internal/workload"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PSERIES_"

// AppConfig is the complete configuration of a run.
type AppConfig struct {
	// Workload.
	Width    int
	Degree   int
	Spread   float64
	Strategy string
	// Coefficient is the coefficient kind: "real" or "rational".
	Coefficient string

	// Evaluation check of the product against a(t)·b(t).
	T0, T1  float64
	Samples int

	// Numerical settings.
	NumericalZero float64
	Truncation    float64
	MinLoadFactor float64
	DenseBudget   uint64
	MaxWidth      int
	ParallelGrain int
	Tolerance     float64

	// Run and output.
	Timeout     time.Duration
	Quiet       bool
	Details     bool
	NoColor     bool
	Theme       string
	LogLevel    string
	OutputFile  string
	ConfigFile  string
	MetricsAddr string
	Completion  string
	Interactive bool
	TUI         bool
	Calibrate   bool

	// pinned holds the settings given by a flag, the environment or the
	// settings file, by flag name.
	pinned map[string]bool
}

// Pinned reports whether the setting named by its flag was given explicitly.
func (c AppConfig) Pinned(name string) bool {
	return c.pinned[name]
}

func (c *AppConfig) pin(name string) {
	if c.pinned == nil {
		c.pinned = make(map[string]bool)
	}
	c.pinned[name] = true
}

// Default returns the static defaults.
func Default() AppConfig {
	s := series.DefaultSettings()
	w := workload.DefaultSpec()
	return AppConfig{
		Width:         w.Width,
		Degree:        w.Degree,
		Spread:        w.Spread,
		Strategy:      "auto",
		Coefficient:   "real",
		T0:            0,
		T1:            100,
		Samples:       1000,
		NumericalZero: s.NumericalZero,
		Truncation:    s.Truncation,
		MinLoadFactor: s.MinLoadFactor,
		DenseBudget:   s.DenseBudget,
		MaxWidth:      s.MaxWidth,
		Tolerance:     1e-9,
		Timeout:       5 * time.Minute,
		LogLevel:      "info",
		Theme:         "dark",
	}
}

// ParseConfig parses args (without the program name). Priority is: flags,
// then PSERIES_ environment variables, then the settings file, then adaptive
// defaults, then static defaults.
func ParseConfig(programName string, args []string, errorWriter io.Writer, strategies []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	cfg := Default()

	fs.IntVar(&cfg.Width, "width", cfg.Width, "Number of angular arguments of the synthetic operands.")
	fs.IntVar(&cfg.Degree, "degree", cfg.Degree, "Largest harmonic order of the synthetic operands.")
	fs.Float64Var(&cfg.Spread, "spread", cfg.Spread, "Coefficient ratio between consecutive harmonic orders, in (0, 1].")
	fs.StringVar(&cfg.Strategy, "strategy", cfg.Strategy, fmt.Sprintf("Multiplication strategy: %v, or 'all' to cross-check them.", strategies))
	fs.StringVar(&cfg.Coefficient, "coefficient", cfg.Coefficient, "Coefficient kind: 'real' or 'rational'.")
	fs.Float64Var(&cfg.T0, "t0", cfg.T0, "Start of the evaluation check interval.")
	fs.Float64Var(&cfg.T1, "t1", cfg.T1, "End of the evaluation check interval.")
	fs.IntVar(&cfg.Samples, "samples", cfg.Samples, "Evaluation check samples (0 disables the check).")
	fs.Float64Var(&cfg.NumericalZero, "numerical-zero", cfg.NumericalZero, "Magnitude under which coefficients are discarded.")
	fs.Float64Var(&cfg.Truncation, "truncation", cfg.Truncation, "Relative truncation of term products.")
	fs.Float64Var(&cfg.MinLoadFactor, "min-load-factor", cfg.MinLoadFactor, "Minimum load factor for dense accumulation.")
	fs.Uint64Var(&cfg.DenseBudget, "dense-budget", cfg.DenseBudget, "Dense scratch budget in bytes (capped by available memory).")
	fs.IntVar(&cfg.MaxWidth, "max-width", cfg.MaxWidth, "Maximum number of arguments of each kind.")
	fs.IntVar(&cfg.ParallelGrain, "parallel-grain", 0, "Minimum samples per evaluation chunk (0 = estimate from the CPU count).")
	fs.Float64Var(&cfg.Tolerance, "tolerance", cfg.Tolerance, "Largest relative deviation accepted between strategies.")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum execution time.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the product summary line.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Details, "details", false, "Print the product terms.")
	fs.BoolVar(&cfg.Details, "d", false, "Shorthand for --details.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, fmt.Sprintf("Color theme: %s.", strings.Join(ui.ThemeNames(), ", ")))
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Diagnostics level: debug, info, error or disabled.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the product to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML settings file.")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running (e.g. :9090).")
	fs.StringVar(&cfg.Completion, "completion", "", "Generate a completion script: bash, zsh, fish or powershell.")
	fs.BoolVar(&cfg.Interactive, "interactive", false, "Start an interactive session.")
	fs.BoolVar(&cfg.Interactive, "i", false, "Shorthand for --interactive.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Show the run in a terminal dashboard.")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "Measure min-load-factor and parallel-grain on this machine before the run.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	fs.Visit(func(f *flag.Flag) { cfg.pin(f.Name) })

	if cfg.ConfigFile != "" {
		if err := applyFile(&cfg, fs, cfg.ConfigFile); err != nil {
			return AppConfig{}, err
		}
	}
	if err := applyEnvOverrides(&cfg, fs); err != nil {
		return AppConfig{}, err
	}
	cfg = ApplyAdaptiveDefaults(cfg)

	if err := cfg.Validate(strategies); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate(strategies []string) error {
	if err := c.Spec().Validate(); err != nil {
		return apperrors.ConfigError{Message: err.Error()}
	}
	switch {
	case c.Timeout <= 0:
		return apperrors.ConfigError{Message: "timeout value must be strictly positive"}
	case c.Samples < 0:
		return apperrors.ConfigError{Message: "samples must be non-negative"}
	case c.Samples > 0 && c.T0 == c.T1:
		return apperrors.ConfigError{Message: "evaluation interval is empty (t0 == t1)"}
	case c.Truncation < 0:
		return apperrors.ConfigError{Message: "truncation must be non-negative"}
	case c.NumericalZero < 0:
		return apperrors.ConfigError{Message: "numerical-zero must be non-negative"}
	case c.MinLoadFactor <= 0:
		return apperrors.ConfigError{Message: "min-load-factor must be strictly positive"}
	case c.MaxWidth < 1:
		return apperrors.ConfigError{Message: "max-width must be at least 1"}
	case c.Width > c.MaxWidth:
		return apperrors.ConfigError{Message: fmt.Sprintf("width %d exceeds max-width %d", c.Width, c.MaxWidth)}
	case c.ParallelGrain < 1:
		return apperrors.ConfigError{Message: "parallel-grain must be at least 1"}
	case c.Tolerance < 0:
		return apperrors.ConfigError{Message: "tolerance must be non-negative"}
	case c.TUI && c.Quiet:
		return apperrors.ConfigError{Message: "--tui and --quiet cannot be combined"}
	}
	if !slices.Contains(CoefficientKinds, c.Coefficient) {
		return apperrors.ConfigError{Message: fmt.Sprintf("unknown coefficient kind: %q", c.Coefficient)}
	}
	if _, ok := ui.LookupTheme(c.Theme); !ok {
		return apperrors.ConfigError{Message: fmt.Sprintf("unknown theme: %q", c.Theme)}
	}
	switch c.LogLevel {
	case "debug", "info", "error", "disabled":
	default:
		return apperrors.ConfigError{Message: fmt.Sprintf("unknown log level: %q", c.LogLevel)}
	}
	if c.Strategy == "all" {
		return nil
	}
	for _, s := range strategies {
		if strings.EqualFold(c.Strategy, s) {
			return nil
		}
	}
	return apperrors.ConfigError{Message: fmt.Sprintf("unrecognized strategy: %q", c.Strategy)}
}

// CoefficientKinds lists the accepted --coefficient values.
var CoefficientKinds = []string{"real", "rational"}

// Settings returns the numerical settings of series arithmetic.
func (c AppConfig) Settings() series.Settings {
	return series.Settings{
		NumericalZero: c.NumericalZero,
		Truncation:    c.Truncation,
		MinLoadFactor: c.MinLoadFactor,
		DenseBudget:   c.DenseBudget,
		MaxWidth:      c.MaxWidth,
		ParallelGrain: c.ParallelGrain,
	}
}

// Spec returns the synthetic workload.
func (c AppConfig) Spec() workload.Spec {
	return workload.Spec{Width: c.Width, Degree: c.Degree, Spread: c.Spread}
}
