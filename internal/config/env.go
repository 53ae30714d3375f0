// This file contains the environment variable and settings file overrides.

package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/pseries/internal/errors"
)

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// override declares a single setting that the environment or the settings
// file may provide. The env key is prefixed with EnvPrefix; the settings
// file key is the first flag name.
type override struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string) error
}

func intSetting(field func(*AppConfig) *int) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err == nil {
			*field(c) = n
		}
		return err
	}
}

func floatSetting(field func(*AppConfig) *float64) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		x, err := strconv.ParseFloat(v, 64)
		if err == nil {
			*field(c) = x
		}
		return err
	}
}

func boolSetting(field func(*AppConfig) *bool) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		b, err := parseBool(v)
		if err == nil {
			*field(c) = b
		}
		return err
	}
}

func stringSetting(field func(*AppConfig) *string) func(*AppConfig, string) error {
	return func(c *AppConfig, v string) error {
		*field(c) = v
		return nil
	}
}

// overrides is the declarative table of every overridable setting.
var overrides = []override{
	// Workload
	{"WIDTH", []string{"width"}, intSetting(func(c *AppConfig) *int { return &c.Width })},
	{"DEGREE", []string{"degree"}, intSetting(func(c *AppConfig) *int { return &c.Degree })},
	{"SPREAD", []string{"spread"}, floatSetting(func(c *AppConfig) *float64 { return &c.Spread })},
	{"STRATEGY", []string{"strategy"}, stringSetting(func(c *AppConfig) *string { return &c.Strategy })},
	{"COEFFICIENT", []string{"coefficient"}, stringSetting(func(c *AppConfig) *string { return &c.Coefficient })},
	{"T0", []string{"t0"}, floatSetting(func(c *AppConfig) *float64 { return &c.T0 })},
	{"T1", []string{"t1"}, floatSetting(func(c *AppConfig) *float64 { return &c.T1 })},
	{"SAMPLES", []string{"samples"}, intSetting(func(c *AppConfig) *int { return &c.Samples })},

	// Numerical settings
	{"NUMERICAL_ZERO", []string{"numerical-zero"}, floatSetting(func(c *AppConfig) *float64 { return &c.NumericalZero })},
	{"TRUNCATION", []string{"truncation"}, floatSetting(func(c *AppConfig) *float64 { return &c.Truncation })},
	{"MIN_LOAD_FACTOR", []string{"min-load-factor"}, floatSetting(func(c *AppConfig) *float64 { return &c.MinLoadFactor })},
	{"DENSE_BUDGET", []string{"dense-budget"}, func(c *AppConfig, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err == nil {
			c.DenseBudget = n
		}
		return err
	}},
	{"MAX_WIDTH", []string{"max-width"}, intSetting(func(c *AppConfig) *int { return &c.MaxWidth })},
	{"PARALLEL_GRAIN", []string{"parallel-grain"}, intSetting(func(c *AppConfig) *int { return &c.ParallelGrain })},
	{"TOLERANCE", []string{"tolerance"}, floatSetting(func(c *AppConfig) *float64 { return &c.Tolerance })},

	// Run and output
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) error {
		d, err := time.ParseDuration(v)
		if err == nil {
			c.Timeout = d
		}
		return err
	}},
	{"QUIET", []string{"quiet", "q"}, boolSetting(func(c *AppConfig) *bool { return &c.Quiet })},
	{"DETAILS", []string{"details", "d"}, boolSetting(func(c *AppConfig) *bool { return &c.Details })},
	{"NO_COLOR", []string{"no-color"}, boolSetting(func(c *AppConfig) *bool { return &c.NoColor })},
	{"THEME", []string{"theme"}, stringSetting(func(c *AppConfig) *string { return &c.Theme })},
	{"LOG_LEVEL", []string{"log-level"}, stringSetting(func(c *AppConfig) *string { return &c.LogLevel })},
	{"OUTPUT", []string{"output", "o"}, stringSetting(func(c *AppConfig) *string { return &c.OutputFile })},
	{"METRICS_ADDR", []string{"metrics-addr"}, stringSetting(func(c *AppConfig) *string { return &c.MetricsAddr })},
	{"TUI", []string{"tui"}, boolSetting(func(c *AppConfig) *bool { return &c.TUI })},
	{"CALIBRATE", []string{"calibrate"}, boolSetting(func(c *AppConfig) *bool { return &c.Calibrate })},
}

// parseBool accepts "true", "1", "yes" as true and "false", "0", "no" as
// false, case-insensitively.
func parseBool(val string) (bool, error) {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", val)
}

// applyEnvOverrides applies PSERIES_ environment variables to the settings
// whose flags were not set on the command line.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	for _, o := range overrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			if err := o.apply(config, val); err != nil {
				return apperrors.ConfigError{Message: fmt.Sprintf("%s%s: %v", EnvPrefix, o.envKey, err)}
			}
			config.pin(o.flags[0])
		}
	}
	return nil
}
