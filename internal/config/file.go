package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/pseries/internal/errors"
)

// applyFile reads a YAML mapping of flag names to values, for example
//
//	truncation: 1e-9
//	strategy: hashed
//
// and applies every entry whose flag was not set on the command line.
func applyFile(config *AppConfig, fs *flag.FlagSet, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.ConfigError{Message: fmt.Sprintf("reading settings file: %v", err)}
	}
	return applyYAML(config, fs, data)
}

func applyYAML(config *AppConfig, fs *flag.FlagSet, data []byte) error {
	var values map[string]string
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&values); errors.Is(err, io.EOF) {
		return nil
	} else if err != nil {
		return apperrors.ConfigError{Message: fmt.Sprintf("parsing settings file: %v", err)}
	}

	byKey := make(map[string]override, len(overrides))
	for _, o := range overrides {
		byKey[o.flags[0]] = o
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		o, ok := byKey[k]
		if !ok {
			return apperrors.ConfigError{Message: fmt.Sprintf("unknown setting %q in settings file", k)}
		}
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if err := o.apply(config, values[k]); err != nil {
			return apperrors.ConfigError{Message: fmt.Sprintf("setting %q: %v", k, err)}
		}
		config.pin(k)
	}
	return nil
}
