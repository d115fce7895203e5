package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// EnvPrefix prefixes every environment variable keyact reads.
const EnvPrefix = "KEYACT_"

type envSetter func(cfg *Config, value string) error

// envSettings maps environment variables to the settings they override.
var envSettings = map[string]envSetter{
	EnvPrefix + "LOG_LEVEL": func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	},
	EnvPrefix + "LOG_FORMAT": func(c *Config, v string) error {
		c.Logging.Format = v
		return nil
	},
	EnvPrefix + "WORD_SEGMENTER": func(c *Config, v string) error {
		c.Words.Segmenter = v
		return nil
	},
	EnvPrefix + "WORD_CONNECTORS": func(c *Config, v string) error {
		c.Words.Connectors = v
		return nil
	},
	EnvPrefix + "MAX_REPEAT": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Dispatcher.MaxRepeatCount = n
		return nil
	},
	EnvPrefix + "TIMEOUT": func(c *Config, v string) error {
		c.Dispatcher.Timeout = v
		return nil
	},
	EnvPrefix + "METRICS": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Dispatcher.EnableMetrics = b
		return nil
	},
	EnvPrefix + "TRACING": func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Tracing.Enabled = b
		return nil
	},
}

// EnvVars returns the supported environment variable names, sorted.
func EnvVars() []string {
	return slices.Sorted(maps.Keys(envSettings))
}

// ApplyEnv overrides cfg with every supported variable lookup reports.
// Empty values are treated as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs []error
	for _, key := range EnvVars() {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		if err := envSettings[key](cfg, v); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err))
		}
	}
	return errors.Join(errs...)
}
