package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/keyact/internal/dispatcher"
	"github.com/dshills/keyact/internal/engine/word"
)

// Config is the complete keyact configuration.
type Config struct {
	Logging    LoggingConfig    `toml:"logging" yaml:"logging"`
	Words      WordsConfig      `toml:"words" yaml:"words"`
	Dispatcher DispatcherConfig `toml:"dispatcher" yaml:"dispatcher"`
	Tracing    TracingConfig    `toml:"tracing" yaml:"tracing"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`

	// Format is text or json.
	Format string `toml:"format" yaml:"format"`
}

// WordsConfig controls how lines are split into words.
type WordsConfig struct {
	// Segmenter is "class" (character classes) or "unicode" (UAX #29).
	Segmenter string `toml:"segmenter" yaml:"segmenter"`

	// Connectors lists the punctuation runes the class segmenter treats as
	// word characters. Ignored by the unicode segmenter. Whitespace is
	// rejected. Listing '-' makes "x-5" a single word, so its digits are no
	// longer a number and a '-' is only read as a sign when nothing
	// precedes it within the word.
	Connectors string `toml:"connectors" yaml:"connectors"`
}

// DispatcherConfig mirrors dispatcher.Config in file form.
type DispatcherConfig struct {
	MaxRepeatCount   int    `toml:"max_repeat_count" yaml:"max_repeat_count"`
	EnableMetrics    bool   `toml:"enable_metrics" yaml:"enable_metrics"`
	RecoverFromPanic bool   `toml:"recover_from_panic" yaml:"recover_from_panic"`
	Timeout          string `toml:"timeout" yaml:"timeout"`
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool    `toml:"enabled" yaml:"enabled"`
	Exporter    string  `toml:"exporter" yaml:"exporter"`
	ServiceName string  `toml:"service_name" yaml:"service_name"`
	SampleRate  float64 `toml:"sample_rate" yaml:"sample_rate"`
}

// Segmenter names.
const (
	SegmenterClass   = "class"
	SegmenterUnicode = "unicode"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	segmenters = []string{SegmenterClass, SegmenterUnicode}
	exporters  = []string{"none", "stdout"}
)

// Default returns the built-in configuration.
func Default() Config {
	d := dispatcher.DefaultConfig()
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Words: WordsConfig{
			Segmenter:  SegmenterClass,
			Connectors: "_",
		},
		Dispatcher: DispatcherConfig{
			MaxRepeatCount:   d.MaxRepeatCount,
			EnableMetrics:    d.EnableMetrics,
			RecoverFromPanic: d.RecoverFromPanic,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			ServiceName: "keyact",
			SampleRate:  1.0,
		},
	}
}

// Validate reports every invalid setting, joined.
func (c Config) Validate() error {
	var errs []error

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, invalid("logging.level", c.Logging.Level))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.Logging.Format)) {
		errs = append(errs, invalid("logging.format", c.Logging.Format))
	}
	if !slices.Contains(segmenters, c.Words.Segmenter) {
		errs = append(errs, invalid("words.segmenter", c.Words.Segmenter))
	}
	if !utf8.ValidString(c.Words.Connectors) || strings.ContainsFunc(c.Words.Connectors, unicode.IsSpace) {
		errs = append(errs, invalid("words.connectors", fmt.Sprintf("%q", c.Words.Connectors)))
	}
	if c.Dispatcher.MaxRepeatCount < 0 {
		errs = append(errs, invalid("dispatcher.max_repeat_count", c.Dispatcher.MaxRepeatCount))
	}
	if _, err := c.Dispatcher.timeout(); err != nil {
		errs = append(errs, invalid("dispatcher.timeout", c.Dispatcher.Timeout))
	}
	if c.Tracing.Enabled && !slices.Contains(exporters, c.Tracing.Exporter) {
		errs = append(errs, invalid("tracing.exporter", c.Tracing.Exporter))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, invalid("tracing.sample_rate", c.Tracing.SampleRate))
	}

	return errors.Join(errs...)
}

func invalid(path string, value any) error {
	return fmt.Errorf("%w: %s = %v", ErrInvalidConfig, path, value)
}

// Build returns the configured word segmenter.
func (w WordsConfig) Build() word.Segmenter {
	if w.Segmenter == SegmenterUnicode {
		return word.NewUnicodeSegmenter()
	}
	return word.NewClassSegmenter(w.Connectors)
}

// Build converts the file form into a dispatcher.Config.
// Call Validate first; an unparsable timeout is treated as none.
func (d DispatcherConfig) Build() dispatcher.Config {
	timeout, _ := d.timeout()
	return dispatcher.Config{
		EnableMetrics:    d.EnableMetrics,
		RecoverFromPanic: d.RecoverFromPanic,
		DefaultTimeout:   timeout,
		MaxRepeatCount:   d.MaxRepeatCount,
	}
}

func (d DispatcherConfig) timeout() (time.Duration, error) {
	if d.Timeout == "" {
		return 0, nil
	}
	t, err := time.ParseDuration(d.Timeout)
	if err != nil {
		return 0, err
	}
	if t < 0 {
		return 0, fmt.Errorf("negative timeout %s", t)
	}
	return t, nil
}
