package config

import (
	"bytes"
	"errors"
	"io"

	"gopkg.in/yaml.v3"
)

// decodeYAML decodes data over cfg, rejecting unknown keys.
// An empty document leaves cfg unchanged.
func decodeYAML(path string, data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return &ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}
	}
	return nil
}

// EncodeYAML renders cfg as YAML.
func EncodeYAML(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
