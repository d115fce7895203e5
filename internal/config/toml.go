package config

import (
	"bytes"
	"errors"

	"github.com/pelletier/go-toml/v2"
)

// decodeTOML decodes data over cfg, rejecting unknown keys.
func decodeTOML(path string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{
			Path:    path,
			Message: err.Error(),
			Err:     err,
		}

		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			pe.Line, pe.Column = derr.Position()
		}
		return pe
	}
	return nil
}

// EncodeTOML renders cfg as TOML.
func EncodeTOML(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
