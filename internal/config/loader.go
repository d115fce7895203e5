package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LookupFunc reports the value of an environment variable.
type LookupFunc func(key string) (string, bool)

// Loader builds a Config from defaults, a file, a .env file and the
// environment, in increasing priority.
type Loader struct {
	fs      FileSystem
	envFile string
	lookup  LookupFunc
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS sets the file system used for the config and .env files.
func WithFS(fsys FileSystem) LoaderOption {
	return func(l *Loader) {
		if fsys != nil {
			l.fs = fsys
		}
	}
}

// WithEnvFile sets the .env path. An empty path disables .env loading.
func WithEnvFile(path string) LoaderOption {
	return func(l *Loader) {
		l.envFile = path
	}
}

// WithLookup replaces os.LookupEnv.
func WithLookup(fn LookupFunc) LoaderOption {
	return func(l *Loader) {
		if fn != nil {
			l.lookup = fn
		}
	}
}

// NewLoader creates a loader reading from the OS.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:      OSFS{},
		envFile: ".env",
		lookup:  os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load is NewLoader().Load(path).
func Load(path string) (Config, error) {
	return NewLoader().Load(path)
}

// Load returns the validated configuration. An empty path or a missing file
// leaves the defaults in place.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := l.LoadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	lookup, err := l.environment()
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile decodes the file at path over cfg. The format is chosen by
// extension. A missing file is not an error.
func (l *Loader) LoadFile(path string, cfg *Config) error {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decodeTOML(path, data, cfg)
	case ".yaml", ".yml":
		return decodeYAML(path, data, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// environment layers the process environment over the .env file.
func (l *Loader) environment() (LookupFunc, error) {
	dotenv := map[string]string{}

	if l.envFile != "" {
		data, err := l.fs.ReadFile(l.envFile)
		switch {
		case err == nil:
			dotenv, err = godotenv.Unmarshal(string(data))
			if err != nil {
				return nil, &ParseError{Path: l.envFile, Message: err.Error(), Err: err}
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("reading env file %s: %w", l.envFile, err)
		}
	}

	return func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}
