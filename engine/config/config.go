// Package config holds the runtime configuration of the glTF compiler.
// Configuration is layered: defaults, then an optional TOML file, then .env files and
// OXY_GLTF_* environment variables, and is validated once fully assembled.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "OXY_GLTF_"

// ErrInvalidConfig is returned when the assembled configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Config is the runtime configuration of the compiler.
type Config struct {
	// Development switches the logger to zap's development configuration.
	Development bool `toml:"development"`

	// Debug enables debug-level logging.
	Debug bool `toml:"debug"`

	// FetchWorkers is the number of workers fetching buffers concurrently.
	FetchWorkers int `toml:"fetch_workers" validate:"min=1,max=256"`

	// FetchQueueSize is the capacity of the fetch task queue.
	FetchQueueSize int `toml:"fetch_queue_size" validate:"min=1"`

	// FetchTimeout bounds each individual fetch, e.g. "30s". Zero disables the bound.
	FetchTimeout Duration `toml:"fetch_timeout" validate:"gte=0"`

	// RootDir is the directory relative filesystem locations are read from.
	RootDir string `toml:"root_dir" validate:"omitempty,dir"`

	// EagerTextures starts texture image loads while materials compile.
	EagerTextures bool `toml:"eager_textures"`

	// Profile logs the duration of every compile phase.
	Profile bool `toml:"profile"`
}

// Duration is a time.Duration written as a Go duration string in config files.
type Duration time.Duration

// UnmarshalText parses a duration string such as "1m30s".
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Default returns the configuration used when nothing is loaded.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		FetchWorkers:   max(runtime.NumCPU()-1, 1),
		FetchQueueSize: 256,
		FetchTimeout:   Duration(30 * time.Second),
	}
}

// Load assembles a configuration from defaults, an optional TOML file and the environment.
// Missing .env files are ignored; variables already set in the environment win over .env values.
//
// Parameters:
//   - path: the TOML file, or "" to skip it
//   - envFiles: .env files to load before reading OXY_GLTF_* variables
//
// Returns:
//   - Config: the validated configuration
//   - error: error if a file cannot be parsed, a variable is malformed or validation fails
func Load(path string, envFiles ...string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
		}
	}

	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("failed to load env file %q: %w", f, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration's field constraints.
//
// Returns:
//   - error: ErrInvalidConfig wrapping the validation errors
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	bools := map[string]*bool{
		"DEVELOPMENT":    &c.Development,
		"DEBUG":          &c.Debug,
		"EAGER_TEXTURES": &c.EagerTextures,
		"PROFILE":        &c.Profile,
	}
	for name, dst := range bools {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}

	ints := map[string]*int{
		"FETCH_WORKERS":    &c.FetchWorkers,
		"FETCH_QUEUE_SIZE": &c.FetchQueueSize,
	}
	for name, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(EnvPrefix + "FETCH_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sFETCH_TIMEOUT: %w", EnvPrefix, err)
		}
		c.FetchTimeout = Duration(d)
	}

	if v, ok := os.LookupEnv(EnvPrefix + "ROOT_DIR"); ok {
		c.RootDir = v
	}
	return nil
}
