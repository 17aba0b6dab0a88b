package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"text" validate:"oneof=text json"`
	} `yaml:"log"`
	Decode struct {
		// Timestamps is "elapsed" (seconds since the first frame) or "absolute".
		Timestamps string `yaml:"timestamps" default:"elapsed" validate:"oneof=elapsed absolute"`
		Workers    int    `yaml:"workers" default:"1" validate:"min=1,max=256"`
	} `yaml:"decode"`
	Plot struct {
		// Image size in inches.
		Width  float64 `yaml:"width" default:"15" validate:"gt=0"`
		Height float64 `yaml:"height" default:"5" validate:"gt=0"`
	} `yaml:"plot"`
	MCAP struct {
		Compression string `yaml:"compression" default:"zstd" validate:"oneof=zstd lz4 none"`
		ChunkSize   int64  `yaml:"chunk_size" default:"2097152" validate:"gt=0"`
	} `yaml:"mcap"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, errors.Wrap(err, "set config defaults")
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. Fields missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
