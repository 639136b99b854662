// Package config loads the fork-width parameter that on the original
// hardware was a build-time CORES definition. Here it is read from a TOML
// file (or left at its default) and validated once, at cluster-open time,
// since Go has no const-eval-from-env-var facility as clean as a const fn.
package config

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/BurntSushi/toml"
)

// ErrInvalidCoreCount is returned by Validate when Cores is not a power of
// two, or is zero, or exceeds MaxCores.
var ErrInvalidCoreCount = errors.New("config: cores must be a power of two in [1, 8]")

// MaxCores is the largest fork width this module supports. The original
// hardware's typical cluster is 8 cores; non-power-of-two counts are an
// explicit non-goal.
const MaxCores = 8

// DefaultCores matches the original hardware's typical cluster size.
const DefaultCores = 8

// Config holds the runtime parameters a real deployment would otherwise
// bake in at build time.
type Config struct {
	Cores int `toml:"cores"`
}

// Default returns a Config with Cores set to DefaultCores.
func Default() *Config {
	return &Config{Cores: DefaultCores}
}

// Load reads a TOML file at path and returns the decoded Config. Fields left
// unset in the file keep Default's values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that Cores is a power of two within [1, MaxCores].
func (c *Config) Validate() error {
	if c.Cores <= 0 || c.Cores > MaxCores || bits.OnesCount(uint(c.Cores)) != 1 {
		return ErrInvalidCoreCount
	}
	return nil
}
