// Package config loads the settings of the scimath command.
//
// Settings come from, in increasing priority: built-in defaults, a TOML or
// YAML file, and environment variables prefixed with SCIMATH_.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/kspalaiologos/scimath"
)

// EnvPrefix is prepended to the names of environment overrides.
const EnvPrefix = "SCIMATH"

// Format is the encoding of a configuration file.
type Format int

const (
	// FormatAuto selects the format from the file extension.
	FormatAuto Format = iota
	// FormatTOML is the default format.
	FormatTOML
	// FormatYAML is used for .yaml and .yml files.
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Config holds the complete command configuration.
type Config struct {
	Precision  uint             `toml:"precision" yaml:"precision" validate:"min=1,max=1048576"`
	Rounding   string           `toml:"rounding" yaml:"rounding" validate:"oneof=nearest up down zero"`
	Factor     FactorConfig     `toml:"factor" yaml:"factor"`
	Quadrature QuadratureConfig `toml:"quadrature" yaml:"quadrature"`
	Log        LogConfig        `toml:"log" yaml:"log"`
}

// FactorConfig holds the settings of the factor command.
type FactorConfig struct {
	Timeout time.Duration `toml:"timeout" yaml:"timeout" validate:"gte=0"`
	Budget  int           `toml:"budget" yaml:"budget" validate:"gte=0"`
	Workers int           `toml:"workers" yaml:"workers" validate:"min=1,max=256"`
}

// QuadratureConfig holds the settings of the integrate and nodes commands.
type QuadratureConfig struct {
	Rule      string `toml:"rule" yaml:"rule" validate:"oneof=tanh-sinh ts gauss-legendre gl"`
	MaxDegree int    `toml:"max_degree" yaml:"max_degree" validate:"min=0,max=30"`
	CacheSize int    `toml:"cache_size" yaml:"cache_size" validate:"min=1"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Precision: 64,
		Rounding:  "nearest",
		Factor: FactorConfig{
			Timeout: time.Minute,
			Workers: 4,
		},
		Quadrature: QuadratureConfig{
			Rule:      "tanh-sinh",
			CacheSize: scimath.DefaultCacheSize,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads the configuration file at path on top of the defaults and
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(os.ExpandEnv(path))
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := cfg.Decode(data, detectFormat(path)); err != nil {
			return nil, fmt.Errorf("decoding %v: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectFormat determines the configuration format from file extension.
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Decode merges the encoded configuration into c.
// Keys missing from data keep their current values.
func (c *Config) Decode(data []byte, format Format) error {
	switch format {
	case FormatAuto, FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(c)
		if err != nil {
			return fmt.Errorf("toml parse error: %w", err)
		}
		if keys := md.Undecoded(); len(keys) > 0 {
			return fmt.Errorf("unknown key %q", keys[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("yaml parse error: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %v", format)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables such as
// SCIMATH_PRECISION or SCIMATH_FACTOR_WORKERS.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	vars := []struct {
		key string
		set func(string) error
	}{
		{"precision", func(s string) error { return parseUint(s, &c.Precision) }},
		{"rounding", func(s string) error { c.Rounding = strings.ToLower(s); return nil }},
		{"factor.timeout", func(s string) error { return parseDuration(s, &c.Factor.Timeout) }},
		{"factor.budget", func(s string) error { return parseInt(s, &c.Factor.Budget) }},
		{"factor.workers", func(s string) error { return parseInt(s, &c.Factor.Workers) }},
		{"quadrature.rule", func(s string) error { c.Quadrature.Rule = strings.ToLower(s); return nil }},
		{"quadrature.max_degree", func(s string) error { return parseInt(s, &c.Quadrature.MaxDegree) }},
		{"quadrature.cache_size", func(s string) error { return parseInt(s, &c.Quadrature.CacheSize) }},
		{"log.level", func(s string) error { c.Log.Level = strings.ToLower(s); return nil }},
	}
	for _, v := range vars {
		name := EnvKey(v.key)
		s, ok := lookup(name)
		if !ok {
			continue
		}
		if err := v.set(strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("parsing %v: %w", name, err)
		}
	}
	return nil
}

// EnvKey converts a configuration key to its environment variable:
// factor.workers becomes SCIMATH_FACTOR_WORKERS.
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func parseUint(s string, dst *uint) error {
	v, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*dst = uint(v)
	return nil
}

func parseInt(s string, dst *int) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Validate checks every setting against its allowed range.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	return nil
}

// Context returns the arithmetic context described by the configuration.
func (c *Config) Context() (scimath.Context, error) {
	mode, err := scimath.ParseRoundingMode(c.Rounding)
	if err != nil {
		return scimath.Context{}, err
	}
	ctx := scimath.Context{Prec: c.Precision, Rounding: mode}
	if err := ctx.Validate(); err != nil {
		return scimath.Context{}, err
	}
	return ctx, nil
}

// Rule returns the configured quadrature rule.
func (c *Config) Rule() (scimath.Rule, error) {
	return scimath.ParseRule(c.Quadrature.Rule)
}
