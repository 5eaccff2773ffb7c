// Package config loads the optional wordpath configuration file.
//
// The file is TOML or YAML, chosen by extension, with three sections:
//
//	[force]
//	charge_strength = -20000
//	theta = 0.9
//
//	[render]
//	formats = ["svg", "png"]
//	scale = 2
//
//	[server]
//	addr = ":8080"
//	pointer_rate = 120
//
// Missing keys keep their defaults. Every value is checked with validator
// struct tags after decoding.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/force"
)

// Config is the whole configuration file.
type Config struct {
	Force  force.Config `toml:"force" yaml:"force" json:"force"`
	Render Render       `toml:"render" yaml:"render" json:"render"`
	Server Server       `toml:"server" yaml:"server" json:"server"`
}

// Render holds defaults for headless output.
type Render struct {
	Formats     []string `toml:"formats" yaml:"formats" json:"formats" validate:"dive,oneof=svg png pdf dot json"`
	Scale       float64  `toml:"scale" yaml:"scale" json:"scale" validate:"gte=0,lte=8"`
	Transparent bool     `toml:"transparent" yaml:"transparent" json:"transparent"`
	NoGlow      bool     `toml:"no_glow" yaml:"no_glow" json:"no_glow"`
	NoCaption   bool     `toml:"no_caption" yaml:"no_caption" json:"no_caption"`
	EdgePolicy  string   `toml:"edge_policy" yaml:"edge_policy" json:"edge_policy" validate:"omitempty,oneof=preserve collapse"`
	MaxTicks    int      `toml:"max_ticks" yaml:"max_ticks" json:"max_ticks" validate:"gte=0"`
}

// Server holds `wordpath serve` settings.
type Server struct {
	Addr          string        `toml:"addr" yaml:"addr" json:"addr" validate:"required"`
	RedisURL      string        `toml:"redis_url" yaml:"redis_url" json:"redis_url" validate:"omitempty,url"`
	FrameInterval time.Duration `toml:"frame_interval" yaml:"frame_interval" json:"frame_interval" validate:"gte=0"`
	PointerRate   float64       `toml:"pointer_rate" yaml:"pointer_rate" json:"pointer_rate" validate:"gte=0"`
	PointerBurst  int           `toml:"pointer_burst" yaml:"pointer_burst" json:"pointer_burst" validate:"gte=0"`
	MaxBodyBytes  int64         `toml:"max_body_bytes" yaml:"max_body_bytes" json:"max_body_bytes" validate:"gte=0"`
}

// Server defaults.
const (
	DefaultAddr         = ":8080"
	DefaultPointerRate  = 120.0
	DefaultPointerBurst = 30
	DefaultMaxBodyBytes = 1 << 20
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Force: force.DefaultConfig(),
		Render: Render{
			Formats: []string{"svg"},
			Scale:   2,
		},
		Server: Server{
			Addr:          DefaultAddr,
			FrameInterval: time.Second / 60,
			PointerRate:   DefaultPointerRate,
			PointerBurst:  DefaultPointerBurst,
			MaxBodyBytes:  DefaultMaxBodyBytes,
		},
	}
}

// SetDefaults fills zero values left by a partial file.
func (c *Config) SetDefaults() {
	d := Default()
	c.Force.SetDefaults()
	if len(c.Render.Formats) == 0 {
		c.Render.Formats = d.Render.Formats
	}
	if c.Render.Scale == 0 {
		c.Render.Scale = d.Render.Scale
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.FrameInterval == 0 {
		c.Server.FrameInterval = d.Server.FrameInterval
	}
	if c.Server.PointerRate == 0 {
		c.Server.PointerRate = d.Server.PointerRate
	}
	if c.Server.PointerBurst == 0 {
		c.Server.PointerBurst = d.Server.PointerBurst
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Force.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "force section")
	}
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(c.Render); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "render section")
	}
	if err := validate.Struct(c.Server); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "server section")
	}
	return nil
}

// Load reads, defaults and validates the file at path. An empty path
// returns [Default].
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, Format(path))
}

// Format returns "yaml" for .yaml/.yml files and "toml" otherwise.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// Parse decodes data in the given format ("toml" or "yaml") over the
// defaults and validates the result.
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	switch format {
	case "toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
		}
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse yaml config")
		}
	default:
		return Config{}, errors.New(errors.ErrCodeUnsupported, "unsupported config format %q", format)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
