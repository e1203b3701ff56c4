package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravquad/internal/dynamo"
	"github.com/san-kum/gravquad/internal/physics"
	"github.com/san-kum/gravquad/internal/spatial"
)

const (
	DefaultBodies     = 15
	DefaultSeed       = 1
	DefaultFPS        = 60
	DefaultSteps      = 1000
	DefaultIndexEvery = 1
	DefaultAddr       = ":8080"
	DefaultResetRPS   = 1.0
	DefaultResetBurst = 3
)

type Config struct {
	Bodies  int           `yaml:"bodies"`
	Seed    uint64        `yaml:"seed"`
	Arena   ArenaConfig   `yaml:"arena"`
	Physics PhysicsConfig `yaml:"physics"`
	Index   IndexConfig   `yaml:"index"`
	Run     RunConfig     `yaml:"run"`
	Server  ServerConfig  `yaml:"server"`
}

type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type PhysicsConfig struct {
	G           float64 `yaml:"g"`
	Restitution float64 `yaml:"restitution"`
	MassMin     float64 `yaml:"mass_min"`
	MassMax     float64 `yaml:"mass_max"`
	MaxSpeed    float64 `yaml:"max_speed"`
	Workers     int     `yaml:"workers"`
}

type IndexConfig struct {
	Capacity int `yaml:"capacity"`
	MaxDepth int `yaml:"max_depth"`
}

// RunConfig controls batch and live runs. IndexEvery builds the spatial
// index every n steps to cross-check it against the exhaustive pass; 0
// disables the check.
type RunConfig struct {
	Steps      int `yaml:"steps"`
	FPS        int `yaml:"fps"`
	IndexEvery int `yaml:"index_every"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	MetricsAddr string   `yaml:"metrics_addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	ResetRPS    float64  `yaml:"reset_rps"`
	ResetBurst  int      `yaml:"reset_burst"`
}

func DefaultConfig() *Config {
	return &Config{
		Bodies: DefaultBodies,
		Seed:   DefaultSeed,
		Arena: ArenaConfig{
			Width:  physics.DefaultWidth,
			Height: physics.DefaultHeight,
		},
		Physics: PhysicsConfig{
			G:           physics.DefaultG,
			Restitution: physics.DefaultRestitution,
			MassMin:     physics.DefaultMassMin,
			MassMax:     physics.DefaultMassMax,
			MaxSpeed:    physics.DefaultMaxSpeed,
		},
		Index: IndexConfig{
			Capacity: spatial.DefaultCapacity,
			MaxDepth: spatial.DefaultMaxDepth,
		},
		Run: RunConfig{
			Steps:      DefaultSteps,
			FPS:        DefaultFPS,
			IndexEvery: DefaultIndexEvery,
		},
		Server: ServerConfig{
			Addr:        DefaultAddr,
			CORSOrigins: []string{"*"},
			ResetRPS:    DefaultResetRPS,
			ResetBurst:  DefaultResetBurst,
		},
	}
}

// Load reads a yaml file over the defaults, so a file only needs the keys
// it changes.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver is Load with base in place of the defaults. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return &out
}

// Params converts the physics and arena sections for physics.New.
func (c *Config) Params() physics.Params {
	return physics.Params{
		Width:       c.Arena.Width,
		Height:      c.Arena.Height,
		G:           c.Physics.G,
		Restitution: c.Physics.Restitution,
		MassMin:     c.Physics.MassMin,
		MassMax:     c.Physics.MassMax,
		MaxSpeed:    c.Physics.MaxSpeed,
		Workers:     c.Physics.Workers,
		Seed:        c.Seed,
	}
}

func (c *Config) IndexOptions() spatial.Options {
	return spatial.Options{Capacity: c.Index.Capacity, MaxDepth: c.Index.MaxDepth}
}

// Validate checks every section. Errors wrap dynamo.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if c.Bodies <= 0 {
		return dynamo.Invalidf("body count must be positive, got %d", c.Bodies)
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if err := c.IndexOptions().Validate(); err != nil {
		return err
	}
	if c.Run.FPS <= 0 {
		return dynamo.Invalidf("fps must be positive, got %d", c.Run.FPS)
	}
	if c.Run.Steps < 0 {
		return dynamo.Invalidf("steps must be non-negative, got %d", c.Run.Steps)
	}
	if c.Run.IndexEvery < 0 {
		return dynamo.Invalidf("index_every must be non-negative, got %d", c.Run.IndexEvery)
	}
	if c.Server.ResetRPS <= 0 || c.Server.ResetBurst < 1 {
		return dynamo.Invalidf("reset rate %g/s burst %d must be positive", c.Server.ResetRPS, c.Server.ResetBurst)
	}
	return nil
}
