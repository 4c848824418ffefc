// Package config loads run configuration from YAML layered over embedded
// defaults.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"aviary/internal/sim"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config mirrors the YAML configuration file. Every field has an embedded
// default, so a user file only needs the values it overrides.
type Config struct {
	Run      RunConfig      `yaml:"run"`
	World    WorldConfig    `yaml:"world"`
	Movement MovementConfig `yaml:"movement"`
	Eye      EyeConfig      `yaml:"eye"`
	Mutation MutationConfig `yaml:"mutation"`
	Storage  StorageConfig  `yaml:"storage"`
	Viewer   ViewerConfig   `yaml:"viewer"`
}

type RunConfig struct {
	Seed        int64 `yaml:"seed"`
	Generations int   `yaml:"generations"`
}

type WorldConfig struct {
	Animals           int     `yaml:"animals"`
	Foods             int     `yaml:"foods"`
	GenerationLength  int     `yaml:"generation_length"`
	InteractionRadius float64 `yaml:"interaction_radius"`
}

type MovementConfig struct {
	SpeedMin      float64 `yaml:"speed_min"`
	SpeedMax      float64 `yaml:"speed_max"`
	SpeedAccel    float64 `yaml:"speed_accel"`
	RotationAccel float64 `yaml:"rotation_accel"`
	InitialSpeed  float64 `yaml:"initial_speed"`
}

type EyeConfig struct {
	Cells    int     `yaml:"cells"`
	FovRange float64 `yaml:"fov_range"`
	FovAngle float64 `yaml:"fov_angle"`
}

type MutationConfig struct {
	Chance float64 `yaml:"chance"`
	Coeff  float64 `yaml:"coeff"`
}

type StorageConfig struct {
	Backend      string `yaml:"backend"`
	SQLitePath   string `yaml:"sqlite_path"`
	ArtifactsDir string `yaml:"artifacts_dir"`
}

type ViewerConfig struct {
	Addr           string `yaml:"addr"`
	StepsPerSecond int    `yaml:"steps_per_second"`
}

// Load parses the embedded defaults and, when path is non-empty, overlays
// the user file on top. Fields absent from the user file keep their
// defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parse embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	return cfg, nil
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	return Load("")
}

// WriteYAML renders the configuration to a YAML file, for seeding a user
// config that can then be edited.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// SimParams converts the world, movement, eye and mutation sections into
// simulation parameters.
func (c *Config) SimParams() sim.Params {
	return sim.Params{
		Animals:           c.World.Animals,
		Foods:             c.World.Foods,
		SpeedMin:          c.Movement.SpeedMin,
		SpeedMax:          c.Movement.SpeedMax,
		SpeedAccel:        c.Movement.SpeedAccel,
		RotationAccel:     c.Movement.RotationAccel,
		InitialSpeed:      c.Movement.InitialSpeed,
		InteractionRadius: c.World.InteractionRadius,
		GenerationLength:  c.World.GenerationLength,
		MutationChance:    c.Mutation.Chance,
		MutationCoeff:     c.Mutation.Coeff,
		EyeCells:          c.Eye.Cells,
		EyeFovRange:       c.Eye.FovRange,
		EyeFovAngle:       c.Eye.FovAngle,
	}
}

func (c *Config) Validate() error {
	if c.Run.Generations < 1 {
		return fmt.Errorf("run generations must be > 0, got=%d", c.Run.Generations)
	}
	if c.Viewer.Addr == "" {
		return fmt.Errorf("viewer addr is required")
	}
	if c.Viewer.StepsPerSecond < 1 {
		return fmt.Errorf("viewer steps per second must be > 0, got=%d", c.Viewer.StepsPerSecond)
	}
	if err := c.SimParams().Validate(); err != nil {
		return fmt.Errorf("simulation parameters: %w", err)
	}
	return nil
}
