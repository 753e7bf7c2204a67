package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/env"
)

const (
	DefaultController    = "random"
	DefaultEpisodes      = 1
	DefaultStepsPerFrame = 5
	DefaultDataDir       = "./runs"
	DefaultStore         = "file"
	DefaultLogLevel      = "info"
)

type Config struct {
	Env env.Params `yaml:"env"`
	Run RunConfig  `yaml:"run"`
}

type RunConfig struct {
	Controller       string             `yaml:"controller"`
	ControllerParams map[string]float64 `yaml:"controller_params"`
	Seed             uint64             `yaml:"seed"`
	Episodes         int                `yaml:"episodes"`
	// MaxSteps cuts episodes short when positive.
	MaxSteps      int    `yaml:"max_steps"`
	StepsPerFrame int    `yaml:"steps_per_frame"`
	DataDir       string `yaml:"data_dir"`
	Store         string `yaml:"store"`
	LogLevel      string `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Env: env.DefaultParams(),
		Run: RunConfig{
			Controller:       DefaultController,
			ControllerParams: map[string]float64{},
			Episodes:         DefaultEpisodes,
			StepsPerFrame:    DefaultStepsPerFrame,
			DataDir:          DefaultDataDir,
			Store:            DefaultStore,
			LogLevel:         DefaultLogLevel,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
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

func (c *Config) Validate() error {
	if err := c.Env.Validate(); err != nil {
		return err
	}
	switch {
	case c.Run.Episodes <= 0:
		return fmt.Errorf("%w: episodes must be positive, got %d", dynamo.ErrInvalidConfiguration, c.Run.Episodes)
	case c.Run.StepsPerFrame <= 0:
		return fmt.Errorf("%w: steps per frame must be positive, got %d", dynamo.ErrInvalidConfiguration, c.Run.StepsPerFrame)
	case c.Run.MaxSteps < 0:
		return fmt.Errorf("%w: max steps must not be negative, got %d", dynamo.ErrInvalidConfiguration, c.Run.MaxSteps)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Run.ControllerParams = make(map[string]float64, len(c.Run.ControllerParams))
	for k, v := range c.Run.ControllerParams {
		out.Run.ControllerParams[k] = v
	}
	return &out
}
