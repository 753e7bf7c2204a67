package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/san-kum/swingup/internal/dynamo"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SWINGUP_"

// LoadEnvFile loads the first .env file found among paths and returns its
// name, or "" when none could be read. Variables already set win.
func LoadEnvFile(paths ...string) string {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return p
		}
	}
	return ""
}

type override struct {
	name  string
	apply func(c *Config, v string) error
}

func floatField(dst func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst(c) = f
		return nil
	}
}

func intField(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func stringField(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

var overrides = []override{
	{"DT", floatField(func(c *Config) *float64 { return &c.Env.Dt })},
	{"FRICTION", floatField(func(c *Config) *float64 { return &c.Env.Friction })},
	{"FORCE_MAG", floatField(func(c *Config) *float64 { return &c.Env.ForceMag })},
	{"TIME_LIMIT", intField(func(c *Config) *int { return &c.Env.TimeLimit })},
	{"REWARD_MODE", stringField(func(c *Config) *string { return &c.Env.RewardMode })},
	{"RENDER_MODE", stringField(func(c *Config) *string { return &c.Env.RenderMode })},
	{"RENDER_FPS", intField(func(c *Config) *int { return &c.Env.RenderFPS })},
	{"CONTROLLER", stringField(func(c *Config) *string { return &c.Run.Controller })},
	{"EPISODES", intField(func(c *Config) *int { return &c.Run.Episodes })},
	{"MAX_STEPS", intField(func(c *Config) *int { return &c.Run.MaxSteps })},
	{"DATA_DIR", stringField(func(c *Config) *string { return &c.Run.DataDir })},
	{"STORE", stringField(func(c *Config) *string { return &c.Run.Store })},
	{"LOG_LEVEL", stringField(func(c *Config) *string { return &c.Run.LogLevel })},
	{"SEED", func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		c.Run.Seed = n
		return nil
	}},
}

// ApplyEnv overrides cfg from SWINGUP_* variables.
func ApplyEnv(cfg *Config) error {
	for _, o := range overrides {
		v, ok := os.LookupEnv(EnvPrefix + o.name)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", dynamo.ErrInvalidConfiguration, EnvPrefix, o.name, v, err)
		}
	}
	return nil
}
