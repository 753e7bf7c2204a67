package tune

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/swingup/internal/config"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset and overrides the fields it sets.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Controller string             `yaml:"controller"`
	Params     map[string]float64 `yaml:"params"`
	RewardMode string             `yaml:"reward_mode"`
	Dt         float64            `yaml:"dt"`
	Friction   *float64           `yaml:"friction"`
	Episodes   int                `yaml:"episodes"`
	MaxSteps   int                `yaml:"max_steps"`
	Seed       uint64             `yaml:"seed"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	for i := range sc.Steps {
		if sc.Steps[i].Name == "" {
			sc.Steps[i].Name = fmt.Sprintf("step-%d", i+1)
		}
	}
	return &sc, nil
}

// Config resolves the step into a validated configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("%s: unknown preset: %s", s.Name, name)
	}

	if s.Controller != "" {
		cfg.Run.Controller = s.Controller
	}
	for k, v := range s.Params {
		cfg.Run.ControllerParams[k] = v
	}
	if s.RewardMode != "" {
		cfg.Env.RewardMode = s.RewardMode
	}
	if s.Dt != 0 {
		cfg.Env.Dt = s.Dt
	}
	if s.Friction != nil {
		cfg.Env.Friction = *s.Friction
	}
	if s.Episodes != 0 {
		cfg.Run.Episodes = s.Episodes
	}
	if s.MaxSteps != 0 {
		cfg.Run.MaxSteps = s.MaxSteps
	}
	if s.Seed != 0 {
		cfg.Run.Seed = s.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	return cfg, nil
}
