package config

import "sort"

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"pilco": func() *Config {
		c := DefaultConfig()
		c.Env.RewardMode = "pilco"
		return c
	}(),
	"keyboard": func() *Config {
		c := DefaultConfig()
		c.Env.Dt = 0.01
		c.Env.Friction = 0.3
		c.Env.RenderFPS = 60
		c.Run.Controller = "manual"
		return c
	}(),
	"fine": func() *Config {
		c := DefaultConfig()
		c.Env.Dt = 0.01
		return c
	}(),
	"swingup": func() *Config {
		c := DefaultConfig()
		c.Run.Controller = "swingup"
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
