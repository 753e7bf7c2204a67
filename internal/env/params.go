package env

import (
	"fmt"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/render"
)

const (
	DefaultGravity    = 9.82
	DefaultCartMass   = 0.5
	DefaultPoleMass   = 0.5
	DefaultPoleLength = 0.6
	DefaultForceMag   = 10.0
	DefaultDt         = 0.1
	DefaultFriction   = 0.1
	DefaultXThreshold = 2.4
	DefaultTimeLimit  = 1000
	DefaultSigmaC     = 0.25
	DefaultRenderFPS  = 50
)

// Params is the immutable configuration of one environment.
type Params struct {
	Gravity    float64 `yaml:"gravity"`
	CartMass   float64 `yaml:"cart_mass"`
	PoleMass   float64 `yaml:"pole_mass"`
	PoleLength float64 `yaml:"pole_length"`
	ForceMag   float64 `yaml:"force_mag"`
	Dt         float64 `yaml:"dt"`
	Friction   float64 `yaml:"friction"`
	XThreshold float64 `yaml:"x_threshold"`
	TimeLimit  int     `yaml:"time_limit"`
	RewardMode string  `yaml:"reward_mode"`
	SigmaC     float64 `yaml:"sigma_c"`
	RenderMode string  `yaml:"render_mode"`
	RenderFPS  int     `yaml:"render_fps"`
}

func DefaultParams() Params {
	return Params{
		Gravity:    DefaultGravity,
		CartMass:   DefaultCartMass,
		PoleMass:   DefaultPoleMass,
		PoleLength: DefaultPoleLength,
		ForceMag:   DefaultForceMag,
		Dt:         DefaultDt,
		Friction:   DefaultFriction,
		XThreshold: DefaultXThreshold,
		TimeLimit:  DefaultTimeLimit,
		RewardMode: "default",
		SigmaC:     DefaultSigmaC,
		RenderFPS:  DefaultRenderFPS,
	}
}

// Validate checks the physical parameters. The reward mode is checked when
// a step needs it.
func (p Params) Validate() error {
	switch {
	case p.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrInvalidConfiguration, p.Dt)
	case p.CartMass <= 0 || p.PoleMass <= 0:
		return fmt.Errorf("%w: masses must be positive", dynamo.ErrInvalidConfiguration)
	case p.PoleLength <= 0:
		return fmt.Errorf("%w: pole length must be positive, got %f", dynamo.ErrInvalidConfiguration, p.PoleLength)
	case p.XThreshold <= 0:
		return fmt.Errorf("%w: x threshold must be positive, got %f", dynamo.ErrInvalidConfiguration, p.XThreshold)
	case p.TimeLimit <= 0:
		return fmt.Errorf("%w: time limit must be positive, got %d", dynamo.ErrInvalidConfiguration, p.TimeLimit)
	case p.SigmaC <= 0:
		return fmt.Errorf("%w: sigma_c must be positive, got %f", dynamo.ErrInvalidConfiguration, p.SigmaC)
	}
	if _, err := render.ParseMode(p.RenderMode); err != nil {
		return err
	}
	return nil
}
