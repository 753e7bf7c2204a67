package control

import (
	"fmt"
	"math"

	"github.com/san-kum/swingup/internal/dynamo"
)

// DefaultIntegralLimit bounds the integral term to the action range.
const DefaultIntegralLimit = 1.0

// PID holds the pole angle at Target. The error is wrapped so the
// controller takes the short way round, and the derivative term uses the
// measured angular velocity, so a target change never kicks the output.
type PID struct {
	Kp, Ki, Kd float64
	Target     float64
	// IntegralLimit clamps |Ki * integral|.
	IntegralLimit float64

	integral float64
	lastT    float64
	started  bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:            kp,
		Ki:            ki,
		Kd:            kd,
		Target:        target,
		IntegralLimit: DefaultIntegralLimit,
	}
}

func (p *PID) Compute(x dynamo.State, t float64) dynamo.Control {
	if len(x) < 4 {
		return dynamo.Control{0}
	}
	e := dynamo.WrapAngle(p.Target - x[2])

	if p.started && t > p.lastT && p.Ki != 0 {
		p.integral += e * (t - p.lastT)
		bound := math.Abs(p.IntegralLimit / p.Ki)
		p.integral = math.Max(-bound, math.Min(bound, p.integral))
	}
	p.lastT = t
	p.started = true

	return dynamo.Control{p.Kp*e + p.Ki*p.integral - p.Kd*x[3]}
}

func (p *PID) Reset() {
	p.integral = 0
	p.lastT = 0
	p.started = false
}

func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":      p.Kp,
		"ki":      p.Ki,
		"kd":      p.Kd,
		"target":  p.Target,
		"i_limit": p.IntegralLimit,
	}
}

func (p *PID) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "ki":
		p.Ki = value
	case "kd":
		p.Kd = value
	case "target":
		p.Target = value
	case "i_limit":
		p.IntegralLimit = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
