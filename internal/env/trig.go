package env

import (
	"math"

	"github.com/san-kum/swingup/internal/dynamo"
)

// TrigObservation replaces theta with its sine and cosine:
// [x, x_dot, sin(theta), cos(theta), theta_dot]. A state of the wrong
// length is returned unchanged.
func TrigObservation(s dynamo.State) dynamo.State {
	if len(s) != 4 {
		return s
	}
	sin, cos := math.Sincos(s[IdxTheta])
	return dynamo.State{s[IdxX], s[IdxXDot], sin, cos, s[IdxThetaDot]}
}

// AngleFromTrig recovers theta from a trig observation.
func AngleFromTrig(obs dynamo.State) float64 {
	return math.Atan2(obs[2], obs[3])
}

// Trig wraps an Env so that observations use TrigObservation.
type Trig struct {
	Env
}

func NewTrig(e Env) *Trig {
	return &Trig{Env: e}
}

func (t *Trig) Reset(opts ResetOptions) (dynamo.State, Info) {
	s, info := t.Env.Reset(opts)
	return TrigObservation(s), info
}

func (t *Trig) Step(action float64) (StepResult, error) {
	r, err := t.Env.Step(action)
	if err != nil {
		return r, err
	}
	r.Observation = TrigObservation(r.Observation)
	return r, nil
}
