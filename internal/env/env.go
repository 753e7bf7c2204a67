package env

import (
	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/render"
)

const (
	IdxX = iota
	IdxXDot
	IdxTheta
	IdxThetaDot
)

// Info carries auxiliary step data. The swing-up task leaves it empty.
type Info map[string]any

type ResetOptions struct {
	// Seed reseeds the reset noise generator when set.
	Seed *uint64
	// InitialState is adopted verbatim when set.
	InitialState dynamo.State
}

// Seed returns a pointer for ResetOptions.Seed.
func Seed(s uint64) *uint64 {
	return &s
}

type StepResult struct {
	Observation dynamo.State
	Reward      float64
	Terminated  bool
	Truncated   bool
	Info        Info
}

// Done reports whether the episode ended on this step.
func (r StepResult) Done() bool {
	return r.Terminated || r.Truncated
}

// Env is the environment lifecycle: Reset must be called before the
// first Step, and Close must be called once the caller is finished.
type Env interface {
	Reset(opts ResetOptions) (dynamo.State, Info)
	Step(action float64) (StepResult, error)
	Render(mode render.Mode) (*render.Frame, error)
	Close() error
}
