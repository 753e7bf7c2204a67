package env

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/integrators"
	"github.com/san-kum/swingup/internal/physics"
	"github.com/san-kum/swingup/internal/render"
	"github.com/san-kum/swingup/internal/reward"
)

const resetNoise = 0.05

// RestState is the pole hanging straight down with everything at rest.
func RestState() dynamo.State {
	return dynamo.State{0, 0, math.Pi, 0}
}

// CartPoleSwingUp is the swing-up environment. An instance owns its state,
// step counter, noise generator and renderer; it is not safe for
// concurrent use.
type CartPoleSwingUp struct {
	params Params
	dyn    *physics.CartPole
	integ  dynamo.Integrator
	reward reward.Func
	spaces Spaces

	state dynamo.State
	steps int

	src   *rand.PCG
	noise distuv.Normal

	renderMode render.Mode
	renderer   *render.Renderer
	display    render.DisplayFactory
	logger     *zap.Logger
}

type Option func(*CartPoleSwingUp)

func WithLogger(l *zap.Logger) Option {
	return func(e *CartPoleSwingUp) { e.logger = l }
}

// WithDisplay sets how interactive rendering opens its window.
func WithDisplay(f render.DisplayFactory) Option {
	return func(e *CartPoleSwingUp) { e.display = f }
}

func New(p Params, opts ...Option) (*CartPoleSwingUp, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	mode, err := render.ParseMode(p.RenderMode)
	if err != nil {
		return nil, err
	}
	if p.RenderFPS <= 0 {
		p.RenderFPS = DefaultRenderFPS
	}

	e := &CartPoleSwingUp{
		params:     p,
		dyn:        physics.NewCartPole(p.Gravity, p.CartMass, p.PoleMass, p.PoleLength, p.Friction),
		integ:      integrators.NewEuler(),
		reward:     reward.New(p.RewardMode, p.PoleLength, p.SigmaC),
		spaces:     spacesFor(p),
		renderMode: mode,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *CartPoleSwingUp) seed(s uint64) {
	e.src = rand.NewPCG(s, s^0x9e3779b97f4a7c15)
	e.noise = distuv.Normal{Mu: 0, Sigma: resetNoise, Src: e.src}
}

// Reset starts a new episode. Without an explicit initial state each
// component is drawn around RestState with standard deviation 0.05.
func (e *CartPoleSwingUp) Reset(opts ResetOptions) (dynamo.State, Info) {
	switch {
	case opts.Seed != nil:
		e.seed(*opts.Seed)
	case e.src == nil:
		e.seed(uint64(time.Now().UnixNano()))
	}

	if opts.InitialState != nil {
		e.state = opts.InitialState.Clone()
	} else {
		e.state = RestState()
		for i := range e.state {
			e.state[i] += e.noise.Rand()
		}
	}
	e.steps = 0

	e.logger.Debug("reset",
		zap.Float64s("state", e.state),
		zap.Bool("explicit", opts.InitialState != nil),
	)
	e.autoRender()
	return e.state.Clone(), Info{}
}

// Step applies action, clamped to [-1, 1] and scaled by the force
// magnitude, for one Euler step. Calling Step before Reset returns
// dynamo.ErrNotReset. An unknown reward mode returns an error wrapping
// dynamo.ErrInvalidConfiguration; the state has advanced by then but the
// step counter has not.
func (e *CartPoleSwingUp) Step(action float64) (StepResult, error) {
	if e.state == nil {
		return StepResult{}, dynamo.ErrNotReset
	}
	if len(e.state) != e.dyn.StateDim() {
		return StepResult{}, &dynamo.SimulationError{
			Step:    e.steps,
			State:   e.state.Clone(),
			Wrapped: fmt.Errorf("%w: state has %d components", dynamo.ErrDimensionMismatch, len(e.state)),
		}
	}

	force := clamp(action) * e.params.ForceMag
	t := float64(e.steps) * e.params.Dt

	next := e.integ.Step(e.dyn, e.state, dynamo.Control{force}, t, e.params.Dt)
	next[IdxTheta] = dynamo.WrapAngle(next[IdxTheta])
	e.state = next

	r, err := e.reward.Compute(next[IdxX], next[IdxTheta])
	if err != nil {
		return StepResult{}, &dynamo.SimulationError{Step: e.steps, State: next.Clone(), Wrapped: err}
	}

	x := next[IdxX]
	terminated := x < -e.params.XThreshold || x > e.params.XThreshold

	e.steps++
	truncated := e.steps >= e.params.TimeLimit
	if terminated {
		truncated = false
	}

	e.autoRender()

	return StepResult{
		Observation: next.Clone(),
		Reward:      r,
		Terminated:  terminated,
		Truncated:   truncated,
		Info:        Info{},
	}, nil
}

func clamp(a float64) float64 {
	return math.Max(-1, math.Min(1, a))
}

// Render draws the current state. The renderer is created on first use.
func (e *CartPoleSwingUp) Render(mode render.Mode) (*render.Frame, error) {
	if mode == render.None {
		return nil, nil
	}
	if e.state == nil {
		return nil, dynamo.ErrNotReset
	}
	if e.renderer == nil {
		opts := []render.Option{
			render.WithFPS(e.params.RenderFPS),
			render.WithLogger(e.logger),
		}
		if e.display != nil {
			opts = append(opts, render.WithDisplay(e.display))
		}
		e.renderer = render.New(e.params.PoleLength, opts...)
	}
	return e.renderer.Render(e.state, mode)
}

// autoRender shows the state when the environment was built for
// interactive rendering.
func (e *CartPoleSwingUp) autoRender() {
	if e.renderMode != render.Interactive {
		return
	}
	if _, err := e.Render(render.Interactive); err != nil {
		e.logger.Warn("interactive render failed", zap.Error(err))
	}
}

// Close releases rendering resources. It is safe to call repeatedly.
func (e *CartPoleSwingUp) Close() error {
	if e.renderer != nil {
		e.renderer.Close()
		e.renderer = nil
	}
	return nil
}

// State returns a copy of the current state, or nil before the first reset.
func (e *CartPoleSwingUp) State() dynamo.State {
	if e.state == nil {
		return nil
	}
	return e.state.Clone()
}

// Steps is the number of steps since the last reset.
func (e *CartPoleSwingUp) Steps() int {
	return e.steps
}

func (e *CartPoleSwingUp) Params() Params {
	return e.params
}

func (e *CartPoleSwingUp) Spaces() Spaces {
	return e.spaces
}

// Dynamics returns a copy of the physics model, for energy-aware
// controllers and metrics. Changing the copy does not affect the
// environment.
func (e *CartPoleSwingUp) Dynamics() *physics.CartPole {
	dyn := *e.dyn
	return &dyn
}

// RenderMode is the mode the environment renders in automatically.
func (e *CartPoleSwingUp) RenderMode() render.Mode {
	return e.renderMode
}
