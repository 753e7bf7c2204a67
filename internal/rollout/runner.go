package rollout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/env"
)

// Config describes one episode.
type Config struct {
	// Seed reseeds the environment before reset when set.
	Seed *uint64
	// InitialState overrides the noisy reset when set.
	InitialState dynamo.State
	// MaxSteps stops the episode early when positive; otherwise it runs
	// until the environment terminates or truncates.
	MaxSteps int
	// Dt stamps transition times.
	Dt float64
}

type Result struct {
	Initial     dynamo.State
	Transitions []dynamo.Transition
	Return      float64
	Steps       int
	Terminated  bool
	Truncated   bool
	Metrics     map[string]float64
}

// Final returns the last observed state.
func (r *Result) Final() dynamo.State {
	if len(r.Transitions) == 0 {
		return r.Initial
	}
	return r.Transitions[len(r.Transitions)-1].Next
}

// Runner drives one environment with one controller.
type Runner struct {
	env        env.Env
	controller dynamo.Controller
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	logger     *zap.Logger
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func WithMetrics(ms ...dynamo.Metric) Option {
	return func(r *Runner) { r.metrics = append(r.metrics, ms...) }
}

func WithObservers(obs ...dynamo.Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, obs...) }
}

func New(e env.Env, controller dynamo.Controller, opts ...Option) *Runner {
	r := &Runner{
		env:        e,
		controller: controller,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

type resetter interface {
	Reset()
}

// Run plays one episode. On cancellation it returns the partial result
// with an error wrapping dynamo.ErrContextCanceled.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Dt < 0 {
		return nil, fmt.Errorf("%w: dt must not be negative, got %f", dynamo.ErrInvalidConfiguration, cfg.Dt)
	}

	for _, m := range r.metrics {
		m.Reset()
	}
	if rc, ok := r.controller.(resetter); ok {
		rc.Reset()
	}

	x, _ := r.env.Reset(env.ResetOptions{Seed: cfg.Seed, InitialState: cfg.InitialState})
	result := &Result{
		Initial:     x.Clone(),
		Transitions: make([]dynamo.Transition, 0, 256),
		Metrics:     make(map[string]float64),
	}

	for i := 0; cfg.MaxSteps <= 0 || i < cfg.MaxSteps; i++ {
		select {
		case <-ctx.Done():
			r.collect(result)
			return result, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())
		default:
		}

		t := float64(i) * cfg.Dt
		action := r.controller.Compute(x, t).Scalar()

		res, err := r.env.Step(action)
		if err != nil {
			r.collect(result)
			return result, err
		}

		tr := dynamo.Transition{
			Step:       i,
			Time:       t,
			State:      x,
			Action:     action,
			Reward:     res.Reward,
			Next:       res.Observation,
			Terminated: res.Terminated,
			Truncated:  res.Truncated,
		}
		for _, m := range r.metrics {
			m.Observe(tr)
		}
		for _, obs := range r.observers {
			obs.OnStep(tr)
		}

		result.Transitions = append(result.Transitions, tr)
		result.Return += res.Reward
		result.Steps++
		x = res.Observation

		if res.Done() {
			result.Terminated = res.Terminated
			result.Truncated = res.Truncated
			break
		}
	}

	r.collect(result)
	r.logger.Debug("episode finished",
		zap.Int("steps", result.Steps),
		zap.Float64("return", result.Return),
		zap.Bool("terminated", result.Terminated),
		zap.Bool("truncated", result.Truncated),
	)
	return result, nil
}

func (r *Runner) collect(result *Result) {
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Close releases the environment.
func (r *Runner) Close() error {
	return r.env.Close()
}
