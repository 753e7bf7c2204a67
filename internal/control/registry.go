package control

import (
	"fmt"
	"sort"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/physics"
)

// Resetter is implemented by controllers that carry state across steps
// and need clearing between episodes.
type Resetter interface {
	Reset()
}

type factory func(params map[string]float64) (dynamo.Controller, error)

// Registry builds controllers by name for one cart-pole configuration.
type Registry struct {
	dyn         *physics.CartPole
	forceMag    float64
	dt          float64
	controllers map[string]factory
}

func NewRegistry(dyn *physics.CartPole, forceMag, dt float64) *Registry {
	r := &Registry{
		dyn:         dyn,
		forceMag:    forceMag,
		dt:          dt,
		controllers: make(map[string]factory),
	}

	r.controllers["none"] = func(params map[string]float64) (dynamo.Controller, error) {
		return NewNone(dyn.ControlDim()), nil
	}
	r.controllers["random"] = func(params map[string]float64) (dynamo.Controller, error) {
		return NewRandom(uint64(params["seed"])), nil
	}
	r.controllers["manual"] = func(params map[string]float64) (dynamo.Controller, error) {
		return NewManual(), nil
	}
	r.controllers["pid"] = func(params map[string]float64) (dynamo.Controller, error) {
		c := NewPID(10, 0, 1, 0)
		return c, configure(c, params)
	}
	r.controllers["lqr"] = func(params map[string]float64) (dynamo.Controller, error) {
		return DesignLQR(dyn, r.forceMag, r.dt, weights(params))
	}
	r.controllers["swingup"] = func(params map[string]float64) (dynamo.Controller, error) {
		balance, err := DesignLQR(dyn, r.forceMag, r.dt, weights(params))
		if err != nil {
			return nil, err
		}
		c := NewSwingUp(dyn, balance)
		return c, configure(c, params)
	}

	return r
}

// configure applies the entries of params that c exposes as tunable and
// ignores the rest, which belong to other layers (seed, LQR weights).
func configure(c dynamo.Configurable, params map[string]float64) error {
	tunable := c.GetParams()
	for name, value := range params {
		if _, ok := tunable[name]; !ok {
			continue
		}
		if err := c.SetParam(name, value); err != nil {
			return err
		}
	}
	return nil
}

// weights overrides the default LQR weights with q_x, q_v, q_theta,
// q_omega and r entries when present.
func weights(params map[string]float64) LQRWeights {
	w := DefaultLQRWeights()
	for i, name := range []string{"q_x", "q_v", "q_theta", "q_omega"} {
		if v, ok := params[name]; ok {
			w.Q[i] = v
		}
	}
	if v, ok := params["r"]; ok {
		w.R = v
	}
	return w
}

func (r *Registry) Get(name string, params map[string]float64) (dynamo.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown controller: %s", dynamo.ErrInvalidConfiguration, name)
	}
	return fn(params)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
