package dynamo

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// Equal reports bit-for-bit equality.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

type Control []float64

// Scalar returns the first control channel, or zero for an empty control.
func (u Control) Scalar() float64 {
	if len(u) == 0 {
		return 0
	}
	return u[0]
}

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type Controller interface {
	Compute(x State, t float64) Control
}

// Transition is one step of an episode: the state the action was applied
// in, the action, and what came back.
type Transition struct {
	Step       int
	Time       float64
	State      State
	Action     float64
	Reward     float64
	Next       State
	Terminated bool
	Truncated  bool
}

type Metric interface {
	Name() string
	Observe(tr Transition)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(tr Transition)
}

// Configurable controllers expose named parameters that can be set after
// construction.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
