package metrics

import (
	"math"

	"github.com/san-kum/swingup/internal/dynamo"
)

// DefaultUprightAngle is the half-width of the band counted as upright.
const DefaultUprightAngle = 0.2

// Return is the undiscounted sum of rewards.
type Return struct {
	name string
	sum  float64
}

func NewReturn() *Return {
	return &Return{name: "return"}
}

func (r *Return) Name() string { return r.name }

func (r *Return) Observe(tr dynamo.Transition) {
	r.sum += tr.Reward
}

func (r *Return) Value() float64 { return r.sum }

func (r *Return) Reset() { r.sum = 0 }

// UprightFraction is the share of steps that end with the pole within
// the given angle of vertical.
type UprightFraction struct {
	name    string
	minCos  float64
	upright int
	samples int
}

func NewUprightFraction(angle float64) *UprightFraction {
	return &UprightFraction{
		name:   "upright_fraction",
		minCos: math.Cos(angle),
	}
}

func (u *UprightFraction) Name() string { return u.name }

func (u *UprightFraction) Observe(tr dynamo.Transition) {
	if len(tr.Next) < 4 {
		return
	}
	u.samples++
	if math.Cos(tr.Next[2]) >= u.minCos {
		u.upright++
	}
}

func (u *UprightFraction) Value() float64 {
	if u.samples == 0 {
		return 0
	}
	return float64(u.upright) / float64(u.samples)
}

func (u *UprightFraction) Reset() {
	u.upright = 0
	u.samples = 0
}

// MaxCartExcursion is the largest |x| reached.
type MaxCartExcursion struct {
	name string
	max  float64
}

func NewMaxCartExcursion() *MaxCartExcursion {
	return &MaxCartExcursion{name: "max_cart_excursion"}
}

func (m *MaxCartExcursion) Name() string { return m.name }

func (m *MaxCartExcursion) Observe(tr dynamo.Transition) {
	if len(tr.Next) == 0 {
		return
	}
	m.max = math.Max(m.max, math.Abs(tr.Next[0]))
}

func (m *MaxCartExcursion) Value() float64 { return m.max }

func (m *MaxCartExcursion) Reset() { m.max = 0 }

// Standard returns the metric set reported for every episode.
func Standard(dyn dynamo.Hamiltonian) []dynamo.Metric {
	return []dynamo.Metric{
		NewReturn(),
		NewControlEffort(),
		NewUprightFraction(DefaultUprightAngle),
		NewMaxCartExcursion(),
		NewEnergy(dyn),
		NewPeakEnergy(dyn),
	}
}
