package metrics

import (
	"github.com/san-kum/swingup/internal/dynamo"
)

// Energy averages the mechanical energy of the post-step states.
type Energy struct {
	name        string
	dyn         dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewEnergy(dyn dynamo.Hamiltonian) *Energy {
	return &Energy{
		name: "energy",
		dyn:  dyn,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(tr dynamo.Transition) {
	if len(tr.Next) < 4 {
		return
	}
	e.totalEnergy += e.dyn.Energy(tr.Next)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// PeakEnergy is the largest mechanical energy seen in the episode.
type PeakEnergy struct {
	name string
	dyn  dynamo.Hamiltonian
	peak float64
	seen bool
}

func NewPeakEnergy(dyn dynamo.Hamiltonian) *PeakEnergy {
	return &PeakEnergy{
		name: "peak_energy",
		dyn:  dyn,
	}
}

func (e *PeakEnergy) Name() string { return e.name }

func (e *PeakEnergy) Observe(tr dynamo.Transition) {
	if len(tr.Next) < 4 {
		return
	}
	v := e.dyn.Energy(tr.Next)
	if !e.seen || v > e.peak {
		e.peak = v
		e.seen = true
	}
}

func (e *PeakEnergy) Value() float64 {
	return e.peak
}

func (e *PeakEnergy) Reset() {
	e.peak = 0
	e.seen = false
}
