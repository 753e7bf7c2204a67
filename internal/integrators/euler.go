package integrators

import "github.com/san-kum/swingup/internal/dynamo"

// Euler is the explicit first-order stepper. Every component advances
// from the derivative taken at the start of the step, so positions move
// with the old velocities and velocities with the old accelerations.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, u, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
