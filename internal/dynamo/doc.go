// Package dynamo provides core simulation primitives for the swing-up task.
//
// The package defines the fundamental interfaces and types shared by the
// physics model, the environment and the rollout machinery:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//   - [Controller]: feedback controller interface
//   - [Transition]: one recorded step of an episode
//
// # Errors
//
// Failures are reported with the sentinel errors in this package, usually
// wrapped in a [SimulationError] that carries the step index and state:
//
//	if errors.Is(err, dynamo.ErrInvalidConfiguration) {
//	    // rebuild the environment with a valid reward mode
//	}
//
// # Angles
//
// Pole angles are measured from upright and kept in (-π, π] with [WrapAngle].
package dynamo
