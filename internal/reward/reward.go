// Package reward scores cart-pole states.
package reward

import (
	"fmt"
	"math"

	"github.com/san-kum/swingup/internal/dynamo"
)

type Mode string

const (
	// Default rewards cos(theta)·cos(x): 1 upright and centred.
	Default Mode = "default"
	// Pilco is a saturating cost on the pole-tip distance to the upright
	// centred tip, negated so that 0 is best.
	Pilco Mode = "pilco"
)

func Modes() []Mode {
	return []Mode{Default, Pilco}
}

// Func scores a state. Params are fixed by the environment.
type Func struct {
	Mode       Mode
	PoleLength float64
	SigmaC     float64
}

func New(mode string, poleLength, sigmaC float64) Func {
	return Func{Mode: Mode(mode), PoleLength: poleLength, SigmaC: sigmaC}
}

// Compute returns the reward for a cart at x with pole angle theta.
// An unknown mode yields an error wrapping dynamo.ErrInvalidConfiguration.
func (f Func) Compute(x, theta float64) (float64, error) {
	switch f.Mode {
	case Default:
		return math.Cos(theta) * math.Cos(x), nil
	case Pilco:
		d2 := TipDistanceSquared(x, theta, f.PoleLength)
		cost := 1 - math.Exp(-d2/(2*f.SigmaC*f.SigmaC))
		return -cost, nil
	default:
		return 0, fmt.Errorf("%w: unknown reward mode %q", dynamo.ErrInvalidConfiguration, f.Mode)
	}
}

// Tip returns the pole-tip position in world coordinates.
func Tip(x, theta, poleLength float64) (tipX, tipY float64) {
	return x + poleLength*math.Sin(theta), poleLength * math.Cos(theta)
}

// TipDistanceSquared is the squared distance from the tip to (0, l).
func TipDistanceSquared(x, theta, poleLength float64) float64 {
	tx, ty := Tip(x, theta, poleLength)
	dx := tx
	dy := ty - poleLength
	return dx*dx + dy*dy
}
