package control

import "github.com/san-kum/swingup/internal/dynamo"

// Manual passes a user-set action to the environment. The keyboard
// front-ends update it between steps.
type Manual struct {
	action float64
}

func NewManual() *Manual {
	return &Manual{}
}

// SetAction updates the held action.
func (c *Manual) SetAction(a float64) {
	c.action = a
}

func (c *Manual) Action() float64 {
	return c.action
}

// Compute returns the held action.
func (c *Manual) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{c.action}
}
