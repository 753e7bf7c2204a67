package metrics

import (
	"math"

	"github.com/san-kum/swingup/internal/dynamo"
)

// ControlEffort is the mean absolute normalized action over an episode.
type ControlEffort struct {
	total float64
	steps int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(tr dynamo.Transition) {
	c.total += math.Abs(tr.Action)
	c.steps++
}

func (c *ControlEffort) Value() float64 {
	if c.steps == 0 {
		return 0
	}
	return c.total / float64(c.steps)
}

func (c *ControlEffort) Reset() { c.total, c.steps = 0, 0 }
