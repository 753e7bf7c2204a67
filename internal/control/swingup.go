package control

import (
	"fmt"
	"math"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/physics"
)

const (
	DefaultEnergyGain   = 1.0
	DefaultPositionGain = 1.0
	DefaultVelocityGain = 0.0
	DefaultSwitchAngle  = 0.5
)

// SwingUp pumps energy into the pole until it nears the top, then hands
// over to a balancing LQR. Within SwitchAngle of upright the LQR acts;
// elsewhere the action pushes the pole energy towards the upright rest
// energy while pulling the cart back to the centre.
type SwingUp struct {
	EnergyGain   float64
	PositionGain float64
	VelocityGain float64
	SwitchAngle  float64

	dyn     *physics.CartPole
	balance *LQR
}

func NewSwingUp(dyn *physics.CartPole, balance *LQR) *SwingUp {
	return &SwingUp{
		EnergyGain:   DefaultEnergyGain,
		PositionGain: DefaultPositionGain,
		VelocityGain: DefaultVelocityGain,
		SwitchAngle:  DefaultSwitchAngle,
		dyn:          dyn,
		balance:      balance,
	}
}

// PoleEnergy is the kinetic plus potential energy of the pole about its
// pivot.
func (c *SwingUp) PoleEnergy(x dynamo.State) float64 {
	theta, omega := x[2], x[3]
	ml := c.dyn.MassLength()
	return ml*c.dyn.PoleLength*omega*omega/6 + 0.5*ml*c.dyn.Gravity*math.Cos(theta)
}

// Balancing reports whether the pole is inside the LQR capture region.
func (c *SwingUp) Balancing(x dynamo.State) bool {
	return math.Cos(x[2]) > math.Cos(c.SwitchAngle)
}

func (c *SwingUp) Compute(x dynamo.State, t float64) dynamo.Control {
	if len(x) < 4 {
		return dynamo.Control{0}
	}
	if c.Balancing(x) {
		return c.balance.Compute(x, t)
	}

	deficit := c.dyn.UprightEnergy() - c.PoleEnergy(x)
	dir := 1.0
	if x[3]*math.Cos(x[2]) < 0 {
		dir = -1
	}
	u := c.EnergyGain*deficit*dir - c.PositionGain*x[0] - c.VelocityGain*x[1]
	return dynamo.Control{u}
}

func (c *SwingUp) GetParams() map[string]float64 {
	return map[string]float64{
		"k_energy": c.EnergyGain,
		"k_x":      c.PositionGain,
		"k_v":      c.VelocityGain,
		"switch":   c.SwitchAngle,
	}
}

func (c *SwingUp) SetParam(name string, value float64) error {
	switch name {
	case "k_energy":
		c.EnergyGain = value
	case "k_x":
		c.PositionGain = value
	case "k_v":
		c.VelocityGain = value
	case "switch":
		c.SwitchAngle = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
