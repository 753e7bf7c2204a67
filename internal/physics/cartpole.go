package physics

import (
	"math"

	"github.com/san-kum/swingup/internal/dynamo"
)

// CartPole is a rigid pole hinged on a cart that slides with viscous
// friction. State is [x, x_dot, theta, theta_dot] with theta = 0 upright;
// the control is the horizontal force on the cart in newtons.
type CartPole struct {
	CartMass   float64
	PoleMass   float64
	PoleLength float64
	Gravity    float64
	Friction   float64

	totalMass  float64
	massLength float64
}

func NewCartPole(gravity, cartMass, poleMass, poleLength, friction float64) *CartPole {
	return &CartPole{
		CartMass:   cartMass,
		PoleMass:   poleMass,
		PoleLength: poleLength,
		Gravity:    gravity,
		Friction:   friction,
		totalMass:  cartMass + poleMass,
		massLength: poleMass * poleLength,
	}
}

func (c *CartPole) StateDim() int {
	return 4
}

func (c *CartPole) ControlDim() int {
	return 1
}

func (c *CartPole) TotalMass() float64  { return c.totalMass }
func (c *CartPole) MassLength() float64 { return c.massLength }

// Accelerations returns the cart and pole accelerations for the given
// state and applied force.
func (c *CartPole) Accelerations(x dynamo.State, force float64) (xAcc, thetaAcc float64) {
	vel := x[1]
	theta := x[2]
	omega := x[3]

	s := math.Sin(theta)
	co := math.Cos(theta)
	mp := c.PoleMass
	g := c.Gravity
	b := c.Friction

	xAcc = (-2*c.massLength*omega*omega*s + 3*mp*g*s*co + 4*force - 4*b*vel) /
		(4*c.totalMass - 3*mp*co*co)
	thetaAcc = (-3*c.massLength*omega*omega*s*co + 6*c.totalMass*g*s + 6*(force-b*vel)*co) /
		(4*c.PoleLength*c.totalMass - 3*c.massLength*co*co)
	return xAcc, thetaAcc
}

func (c *CartPole) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	xAcc, thetaAcc := c.Accelerations(x, u.Scalar())
	return dynamo.State{x[1], xAcc, x[3], thetaAcc}
}

// Energy is the mechanical energy of the cart and a uniform pole, taking
// the pivot height as zero potential. The cart/pole velocity coupling
// term is left out.
func (c *CartPole) Energy(x dynamo.State) float64 {
	vel, theta, omega := x[1], x[2], x[3]
	cart := 0.5 * c.CartMass * vel * vel
	pole := c.massLength * c.PoleLength * omega * omega / 6
	potential := 0.5 * c.massLength * c.Gravity * math.Cos(theta)
	return cart + pole + potential
}

// UprightEnergy is the energy of the pole at rest in the upright position.
func (c *CartPole) UprightEnergy() float64 {
	return 0.5 * c.massLength * c.Gravity
}
