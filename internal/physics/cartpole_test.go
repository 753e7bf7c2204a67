package physics

import (
	"math"
	"testing"

	"github.com/san-kum/swingup/internal/dynamo"
)

func defaultCartPole() *CartPole {
	return NewCartPole(9.82, 0.5, 0.5, 0.6, 0.1)
}

func TestCartPoleDerivedConstants(t *testing.T) {
	c := defaultCartPole()
	if c.TotalMass() != 1.0 {
		t.Errorf("expected total mass 1.0, got %f", c.TotalMass())
	}
	if math.Abs(c.MassLength()-0.3) > 1e-12 {
		t.Errorf("expected mass-length 0.3, got %f", c.MassLength())
	}
}

func TestCartPoleAccelerationsHanging(t *testing.T) {
	c := defaultCartPole()

	// Hanging at rest with full positive force.
	xAcc, thetaAcc := c.Accelerations(dynamo.State{0, 0, math.Pi, 0}, 10)

	if math.Abs(xAcc-16.0) > 1e-9 {
		t.Errorf("expected x_acc 16.0, got %f", xAcc)
	}
	if math.Abs(thetaAcc-(-40.0)) > 1e-9 {
		t.Errorf("expected theta_acc -40.0, got %f", thetaAcc)
	}
}

func TestCartPoleUprightEquilibrium(t *testing.T) {
	c := defaultCartPole()
	dx := c.Derive(dynamo.State{0, 0, 0, 0}, dynamo.Control{0}, 0)

	for i, v := range dx {
		if v != 0 {
			t.Errorf("derivative[%d] = %f, expected 0 at upright rest", i, v)
		}
	}
}

func TestCartPoleDeriveLayout(t *testing.T) {
	c := defaultCartPole()
	x := dynamo.State{0.1, 0.2, 0.3, 0.4}
	dx := c.Derive(x, dynamo.Control{1.5}, 0)

	if len(dx) != c.StateDim() {
		t.Fatalf("expected %d components, got %d", c.StateDim(), len(dx))
	}
	if dx[0] != x[1] || dx[2] != x[3] {
		t.Error("position derivatives should equal current velocities")
	}

	xAcc, thetaAcc := c.Accelerations(x, 1.5)
	if dx[1] != xAcc || dx[3] != thetaAcc {
		t.Error("velocity derivatives should equal accelerations")
	}
}

func TestCartPoleFrictionOpposesMotion(t *testing.T) {
	c := defaultCartPole()
	xAcc, _ := c.Accelerations(dynamo.State{0, 1, math.Pi, 0}, 0)
	if xAcc >= 0 {
		t.Errorf("expected friction to decelerate the cart, got x_acc %f", xAcc)
	}
}

func TestCartPoleEnergy(t *testing.T) {
	c := defaultCartPole()

	up := c.Energy(dynamo.State{0, 0, 0, 0})
	down := c.Energy(dynamo.State{0, 0, math.Pi, 0})

	if math.Abs(up-c.UprightEnergy()) > 1e-12 {
		t.Errorf("expected upright energy %f, got %f", c.UprightEnergy(), up)
	}
	if math.Abs(down+c.UprightEnergy()) > 1e-12 {
		t.Errorf("expected hanging energy %f, got %f", -c.UprightEnergy(), down)
	}

	moving := c.Energy(dynamo.State{0, 1, math.Pi, 0})
	if moving <= down {
		t.Error("cart motion should add kinetic energy")
	}
}
