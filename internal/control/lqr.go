package control

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/physics"
)

const (
	riccatiMaxIter = 20000
	riccatiTol     = 1e-10
	linearizeStep  = 1e-6
)

// LQR is a state-feedback law u = -K(x - target). The angle error is
// wrapped before the gain is applied.
type LQR struct {
	K      [][]float64
	Target dynamo.State
}

func NewLQR(k [][]float64, target dynamo.State) *LQR {
	return &LQR{K: k, Target: target}
}

func (l *LQR) Compute(x dynamo.State, t float64) dynamo.Control {
	u := make(dynamo.Control, len(l.K))

	for i := range u {
		for j := range x {
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			e := x[j] - target
			if j == 2 {
				e = dynamo.WrapAngle(e)
			}
			u[i] -= l.K[i][j] * e
		}
	}

	return u
}

// LQRWeights are the state and action weights of the quadratic cost.
type LQRWeights struct {
	Q [4]float64
	R float64
}

func DefaultLQRWeights() LQRWeights {
	return LQRWeights{
		Q: [4]float64{1, 1, 10, 1},
		R: 1,
	}
}

// Linearize returns the Euler-discretized linear model of the cart-pole
// about the upright equilibrium. The input is the normalized action, so
// the force is action * forceMag.
func Linearize(dyn *physics.CartPole, forceMag, dt float64) (a, b *mat.Dense) {
	n := dyn.StateDim()
	origin := make(dynamo.State, n)
	zero := dynamo.Control{0}

	ac := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		plus := origin.Clone()
		minus := origin.Clone()
		plus[j] += linearizeStep
		minus[j] -= linearizeStep
		fp := dyn.Derive(plus, zero, 0)
		fm := dyn.Derive(minus, zero, 0)
		for i := 0; i < n; i++ {
			ac.Set(i, j, (fp[i]-fm[i])/(2*linearizeStep))
		}
	}

	bc := mat.NewDense(n, 1, nil)
	fp := dyn.Derive(origin, dynamo.Control{linearizeStep * forceMag}, 0)
	fm := dyn.Derive(origin, dynamo.Control{-linearizeStep * forceMag}, 0)
	for i := 0; i < n; i++ {
		bc.Set(i, 0, (fp[i]-fm[i])/(2*linearizeStep))
	}

	a = mat.NewDense(n, n, nil)
	a.Scale(dt, ac)
	for i := 0; i < n; i++ {
		a.Set(i, i, a.At(i, i)+1)
	}
	b = mat.NewDense(n, 1, nil)
	b.Scale(dt, bc)
	return a, b
}

// DesignLQR computes the infinite-horizon discrete LQR gain for balancing
// the pole upright by iterating the Riccati difference equation to a
// fixed point.
func DesignLQR(dyn *physics.CartPole, forceMag, dt float64, w LQRWeights) (*LQR, error) {
	if dt <= 0 || forceMag == 0 {
		return nil, fmt.Errorf("%w: lqr needs positive dt and nonzero force", dynamo.ErrInvalidConfiguration)
	}
	if w.R <= 0 {
		return nil, fmt.Errorf("%w: lqr action weight must be positive, got %f", dynamo.ErrInvalidConfiguration, w.R)
	}

	a, b := Linearize(dyn, forceMag, dt)
	k, err := solveDARE(a, b, w)
	if err != nil {
		return nil, err
	}
	return NewLQR([][]float64{k}, dynamo.State{0, 0, 0, 0}), nil
}

func solveDARE(a, b *mat.Dense, w LQRWeights) ([]float64, error) {
	n, _ := a.Dims()
	q := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		q.Set(i, i, w.Q[i])
	}

	p := mat.DenseCopyOf(q)
	k := mat.NewDense(1, n, nil)

	var bp, bpb, bpa, ap, apa, corr, next mat.Dense
	for iter := 0; iter < riccatiMaxIter; iter++ {
		bp.Mul(b.T(), p)
		bpb.Mul(&bp, b)
		s := w.R + bpb.At(0, 0)
		bpa.Mul(&bp, a)
		k.Scale(1/s, &bpa)

		ap.Mul(a.T(), p)
		apa.Mul(&ap, a)
		corr.Mul(bpa.T(), k)

		next.Sub(&apa, &corr)
		next.Add(&next, q)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				avg := 0.5 * (next.At(i, j) + next.At(j, i))
				next.Set(i, j, avg)
				next.Set(j, i, avg)
			}
		}

		var diff mat.Dense
		diff.Sub(&next, p)
		delta := mat.Norm(&diff, math.Inf(1))
		p.Copy(&next)

		if math.IsNaN(delta) || math.IsInf(delta, 0) {
			return nil, fmt.Errorf("riccati iteration diverged at %d", iter)
		}
		if delta < riccatiTol*(1+mat.Norm(p, math.Inf(1))) {
			return mat.Row(nil, 0, k), nil
		}
	}
	return nil, fmt.Errorf("riccati iteration did not converge in %d steps", riccatiMaxIter)
}
