package control

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/swingup/internal/dynamo"
)

// Random samples actions uniformly from [-1, 1].
type Random struct {
	seed uint64
	dist distuv.Uniform
}

func NewRandom(seed uint64) *Random {
	r := &Random{seed: seed}
	r.Reset()
	return r
}

// Reset rewinds the action stream to its seed.
func (r *Random) Reset() {
	r.dist = distuv.Uniform{Min: -1, Max: 1, Src: rand.NewPCG(r.seed, r.seed+1)}
}

func (r *Random) Compute(x dynamo.State, t float64) dynamo.Control {
	return dynamo.Control{r.dist.Rand()}
}
