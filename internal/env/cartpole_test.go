package env_test

import (
	"errors"
	"image"
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/env"
	"github.com/san-kum/swingup/internal/render"
)

type countingDisplay struct {
	shown  int
	closed int
}

func (d *countingDisplay) Show(img image.Image) error {
	d.shown++
	return nil
}

func (d *countingDisplay) Close() error {
	d.closed++
	return errors.New("window already closed")
}

func newEnv(mutate func(*env.Params)) *env.CartPoleSwingUp {
	p := env.DefaultParams()
	if mutate != nil {
		mutate(&p)
	}
	e, err := env.New(p)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(e.Close)
	return e
}

func expectInNoiseBand(s dynamo.State) {
	rest := env.RestState()
	Expect(s).To(HaveLen(4))
	for i := range s {
		Expect(s[i]).To(BeNumerically("~", rest[i], 0.25), "component %d", i)
	}
}

var _ = Describe("CartPoleSwingUp", func() {
	Describe("New", func() {
		It("rejects a non-positive time step", func() {
			p := env.DefaultParams()
			p.Dt = 0
			_, err := env.New(p)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
		})

		It("rejects an unknown render mode", func() {
			p := env.DefaultParams()
			p.RenderMode = "ansi"
			_, err := env.New(p)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))
		})

		It("rejects a non-positive sigma_c", func() {
			for _, sigma := range []float64{0, -0.25} {
				p := env.DefaultParams()
				p.RewardMode = "pilco"
				p.SigmaC = sigma
				_, err := env.New(p)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration), "sigma_c %v", sigma)
			}
		})

		It("accepts an unknown reward mode until a step needs it", func() {
			p := env.DefaultParams()
			p.RewardMode = "sparse"
			_, err := env.New(p)
			Expect(err).NotTo(HaveOccurred())
		})

		It("derives the total mass and mass-length product", func() {
			e := newEnv(nil)
			Expect(e.Dynamics().TotalMass()).To(Equal(1.0))
			Expect(e.Dynamics().MassLength()).To(BeNumerically("~", 0.3, 1e-12))
		})

		It("keeps its physics fixed when the returned dynamics change", func() {
			a, b := newEnv(nil), newEnv(nil)
			a.Dynamics().Gravity = 0

			start := dynamo.State{0, 0, 1, 0}
			a.Reset(env.ResetOptions{InitialState: start})
			b.Reset(env.ResetOptions{InitialState: start})
			ra, err := a.Step(0)
			Expect(err).NotTo(HaveOccurred())
			rb, err := b.Step(0)
			Expect(err).NotTo(HaveOccurred())

			Expect(ra.Observation).To(Equal(rb.Observation))
			Expect(ra.Observation[env.IdxThetaDot]).NotTo(BeZero())
			Expect(a.Params().Gravity).To(Equal(env.DefaultGravity))
		})
	})

	Describe("Reset", func() {
		It("is deterministic for a fixed seed", func() {
			a := newEnv(nil)
			b := newEnv(nil)

			sa, _ := a.Reset(env.ResetOptions{Seed: env.Seed(7)})
			sb, _ := b.Reset(env.ResetOptions{Seed: env.Seed(7)})
			Expect(sa).To(Equal(sb))

			again, _ := a.Reset(env.ResetOptions{Seed: env.Seed(7)})
			Expect(again).To(Equal(sa))
		})

		It("draws different states for different seeds", func() {
			e := newEnv(nil)
			s1, _ := e.Reset(env.ResetOptions{Seed: env.Seed(1)})
			s2, _ := e.Reset(env.ResetOptions{Seed: env.Seed(2)})
			Expect(s1).NotTo(Equal(s2))
		})

		It("continues the stream when no seed is given", func() {
			e := newEnv(nil)
			s1, _ := e.Reset(env.ResetOptions{Seed: env.Seed(3)})
			s2, _ := e.Reset(env.ResetOptions{})
			Expect(s2).NotTo(Equal(s1))
			expectInNoiseBand(s2)
		})

		It("samples around the hanging rest state", func() {
			e := newEnv(nil)
			for seed := uint64(0); seed < 50; seed++ {
				s, info := e.Reset(env.ResetOptions{Seed: env.Seed(seed)})
				expectInNoiseBand(s)
				Expect(info).To(BeEmpty())
			}
		})

		It("adopts an explicit state verbatim", func() {
			e := newEnv(nil)
			e.Reset(env.ResetOptions{Seed: env.Seed(1)})
			e.Step(1)
			Expect(e.Steps()).To(Equal(1))

			initial := dynamo.State{0.3, -0.2, 1.0, 0.5}
			s, _ := e.Reset(env.ResetOptions{Seed: env.Seed(99), InitialState: initial})
			Expect(s).To(Equal(initial))
			Expect(e.Steps()).To(BeZero())

			initial[0] = 5
			Expect(e.State()[0]).To(Equal(0.3))
		})

		It("does not wrap an explicit angle", func() {
			e := newEnv(nil)
			s, _ := e.Reset(env.ResetOptions{InitialState: dynamo.State{0, 0, 4, 0}})
			Expect(s[env.IdxTheta]).To(Equal(4.0))
		})
	})

	Describe("Step", func() {
		It("requires a reset first", func() {
			e := newEnv(nil)
			_, err := e.Step(0)
			Expect(err).To(MatchError(dynamo.ErrNotReset))
			Expect(e.State()).To(BeNil())
		})

		It("integrates with explicit Euler", func() {
			e := newEnv(nil)
			e.Reset(env.ResetOptions{InitialState: env.RestState()})

			res, err := e.Step(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Observation[env.IdxX]).To(Equal(0.0))
			Expect(res.Observation[env.IdxXDot]).To(BeNumerically("~", 1.6, 1e-9))
			Expect(res.Observation[env.IdxTheta]).To(BeNumerically("~", math.Pi, 1e-12))
			Expect(res.Observation[env.IdxThetaDot]).To(BeNumerically("~", -4.0, 1e-9))
			Expect(res.Reward).To(BeNumerically("~", -1, 1e-12))
			Expect(res.Terminated).To(BeFalse())
			Expect(res.Truncated).To(BeFalse())
			Expect(res.Info).To(BeEmpty())
		})

		It("keeps theta in (-π, π]", func() {
			e := newEnv(nil)
			rng := rand.New(rand.NewPCG(11, 12))
			e.Reset(env.ResetOptions{Seed: env.Seed(11)})

			for i := 0; i < 3000; i++ {
				res, err := e.Step(rng.Float64()*4 - 2)
				Expect(err).NotTo(HaveOccurred())
				theta := res.Observation[env.IdxTheta]
				Expect(theta).To(BeNumerically(">", -math.Pi))
				Expect(theta).To(BeNumerically("<=", math.Pi))
				Expect(res.Terminated && res.Truncated).To(BeFalse())
				if res.Done() {
					e.Reset(env.ResetOptions{})
				}
			}
		})

		It("clamps actions to [-1, 1]", func() {
			for _, pair := range [][2]float64{{2, 1}, {-2, -1}, {100, 1}} {
				a := newEnv(nil)
				b := newEnv(nil)
				start := dynamo.State{0.1, 0.2, 2.5, -0.3}
				a.Reset(env.ResetOptions{InitialState: start})
				b.Reset(env.ResetOptions{InitialState: start})

				ra, err := a.Step(pair[0])
				Expect(err).NotTo(HaveOccurred())
				rb, err := b.Step(pair[1])
				Expect(err).NotTo(HaveOccurred())

				Expect(ra.Observation).To(Equal(rb.Observation))
				Expect(ra.Reward).To(Equal(rb.Reward))
			}
		})

		It("distinguishes in-range actions", func() {
			a := newEnv(nil)
			b := newEnv(nil)
			a.Reset(env.ResetOptions{InitialState: env.RestState()})
			b.Reset(env.ResetOptions{InitialState: env.RestState()})
			ra, _ := a.Step(0.5)
			rb, _ := b.Step(1)
			Expect(ra.Observation).NotTo(Equal(rb.Observation))
		})

		It("returns an InvalidConfiguration error for an unknown reward mode", func() {
			e := newEnv(func(p *env.Params) { p.RewardMode = "sparse" })
			e.Reset(env.ResetOptions{InitialState: env.RestState()})

			_, err := e.Step(1)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfiguration))

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(BeZero())

			Expect(e.State()[env.IdxXDot]).To(BeNumerically("~", 1.6, 1e-9))
			Expect(e.Steps()).To(BeZero())
		})

		It("rejects an explicit state of the wrong size", func() {
			e := newEnv(nil)
			e.Reset(env.ResetOptions{InitialState: dynamo.State{0, 0}})
			_, err := e.Step(0)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})
	})

	Describe("termination", func() {
		It("terminates on the step that crosses +x_threshold", func() {
			e := newEnv(nil)
			e.Reset(env.ResetOptions{InitialState: dynamo.State{2.4, 0.1, 0, 0}})
			res, err := e.Step(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Observation[env.IdxX]).To(BeNumerically(">", 2.4))
			Expect(res.Terminated).To(BeTrue())
			Expect(res.Truncated).To(BeFalse())
		})

		It("terminates on the step that crosses -x_threshold", func() {
			e := newEnv(nil)
			e.Reset(env.ResetOptions{InitialState: dynamo.State{-2.4, -0.1, 0, 0}})
			res, _ := e.Step(0)
			Expect(res.Terminated).To(BeTrue())
		})

		It("never terminates while the cart sits on the boundary", func() {
			e := newEnv(func(p *env.Params) { p.TimeLimit = 100 })
			e.Reset(env.ResetOptions{InitialState: dynamo.State{2.4, 0, 0, 0}})
			for i := 1; i <= 100; i++ {
				res, err := e.Step(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Observation[env.IdxX]).To(Equal(2.4))
				Expect(res.Terminated).To(BeFalse())
				Expect(res.Truncated).To(Equal(i == 100))
			}
		})

		It("prefers termination over truncation", func() {
			e := newEnv(func(p *env.Params) { p.TimeLimit = 1 })
			e.Reset(env.ResetOptions{InitialState: dynamo.State{2.4, 1, 0, 0}})
			res, _ := e.Step(0)
			Expect(res.Terminated).To(BeTrue())
			Expect(res.Truncated).To(BeFalse())
		})
	})

	Describe("truncation", func() {
		It("truncates exactly at the time limit", func() {
			e := newEnv(nil)
			e.Reset(env.ResetOptions{InitialState: dynamo.State{0, 0, 0, 0}})

			for i := 1; i <= env.DefaultTimeLimit; i++ {
				res, err := e.Step(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Terminated).To(BeFalse())
				if i < env.DefaultTimeLimit {
					Expect(res.Truncated).To(BeFalse(), "step %d", i)
				} else {
					Expect(res.Truncated).To(BeTrue())
				}
			}
		})

		It("restarts the counter on reset", func() {
			e := newEnv(func(p *env.Params) { p.TimeLimit = 3 })
			e.Reset(env.ResetOptions{InitialState: dynamo.State{0, 0, 0, 0}})
			e.Step(0)
			e.Step(0)
			e.Reset(env.ResetOptions{InitialState: dynamo.State{0, 0, 0, 0}})
			res, _ := e.Step(0)
			Expect(res.Truncated).To(BeFalse())
		})
	})

	Describe("reward", func() {
		It("stays in [-1, 1] in default mode", func() {
			e := newEnv(nil)
			rng := rand.New(rand.NewPCG(5, 6))
			e.Reset(env.ResetOptions{Seed: env.Seed(5)})
			for i := 0; i < 2000; i++ {
				res, _ := e.Step(rng.Float64()*2 - 1)
				Expect(res.Reward).To(BeNumerically(">=", -1))
				Expect(res.Reward).To(BeNumerically("<=", 1))
				if res.Done() {
					e.Reset(env.ResetOptions{})
				}
			}
		})

		It("is non-positive in pilco mode and zero at the target", func() {
			e := newEnv(func(p *env.Params) { p.RewardMode = "pilco" })
			rng := rand.New(rand.NewPCG(8, 9))
			e.Reset(env.ResetOptions{Seed: env.Seed(8)})
			for i := 0; i < 2000; i++ {
				res, err := e.Step(rng.Float64()*2 - 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Reward).To(BeNumerically(">=", -1))
				Expect(res.Reward).To(BeNumerically("<=", 0))
				if res.Done() {
					e.Reset(env.ResetOptions{})
				}
			}

			e.Reset(env.ResetOptions{InitialState: dynamo.State{0, 0, 0, 0}})
			res, _ := e.Step(0)
			Expect(res.Reward).To(BeZero())
		})
	})

	Describe("rendering", func() {
		It("refuses to render before reset", func() {
			e := newEnv(nil)
			_, err := e.Render(render.Offscreen)
			Expect(err).To(MatchError(dynamo.ErrNotReset))
		})

		It("returns a 600x600 RGB frame offscreen", func() {
			e := newEnv(nil)
			e.Reset(env.ResetOptions{Seed: env.Seed(42)})
			f, err := e.Render(render.Offscreen)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Height).To(Equal(600))
			Expect(f.Width).To(Equal(600))
			Expect(f.Pix).To(HaveLen(600 * 600 * 3))

			again, _ := e.Render(render.Offscreen)
			Expect(again.Equal(f)).To(BeTrue())
		})

		It("does not change the state", func() {
			e := newEnv(nil)
			s, _ := e.Reset(env.ResetOptions{Seed: env.Seed(42)})
			e.Render(render.Offscreen)
			Expect(e.State()).To(Equal(s))
		})

		It("shows every reset and step in interactive mode", func() {
			d := &countingDisplay{}
			opened := 0
			p := env.DefaultParams()
			p.RenderMode = "human"
			e, err := env.New(p, env.WithDisplay(func(w, h, fps int) (render.Display, error) {
				opened++
				Expect(fps).To(Equal(env.DefaultRenderFPS))
				return d, nil
			}))
			Expect(err).NotTo(HaveOccurred())

			e.Reset(env.ResetOptions{Seed: env.Seed(1)})
			e.Step(0)
			e.Step(0)
			e.Step(0)

			Expect(opened).To(Equal(1))
			Expect(d.shown).To(Equal(4))

			Expect(e.Close()).To(Succeed())
			Expect(e.Close()).To(Succeed())
			Expect(d.closed).To(Equal(1))
		})

		It("closes safely when never rendered", func() {
			e := newEnv(nil)
			Expect(e.Close()).To(Succeed())
			Expect(e.Close()).To(Succeed())
		})
	})

	Describe("spaces", func() {
		It("bounds actions to [-1, 1]", func() {
			s := newEnv(nil).Spaces()
			Expect(s.Action.Contains([]float64{1})).To(BeTrue())
			Expect(s.Action.Contains([]float64{1.5})).To(BeFalse())
			Expect(s.Observation.High[env.IdxX]).To(Equal(4.8))
			Expect(math.IsInf(s.Observation.High[env.IdxXDot], 1)).To(BeTrue())
		})
	})

	Describe("end to end", func() {
		It("samples the seeded start inside the noise band", func() {
			e := newEnv(nil)
			s, _ := e.Reset(env.ResetOptions{Seed: env.Seed(42)})
			expectInNoiseBand(s)
		})

		It("swings passively for a full episode at a fine time step", func() {
			e := newEnv(func(p *env.Params) { p.Dt = 0.01 })
			s, _ := e.Reset(env.ResetOptions{Seed: env.Seed(42)})
			expectInNoiseBand(s)

			for i := 1; i <= env.DefaultTimeLimit; i++ {
				res, err := e.Step(0)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Terminated).To(BeFalse(), "terminated at step %d", i)
				Expect(res.Truncated).To(Equal(i == env.DefaultTimeLimit))
				Expect(math.Abs(res.Observation[env.IdxX])).To(BeNumerically("<", 1.5))
			}
		})
	})
})

var _ = Describe("Trig", func() {
	It("replaces theta with its sine and cosine", func() {
		inner, err := env.New(env.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		t := env.NewTrig(inner)
		defer t.Close()

		obs, _ := t.Reset(env.ResetOptions{InitialState: dynamo.State{0.1, 0.2, math.Pi / 2, 0.4}})
		Expect(obs).To(HaveLen(5))
		Expect(obs[0]).To(Equal(0.1))
		Expect(obs[1]).To(Equal(0.2))
		Expect(obs[2]).To(BeNumerically("~", 1, 1e-12))
		Expect(obs[3]).To(BeNumerically("~", 0, 1e-12))
		Expect(obs[4]).To(Equal(0.4))
		Expect(env.AngleFromTrig(obs)).To(BeNumerically("~", math.Pi/2, 1e-12))

		res, err := t.Step(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Observation).To(HaveLen(5))
		Expect(env.AngleFromTrig(res.Observation)).To(BeNumerically("~", inner.State()[env.IdxTheta], 1e-12))
	})

	It("leaves a short explicit state to the step error", func() {
		inner, err := env.New(env.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		t := env.NewTrig(inner)
		defer t.Close()

		obs, _ := t.Reset(env.ResetOptions{InitialState: dynamo.State{0, 0}})
		Expect(obs).To(Equal(dynamo.State{0, 0}))
		_, err = t.Step(0)
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})

	It("passes errors through", func() {
		inner, _ := env.New(env.DefaultParams())
		_, err := env.NewTrig(inner).Step(0)
		Expect(err).To(MatchError(dynamo.ErrNotReset))
	})
})
