package rollout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// Factory builds the runner for episode idx. Every episode gets its own
// environment, so runners are never shared between goroutines.
type Factory func(idx int) (*Runner, error)

// Ensemble plays independent seeded episodes in parallel. Episode i is
// seeded with SeedStart + i.
type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart uint64
}

func NewEnsemble(factory Factory, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			runner, err := e.factory(idx)
			if err != nil {
				errs[idx] = fmt.Errorf("episode %d: %w", idx, err)
				return
			}
			defer runner.Close()

			cfgCopy := cfg
			seed := e.seedStart + uint64(idx)
			cfgCopy.Seed = &seed

			results[idx], errs[idx] = runner.Run(ctx, cfgCopy)
		}(i)
	}

	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// Summary aggregates the returns of an ensemble.
type Summary struct {
	Episodes   int
	MeanReturn float64
	StdReturn  float64
	MinReturn  float64
	MaxReturn  float64
	MeanSteps  float64
	Terminated int
}

func Summarize(results []*Result) Summary {
	s := Summary{Episodes: len(results)}
	if len(results) == 0 {
		return s
	}

	returns := make([]float64, len(results))
	steps := make([]float64, len(results))
	s.MinReturn = math.Inf(1)
	s.MaxReturn = math.Inf(-1)
	for i, r := range results {
		returns[i] = r.Return
		steps[i] = float64(r.Steps)
		s.MinReturn = math.Min(s.MinReturn, r.Return)
		s.MaxReturn = math.Max(s.MaxReturn, r.Return)
		if r.Terminated {
			s.Terminated++
		}
	}
	if len(returns) > 1 {
		s.MeanReturn, s.StdReturn = stat.MeanStdDev(returns, nil)
	} else {
		s.MeanReturn = returns[0]
	}
	s.MeanSteps = stat.Mean(steps, nil)
	return s
}
