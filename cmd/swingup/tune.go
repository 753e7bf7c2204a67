package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/swingup/internal/config"
	"github.com/san-kum/swingup/internal/rollout"
	"github.com/san-kum/swingup/internal/tune"
)

var (
	gridAxes []string
	topN     int
)

// ensembleFor runs cfg.Run.Episodes seeded episodes in parallel.
func ensembleFor(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]*rollout.Result, error) {
	factory := func(idx int) (*rollout.Runner, error) {
		runner, _, err := newRunner(cfg, logger)
		return runner, err
	}
	return rollout.NewEnsemble(factory, cfg.Run.Episodes, cfg.Run.Seed).Run(ctx, rollout.Config{
		MaxSteps: cfg.Run.MaxSteps,
		Dt:       cfg.Env.Dt,
	})
}

func tuneController(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	batchDefaults(cmd, cfg, tuneEpisodes, tuneSteps)
	defer logger.Sync()

	grid := tune.NewGrid()
	for _, axis := range gridAxes {
		name, values, err := tune.ParseAxis(axis)
		if err != nil {
			return err
		}
		grid.Add(name, values...)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("tuning %s over %d points, %d episodes each (seed %d)\n\n",
		cfg.Run.Controller, grid.Size(), cfg.Run.Episodes, cfg.Run.Seed)

	eval := func(ctx context.Context, params map[string]float64) (float64, error) {
		c := cfg.Clone()
		for k, v := range params {
			c.Run.ControllerParams[k] = v
		}
		results, err := ensembleFor(ctx, c, logger)
		if err != nil {
			return 0, err
		}
		score := rollout.Summarize(results).MeanReturn
		logger.Debug("grid point", zap.Any("params", params), zap.Float64("mean_return", score))
		return score, nil
	}

	start := time.Now()
	points, err := tune.Search(ctx, grid, eval)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(points[0].Params))
	for k := range points[0].Params {
		names = append(names, k)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RANK\t%s\tMEAN RETURN\n", strings.ToUpper(strings.Join(names, "\t")))
	for i, p := range points {
		if i >= topN {
			break
		}
		fmt.Fprintf(w, "%d", i+1)
		for _, n := range names {
			fmt.Fprintf(w, "\t%.4g", p.Params[n])
		}
		if p.Err != nil {
			fmt.Fprintf(w, "\terror: %v\n", p.Err)
			continue
		}
		fmt.Fprintf(w, "\t%.3f\n", p.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nsearched %d points in %v\n", len(points), time.Since(start).Round(time.Millisecond))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := tune.LoadScenario(args[0])
	if err != nil {
		return err
	}
	base, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	st, err := openStoreFor(ctx, base)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tCTRL\tREWARD\tDT\tEPISODES\tMEAN RETURN\tSTD\tTERMINATED")
	for i, step := range sc.Steps {
		cfg, err := step.Config()
		if err != nil {
			return err
		}
		if cfg.Run.Seed == 0 {
			cfg.Run.Seed = base.Run.Seed
		}
		logger.Info("scenario step", zap.Int("index", i+1), zap.String("name", step.Name))

		results, err := ensembleFor(ctx, cfg, logger.With(zap.String("step", step.Name)))
		if err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
		for j, r := range results {
			if _, err := saveEpisode(ctx, st, cfg, cfg.Run.Seed+uint64(j), r); err != nil {
				return fmt.Errorf("%s: %w", step.Name, err)
			}
		}

		s := rollout.Summarize(results)
		fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%d\t%.3f\t%.3f\t%d\n",
			step.Name, cfg.Run.Controller, cfg.Env.RewardMode, cfg.Env.Dt,
			s.Episodes, s.MeanReturn, s.StdReturn, s.Terminated)
	}
	return w.Flush()
}
