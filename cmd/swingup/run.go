package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/swingup/internal/config"
	"github.com/san-kum/swingup/internal/control"
	"github.com/san-kum/swingup/internal/display"
	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/env"
	"github.com/san-kum/swingup/internal/export"
	"github.com/san-kum/swingup/internal/metrics"
	"github.com/san-kum/swingup/internal/rollout"
	"github.com/san-kum/swingup/internal/storage"
)

// statusPrinter reports progress every n steps.
type statusPrinter struct {
	every int
}

func (s statusPrinter) OnStep(tr dynamo.Transition) {
	if (tr.Step+1)%s.every != 0 {
		return
	}
	fmt.Printf("step %4d: x=%+.3f theta=%+.3f action=%+.3f reward=%.3f\n",
		tr.Step+1, tr.Next[env.IdxX], tr.Next[env.IdxTheta], tr.Action, tr.Reward)
}

// newRunner builds an environment, its controller and a runner with the
// standard metrics.
func newRunner(cfg *config.Config, logger *zap.Logger, envOpts ...env.Option) (*rollout.Runner, *env.CartPoleSwingUp, error) {
	envOpts = append(envOpts, env.WithLogger(logger))
	e, err := env.New(cfg.Env, envOpts...)
	if err != nil {
		return nil, nil, err
	}

	params := make(map[string]float64, len(cfg.Run.ControllerParams)+1)
	for k, v := range cfg.Run.ControllerParams {
		params[k] = v
	}
	if _, ok := params["seed"]; !ok {
		params["seed"] = float64(cfg.Run.Seed % (1 << 53))
	}

	reg := control.NewRegistry(e.Dynamics(), cfg.Env.ForceMag, cfg.Env.Dt)
	ctrl, err := reg.Get(cfg.Run.Controller, params)
	if err != nil {
		e.Close()
		return nil, nil, fmt.Errorf("%w (available: %v)", err, reg.List())
	}

	runner := rollout.New(e, ctrl,
		rollout.WithLogger(logger),
		rollout.WithMetrics(metrics.Standard(e.Dynamics())...),
	)
	return runner, e, nil
}

func runEpisodes(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	st, err := openStoreFor(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var envOpts []env.Option
	switch renderOut {
	case "":
	case "interactive", "human":
		cfg.Env.RenderMode = "interactive"
		envOpts = append(envOpts, env.WithDisplay(display.Open))
	case "gif":
	default:
		return fmt.Errorf("%w: unknown render output %q", dynamo.ErrInvalidConfiguration, renderOut)
	}

	runner, e, err := newRunner(cfg, logger, envOpts...)
	if err != nil {
		return err
	}
	defer runner.Close()

	if cfg.Run.Controller == "random" {
		runner.AddObserver(statusPrinter{every: 100})
	}
	var rec *export.GIFRecorder
	if renderOut == "gif" {
		rec = export.NewGIFRecorder(cfg.Env.PoleLength, gifEvery, cfg.Env.RenderFPS, logger)
		runner.AddObserver(rec)
	}

	fmt.Printf("running %d episode(s) with %s controller (dt=%.3f, reward=%s)\n",
		cfg.Run.Episodes, cfg.Run.Controller, cfg.Env.Dt, cfg.Env.RewardMode)

	for ep := 0; ep < cfg.Run.Episodes; ep++ {
		epSeed := cfg.Run.Seed + uint64(ep)
		start := time.Now()
		result, err := runner.Run(ctx, rollout.Config{
			Seed:     env.Seed(epSeed),
			MaxSteps: cfg.Run.MaxSteps,
			Dt:       cfg.Env.Dt,
		})
		if err != nil && !errors.Is(err, dynamo.ErrContextCanceled) {
			return err
		}
		id, saveErr := saveEpisode(ctx, st, cfg, epSeed, result)
		if saveErr != nil {
			return saveErr
		}

		fmt.Printf("\nepisode %d finished in %v\n", ep+1, time.Since(start).Round(time.Millisecond))
		fmt.Printf("run id: %s\n", id)
		fmt.Printf("steps: %d  return: %.3f  terminated: %v  truncated: %v\n",
			result.Steps, result.Return, result.Terminated, result.Truncated)
		fmt.Printf("final state: %v\n", formatState(e.State()))
		fmt.Println("metrics:")
		for _, name := range sortedKeys(result.Metrics) {
			fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
		}

		if err != nil {
			return err
		}
	}

	if rec != nil {
		if err := rec.Save(gifPath); err != nil {
			return err
		}
		fmt.Printf("\nwrote %d frames to %s\n", rec.Frames(), gifPath)
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	batchDefaults(cmd, cfg, ensembleEpisodes, 0)
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	factory := func(idx int) (*rollout.Runner, error) {
		runner, _, err := newRunner(cfg, logger.With(zap.Int("episode", idx)))
		return runner, err
	}

	fmt.Printf("running %d parallel episodes with %s controller (seeds %d..%d)\n\n",
		cfg.Run.Episodes, cfg.Run.Controller, cfg.Run.Seed, cfg.Run.Seed+uint64(cfg.Run.Episodes)-1)

	start := time.Now()
	results, err := rollout.NewEnsemble(factory, cfg.Run.Episodes, cfg.Run.Seed).Run(ctx, rollout.Config{
		MaxSteps: cfg.Run.MaxSteps,
		Dt:       cfg.Env.Dt,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EPISODE\tSEED\tSTEPS\tRETURN\tUPRIGHT\tEND")
	for i, r := range results {
		end := "running"
		switch {
		case r.Terminated:
			end = "terminated"
		case r.Truncated:
			end = "truncated"
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\t%.3f\t%s\n",
			i, cfg.Run.Seed+uint64(i), r.Steps, r.Return, r.Metrics["upright_fraction"], end)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	s := rollout.Summarize(results)
	fmt.Printf("\nepisodes: %d  terminated: %d  elapsed: %v\n", s.Episodes, s.Terminated, elapsed.Round(time.Millisecond))
	fmt.Printf("return: mean %.3f  std %.3f  min %.3f  max %.3f\n", s.MeanReturn, s.StdReturn, s.MinReturn, s.MaxReturn)
	fmt.Printf("mean steps: %.1f\n", s.MeanSteps)
	return nil
}

// saveEpisode stores one episode. The save runs even after ctx is
// canceled so an interrupted episode is kept.
func saveEpisode(ctx context.Context, st storage.Store, cfg *config.Config, seed uint64, r *rollout.Result) (string, error) {
	meta := storage.RunMetadata{
		Controller: cfg.Run.Controller,
		RewardMode: cfg.Env.RewardMode,
		Seed:       seed,
		Dt:         cfg.Env.Dt,
		Steps:      r.Steps,
		Return:     r.Return,
		Terminated: r.Terminated,
		Truncated:  r.Truncated,
		Metrics:    r.Metrics,
	}
	id, err := st.Save(context.WithoutCancel(ctx), meta, storage.TraceFromTransitions(r.Transitions, cfg.Env.Dt))
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

func formatState(s dynamo.State) string {
	if len(s) < 4 {
		return "[]"
	}
	return fmt.Sprintf("[x=%+.3f x_dot=%+.3f theta=%+.3f theta_dot=%+.3f]",
		s[env.IdxX], s[env.IdxXDot], s[env.IdxTheta], s[env.IdxThetaDot])
}
