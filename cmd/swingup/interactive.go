package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/swingup/internal/control"
	"github.com/san-kum/swingup/internal/display"
	"github.com/san-kum/swingup/internal/dynamo"
	"github.com/san-kum/swingup/internal/env"
	"github.com/san-kum/swingup/internal/export"
	"github.com/san-kum/swingup/internal/render"
	"github.com/san-kum/swingup/internal/viz"
)

func renderFrame(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(frameState) != 4 {
		return fmt.Errorf("%w: state needs 4 values, got %d", dynamo.ErrDimensionMismatch, len(frameState))
	}

	cfg.Env.RenderMode = ""
	e, err := env.New(cfg.Env)
	if err != nil {
		return err
	}
	defer e.Close()

	e.Reset(env.ResetOptions{InitialState: dynamo.State(frameState)})
	frame, err := e.Render(render.Offscreen)
	if err != nil {
		return err
	}
	if err := export.SavePNG(frameOut, frame); err != nil {
		return err
	}
	fmt.Printf("wrote %dx%d frame to %s\n", frame.Width, frame.Height, frameOut)
	return nil
}

func playWindow(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var win *display.Window
	open := func(width, height, fps int) (render.Display, error) {
		w, err := display.OpenWindow("cart-pole swing-up", width, height, fps)
		if err != nil {
			return nil, err
		}
		win = w
		return w, nil
	}

	// Frames are drawn once per batch of physics steps, not on every step.
	cfg.Env.RenderMode = ""
	e, err := env.New(cfg.Env, env.WithLogger(logger), env.WithDisplay(open))
	if err != nil {
		return err
	}
	defer e.Close()

	state, _ := e.Reset(env.ResetOptions{Seed: env.Seed(cfg.Run.Seed), InitialState: env.RestState()})
	if _, err := e.Render(render.Interactive); err != nil {
		return err
	}

	var (
		kb       display.Keyboard
		action   float64
		rew      float64
		ret      float64
		episodes int
	)
	for !win.ShouldClose() {
		if kb.QuitPressed() {
			break
		}
		if kb.ResetPressed() {
			state, _ = e.Reset(env.ResetOptions{InitialState: env.RestState()})
			ret = 0
		}

		action = kb.Action()
		for i := 0; i < cfg.Run.StepsPerFrame; i++ {
			res, err := e.Step(action)
			if err != nil {
				return err
			}
			state = res.Observation
			rew = res.Reward
			ret += res.Reward
			if res.Done() {
				episodes++
				logger.Info("episode finished",
					zap.Int("episode", episodes),
					zap.Bool("terminated", res.Terminated),
					zap.Float64("return", ret),
				)
				state, _ = e.Reset(env.ResetOptions{})
				ret = 0
				break
			}
		}

		win.SetOverlay(
			fmt.Sprintf("x: %+.2f  x_dot: %+.2f", state[env.IdxX], state[env.IdxXDot]),
			fmt.Sprintf("theta: %+.2f  theta_dot: %+.2f", state[env.IdxTheta], state[env.IdxThetaDot]),
			fmt.Sprintf("action: %+.0f  reward: %.3f  return: %.1f", action, rew, ret),
			fmt.Sprintf("step: %d  episodes: %d", e.Steps(), episodes),
			"LEFT/RIGHT push  R reset  Q quit",
		)
		if _, err := e.Render(render.Interactive); err != nil {
			return err
		}
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The terminal belongs to the UI; log lines would corrupt it.
	logger := zap.NewNop()

	cfg.Env.RenderMode = ""
	e, err := env.New(cfg.Env, env.WithLogger(logger))
	if err != nil {
		return err
	}
	defer e.Close()
	e.Reset(env.ResetOptions{Seed: env.Seed(cfg.Run.Seed), InitialState: env.RestState()})

	opts := viz.Options{
		StepsPerFrame: cfg.Run.StepsPerFrame,
		FPS:           cfg.Env.RenderFPS,
		GIFPath:       gifPath,
		Logger:        logger,
	}
	if cmd.Flags().Changed("controller") && cfg.Run.Controller != "manual" {
		reg := control.NewRegistry(e.Dynamics(), cfg.Env.ForceMag, cfg.Env.Dt)
		ctrl, err := reg.Get(cfg.Run.Controller, cfg.Run.ControllerParams)
		if err != nil {
			return err
		}
		opts.Controller = ctrl
		opts.ControllerName = cfg.Run.Controller
	}
	return viz.Run(e, opts)
}
