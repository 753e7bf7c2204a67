package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/swingup/internal/config"
	"github.com/san-kum/swingup/internal/storage"
)

const (
	ensembleEpisodes = 8
	tuneEpisodes     = 4
	tuneSteps        = 300
)

// Flag variables are shared between subcommands; only one command runs
// per process, and values are read through Changed.
var (
	configFile string
	preset     string
	dataDir    string
	storeKind  string
	logLevel   string
	verbose    bool

	dt          float64
	friction    float64
	forceMag    float64
	timeLimit   int
	rewardMode  string
	controller  string
	ctrlParams  map[string]string
	seed        uint64
	episodes    int
	maxSteps    int
	renderOut   string
	gifPath     string
	gifEvery    int
	chartDir    string
	column      string
	svgOut      string
	frameOut    string
	frameState  []float64
	stepsPerFrm int
)

func main() {
	config.LoadEnvFile(".env", "../../.env")

	rootCmd := &cobra.Command{
		Use:           "swingup",
		Short:         "cart-pole swing-up simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&storeKind, "store", config.DefaultStore, "run store backend (file, sqlite)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level")
	pf.BoolVarP(&verbose, "verbose", "v", false, "development logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "roll out episodes and store them",
		Args:  cobra.NoArgs,
		RunE:  runEpisodes,
	}
	addEnvFlags(runCmd)
	addControllerFlags(runCmd)
	runCmd.Flags().IntVar(&episodes, "episodes", config.DefaultEpisodes, "number of episodes")
	runCmd.Flags().IntVar(&maxSteps, "steps", 0, "stop episodes after this many steps (0 = until done)")
	runCmd.Flags().StringVar(&renderOut, "render", "", "render episodes: interactive or gif")
	runCmd.Flags().StringVar(&gifPath, "gif", "swingup.gif", "gif output path")
	runCmd.Flags().IntVar(&gifEvery, "gif-every", 1, "record every nth step")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run seeded episodes in parallel and summarize returns",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addEnvFlags(ensembleCmd)
	addControllerFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&episodes, "episodes", ensembleEpisodes, "number of episodes")
	ensembleCmd.Flags().IntVar(&maxSteps, "steps", 0, "stop episodes after this many steps (0 = until done)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored trace column in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "column to plot (default: x, theta, action, reward)")

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "write PNG charts of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVar(&chartDir, "out", "", "output directory (default: <data>/charts/<run_id>)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the pole tip path as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default: stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and swing-up analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	frameCmd := &cobra.Command{
		Use:   "frame",
		Short: "render one state to PNG",
		Args:  cobra.NoArgs,
		RunE:  renderFrame,
	}
	frameCmd.Flags().Float64SliceVar(&frameState, "state", []float64{0, 0, 0, 0}, "x,x_dot,theta,theta_dot")
	frameCmd.Flags().StringVarP(&frameOut, "out", "o", "frame.png", "output file")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "keyboard control in a window",
		Args:  cobra.NoArgs,
		RunE:  playWindow,
	}
	addEnvFlags(playCmd)
	playCmd.Flags().IntVar(&stepsPerFrm, "steps-per-frame", config.DefaultStepsPerFrame, "physics steps per frame")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "keyboard control in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}
	addEnvFlags(tuiCmd)
	addControllerFlags(tuiCmd)
	tuiCmd.Flags().IntVar(&stepsPerFrm, "steps-per-frame", config.DefaultStepsPerFrame, "physics steps per frame")
	tuiCmd.Flags().StringVar(&gifPath, "gif", "swingup.gif", "gif output path")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s dt=%.3f friction=%.2f reward=%s controller=%s\n",
					name, p.Env.Dt, p.Env.Friction, p.Env.RewardMode, p.Run.Controller)
			}
		},
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search controller parameters by mean return",
		Args:  cobra.NoArgs,
		RunE:  tuneController,
	}
	addEnvFlags(tuneCmd)
	addControllerFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridAxes, "grid", nil, "parameter axis: name=v1,v2 or name=lo:hi:n (repeatable)")
	tuneCmd.Flags().IntVar(&episodes, "episodes", tuneEpisodes, "episodes per grid point")
	tuneCmd.Flags().IntVar(&maxSteps, "steps", tuneSteps, "steps per episode (0 = until done)")
	tuneCmd.Flags().IntVar(&topN, "top", 10, "rows to print")
	tuneCmd.MarkFlagRequired("grid")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of configurations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(runCmd, ensembleCmd, listCmd, plotCmd, chartCmd, exportCSVCmd,
		exportJSONCmd, exportSVGCmd, analyzeCmd, frameCmd, playCmd, tuiCmd, presetsCmd,
		tuneCmd, scenarioCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addEnvFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0, "integration step")
	cmd.Flags().Float64Var(&friction, "friction", 0, "cart friction")
	cmd.Flags().Float64Var(&forceMag, "force", 0, "force magnitude")
	cmd.Flags().IntVar(&timeLimit, "time-limit", 0, "steps before truncation")
	cmd.Flags().StringVar(&rewardMode, "reward", "", "reward mode (default, pilco)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 = clock)")
}

func addControllerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&controller, "controller", "", "controller (none, random, manual, pid, lqr, swingup)")
	cmd.Flags().StringToStringVar(&ctrlParams, "param", nil, "controller parameter, e.g. --param kp=10")
}

// loadConfig builds the effective configuration: defaults, then preset,
// then config file, then SWINGUP_* variables, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Env.Dt = dt
	}
	if flags.Changed("friction") {
		cfg.Env.Friction = friction
	}
	if flags.Changed("force") {
		cfg.Env.ForceMag = forceMag
	}
	if flags.Changed("time-limit") {
		cfg.Env.TimeLimit = timeLimit
	}
	if flags.Changed("reward") {
		cfg.Env.RewardMode = rewardMode
	}
	if flags.Changed("controller") {
		cfg.Run.Controller = controller
	}
	if flags.Changed("seed") {
		cfg.Run.Seed = seed
	}
	if flags.Changed("episodes") {
		cfg.Run.Episodes = episodes
	}
	if flags.Changed("steps") {
		cfg.Run.MaxSteps = maxSteps
	}
	if flags.Changed("steps-per-frame") {
		cfg.Run.StepsPerFrame = stepsPerFrm
	}
	if flags.Changed("data") {
		cfg.Run.DataDir = dataDir
	}
	if flags.Changed("store") {
		cfg.Run.Store = storeKind
	}
	if flags.Changed("log-level") {
		cfg.Run.LogLevel = logLevel
	}
	if cfg.Run.ControllerParams == nil {
		cfg.Run.ControllerParams = map[string]float64{}
	}
	for k, v := range ctrlParams {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("controller param %s: %w", k, err)
		}
		cfg.Run.ControllerParams[k] = f
	}
	if cfg.Run.Seed == 0 {
		cfg.Run.Seed = uint64(time.Now().UnixNano())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if verbose {
		zc = zap.NewDevelopmentConfig()
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// batchDefaults applies the batch commands' own episode and step defaults
// when neither a flag nor the configuration chose a value.
func batchDefaults(cmd *cobra.Command, cfg *config.Config, n, steps int) {
	if !cmd.Flags().Changed("episodes") && cfg.Run.Episodes == config.DefaultEpisodes {
		cfg.Run.Episodes = n
	}
	if !cmd.Flags().Changed("steps") && cfg.Run.MaxSteps == 0 {
		cfg.Run.MaxSteps = steps
	}
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.Run.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openStore opens the run store selected by flags and SWINGUP_* variables.
func openStore(ctx context.Context, cmd *cobra.Command) (storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStoreFor(ctx, cfg)
}

func openStoreFor(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	st, err := storage.NewStore(cfg.Run.Store, cfg.Run.DataDir)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
