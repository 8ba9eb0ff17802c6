package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/san-kum/seals/internal/config"
	"github.com/san-kum/seals/internal/experiment"
	"github.com/san-kum/seals/internal/storage"
	"github.com/san-kum/seals/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logJSON  bool
	logLevel string

	configFile string
	preset     string
	pick       bool
	live       bool
	frameDB    bool
	noSave     bool
	runID      string

	dim            int
	strategy       string
	seed           int64
	iterations     int
	growthInterval int
	maxPoints      int
	snapshotEvery  int
	attraction     float64
	repulsion      float64
	damping        float64
	noise          float64
	rigidity       float64
	pressure       float64
	dt             float64
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCommand registers the seals commands. Without a subcommand the root
// shows the preset menu and watches the chosen preset live.
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "seals",
		Short:         "self-avoiding growing surface simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			pick, live, noSave = true, true, true
			return runSimulation(cmd, args)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "out", ".seals", "run directory root")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	f := runCmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.BoolVar(&pick, "pick", false, "choose a preset from a menu")
	f.BoolVar(&live, "live", false, "show the live view")
	f.BoolVar(&frameDB, "db", false, "mirror frames into frames.db")
	f.BoolVar(&noSave, "no-save", false, "keep nothing on disk")
	f.StringVar(&runID, "id", "", "run id (default strategy, dim, seed and time)")
	f.IntVar(&dim, "dim", 2, "dimension (2 or 3)")
	f.StringVar(&strategy, "strategy", "", "growth strategy")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.IntVar(&iterations, "iterations", 0, "number of steps")
	f.IntVar(&growthInterval, "growth-interval", 0, "steps between new points (0 disables growth)")
	f.IntVar(&maxPoints, "max-points", 0, "stop growing at this many points")
	f.IntVar(&snapshotEvery, "snapshot-every", 0, "steps between frames (0 keeps first and last)")
	f.Float64Var(&attraction, "attraction", 0, "rest length between neighbours")
	f.Float64Var(&repulsion, "repulsion", 0, "repulsion threshold as a multiple of the rest length")
	f.Float64Var(&damping, "damping", 0, "velocity damping")
	f.Float64Var(&noise, "noise", 0, "scale of the per-point noise added to distances")
	f.Float64Var(&rigidity, "rigidity", 0, "fraction of flexibility each point loses per step")
	f.Float64Var(&pressure, "pressure", 0, "pressure toward the target volume")
	f.Float64Var(&dt, "dt", 0, "timestep")

	rootCmd.AddCommand(runCmd, batchCommand(), inspectCommand(), plotCommand(), exportCommand(), presetsCommand(), listCommand())
	return rootCmd
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	if logJSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// resolveConfig picks the base config from a preset, a file or the defaults
// for --dim, then applies the flags given on the command line.
func resolveConfig(cmd *cobra.Command, reg *experiment.Registry) (*config.Config, string, error) {
	changed := cmd.Flags().Changed
	if configFile != "" && preset != "" {
		return nil, "", fmt.Errorf("--config and --preset are exclusive")
	}

	var cfg *config.Config
	title := ""
	switch {
	case preset != "":
		c, err := reg.GetPreset(preset)
		if err != nil {
			return nil, "", fmt.Errorf("%w (available: %v)", err, reg.ListPresets())
		}
		cfg, title = c, preset
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, title = c, configFile
	default:
		cfg = config.DefaultConfig(dim)
	}

	if changed("dim") && cfg.Dim != dim {
		return nil, "", fmt.Errorf("--dim %d conflicts with a %dD config", dim, cfg.Dim)
	}
	if changed("strategy") {
		cfg.Strategy = strategy
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("iterations") {
		cfg.Iterations = iterations
	}
	if changed("growth-interval") {
		cfg.GrowthInterval = growthInterval
	}
	if changed("max-points") {
		cfg.MaxPoints = maxPoints
	}
	if changed("snapshot-every") {
		cfg.SnapshotEvery = snapshotEvery
	}
	p := &cfg.Params
	if changed("attraction") {
		p.Attraction = attraction
	}
	if changed("repulsion") {
		p.Repulsion = repulsion
	}
	if changed("damping") {
		p.Damping = damping
	}
	if changed("noise") {
		p.Noise = noise
	}
	if changed("rigidity") {
		p.Rigidity = rigidity
	}
	if changed("pressure") {
		p.Pressure = pressure
	}
	if changed("dt") {
		p.DT = dt
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	if title == "" {
		title = fmt.Sprintf("%s %dD", cfg.Strategy, cfg.Dim)
	}
	return cfg, title, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()

	if pick {
		name, err := viz.PickPreset()
		if err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		preset, configFile = name, ""
	}

	cfg, title, err := resolveConfig(cmd, reg)
	if err != nil {
		return err
	}

	// the live view owns the terminal
	logOut := io.Writer(os.Stderr)
	if live {
		logOut = io.Discard
	}
	logger, err := newLogger(logOut)
	if err != nil {
		return err
	}

	opts := experiment.Options{
		RunID:    runID,
		FrameDB:  frameDB,
		Logger:   logger,
		Hostname: hostname(),
	}
	if !noSave {
		opts.Store = storage.New(dataDir)
	}
	runner, err := reg.Prepare(cfg, opts)
	if err != nil {
		return err
	}
	if runner.Output != nil {
		defer runner.Output.Close()
	}

	ctx, stop := signalContext()
	defer stop()

	var res *experiment.Result
	if live {
		res, err = viz.Watch(ctx, runner, title)
	} else {
		res, err = runner.Run(ctx)
	}
	if res != nil {
		printResult(os.Stdout, runner, res)
	}
	return err
}

func printResult(w io.Writer, runner *experiment.Runner, res *experiment.Result) {
	state := "completed"
	if res.Cancelled {
		state = "cancelled"
	}
	fmt.Fprintf(w, "%s in %v\n", state, res.Elapsed)
	if runner.Output != nil {
		fmt.Fprintf(w, "run id: %s\n", runner.Output.ID)
		fmt.Fprintf(w, "dir: %s\n", runner.Output.Dir())
	}
	fmt.Fprintf(w, "steps: %d\n", res.Steps)
	fmt.Fprintf(w, "points: %d\n", res.Points)
	fmt.Fprintf(w, "volume: %.6g\n", res.Volume)
	fmt.Fprintf(w, "frames: %d\n", res.Frames)

	names := make([]string, 0, len(res.Metrics))
	for name := range res.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", name, res.Metrics[name])
	}
}
