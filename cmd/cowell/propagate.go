package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/san-kum/cowell/internal/config"
	"github.com/san-kum/cowell/internal/metrics"
	"github.com/san-kum/cowell/internal/storage"
	"github.com/san-kum/cowell/internal/viz"
	"github.com/san-kum/cowell/pkg/cowell"
	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/gravity"
)

// scenarioFlags are the flags shared by propagate and batch. Flags override
// the config file, which overrides the preset.
type scenarioFlags struct {
	configFile string
	preset     string
	mode       string
	solver     string
	controller string
	event      string
	t1         float64
	dt         float64
	ts         []float64
	maxSteps   int
	stepCap    int
	rtol       float64
	atol       float64
	args       map[string]string
	state      []float64
}

func (f *scenarioFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configFile, "config", "", "scenario file (yaml)")
	fs.StringVar(&f.preset, "preset", "", "start from a named preset")
	fs.StringVar(&f.mode, "mode", config.DefaultMode, "fixed, adaptive, custom or final")
	fs.StringVar(&f.solver, "solver", config.DefaultSolver, "Runge-Kutta tableau")
	fs.StringVar(&f.controller, "controller", config.DefaultController, "step size controller (pid or constant)")
	fs.StringVar(&f.event, "event", "", "terminating event (radius_below)")
	fs.Float64Var(&f.t1, "t1", config.DefaultT1, "final time")
	fs.Float64Var(&f.dt, "dt", config.DefaultDt, "step size for fixed mode")
	fs.Float64SliceVar(&f.ts, "ts", nil, "sample times for custom mode")
	fs.IntVar(&f.maxSteps, "max-steps", config.DefaultMaxSteps, "step budget for adaptive mode, 0 for unlimited")
	fs.IntVar(&f.stepCap, "step-cap", 0, "step budget for custom mode, 0 for unlimited")
	fs.Float64Var(&f.rtol, "rtol", config.DefaultTolerance, "relative tolerance")
	fs.Float64Var(&f.atol, "atol", config.DefaultTolerance, "absolute tolerance")
	fs.StringToStringVar(&f.args, "arg", nil, "dynamics argument, e.g. --arg mu=398600.4418")
	fs.Float64SliceVar(&f.state, "state", nil, "initial Cartesian state x,y,z,vx,vy,vz")
}

// load builds the scenario for dynamics (may be empty when a preset or
// config file names it).
func (f *scenarioFlags) load(fs *pflag.FlagSet, dynamics string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		var p *config.Config
		if dynamics != "" {
			p = config.GetPreset(dynamics, f.preset)
		} else {
			p = config.FindPreset(f.preset)
		}
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets(dynamics))
		}
		cfg = p
	}
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if dynamics != "" {
		cfg.Dynamics = dynamics
	}
	if fs.Changed("mode") {
		cfg.Mode = f.mode
	}
	if fs.Changed("solver") {
		cfg.Solver = f.solver
	}
	if fs.Changed("controller") {
		cfg.Controller = f.controller
	}
	if fs.Changed("event") {
		cfg.Event = f.event
	}
	if fs.Changed("t1") {
		cfg.T1 = f.t1
	}
	if fs.Changed("dt") {
		cfg.Dt = f.dt
	}
	if fs.Changed("ts") {
		cfg.Ts = append([]float64(nil), f.ts...)
	}
	if fs.Changed("max-steps") {
		cfg.MaxSteps = f.maxSteps
	}
	if fs.Changed("step-cap") {
		cfg.StepCap = f.stepCap
	}
	if fs.Changed("rtol") {
		cfg.Rtol = f.rtol
	}
	if fs.Changed("atol") {
		cfg.Atol = f.atol
	}
	if fs.Changed("state") {
		cfg.InitState = config.InitStateConfig{Cartesian: append([]float64(nil), f.state...)}
	}
	if len(f.args) > 0 {
		if cfg.Args == nil {
			cfg.Args = map[string]any{}
		}
		for k, raw := range f.args {
			val, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", k, err)
			}
			cfg.Args[k] = val
		}
	}
	return cfg, nil
}

func newPropagateCmd() *cobra.Command {
	var (
		flags      scenarioFlags
		name       string
		noSave     bool
		jsonOut    bool
		saveConfig string
	)

	cmd := &cobra.Command{
		Use:   "propagate [dynamics]",
		Short: "propagate one initial state",
		Long: `Propagate an initial state with one of the four modes:

  fixed     constant steps of --dt, every step recorded
  adaptive  PID-controlled steps, every accepted step recorded
  custom    adaptive steps, state reported at each --ts time
  final     adaptive steps, only the state at --t1 recorded`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dynamics := ""
			if len(args) > 0 {
				dynamics = args[0]
			}
			cfg, err := flags.load(cmd.Flags(), dynamics)
			if err != nil {
				return err
			}
			if saveConfig != "" {
				if err := config.Save(saveConfig, cfg); err != nil {
					return err
				}
				logger.Info("scenario written", "path", saveConfig)
			}

			meta, sol, err := runScenario(cfg, name)
			if err != nil {
				return err
			}

			if !noSave {
				st, err := openStore()
				if err != nil {
					return err
				}
				runID, err := st.Save(meta, sol)
				if err != nil {
					return err
				}
				meta.ID = runID
				logger.Info("run saved", "run", runID, "dir", st.Dir())
			}

			if jsonOut {
				return storage.ExportJSONStdout(meta, sol)
			}
			fmt.Println(runSummary(meta, sol))
			if err := sol.Err(); err != nil {
				return err
			}
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&name, "name", "", "run name (defaults to the preset or dynamics)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "write the run as JSON to stdout")
	cmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved scenario to this yaml file")
	return cmd
}

// runScenario builds and propagates cfg, attaching the standard metrics.
func runScenario(cfg *config.Config, name string) (storage.RunMetadata, *dynamo.Solution, error) {
	d, req, opts, err := cfg.Build(reg)
	if err != nil {
		return storage.RunMetadata{}, nil, err
	}

	ms := metrics.Standard(d.Args().FloatOr(gravity.KeyMu, 1))
	opts = append(opts, cowell.WithObservers(metrics.Observers(ms...)...))

	logger.Debug("propagating", "dynamics", cfg.Dynamics, "mode", req.Mode, "t1", req.T1, "args", d.Args().String())
	start := time.Now()
	sol, err := cowell.Propagate(d, req, opts...)
	if err != nil {
		return storage.RunMetadata{}, nil, err
	}
	elapsed := time.Since(start)
	metrics.RecordPropagation(string(req.Mode), sol, elapsed)
	logger.Info("propagation finished",
		"result", sol.Result.String(),
		"steps", sol.Stats.NumSteps,
		"samples", sol.Len(),
		"elapsed", elapsed,
	)

	meta := storage.RunMetadata{
		Name:       name,
		Dynamics:   cfg.Dynamics,
		Mode:       string(req.Mode),
		Solver:     cfg.Solver,
		Controller: cfg.Controller,
		Event:      cfg.Event,
		T1:         cfg.T1,
		Dt:         cfg.Dt,
		Args:       cfg.GetArgs(),
		Metrics:    metrics.Collect(ms...),
	}
	return meta, sol, nil
}

func runSummary(meta storage.RunMetadata, sol *dynamo.Solution) string {
	rows := map[string]string{
		"dynamics": meta.Dynamics,
		"mode":     meta.Mode,
		"result":   viz.ResultStyle(sol.Result).Render(sol.Result.String()),
		"samples":  strconv.Itoa(sol.Len()),
		"steps":    fmt.Sprintf("%d (%d accepted, %d rejected)", sol.Stats.NumSteps, sol.Stats.NumAccepted, sol.Stats.NumRejected),
		"evals":    strconv.Itoa(sol.Stats.NumEvals),
	}
	if meta.ID != "" {
		rows["run"] = meta.ID
	}
	if sol.Result == dynamo.EventOccurred {
		rows["event time"] = fmt.Sprintf("%.9g", sol.EventTime)
	}
	if t, y, ok := sol.Final(); ok {
		rows["t final"] = fmt.Sprintf("%.9g", t)
		rows["r final"] = fmt.Sprintf("%.6g", y.Position().Norm())
	}
	for k, val := range meta.Metrics {
		rows[k] = fmt.Sprintf("%.3e", val)
	}
	return viz.Summary("propagation", rows)
}
