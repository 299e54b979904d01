package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/cowell/internal/registry"
	"github.com/san-kum/cowell/pkg/cowell"
	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/gravity"
)

const (
	DefaultDynamics   = "two_body"
	DefaultMode       = "adaptive"
	DefaultSolver     = "dopri5"
	DefaultController = "pid"
	DefaultDt         = 0.01
	DefaultT1         = 6.283185307179586
	DefaultMaxSteps   = cowell.DefaultMaxSteps
	DefaultTolerance  = cowell.DefaultTolerance
)

// Config is one propagation scenario.
type Config struct {
	Dynamics   string          `yaml:"dynamics"`
	Mode       string          `yaml:"mode"`
	Solver     string          `yaml:"solver"`
	Controller string          `yaml:"controller"`
	Event      string          `yaml:"event,omitempty"`
	T1         float64         `yaml:"t1"`
	Dt         float64         `yaml:"dt,omitempty"`
	Ts         []float64       `yaml:"ts,omitempty"`
	MaxSteps   int             `yaml:"max_steps"`
	StepCap    int             `yaml:"step_cap,omitempty"`
	Rtol       float64         `yaml:"rtol"`
	Atol       float64         `yaml:"atol"`
	Args       map[string]any  `yaml:"args"`
	InitState  InitStateConfig `yaml:"init_state"`
}

// InitStateConfig holds either a Cartesian state or orbital elements.
type InitStateConfig struct {
	Cartesian []float64         `yaml:"cartesian,omitempty"`
	Elements  *gravity.Elements `yaml:"elements,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Dynamics:   DefaultDynamics,
		Mode:       DefaultMode,
		Solver:     DefaultSolver,
		Controller: DefaultController,
		T1:         DefaultT1,
		Dt:         DefaultDt,
		MaxSteps:   DefaultMaxSteps,
		Rtol:       DefaultTolerance,
		Atol:       DefaultTolerance,
		Args:       map[string]any{"mu": 1.0},
		InitState: InitStateConfig{
			Cartesian: []float64{1, 0, 0, 0, 1, 0},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.InitState = InitStateConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.InitState.Cartesian) == 0 && cfg.InitState.Elements == nil {
		cfg.InitState = DefaultConfig().InitState
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Ts = append([]float64(nil), c.Ts...)
	out.Args = map[string]any(dynamo.Args(c.Args).Clone())
	out.InitState.Cartesian = append([]float64(nil), c.InitState.Cartesian...)
	if c.InitState.Elements != nil {
		el := *c.InitState.Elements
		out.InitState.Elements = &el
	}
	return &out
}

func (c *Config) Validate() error {
	var errs []error
	mode, err := cowell.ParseMode(c.Mode)
	if err != nil {
		errs = append(errs, err)
	}
	if c.T1 <= 0 {
		errs = append(errs, fmt.Errorf("t1 must be positive, got %g", c.T1))
	}
	if mode == cowell.ModeFixed && c.Dt <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive for fixed steps, got %g", c.Dt))
	}
	if mode == cowell.ModeCustom && len(c.Ts) == 0 {
		errs = append(errs, errors.New("custom mode needs at least one sample time"))
	}
	if _, err := c.GetInitState(); err != nil {
		errs = append(errs, err)
	}
	if _, err := gravity.DecodeParams(c.GetArgs()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GetArgs returns a fresh argument tree.
func (c *Config) GetArgs() dynamo.Args {
	if c.Args == nil {
		return dynamo.DefaultArgs()
	}
	return dynamo.Args(c.Args).Clone()
}

// GetInitState returns the initial Cartesian state, converting elements with
// the configured mu when no Cartesian state is given.
func (c *Config) GetInitState() (dynamo.State, error) {
	if n := len(c.InitState.Cartesian); n > 0 {
		if n != 6 {
			return nil, fmt.Errorf("cartesian state needs 6 components, got %d", n)
		}
		return dynamo.State(c.InitState.Cartesian).Clone(), nil
	}
	if el := c.InitState.Elements; el != nil {
		if el.A <= 0 || el.E < 0 || el.E >= 1 {
			return nil, fmt.Errorf("elements must describe an ellipse (a=%g, e=%g)", el.A, el.E)
		}
		return el.State(c.GetArgs().FloatOr(gravity.KeyMu, 1)), nil
	}
	return nil, errors.New("no initial state")
}

// Build resolves names through reg and returns everything a propagation call
// needs.
func (c *Config) Build(reg *registry.Registry) (*cowell.Dynamics, cowell.Request, []cowell.PropagateOption, error) {
	var req cowell.Request
	if err := c.Validate(); err != nil {
		return nil, req, nil, err
	}

	terms, err := reg.GetDynamics(c.Dynamics)
	if err != nil {
		return nil, req, nil, err
	}
	ev, err := reg.GetEvent(c.Event)
	if err != nil {
		return nil, req, nil, err
	}
	solver, err := reg.GetSolver(c.Solver)
	if err != nil {
		return nil, req, nil, err
	}
	ctrl, err := reg.GetController(c.Controller, c.Rtol, c.Atol)
	if err != nil {
		return nil, req, nil, err
	}

	dynOpts := []cowell.Option{cowell.WithArgs(c.GetArgs())}
	if e, ok := ev.Get(); ok {
		dynOpts = append(dynOpts, cowell.WithEvent(e))
	}
	d := cowell.New(terms, dynOpts...)

	x0, _ := c.GetInitState()
	mode, _ := cowell.ParseMode(c.Mode)
	req = cowell.Request{Mode: mode, X0: x0, T1: c.T1, Dt: c.Dt, Ts: append([]float64(nil), c.Ts...)}

	opts := []cowell.PropagateOption{
		cowell.WithSolver(solver),
		cowell.WithController(ctrl),
		cowell.WithMaxSteps(c.MaxSteps),
	}
	if c.StepCap > 0 {
		opts = append(opts, cowell.WithStepCap(c.StepCap))
	}
	return d, req, opts, nil
}
