package cowell

import (
	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/ode"
)

const (
	// DefaultMaxSteps is the step budget of FixedSteps, AdaptiveSteps and ToFinal.
	DefaultMaxSteps = 4096

	// DefaultTolerance is the rtol and atol of the default PID controller.
	DefaultTolerance = 1e-8

	// initialStepFraction of t1 is the first trial step of adaptive propagation.
	initialStepFraction = 0.01
)

type settings struct {
	solver     *ode.Tableau
	controller ode.StepSizeController
	maxSteps   int
	stepCap    int
	observers  []dynamo.Observer
}

// PropagateOption tunes a single propagation call.
type PropagateOption func(*settings)

// WithSolver replaces the Dormand-Prince 5(4) default.
func WithSolver(tab *ode.Tableau) PropagateOption {
	return func(s *settings) { s.solver = tab }
}

// WithController replaces the PID(1e-8, 1e-8) default. Ignored by FixedSteps.
func WithController(c ode.StepSizeController) PropagateOption {
	return func(s *settings) { s.controller = c }
}

// WithMaxSteps sets the step budget of FixedSteps and AdaptiveSteps.
func WithMaxSteps(n int) PropagateOption {
	return func(s *settings) { s.maxSteps = n }
}

// WithStepCap bounds CustomSteps, which is otherwise unlimited.
func WithStepCap(n int) PropagateOption {
	return func(s *settings) { s.stepCap = n }
}

// WithObservers attaches step observers.
func WithObservers(obs ...dynamo.Observer) PropagateOption {
	return func(s *settings) { s.observers = append(s.observers, obs...) }
}

func newSettings(opts []PropagateOption) *settings {
	s := &settings{
		solver:   ode.Dopri5(),
		maxSteps: DefaultMaxSteps,
		stepCap:  ode.Unlimited,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.controller == nil {
		s.controller = ode.NewPID(DefaultTolerance, DefaultTolerance)
	}
	return s
}

func (d *Dynamics) problem(s *settings, x0 dynamo.State, t1 float64) ode.Problem {
	return ode.Problem{
		Terms:      d.terms,
		Solver:     s.solver,
		T0:         0,
		T1:         t1,
		Y0:         x0,
		Args:       d.args,
		Controller: s.controller,
		Event:      d.event,
		Observers:  s.observers,
	}
}

// FixedSteps integrates with a constant step dt and keeps the initial state
// plus the state after every step. The last step is shortened to land on t1.
func FixedSteps(d *Dynamics, x0 dynamo.State, t1, dt float64, opts ...PropagateOption) *dynamo.Solution {
	s := newSettings(opts)
	p := d.problem(s, x0, t1)
	p.Controller = ode.ConstantStepSize{}
	p.Dt0 = dt
	p.MaxSteps = s.maxSteps
	p.SaveAt = ode.SaveSteps()
	return ode.Solve(p)
}

// AdaptiveSteps integrates with error-controlled steps, starting from
// 0.01*t1, and keeps the initial state plus every accepted step.
func AdaptiveSteps(d *Dynamics, x0 dynamo.State, t1 float64, opts ...PropagateOption) *dynamo.Solution {
	s := newSettings(opts)
	p := d.problem(s, x0, t1)
	p.Dt0 = t1 * initialStepFraction
	p.MaxSteps = s.maxSteps
	p.SaveAt = ode.SaveSteps()
	return ode.Solve(p)
}

// CustomSteps integrates with error-controlled steps and keeps states
// interpolated at ts. Times beyond t1 produce no sample. There is no step
// budget unless WithStepCap is given.
func CustomSteps(d *Dynamics, x0 dynamo.State, t1 float64, ts []float64, opts ...PropagateOption) *dynamo.Solution {
	s := newSettings(opts)
	p := d.problem(s, x0, t1)
	p.Dt0 = t1 * initialStepFraction
	p.MaxSteps = s.stepCap
	p.SaveAt = ode.SaveTs(ts)
	return ode.Solve(p)
}

// ToFinal integrates with error-controlled steps and keeps only the final
// state, or the event state. The budget is always DefaultMaxSteps.
func ToFinal(d *Dynamics, x0 dynamo.State, t1 float64, opts ...PropagateOption) *dynamo.Solution {
	s := newSettings(opts)
	p := d.problem(s, x0, t1)
	p.Dt0 = t1 * initialStepFraction
	p.MaxSteps = DefaultMaxSteps
	p.SaveAt = ode.SaveFinal()
	return ode.Solve(p)
}
