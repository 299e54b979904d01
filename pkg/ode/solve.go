package ode

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// Unlimited disables the step cap.
const Unlimited = 0

// Problem is one integration request.
type Problem struct {
	Terms  dynamo.Terms
	Solver *Tableau
	T0, T1 float64
	// Dt0 is the initial step. Constant-step integrations use it throughout.
	Dt0  float64
	Y0   dynamo.State
	Args dynamo.Args
	// MaxSteps caps attempted steps, accepted and rejected. Unlimited (0) or
	// negative means no cap.
	MaxSteps   int
	Controller StepSizeController
	SaveAt     SaveAt
	Event      dynamo.EventOption
	Observers  []dynamo.Observer
}

func (p *Problem) validate() error {
	if p.Terms == nil {
		return errors.New("no vector field")
	}
	if len(p.Y0) == 0 {
		return errors.New("empty initial state")
	}
	if math.IsNaN(p.T0) || math.IsNaN(p.T1) || math.IsInf(p.T0, 0) || math.IsInf(p.T1, 0) {
		return fmt.Errorf("time span [%g, %g] is not finite", p.T0, p.T1)
	}
	if p.T1 < p.T0 {
		return fmt.Errorf("end time %g precedes start time %g", p.T1, p.T0)
	}
	if err := p.Solver.validate(); err != nil {
		return err
	}
	if p.Controller.Adaptive() {
		if !p.Solver.Embedded() {
			return fmt.Errorf("solver %s has no error estimate for adaptive stepping", p.Solver.Name)
		}
		if pid, ok := p.Controller.(*PIDController); ok {
			if err := pid.validate(); err != nil {
				return err
			}
		}
	} else if p.T1 > p.T0 && (p.Dt0 <= 0 || math.IsNaN(p.Dt0)) {
		return fmt.Errorf("constant step size must be positive, got %g", p.Dt0)
	}
	return p.SaveAt.validate(p.T0)
}

// Solve integrates p from T0 to T1. It never panics on bad input: problems
// that cannot be integrated come back with Result InvalidProblem and a Cause.
func Solve(p Problem) *dynamo.Solution {
	if p.Solver == nil {
		p.Solver = Dopri5()
	}
	if p.Controller == nil {
		p.Controller = ConstantStepSize{}
	}
	if p.SaveAt.empty() {
		p.SaveAt = SaveFinal()
	}
	if p.MaxSteps < 0 {
		p.MaxSteps = Unlimited
	}

	sol := &dynamo.Solution{Stats: dynamo.Stats{MaxSteps: p.MaxSteps}}
	if err := p.validate(); err != nil {
		sol.Result = dynamo.InvalidProblem
		sol.Cause = err
		return sol
	}

	n := len(p.Y0)
	w := getWorkspace(n, p.Solver.Stages())
	defer putWorkspace(w)

	in := &integration{p: &p, w: w, sol: sol}
	in.run()
	return sol
}

type integration struct {
	p   *Problem
	w   *workspace
	sol *dynamo.Solution
	rec *recorder
}

func (in *integration) eval(t float64, y, dst dynamo.State) error {
	out := in.p.Terms.Eval(t, y, in.p.Args)
	in.sol.Stats.NumEvals++
	if len(out) != len(y) {
		return fmt.Errorf("%w: state has %d components, derivative has %d",
			dynamo.ErrDimensionMismatch, len(y), len(out))
	}
	copy(dst, out)
	return nil
}

// step computes the candidate y1, f1 and error estimate of a step of size h
// from the current state.
func (in *integration) step(t, h float64) error {
	tab, w := in.p.Solver, in.w
	s := tab.Stages()
	copy(w.k[0], w.f)

	for i := 1; i < s; i++ {
		for d := range w.ytmp {
			acc := 0.0
			for j, a := range tab.A[i] {
				if a != 0 {
					acc += a * w.k[j][d]
				}
			}
			w.ytmp[d] = w.y[d] + h*acc
		}
		if err := in.eval(t+tab.C[i]*h, w.ytmp, w.k[i]); err != nil {
			return err
		}
	}

	if tab.FSAL() {
		copy(w.y1, w.ytmp)
		copy(w.f1, w.k[s-1])
	} else {
		for d := range w.y1 {
			acc := 0.0
			for j, b := range tab.B {
				acc += b * w.k[j][d]
			}
			w.y1[d] = w.y[d] + h*acc
		}
		if err := in.eval(t+h, w.y1, w.f1); err != nil {
			return err
		}
	}

	if in.p.Controller.Adaptive() {
		for d := range w.yerr {
			acc := 0.0
			for j, e := range tab.E {
				if e != 0 {
					acc += e * w.k[j][d]
				}
			}
			w.yerr[d] = h * acc
		}
	}
	return nil
}

func (in *integration) fail(res dynamo.Result, cause error) {
	in.sol.Result = res
	in.sol.Cause = cause
}

func (in *integration) run() {
	p, w, sol := in.p, in.w, in.sol
	in.rec = newRecorder(p.SaveAt, sol)

	t := p.T0
	copy(w.y, p.Y0)
	if !w.y.IsValid() {
		in.fail(dynamo.NonFinite, errors.New("initial state is not finite"))
		return
	}
	if err := in.eval(t, w.y, w.f); err != nil {
		in.fail(dynamo.InvalidProblem, err)
		return
	}
	in.rec.start(t, w.y)
	if !w.f.IsValid() {
		in.fail(dynamo.NonFinite, errors.New("initial derivative is not finite"))
		in.rec.finish(t, w.y)
		return
	}
	in.notify(t, w.y)

	ev, hasEvent := p.Event.Get()
	prevCond := 0.0
	if hasEvent {
		prevCond = ev.Cond(t, w.y, p.Args)
	}

	ctrl := p.Controller.newSession()
	atol, rtol := ctrl.tolerances()
	adaptive := p.Controller.Adaptive()

	dt := p.Dt0
	if adaptive && (dt <= 0 || math.IsNaN(dt)) {
		dt = 0.01 * (p.T1 - p.T0)
	}
	if adaptive {
		dt = ctrl.clamp(dt)
	}
	// steps that would leave a sliver shorter than this are stretched to T1
	endTol := 64 * epsilon * math.Max(math.Abs(p.T0), math.Abs(p.T1))

	for t < p.T1 {
		if p.MaxSteps > 0 && sol.Stats.NumSteps >= p.MaxSteps {
			in.fail(dynamo.MaxStepsReached, fmt.Errorf("stopped at t=%g before t1=%g", t, p.T1))
			break
		}

		h := dt
		last := false
		if t+h >= p.T1-endTol {
			h = p.T1 - t
			last = true
		}

		sol.Stats.NumSteps++
		if err := in.step(t, h); err != nil {
			in.fail(dynamo.InvalidProblem, err)
			break
		}
		finite := w.y1.IsValid() && w.f1.IsValid()

		accept, next := true, dt
		if adaptive {
			errNorm := math.Inf(1)
			if finite && w.yerr.IsValid() {
				errNorm = errorNorm(w.y, w.y1, w.yerr, atol, rtol)
			}
			accept, next = ctrl.adapt(errNorm, h, p.Solver.Order)
		} else if !finite {
			in.fail(dynamo.NonFinite, fmt.Errorf("non-finite state in step from t=%g", t))
			break
		}

		if !accept {
			sol.Stats.NumRejected++
			if t+next == t || next < p.dtMin() {
				in.fail(dynamo.StepSizeUnderflow, fmt.Errorf("step size %g at t=%g", next, t))
				break
			}
			dt = next
			continue
		}
		sol.Stats.NumAccepted++

		tNew := t + h
		if last {
			tNew = p.T1
		}
		seg := &segment{t0: t, t1: tNew, y0: w.y, y1: w.y1, f0: w.f, f1: w.f1}

		if hasEvent {
			c := ev.Cond(tNew, w.y1, p.Args)
			if c <= 0 {
				te, ye := tNew, w.y1.Clone()
				if prevCond > 0 {
					te, ye = seg.locate(ev.Cond, p.Args)
				}
				in.rec.advance(seg, te, ye)
				in.notify(te, ye)
				sol.Result = dynamo.EventOccurred
				sol.EventTime = te
				in.rec.finish(te, ye)
				return
			}
			prevCond = c
		}

		in.rec.advance(seg, tNew, w.y1)
		in.notify(tNew, w.y1)

		w.swap()
		t = tNew
		if adaptive {
			dt = next
		}
	}

	if t >= p.T1 && sol.Cause == nil {
		sol.Result = dynamo.Successful
	}
	in.rec.finish(t, w.y)
}

func (in *integration) notify(t float64, y dynamo.State) {
	for _, obs := range in.p.Observers {
		obs.OnStep(t, y)
	}
}

func (p *Problem) dtMin() float64 {
	if pid, ok := p.Controller.(*PIDController); ok {
		return pid.DtMin
	}
	return 0
}

const epsilon = 2.220446049250313e-16
