package ode

import (
	"fmt"
	"math"
)

// StepSizeController decides the size of every step. The implementations in
// this package are ConstantStepSize and PIDController.
type StepSizeController interface {
	Name() string
	Adaptive() bool
	newSession() session
}

// session carries the per-integration controller memory.
type session interface {
	// adapt takes the scaled RMS error of a step of size dt and returns
	// whether to keep it and the proposed next step size.
	adapt(errNorm, dt float64, order int) (accept bool, next float64)
	// tolerances returns atol and rtol for the error norm.
	tolerances() (atol, rtol float64)
	// clamp bounds an initial step size.
	clamp(dt float64) float64
}

// ConstantStepSize keeps every step and never changes dt.
type ConstantStepSize struct{}

func (ConstantStepSize) Name() string        { return "constant" }
func (ConstantStepSize) Adaptive() bool      { return false }
func (ConstantStepSize) newSession() session { return constantSession{} }

type constantSession struct{}

func (constantSession) adapt(_, dt float64, _ int) (bool, float64) { return true, dt }
func (constantSession) tolerances() (float64, float64)             { return 0, 0 }
func (constantSession) clamp(dt float64) float64                   { return dt }

// PIDController is an error-controlled step size controller. With the
// default coefficients (P=0, I=1, D=0) it reduces to the classic integral
// controller dt *= safety * err^(-1/order).
type PIDController struct {
	Rtol      float64
	Atol      float64
	PCoeff    float64
	ICoeff    float64
	DCoeff    float64
	Safety    float64
	FactorMin float64
	FactorMax float64

	// DtMin and DtMax bound the step size when positive. A rejected step
	// that would shrink below DtMin ends the integration with
	// StepSizeUnderflow; the final step may be shorter to land on t1.
	DtMin float64
	DtMax float64
}

// NewPID returns an integral controller with the given tolerances.
func NewPID(rtol, atol float64) *PIDController {
	return &PIDController{
		Rtol:      rtol,
		Atol:      atol,
		ICoeff:    1,
		Safety:    0.9,
		FactorMin: 0.2,
		FactorMax: 10,
	}
}

func (c *PIDController) Name() string {
	return fmt.Sprintf("pid(rtol=%g, atol=%g)", c.Rtol, c.Atol)
}

func (c *PIDController) Adaptive() bool { return true }

func (c *PIDController) newSession() session {
	return &pidSession{cfg: *c, prev1: 1, prev2: 1}
}

func (c *PIDController) validate() error {
	if c.Rtol < 0 || c.Atol < 0 || c.Rtol+c.Atol <= 0 {
		return fmt.Errorf("tolerances must be non-negative and not both zero (rtol=%g, atol=%g)", c.Rtol, c.Atol)
	}
	if c.Safety <= 0 || c.FactorMin <= 0 || c.FactorMax < 1 || c.FactorMin > 1 {
		return fmt.Errorf("invalid step factors (safety=%g, min=%g, max=%g)", c.Safety, c.FactorMin, c.FactorMax)
	}
	if c.DtMax > 0 && c.DtMin > c.DtMax {
		return fmt.Errorf("dtmin %g exceeds dtmax %g", c.DtMin, c.DtMax)
	}
	return nil
}

type pidSession struct {
	cfg PIDController
	// scaled errors of the last two accepted steps
	prev1, prev2 float64
}

func (s *pidSession) tolerances() (float64, float64) {
	return s.cfg.Atol, s.cfg.Rtol
}

func (s *pidSession) adapt(errNorm, dt float64, order int) (bool, float64) {
	accept := errNorm <= 1
	k := float64(order)
	beta1 := (s.cfg.PCoeff + s.cfg.ICoeff + s.cfg.DCoeff) / k
	beta2 := -(s.cfg.PCoeff + 2*s.cfg.DCoeff) / k
	beta3 := s.cfg.DCoeff / k

	maxFactor := s.cfg.FactorMax
	if !accept {
		maxFactor = s.cfg.Safety
	}

	var factor float64
	switch {
	case math.IsNaN(errNorm) || math.IsInf(errNorm, 1):
		factor = s.cfg.FactorMin
	case errNorm == 0:
		factor = maxFactor
	default:
		factor = s.cfg.Safety *
			math.Pow(errNorm, -beta1) *
			math.Pow(s.prev1, -beta2) *
			math.Pow(s.prev2, -beta3)
	}
	factor = math.Min(maxFactor, math.Max(s.cfg.FactorMin, factor))

	if accept {
		s.prev2 = s.prev1
		// a zero error would poison the D and P terms
		s.prev1 = math.Max(errNorm, 1e-10)
	}

	next := dt * factor
	if s.cfg.DtMax > 0 {
		next = math.Min(next, s.cfg.DtMax)
	}
	if accept {
		next = math.Max(next, s.cfg.DtMin)
	}
	return accept, next
}

func (s *pidSession) clamp(dt float64) float64 {
	if s.cfg.DtMax > 0 {
		dt = math.Min(dt, s.cfg.DtMax)
	}
	return math.Max(dt, s.cfg.DtMin)
}

// errorNorm is the RMS of the error estimate scaled by atol + rtol*max(|y0|, |y1|).
func errorNorm(y0, y1, yerr []float64, atol, rtol float64) float64 {
	if len(yerr) == 0 {
		return 0
	}
	sum := 0.0
	for i := range yerr {
		sc := atol + rtol*math.Max(math.Abs(y0[i]), math.Abs(y1[i]))
		r := yerr[i] / sc
		sum += r * r
	}
	return math.Sqrt(sum / float64(len(yerr)))
}
