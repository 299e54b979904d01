// Package ode integrates ordinary differential equations with explicit
// Runge-Kutta methods.
//
// A [Problem] bundles the vector field, the time span, the initial state and
// the policies of one integration: a [Tableau] (the method), a
// [StepSizeController] ([ConstantStepSize] or [PIDController]), a [SaveAt]
// describing which samples to keep, and an optional terminating event.
// [Solve] runs it and always returns a [dynamo.Solution]; failures are
// reported through Solution.Result and never panic.
//
// # Example
//
//	sol := ode.Solve(ode.Problem{
//		Terms:      terms,
//		T1:         10,
//		Dt0:        0.1,
//		Y0:         dynamo.State{1, 0},
//		Controller: ode.NewPID(1e-8, 1e-8),
//		SaveAt:     ode.SaveSteps(),
//	})
//	if err := sol.Err(); err != nil {
//		return err
//	}
//
// # Thread Safety
//
// Solve keeps no state between calls. Stage buffers come from a sync.Pool,
// so concurrent calls are safe as long as the Terms are.
package ode
