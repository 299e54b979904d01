// Package cowell propagates orbital states with Cowell's method: the
// equations of motion are integrated directly in Cartesian coordinates by
// the explicit Runge-Kutta solver in package ode.
//
// A [Dynamics] bundles the vector field, its arguments and an optional
// terminating event. It is built once and passed to one of four entry points
// that differ in step-size policy and sampling:
//
//   - [FixedSteps]: constant step, samples at t0 and every step
//   - [AdaptiveSteps]: error-controlled steps, samples at t0 and every accepted step
//   - [CustomSteps]: error-controlled steps, samples interpolated at caller times
//   - [ToFinal]: error-controlled steps, final state only
//
// Every call integrates from t = 0 and returns a fresh [dynamo.Solution].
// Integration failures never panic; inspect Solution.Result (or Err) before
// trusting the samples.
//
// # Example
//
//	d := cowell.New(gravity.TwoBody(),
//		cowell.WithArgs(dynamo.Args{"mu": 1.0, "rmin": 0.5}),
//		cowell.WithEvent(gravity.RadiusBelow()),
//	)
//	sol := cowell.AdaptiveSteps(d, dynamo.State{1, 0, 0, 0, 1, 0}, 2*math.Pi)
package cowell
