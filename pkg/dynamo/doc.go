// Package dynamo provides the core value types shared by the ODE solver and
// the orbit propagators.
//
// The package defines:
//
//   - [State]: position/velocity vector (or any ODE state)
//   - [Args]: nested parameter tree passed unchanged to the vector field
//   - [Terms]: the vector field capability, adapted from a plain func by [ODETerm]
//   - [Event]: terminating condition, carried as an explicit optional ([EventOption])
//   - [Solution]: sampled trajectory with [Stats] and a [Result] code
//
// # Example
//
//	terms := dynamo.ODETerm(func(t float64, y dynamo.State, args dynamo.Args) dynamo.State {
//		return dynamo.State{y[1], -y[0]}
//	})
//	dy := terms.Eval(0, dynamo.State{1, 0}, nil)
//
// # Thread Safety
//
// None of the types carry hidden mutable state. A [Solution] is owned by the
// caller that received it.
package dynamo
