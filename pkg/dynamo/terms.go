package dynamo

// Terms is the vector field of an ODE: dy/dt = Eval(t, y, args).
// For orbit propagation the result is velocity followed by acceleration.
type Terms interface {
	Eval(t float64, y State, args Args) State
}

// ODETerm adapts a plain function to Terms.
type ODETerm func(t float64, y State, args Args) State

func (f ODETerm) Eval(t float64, y State, args Args) State {
	return f(t, y, args)
}

// Sum adds the output of several vector fields, e.g. point-mass gravity plus
// a perturbation. Every term must return a vector of the same length.
func Sum(terms ...Terms) Terms {
	return ODETerm(func(t float64, y State, args Args) State {
		var total State
		for _, term := range terms {
			dy := term.Eval(t, y, args)
			if total == nil {
				total = dy.Clone()
				continue
			}
			if len(dy) != len(total) {
				// the solver reports this as a dimension mismatch
				return nil
			}
			for i := range total {
				total[i] += dy[i]
			}
		}
		return total
	})
}

// Observer is notified once with the initial state and then after every
// accepted step with the new time and state. It must not retain y.
type Observer interface {
	OnStep(t float64, y State)
}
