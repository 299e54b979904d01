package ode

import "github.com/san-kum/cowell/pkg/dynamo"

// segment is the cubic Hermite interpolant of one accepted step, built from
// the states and derivatives at both ends.
type segment struct {
	t0, t1 float64
	y0, y1 dynamo.State
	f0, f1 dynamo.State
}

func (s *segment) at(t float64) dynamo.State {
	switch t {
	case s.t0:
		return s.y0.Clone()
	case s.t1:
		return s.y1.Clone()
	}
	h := s.t1 - s.t0
	u := (t - s.t0) / h
	u2 := u * u
	u3 := u2 * u

	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2

	out := make(dynamo.State, len(s.y0))
	for i := range out {
		out[i] = h00*s.y0[i] + h10*h*s.f0[i] + h01*s.y1[i] + h11*h*s.f1[i]
	}
	return out
}

const maxBisections = 200

// locate finds the first time in the segment where cond drops to zero or
// below, given cond(t0) > 0 >= cond(t1). The returned time is on the fired
// side of the crossing.
func (s *segment) locate(cond dynamo.Condition, args dynamo.Args) (float64, dynamo.State) {
	lo, hi := s.t0, s.t1
	for i := 0; i < maxBisections; i++ {
		mid := lo + 0.5*(hi-lo)
		if mid <= lo || mid >= hi {
			break
		}
		if cond(mid, s.at(mid), args) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi, s.at(hi)
}
