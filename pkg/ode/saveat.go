package ode

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// SaveAt selects the samples kept in the Solution. The zero value keeps only
// the final state.
type SaveAt struct {
	// T0 keeps the initial state.
	T0 bool
	// Steps keeps the state at the end of every accepted step.
	Steps bool
	// Ts keeps interpolated states at these times. They must be sorted and
	// not before the start time; times past the end are omitted.
	Ts []float64
	// T1 keeps the final state (or the event state).
	T1 bool
}

// SaveSteps keeps t0 and every accepted step.
func SaveSteps() SaveAt {
	return SaveAt{T0: true, Steps: true}
}

// SaveTs keeps states interpolated at ts. An empty ts saves nothing, unlike
// the zero SaveAt.
func SaveTs(ts []float64) SaveAt {
	return SaveAt{Ts: append(make([]float64, 0, len(ts)), ts...)}
}

// SaveFinal keeps only the final state.
func SaveFinal() SaveAt {
	return SaveAt{T1: true}
}

func (s SaveAt) empty() bool {
	return !s.T0 && !s.Steps && !s.T1 && s.Ts == nil
}

func (s SaveAt) validate(t0 float64) error {
	for i, t := range s.Ts {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("save time %d is not finite", i)
		}
		if t < t0 {
			return fmt.Errorf("save time %g precedes start time %g", t, t0)
		}
	}
	if !sort.Float64sAreSorted(s.Ts) {
		return fmt.Errorf("save times must be sorted")
	}
	return nil
}

// recorder appends samples to a Solution as the integration advances.
type recorder struct {
	save SaveAt
	sol  *dynamo.Solution
	next int
}

func newRecorder(save SaveAt, sol *dynamo.Solution) *recorder {
	capacity := len(save.Ts)
	if save.T0 {
		capacity++
	}
	if save.T1 {
		capacity++
	}
	sol.Ts = make([]float64, 0, capacity)
	sol.Ys = make([]dynamo.State, 0, capacity)
	return &recorder{save: save, sol: sol}
}

func (r *recorder) start(t float64, y dynamo.State) {
	if r.save.T0 {
		r.sol.Append(t, y)
	}
	for r.next < len(r.save.Ts) && r.save.Ts[r.next] == t {
		r.sol.Append(t, y)
		r.next++
	}
}

// advance records the samples of an accepted step that ends at end, which is
// the segment end or an earlier event time.
func (r *recorder) advance(seg *segment, end float64, yEnd dynamo.State) {
	for r.next < len(r.save.Ts) && r.save.Ts[r.next] <= end {
		ts := r.save.Ts[r.next]
		if ts == end {
			r.sol.Append(ts, yEnd)
		} else {
			r.sol.Append(ts, seg.at(ts))
		}
		r.next++
	}
	if r.save.Steps {
		r.sol.Append(end, yEnd)
	}
}

// finish records the last state reached, whether or not the integration
// completed.
func (r *recorder) finish(t float64, y dynamo.State) {
	if !r.save.T1 {
		return
	}
	if r.save.Steps {
		if n := len(r.sol.Ts); n > 0 && r.sol.Ts[n-1] == t {
			return
		}
	}
	r.sol.Append(t, y)
}
