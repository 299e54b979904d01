package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/gravity"
)

// Metric accumulates a scalar over the accepted steps of a propagation.
type Metric interface {
	dynamo.Observer
	Name() string
	Value() float64
	Reset()
}

// Energy reports the mean specific orbital energy over observed samples.
type Energy struct {
	name    string
	mu      float64
	samples int
	total   float64
}

func NewEnergy(mu float64) *Energy {
	return &Energy{name: "energy", mu: mu}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) OnStep(t float64, y dynamo.State) {
	if len(y) < 6 {
		return
	}
	e.total += gravity.SpecificEnergy(y, e.mu)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of specific energy against the
// first observed sample.
type EnergyDrift struct {
	name     string
	mu       float64
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(mu float64) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", mu: mu}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) OnStep(t float64, y dynamo.State) {
	if len(y) < 6 {
		return
	}
	energy := gravity.SpecificEnergy(y, e.mu)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift tracks the relative change of |r x v|.
type MomentumDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) OnStep(t float64, y dynamo.State) {
	if len(y) < 6 {
		return
	}
	h := floats.Norm(gravity.AngularMomentum(y), 2)
	if m.samples == 0 {
		m.initial = h
	}
	m.samples++
	if m.initial != 0 {
		m.maxDrift = math.Max(m.maxDrift, math.Abs(h-m.initial)/m.initial)
	}
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}

// Observers adapts a metric list for cowell.WithObservers.
func Observers(ms ...Metric) []dynamo.Observer {
	obs := make([]dynamo.Observer, len(ms))
	for i, m := range ms {
		obs[i] = m
	}
	return obs
}

// Collect returns the current value of every metric keyed by name.
func Collect(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Standard returns the metric set recorded for every stored run.
func Standard(mu float64) []Metric {
	return []Metric{
		NewEnergyDrift(mu),
		NewMomentumDrift(),
		NewMinRadius(),
	}
}
