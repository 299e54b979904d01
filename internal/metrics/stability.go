package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// MinRadius is the closest approach to the origin seen so far.
type MinRadius struct {
	name    string
	min     float64
	samples int
}

func NewMinRadius() *MinRadius {
	return &MinRadius{name: "min_radius", min: math.Inf(1)}
}

func (m *MinRadius) Name() string { return m.name }

func (m *MinRadius) OnStep(t float64, y dynamo.State) {
	if len(y) < 3 {
		return
	}
	m.min = math.Min(m.min, floats.Norm(y.Position(), 2))
	m.samples++
}

func (m *MinRadius) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *MinRadius) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}

// Bounded is the fraction of samples whose position stays within threshold.
type Bounded struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewBounded(threshold float64) *Bounded {
	return &Bounded{
		name:      "bounded",
		threshold: threshold,
	}
}

func (b *Bounded) Name() string { return b.name }

func (b *Bounded) OnStep(t float64, y dynamo.State) {
	b.samples++
	if len(y) >= 3 && floats.Norm(y.Position(), 2) > b.threshold {
		b.violations++
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
