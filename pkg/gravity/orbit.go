package gravity

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/rotation"
)

// Elements are classical orbital elements. Angles are in radians.
type Elements struct {
	A    float64 `yaml:"a" json:"a"`
	E    float64 `yaml:"e" json:"e"`
	I    float64 `yaml:"i" json:"i"`
	RAAN float64 `yaml:"raan" json:"raan"`
	ArgP float64 `yaml:"argp" json:"argp"`
	Nu   float64 `yaml:"nu" json:"nu"`
}

// State converts elliptical elements to a Cartesian state vector.
func (el Elements) State(mu float64) dynamo.State {
	p := el.A * (1 - el.E*el.E)
	sν, cν := math.Sincos(el.Nu)
	r := p / (1 + el.E*cν)
	vScale := math.Sqrt(mu / p)

	rPQW := []float64{r * cν, r * sν, 0}
	vPQW := []float64{-vScale * sν, vScale * (el.E + cν), 0}

	m := rotation.PerifocalToInertial(el.RAAN, el.I, el.ArgP)
	rv := append(rotation.Apply(m, rPQW), rotation.Apply(m, vPQW)...)
	return dynamo.State(rv)
}

// Period is the Keplerian period of an orbit with semi-major axis a.
func Period(a, mu float64) float64 {
	return 2 * math.Pi * math.Sqrt(a*a*a/mu)
}

// SpecificEnergy is v^2/2 - mu/r.
func SpecificEnergy(y dynamo.State, mu float64) float64 {
	r := floats.Norm(y.Position(), 2)
	v := floats.Norm(y.Velocity(), 2)
	return 0.5*v*v - mu/r
}

// SemiMajorAxis is -mu/(2E); infinite for parabolic states.
func SemiMajorAxis(y dynamo.State, mu float64) float64 {
	return -mu / (2 * SpecificEnergy(y, mu))
}

// AngularMomentum is r x v.
func AngularMomentum(y dynamo.State) []float64 {
	r, v := y.Position(), y.Velocity()
	return []float64{
		r[1]*v[2] - r[2]*v[1],
		r[2]*v[0] - r[0]*v[2],
		r[0]*v[1] - r[1]*v[0],
	}
}

// Circular returns an equatorial circular orbit state of radius r.
func Circular(r, mu float64) dynamo.State {
	return dynamo.State{r, 0, 0, 0, math.Sqrt(mu / r), 0}
}
