// Package rotation builds 3x3 rotation matrices about the coordinate axes.
//
// All matrices rotate vectors actively, counter-clockwise by θ when viewed
// from the positive end of the axis.
package rotation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// X returns the rotation by θ about the first axis:
//
//	[1    0       0   ]
//	[0  cos θ  -sin θ ]
//	[0  sin θ   cos θ ]
func X(θ float64) *mat.Dense {
	s, c := math.Sincos(θ)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// Y returns the rotation by θ about the second axis.
func Y(θ float64) *mat.Dense {
	s, c := math.Sincos(θ)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// Z returns the rotation by θ about the third axis.
func Z(θ float64) *mat.Dense {
	s, c := math.Sincos(θ)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// PerifocalToInertial returns Z(Ω)·X(i)·Z(ω), the matrix taking perifocal
// (PQW) coordinates to the inertial frame.
func PerifocalToInertial(raan, inc, argp float64) *mat.Dense {
	var m mat.Dense
	m.Mul(Z(raan), X(inc))
	m.Mul(&m, Z(argp))
	return &m
}

// Apply returns m·v for a 3-vector v.
func Apply(m mat.Matrix, v []float64) []float64 {
	if len(v) != 3 {
		panic("rotation: vector must have 3 components")
	}
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, append([]float64(nil), v...)))
	return out.RawVector().Data
}
