package gravity

import (
	"math"

	"github.com/san-kum/cowell/pkg/dynamo"
)

// PointMass is the two-body vector field: [v, -mu r/|r|^3].
func PointMass(t float64, y dynamo.State, args dynamo.Args) dynamo.State {
	if len(y) != 6 {
		return nil
	}
	mu := args.FloatOr(KeyMu, 1)
	x, yy, z := y[0], y[1], y[2]
	r := math.Sqrt(x*x + yy*yy + z*z)
	k := -mu / (r * r * r)
	return dynamo.State{y[3], y[4], y[5], k * x, k * yy, k * z}
}

// J2Acc is the J2 perturbation as a vector field contribution: a zero
// velocity part followed by the zonal acceleration.
func J2Acc(t float64, y dynamo.State, args dynamo.Args) dynamo.State {
	if len(y) != 6 {
		return nil
	}
	mu := args.FloatOr(KeyMu, 1)
	j2 := args.FloatOr(KeyJ2, 0)
	req := args.FloatOr(KeyReq, 1)

	x, yy, z := y[0], y[1], y[2]
	r2 := x*x + yy*yy + z*z
	r := math.Sqrt(r2)
	r5 := r2 * r2 * r
	r7 := r5 * r2
	z2 := z * z

	k := 1.5 * j2 * req * req * mu
	return dynamo.State{
		0, 0, 0,
		k * (5*x*z2/r7 - x/r5),
		k * (5*yy*z2/r7 - yy/r5),
		k * (5*z2*z/r7 - 3*z/r5),
	}
}

// TwoBody returns the point-mass vector field.
func TwoBody() dynamo.Terms {
	return dynamo.ODETerm(PointMass)
}

// J2Perturbed returns point-mass gravity plus J2.
func J2Perturbed() dynamo.Terms {
	return dynamo.Sum(dynamo.ODETerm(PointMass), dynamo.ODETerm(J2Acc))
}
