package gravity

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/cowell/pkg/dynamo"
)

func TestPointMass(t *testing.T) {
	y := dynamo.State{2, 0, 0, 0, 0.5, 0}
	got := PointMass(0, y, dynamo.Args{"mu": 4.0})
	want := []float64{0, 0.5, 0, -1, 0, 0}
	if !floats.EqualApprox(got, want, 1e-15) {
		t.Errorf("PointMass = %v, want %v", got, want)
	}

	if PointMass(0, dynamo.State{1, 0, 0}, nil) != nil {
		t.Error("expected nil for a 3-vector")
	}
}

func TestJ2AccOnAxes(t *testing.T) {
	args := dynamo.Args{"mu": 1.0, "J2": 1e-3, "R_eq": 1.0}

	// in the equatorial plane J2 adds an inward pull of 1.5*J2/r^4
	eq := J2Acc(0, dynamo.State{2, 0, 0, 0, 0, 0}, args)
	if want := -1.5 * 1e-3 / 16; math.Abs(eq[3]-want) > 1e-18 || eq[5] != 0 {
		t.Errorf("equatorial J2 = %v, want ax=%v", eq, want)
	}

	// over the pole it pushes outward with 3*J2/r^4
	pole := J2Acc(0, dynamo.State{0, 0, 2, 0, 0, 0}, args)
	if want := 3 * 1e-3 / 16; math.Abs(pole[5]-want) > 1e-18 {
		t.Errorf("polar J2 = %v, want az=%v", pole, want)
	}

	if zero := J2Acc(0, dynamo.State{1, 1, 1, 0, 0, 0}, dynamo.Args{}); floats.Norm(zero, 2) != 0 {
		t.Errorf("J2 without coefficient = %v", zero)
	}
}

func TestJ2PerturbedAddsTerms(t *testing.T) {
	args := dynamo.Args{"mu": 1.0, "J2": 1e-3, "R_eq": 1.0}
	y := dynamo.State{0.6, 0.3, 0.9, 0.1, 0.8, 0.2}

	got := J2Perturbed().Eval(0, y, args)
	want := PointMass(0, y, args).Add(J2Acc(0, y, args))
	if !floats.EqualApprox(got, want, 1e-15) {
		t.Errorf("J2Perturbed = %v, want %v", got, want)
	}
}

func TestRadiusBelow(t *testing.T) {
	ev := RadiusBelow()
	y := dynamo.State{3, 4, 0, 0, 0, 0}

	tests := []struct {
		name string
		args dynamo.Args
		want float64
	}{
		{"rmin", dynamo.Args{"rmin": 2.0}, 3},
		{"falls back to R_eq", dynamo.Args{"R_eq": 4.0}, 1},
		{"canonical radius", dynamo.Args{}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ev.Cond(0, y, tt.args); got != tt.want {
				t.Errorf("cond = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeParams(t *testing.T) {
	p, err := DecodeParams(dynamo.Args{"mu": 398600, "J2": 1.08263e-3, "R_eq": 6378.137, "other": map[string]any{"x": 1}})
	if err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if p.Mu != 398600 || p.J2 != 1.08263e-3 || p.Req != 6378.137 || p.Rmin != 6378.137 {
		t.Errorf("decoded %+v", p)
	}

	if _, err := DecodeParams(dynamo.Args{"mu": -1.0}); err == nil {
		t.Error("expected error for negative mu")
	}
	if _, err := DecodeParams(dynamo.Args{"mu": "heavy"}); err == nil {
		t.Error("expected error for non-numeric mu")
	}

	back := p.Args()
	if back["R_eq"] != 6378.137 || back["rmin"] != 6378.137 {
		t.Errorf("Args() = %v", back)
	}
}

func TestElementsState(t *testing.T) {
	mu := 1.0
	el := Elements{A: 2, E: 0.3, I: 0.4, RAAN: 1.1, ArgP: 0.7, Nu: 0.2}
	y := el.State(mu)

	if got := SemiMajorAxis(y, mu); math.Abs(got-2) > 1e-12 {
		t.Errorf("semi-major axis = %v, want 2", got)
	}
	h := AngularMomentum(y)
	if got := floats.Norm(h, 2); math.Abs(got-math.Sqrt(mu*2*(1-0.09))) > 1e-12 {
		t.Errorf("|h| = %v", got)
	}
	if inc := math.Acos(h[2] / floats.Norm(h, 2)); math.Abs(inc-0.4) > 1e-12 {
		t.Errorf("inclination = %v, want 0.4", inc)
	}
}

func TestCircularAndPeriod(t *testing.T) {
	y := Circular(1, 1)
	if e := SpecificEnergy(y, 1); math.Abs(e+0.5) > 1e-15 {
		t.Errorf("energy = %v, want -0.5", e)
	}
	if p := Period(1, 1); math.Abs(p-2*math.Pi) > 1e-15 {
		t.Errorf("period = %v", p)
	}
}
