package ode

import "fmt"

// Tableau is the Butcher tableau of an explicit Runge-Kutta method.
// E holds the error weights B - Bhat of the embedded lower-order method; it is
// all zero for methods without an error estimate.
type Tableau struct {
	Name  string
	Order int
	C     []float64
	A     [][]float64
	B     []float64
	E     []float64
}

func (tb *Tableau) Stages() int {
	return len(tb.C)
}

// Embedded reports whether the method carries an error estimate and can be
// used with an adaptive controller.
func (tb *Tableau) Embedded() bool {
	for _, e := range tb.E {
		if e != 0 {
			return true
		}
	}
	return false
}

// FSAL reports whether the last stage is evaluated at the step result, so it
// doubles as the first stage of the next step.
func (tb *Tableau) FSAL() bool {
	s := tb.Stages()
	if s < 2 || tb.C[s-1] != 1 || tb.B[s-1] != 0 || len(tb.A[s-1]) != s-1 {
		return false
	}
	for j, a := range tb.A[s-1] {
		if a != tb.B[j] {
			return false
		}
	}
	return true
}

func (tb *Tableau) validate() error {
	s := tb.Stages()
	if s == 0 || len(tb.A) != s || len(tb.B) != s || tb.Order < 1 {
		return fmt.Errorf("malformed tableau %q", tb.Name)
	}
	if len(tb.E) != 0 && len(tb.E) != s {
		return fmt.Errorf("tableau %q: %d error weights for %d stages", tb.Name, len(tb.E), s)
	}
	for i, row := range tb.A {
		if len(row) > i {
			return fmt.Errorf("tableau %q is not explicit at stage %d", tb.Name, i)
		}
	}
	return nil
}

// Dopri5 is the Dormand-Prince 5(4) pair.
func Dopri5() *Tableau {
	return &Tableau{
		Name:  "dopri5",
		Order: 5,
		C:     []float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1},
		A: [][]float64{
			{},
			{1.0 / 5.0},
			{3.0 / 40.0, 9.0 / 40.0},
			{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
			{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
			{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
			{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
		},
		B: []float64{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0, 0},
		E: []float64{
			35.0/384.0 - 5179.0/57600.0,
			0,
			500.0/1113.0 - 7571.0/16695.0,
			125.0/192.0 - 393.0/640.0,
			-2187.0/6784.0 + 92097.0/339200.0,
			11.0/84.0 - 187.0/2100.0,
			-1.0 / 40.0,
		},
	}
}

// BS32 is the Bogacki-Shampine 3(2) pair.
func BS32() *Tableau {
	return &Tableau{
		Name:  "bs32",
		Order: 3,
		C:     []float64{0, 0.5, 0.75, 1},
		A: [][]float64{
			{},
			{0.5},
			{0, 0.75},
			{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
		},
		B: []float64{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0, 0},
		E: []float64{
			2.0/9.0 - 7.0/24.0,
			1.0/3.0 - 1.0/4.0,
			4.0/9.0 - 1.0/3.0,
			-1.0 / 8.0,
		},
	}
}

// RK4 is the classic fourth-order method. Constant steps only.
func RK4() *Tableau {
	return &Tableau{
		Name:  "rk4",
		Order: 4,
		C:     []float64{0, 0.5, 0.5, 1},
		A: [][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		B: []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
		E: []float64{0, 0, 0, 0},
	}
}

// Heun is the explicit trapezoidal rule with an Euler error estimate.
func Heun() *Tableau {
	return &Tableau{
		Name:  "heun",
		Order: 2,
		C:     []float64{0, 1},
		A:     [][]float64{{}, {1}},
		B:     []float64{0.5, 0.5},
		E:     []float64{-0.5, 0.5},
	}
}

// Euler is the forward Euler method. Constant steps only.
func Euler() *Tableau {
	return &Tableau{
		Name:  "euler",
		Order: 1,
		C:     []float64{0},
		A:     [][]float64{{}},
		B:     []float64{1},
		E:     []float64{0},
	}
}
