package ode_test

import (
	"errors"
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/ode"
)

// The second derivative of x is -x, so x(t) = cos t for x(0) = 1, v(0) = 0.
var oscillator = dynamo.ODETerm(func(t float64, y dynamo.State, args dynamo.Args) dynamo.State {
	return dynamo.State{y[1], -y[0]}
})

type stepCounter struct{ n int }

func (c *stepCounter) OnStep(t float64, y dynamo.State) { c.n++ }

var _ = Describe("Solve", func() {
	var y0 dynamo.State

	BeforeEach(func() {
		y0 = dynamo.State{1, 0}
	})

	Context("with constant steps", func() {
		It("returns to the start after one period", func() {
			sol := ode.Solve(ode.Problem{
				Terms:      oscillator,
				T1:         2 * math.Pi,
				Dt0:        0.01,
				Y0:         y0,
				Controller: ode.ConstantStepSize{},
				SaveAt:     ode.SaveSteps(),
			})

			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Stats.NumSteps).To(Equal(629))
			Expect(sol.Ts).To(HaveLen(630))
			Expect(sol.Ts[0]).To(Equal(0.0))
			Expect(sol.Ts[len(sol.Ts)-1]).To(Equal(2 * math.Pi))

			_, yf, ok := sol.Final()
			Expect(ok).To(BeTrue())
			Expect(yf[0]).To(BeNumerically("~", 1, 1e-8))
			Expect(yf[1]).To(BeNumerically("~", 0, 1e-8))
		})

		It("counts one evaluation per new stage", func() {
			sol := ode.Solve(ode.Problem{Terms: oscillator, T1: 1, Dt0: 0.1, Y0: y0})
			Expect(sol.Stats.NumEvals).To(Equal(1 + 6*sol.Stats.NumSteps))

			sol = ode.Solve(ode.Problem{Terms: oscillator, Solver: ode.RK4(), T1: 1, Dt0: 0.1, Y0: y0})
			Expect(sol.Stats.NumEvals).To(Equal(1 + 4*sol.Stats.NumSteps))
		})

		It("does not take a sliver step at the end", func() {
			sol := ode.Solve(ode.Problem{Terms: oscillator, T1: 1, Dt0: 0.1, Y0: y0, SaveAt: ode.SaveSteps()})
			Expect(sol.Stats.NumSteps).To(Equal(10))
			Expect(sol.Ts[len(sol.Ts)-1]).To(Equal(1.0))
		})

		It("stops at the step cap with a usable partial trajectory", func() {
			sol := ode.Solve(ode.Problem{
				Terms:    oscillator,
				T1:       10,
				Dt0:      0.01,
				Y0:       y0,
				MaxSteps: 100,
				SaveAt:   ode.SaveSteps(),
			})

			Expect(sol.Result).To(Equal(dynamo.MaxStepsReached))
			Expect(sol.Ts).To(HaveLen(101))
			tf, yf, _ := sol.Final()
			Expect(tf).To(BeNumerically("~", 1.0, 1e-12))
			Expect(yf[0]).To(BeNumerically("~", math.Cos(1), 1e-9))
			Expect(errors.Is(sol.Err(), dynamo.ErrMaxSteps)).To(BeTrue())
		})

		It("reports non-finite states", func() {
			blowup := dynamo.ODETerm(func(t float64, y dynamo.State, args dynamo.Args) dynamo.State {
				if t > 0.5 {
					return dynamo.State{math.NaN()}
				}
				return dynamo.State{-y[0]}
			})
			sol := ode.Solve(ode.Problem{Terms: blowup, T1: 1, Dt0: 0.1, Y0: dynamo.State{1}, SaveAt: ode.SaveFinal()})

			Expect(sol.Result).To(Equal(dynamo.NonFinite))
			tf, yf, ok := sol.Final()
			Expect(ok).To(BeTrue())
			Expect(tf).To(BeNumerically("<=", 0.5))
			Expect(yf.IsValid()).To(BeTrue())
		})
	})

	Context("with a PID controller", func() {
		It("tracks the analytic solution", func() {
			sol := ode.Solve(ode.Problem{
				Terms:      oscillator,
				T1:         10,
				Dt0:        0.1,
				Y0:         y0,
				Controller: ode.NewPID(1e-10, 1e-10),
				SaveAt:     ode.SaveSteps(),
			})

			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Stats.NumAccepted + sol.Stats.NumRejected).To(Equal(sol.Stats.NumSteps))
			Expect(sol.Ts).To(HaveLen(sol.Stats.NumAccepted + 1))
			for i, t := range sol.Ts {
				Expect(sol.Ys[i][0]).To(BeNumerically("~", math.Cos(t), 1e-7))
			}
		})

		It("picks an initial step when none is given", func() {
			sol := ode.Solve(ode.Problem{Terms: oscillator, T1: 5, Y0: y0, Controller: ode.NewPID(1e-8, 1e-8)})
			Expect(sol.Result).To(Equal(dynamo.Successful))
		})

		It("bounds the initial step by DtMax", func() {
			pid := ode.NewPID(1e-8, 1e-8)
			pid.DtMax = 0.05
			sol := ode.Solve(ode.Problem{Terms: oscillator, T1: 1, Dt0: 0.9, Y0: y0, Controller: pid, SaveAt: ode.SaveSteps()})

			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Ts[1]).To(BeNumerically("<=", 0.05))
			for i := 1; i < len(sol.Ts); i++ {
				Expect(sol.Ts[i] - sol.Ts[i-1]).To(BeNumerically("<=", 0.05+1e-12))
			}
		})

		It("raises a tiny initial step to DtMin", func() {
			pid := ode.NewPID(1e-6, 1e-6)
			pid.DtMin = 0.01
			sol := ode.Solve(ode.Problem{Terms: oscillator, T1: 1, Dt0: 1e-9, Y0: y0, Controller: pid, SaveAt: ode.SaveSteps()})

			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Ts[1]).To(BeNumerically(">=", 0.01))
		})

		It("rejects solvers without an error estimate", func() {
			sol := ode.Solve(ode.Problem{Terms: oscillator, Solver: ode.Euler(), T1: 1, Y0: y0, Controller: ode.NewPID(1e-6, 1e-6)})
			Expect(sol.Result).To(Equal(dynamo.InvalidProblem))
			Expect(sol.Cause).To(MatchError(ContainSubstring("no error estimate")))
		})

		It("works with the lower-order embedded pairs", func() {
			for _, tab := range []*ode.Tableau{ode.BS32(), ode.Heun()} {
				sol := ode.Solve(ode.Problem{Terms: oscillator, Solver: tab, T1: 1, Y0: y0, Controller: ode.NewPID(1e-6, 1e-6)})
				Expect(sol.Result).To(Equal(dynamo.Successful), tab.Name)
				_, yf, _ := sol.Final()
				Expect(yf[0]).To(BeNumerically("~", math.Cos(1), 1e-4), tab.Name)
			}
		})

		It("shrinks the step down to underflow at a singularity", func() {
			wall := dynamo.ODETerm(func(t float64, y dynamo.State, args dynamo.Args) dynamo.State {
				if t > 0.5 {
					return dynamo.State{math.Inf(1)}
				}
				return dynamo.State{-y[0]}
			})
			sol := ode.Solve(ode.Problem{Terms: wall, T1: 1, Y0: dynamo.State{1}, Controller: ode.NewPID(1e-6, 1e-6)})

			Expect(sol.Result).To(Equal(dynamo.StepSizeUnderflow))
			Expect(sol.Stats.NumRejected).To(BeNumerically(">", 0))
			tf, _, _ := sol.Final()
			Expect(tf).To(BeNumerically("~", 0.5, 1e-6))
		})
	})

	Context("saving at requested times", func() {
		It("interpolates inside steps and omits times past the end", func() {
			sol := ode.Solve(ode.Problem{
				Terms:      oscillator,
				T1:         10,
				Dt0:        0.1,
				Y0:         y0,
				Controller: ode.NewPID(1e-10, 1e-10),
				SaveAt:     ode.SaveTs([]float64{0, 0.5, 1.7, 10, 20}),
			})

			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Ts).To(Equal([]float64{0, 0.5, 1.7, 10}))
			for i, t := range sol.Ts {
				Expect(sol.Ys[i][0]).To(BeNumerically("~", math.Cos(t), 1e-5))
				Expect(sol.Ys[i][1]).To(BeNumerically("~", -math.Sin(t), 1e-5))
			}
		})

		It("matches the final-only save exactly at the end time", func() {
			p := ode.Problem{Terms: oscillator, T1: 3, Dt0: 0.03, Y0: y0, Controller: ode.NewPID(1e-8, 1e-8)}

			p.SaveAt = ode.SaveTs([]float64{3})
			custom := ode.Solve(p)
			p.SaveAt = ode.SaveFinal()
			final := ode.Solve(p)

			Expect(custom.Ys).To(HaveLen(1))
			Expect(custom.Ys[0]).To(Equal(final.Ys[0]))
		})

		DescribeTable("rejects malformed save times",
			func(ts []float64) {
				sol := ode.Solve(ode.Problem{Terms: oscillator, T1: 1, Y0: y0, Controller: ode.NewPID(1e-6, 1e-6), SaveAt: ode.SaveTs(ts)})
				Expect(sol.Result).To(Equal(dynamo.InvalidProblem))
				Expect(sol.Ts).To(BeEmpty())
			},
			Entry("unsorted", []float64{0.5, 0.2}),
			Entry("before start", []float64{-1, 0.5}),
			Entry("not finite", []float64{math.NaN()}),
		)

		It("saves nothing for an empty request", func() {
			for _, ts := range [][]float64{nil, {}} {
				sol := ode.Solve(ode.Problem{Terms: oscillator, T1: 1, Y0: y0, Controller: ode.NewPID(1e-6, 1e-6), SaveAt: ode.SaveTs(ts)})
				Expect(sol.Result).To(Equal(dynamo.Successful))
				Expect(sol.Ts).To(BeEmpty())
				Expect(sol.Ys).To(BeEmpty())
			}
		})
	})

	Context("with a terminating event", func() {
		halfway := dynamo.NewEvent("x-below-half", func(t float64, y dynamo.State, args dynamo.Args) float64 {
			return y[0] - 0.5
		})

		It("locates the crossing and truncates the trajectory", func() {
			sol := ode.Solve(ode.Problem{
				Terms:      oscillator,
				T1:         10,
				Dt0:        0.1,
				Y0:         y0,
				Controller: ode.NewPID(1e-10, 1e-10),
				SaveAt:     ode.SaveSteps(),
				Event:      dynamo.SomeEvent(halfway),
			})

			Expect(sol.Result).To(Equal(dynamo.EventOccurred))
			Expect(sol.Err()).NotTo(HaveOccurred())
			Expect(sol.EventTime).To(BeNumerically("~", math.Pi/3, 1e-5))
			tf, yf, _ := sol.Final()
			Expect(tf).To(Equal(sol.EventTime))
			Expect(yf[0]).To(BeNumerically("~", 0.5, 1e-5))
			Expect(sol.Ts).To(HaveEach(BeNumerically("<=", sol.EventTime)))
		})

		It("accepts boolean predicates", func() {
			below := dynamo.Predicate(func(t float64, y dynamo.State, args dynamo.Args) bool { return y[0] < 0.5 })
			sol := ode.Solve(ode.Problem{
				Terms:      oscillator,
				T1:         10,
				Dt0:        0.01,
				Y0:         y0,
				Controller: ode.ConstantStepSize{},
				Event:      dynamo.SomeEvent(dynamo.NewEvent("below", below)),
			})

			Expect(sol.Result).To(Equal(dynamo.EventOccurred))
			Expect(sol.EventTime).To(BeNumerically("~", math.Pi/3, 1e-5))
		})

		It("drops requested times after the event", func() {
			sol := ode.Solve(ode.Problem{
				Terms:      oscillator,
				T1:         10,
				Dt0:        0.1,
				Y0:         y0,
				Controller: ode.NewPID(1e-8, 1e-8),
				SaveAt:     ode.SaveTs([]float64{0.5, 1.0, 2.0}),
				Event:      dynamo.SomeEvent(halfway),
			})

			Expect(sol.Result).To(Equal(dynamo.EventOccurred))
			Expect(sol.Ts).To(Equal([]float64{0.5, 1.0}))
		})
	})

	Context("with invalid problems", func() {
		It("reports a dimension mismatch", func() {
			bad := dynamo.ODETerm(func(t float64, y dynamo.State, args dynamo.Args) dynamo.State {
				return dynamo.State{0}
			})
			sol := ode.Solve(ode.Problem{Terms: bad, T1: 1, Dt0: 0.1, Y0: y0})

			Expect(sol.Result).To(Equal(dynamo.InvalidProblem))
			Expect(errors.Is(sol.Err(), dynamo.ErrDimensionMismatch)).To(BeTrue())
			Expect(errors.Is(sol.Err(), dynamo.ErrInvalidProblem)).To(BeTrue())
		})

		DescribeTable("rejects bad inputs",
			func(p ode.Problem) {
				Expect(ode.Solve(p).Result).To(Equal(dynamo.InvalidProblem))
			},
			Entry("end before start", ode.Problem{Terms: oscillator, T0: 1, T1: 0, Dt0: 0.1, Y0: dynamo.State{1, 0}}),
			Entry("zero constant step", ode.Problem{Terms: oscillator, T1: 1, Y0: dynamo.State{1, 0}}),
			Entry("empty state", ode.Problem{Terms: oscillator, T1: 1, Dt0: 0.1}),
			Entry("no vector field", ode.Problem{T1: 1, Dt0: 0.1, Y0: dynamo.State{1, 0}}),
			Entry("zero tolerances", ode.Problem{Terms: oscillator, T1: 1, Y0: dynamo.State{1, 0}, Controller: ode.NewPID(0, 0)}),
		)

		It("returns the initial state for an empty time span", func() {
			sol := ode.Solve(ode.Problem{Terms: oscillator, T1: 0, Y0: y0, Controller: ode.NewPID(1e-8, 1e-8)})
			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Ys).To(Equal([]dynamo.State{{1, 0}}))
		})
	})

	It("notifies observers of the initial state and every accepted step", func() {
		counter := &stepCounter{}
		sol := ode.Solve(ode.Problem{
			Terms:      oscillator,
			T1:         5,
			Y0:         y0,
			Controller: ode.NewPID(1e-8, 1e-8),
			Observers:  []dynamo.Observer{counter},
		})
		Expect(counter.n).To(Equal(sol.Stats.NumAccepted + 1))
	})

	It("gives identical results when run concurrently", func() {
		p := ode.Problem{Terms: oscillator, T1: 7, Y0: y0, Controller: ode.NewPID(1e-8, 1e-8)}
		want := ode.Solve(p).Ys[0]

		var wg sync.WaitGroup
		got := make([]dynamo.State, 8)
		for i := range got {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				got[i] = ode.Solve(p).Ys[0]
			}(i)
		}
		wg.Wait()

		for _, y := range got {
			Expect(y).To(Equal(want))
		}
	})

	It("does not modify the initial state", func() {
		ode.Solve(ode.Problem{Terms: oscillator, T1: 1, Dt0: 0.1, Y0: y0})
		Expect(y0).To(Equal(dynamo.State{1, 0}))
	})
})
