package cowell_test

import (
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cowell/pkg/cowell"
	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/gravity"
	"github.com/san-kum/cowell/pkg/ode"
)

func closeTo(want dynamo.State, tol float64) OmegaMatcher {
	matchers := make([]interface{}, len(want))
	for i, w := range want {
		matchers[i] = BeNumerically("~", w, tol)
	}
	return HaveExactElements(matchers...)
}

var _ = Describe("Propagation", func() {
	var (
		d        *cowell.Dynamics
		circular dynamo.State
		period   float64
	)

	BeforeEach(func() {
		d = cowell.New(gravity.TwoBody())
		circular = dynamo.State{1, 0, 0, 0, 1, 0}
		period = 2 * math.Pi
	})

	Describe("AdaptiveSteps", func() {
		It("closes a circular orbit after one period", func() {
			sol := cowell.AdaptiveSteps(d, circular, period)

			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Ts[0]).To(Equal(0.0))
			Expect(sol.Ys[0]).To(Equal(circular))
			Expect(sol.Ts).To(HaveLen(sol.Stats.NumAccepted + 1))

			tf, yf, _ := sol.Final()
			Expect(tf).To(Equal(period))
			Expect(yf).To(closeTo(circular, 1e-4))
		})

		It("keeps the times strictly increasing", func() {
			sol := cowell.AdaptiveSteps(d, circular, period)
			for i := 1; i < len(sol.Ts); i++ {
				Expect(sol.Ts[i]).To(BeNumerically(">", sol.Ts[i-1]))
			}
		})

		It("reports an exhausted step budget", func() {
			sol := cowell.AdaptiveSteps(d, circular, 100*period, cowell.WithMaxSteps(50))

			Expect(sol.Result).To(Equal(dynamo.MaxStepsReached))
			Expect(sol.Stats.NumSteps).To(Equal(50))
			Expect(sol.Err()).To(MatchError(dynamo.ErrMaxSteps))
		})

		It("accepts another embedded solver", func() {
			ref := cowell.AdaptiveSteps(d, circular, 1)
			bs := cowell.AdaptiveSteps(d, circular, 1, cowell.WithSolver(ode.BS32()))

			Expect(bs.Result).To(Equal(dynamo.Successful))
			_, want, _ := ref.Final()
			_, got, _ := bs.Final()
			Expect(got).To(closeTo(want, 1e-6))
		})
	})

	Describe("FixedSteps", func() {
		It("agrees with AdaptiveSteps at the final time", func() {
			fixed := cowell.FixedSteps(d, circular, period, 0.01)
			adaptive := cowell.AdaptiveSteps(d, circular, period)

			Expect(fixed.Result).To(Equal(dynamo.Successful))
			Expect(fixed.Ts).To(HaveLen(630))
			_, yFixed, _ := fixed.Final()
			_, yAdaptive, _ := adaptive.Final()
			Expect(yFixed).To(closeTo(yAdaptive, 1e-6))
		})

		It("samples at a constant cadence", func() {
			sol := cowell.FixedSteps(d, circular, 1, 0.25)
			Expect(sol.Ts).To(HaveExactElements(
				BeNumerically("~", 0, 1e-15),
				BeNumerically("~", 0.25, 1e-15),
				BeNumerically("~", 0.5, 1e-15),
				BeNumerically("~", 0.75, 1e-15),
				BeNumerically("~", 1, 1e-15),
			))
		})

		It("runs out of steps with a tiny dt unless the budget is raised", func() {
			Expect(cowell.FixedSteps(d, circular, period, 0.001).Result).To(Equal(dynamo.MaxStepsReached))

			sol := cowell.FixedSteps(d, circular, period, 0.001, cowell.WithMaxSteps(10000))
			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Stats.NumSteps).To(Equal(6284))
		})

		It("ignores adaptive controllers", func() {
			sol := cowell.FixedSteps(d, circular, 1, 0.1, cowell.WithController(ode.NewPID(1e-3, 1e-3)), cowell.WithSolver(ode.RK4()))
			Expect(sol.Stats.NumRejected).To(BeZero())
			Expect(sol.Stats.NumSteps).To(Equal(10))
		})

		It("rejects a non-positive step", func() {
			Expect(cowell.FixedSteps(d, circular, 1, 0).Result).To(Equal(dynamo.InvalidProblem))
		})
	})

	Describe("CustomSteps", func() {
		It("matches ToFinal for a single request at t1", func() {
			custom := cowell.CustomSteps(d, circular, period, []float64{period})
			final := cowell.ToFinal(d, circular, period)

			Expect(custom.Ts).To(Equal([]float64{period}))
			Expect(final.Ts).To(Equal([]float64{period}))
			Expect(custom.Ys[0]).To(closeTo(final.Ys[0], 1e-12))
		})

		It("does not extrapolate past t1", func() {
			sol := cowell.CustomSteps(d, circular, 2, []float64{0.5, 1.5, 2.5, 10})

			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Ts).To(Equal([]float64{0.5, 1.5}))
			for i, t := range sol.Ts {
				Expect(sol.Ys[i]).To(closeTo(dynamo.State{math.Cos(t), math.Sin(t), 0, -math.Sin(t), math.Cos(t), 0}, 1e-4))
			}
		})

		It("returns no samples when no times are requested", func() {
			for _, ts := range [][]float64{nil, {}} {
				sol := cowell.CustomSteps(d, circular, 3, ts)

				Expect(sol.Result).To(Equal(dynamo.Successful))
				Expect(sol.Ts).To(BeEmpty())
				Expect(sol.Ys).To(BeEmpty())
			}
		})

		It("is unlimited by default and honours an explicit cap", func() {
			ts := []float64{period, 20 * period}
			Expect(cowell.CustomSteps(d, circular, 20*period, ts).Result).To(Equal(dynamo.Successful))

			capped := cowell.CustomSteps(d, circular, 20*period, ts, cowell.WithStepCap(3))
			Expect(capped.Result).To(Equal(dynamo.MaxStepsReached))
			Expect(capped.Ts).To(BeEmpty())
		})
	})

	Describe("ToFinal", func() {
		It("returns a single sample", func() {
			sol := cowell.ToFinal(d, circular, period/2)
			Expect(sol.Ts).To(Equal([]float64{period / 2}))
			Expect(sol.Ys[0]).To(closeTo(dynamo.State{-1, 0, 0, 0, -1, 0}, 1e-6))
		})

		It("keeps its fixed step budget", func() {
			sol := cowell.ToFinal(d, circular, period, cowell.WithMaxSteps(1))
			Expect(sol.Result).To(Equal(dynamo.Successful))
			Expect(sol.Stats.MaxSteps).To(Equal(cowell.DefaultMaxSteps))
		})
	})

	Describe("events", func() {
		var (
			impact    *cowell.Dynamics
			eccentric dynamo.State
		)

		BeforeEach(func() {
			impact = cowell.New(gravity.TwoBody(),
				cowell.WithArgs(dynamo.Args{"mu": 1.0, "rmin": 0.5}),
				cowell.WithEvent(gravity.RadiusBelow()),
			)
			// apoapsis at r=1, periapsis near 0.14
			eccentric = dynamo.State{1, 0, 0, 0, 0.5, 0}
		})

		It("terminates AdaptiveSteps at the threshold", func() {
			sol := cowell.AdaptiveSteps(impact, eccentric, period)

			Expect(sol.Result).To(Equal(dynamo.EventOccurred))
			Expect(sol.Err()).NotTo(HaveOccurred())
			tf, yf, _ := sol.Final()
			Expect(tf).To(BeNumerically("<", period))
			Expect(tf).To(Equal(sol.EventTime))
			Expect(yf.Position().Norm()).To(BeNumerically("~", 0.5, 1e-5))
		})

		It("terminates every entry point at the same time", func() {
			adaptive := cowell.AdaptiveSteps(impact, eccentric, period)
			fixed := cowell.FixedSteps(impact, eccentric, period, 0.001, cowell.WithMaxSteps(10000))
			final := cowell.ToFinal(impact, eccentric, period)
			custom := cowell.CustomSteps(impact, eccentric, period, []float64{0.1, period})

			for _, sol := range []*dynamo.Solution{fixed, final, custom} {
				Expect(sol.Result).To(Equal(dynamo.EventOccurred))
				Expect(sol.EventTime).To(BeNumerically("~", adaptive.EventTime, 1e-5))
			}
			Expect(final.Ts).To(Equal([]float64{final.EventTime}))
			Expect(custom.Ts).To(Equal([]float64{0.1}))
		})

		It("does not fire when the orbit stays above the threshold", func() {
			sol := cowell.AdaptiveSteps(impact, circular, period)
			Expect(sol.Result).To(Equal(dynamo.Successful))
		})
	})

	It("propagates a J2-perturbed orbit away from the Keplerian one", func() {
		args := dynamo.Args{"mu": 1.0, "J2": 1e-3, "R_eq": 1.0}
		j2 := cowell.New(gravity.J2Perturbed(), cowell.WithArgs(args))
		kepler := cowell.New(gravity.TwoBody(), cowell.WithArgs(args))
		x0 := gravity.Elements{A: 1.2, E: 0.01, I: 0.9, Nu: 0}.State(1)

		_, yJ2, _ := cowell.ToFinal(j2, x0, 5*period).Final()
		_, yKep, _ := cowell.ToFinal(kepler, x0, 5*period).Final()

		Expect(yJ2.Sub(yKep).Norm()).To(BeNumerically(">", 1e-4))
	})

	It("reports a vector field of the wrong shape", func() {
		bad := cowell.NewFunc(func(t float64, y dynamo.State, args dynamo.Args) dynamo.State {
			return y[:3]
		})
		sol := cowell.AdaptiveSteps(bad, circular, 1)
		Expect(sol.Result).To(Equal(dynamo.InvalidProblem))
		Expect(sol.Err()).To(MatchError(dynamo.ErrDimensionMismatch))
	})

	It("reuses one Dynamics across goroutines", func() {
		want := cowell.ToFinal(d, circular, 3).Ys[0]

		var wg sync.WaitGroup
		results := make([]dynamo.State, 16)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = cowell.ToFinal(d, circular, 3).Ys[0]
			}(i)
		}
		wg.Wait()

		for _, y := range results {
			Expect(y).To(Equal(want))
		}
	})
})
