// Package batch propagates many initial states concurrently.
package batch

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/san-kum/cowell/internal/metrics"
	"github.com/san-kum/cowell/pkg/cowell"
	"github.com/san-kum/cowell/pkg/dynamo"
)

// job is a unit of work for the pool.
type job struct {
	index int
	x0    dynamo.State
}

// Outcome is the result of one ensemble member.
type Outcome struct {
	Index    int
	X0       dynamo.State
	Solution *dynamo.Solution
	Metrics  map[string]float64
	Err      error
}

// Pool runs propagations on a fixed number of goroutines.
type Pool struct {
	workers int
	logger  *slog.Logger
	metrics func() []metrics.Metric
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithMetrics sets the factory of per-run metrics. A fresh set is built for
// every job since metrics are stateful.
func WithMetrics(fn func() []metrics.Metric) PoolOption {
	return func(p *Pool) { p.metrics = fn }
}

func NewPool(workers int, logger *slog.Logger, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{workers: workers, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run propagates req once per initial state in x0s, overriding req.X0. The
// outcomes are returned in input order. A cancelled context stops feeding new
// jobs and returns the context error.
func (p *Pool) Run(ctx context.Context, d *cowell.Dynamics, req cowell.Request, x0s []dynamo.State, opts ...cowell.PropagateOption) ([]Outcome, error) {
	if len(x0s) == 0 {
		return []Outcome{}, nil
	}

	jobs := make(chan job, p.workers*2)
	results := make(chan Outcome, p.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out := p.propagate(d, req, j, opts)
				select {
				case results <- out:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, x0 := range x0s {
			select {
			case jobs <- job{index: i, x0: x0}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]Outcome, len(x0s))
	var failed int
	for out := range results {
		if out.Err != nil {
			failed++
			p.logger.Warn("propagation failed", "index", out.Index, "err", out.Err)
		}
		outcomes[out.Index] = out
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.logger.Debug("batch finished", "runs", len(x0s), "failed", failed, "workers", p.workers)
	return outcomes, nil
}

func (p *Pool) propagate(d *cowell.Dynamics, req cowell.Request, j job, opts []cowell.PropagateOption) Outcome {
	var ms []metrics.Metric
	if p.metrics != nil {
		ms = p.metrics()
		opts = append(opts[:len(opts):len(opts)], cowell.WithObservers(metrics.Observers(ms...)...))
	}

	req.X0 = j.x0
	start := time.Now()
	sol, err := cowell.Propagate(d, req, opts...)
	out := Outcome{Index: j.index, X0: j.x0, Err: err}
	if sol == nil {
		return out
	}

	metrics.RecordPropagation(string(req.Mode), sol, time.Since(start))
	out.Solution = sol
	out.Metrics = metrics.Collect(ms...)
	if out.Err == nil {
		out.Err = sol.Err()
	}
	return out
}

// Perturb returns n copies of x0 with Gaussian noise added, sigmaPos on the
// position components and sigmaVel on the velocity components. The first
// copy is x0 itself.
func Perturb(x0 dynamo.State, n int, sigmaPos, sigmaVel float64, seed uint64) []dynamo.State {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]dynamo.State, n)
	for i := range out {
		x := x0.Clone()
		if i > 0 {
			for k := range x {
				sigma := sigmaPos
				if k >= 3 {
					sigma = sigmaVel
				}
				x[k] += sigma * rng.NormFloat64()
			}
		}
		out[i] = x
	}
	return out
}

// Summary aggregates an ensemble.
type Summary struct {
	Runs    int
	Results map[string]int
	Events  int
	// MeanEventTime is averaged over runs that ended in an event.
	MeanEventTime float64
	Metrics       map[string]float64
}

// Summarize counts results and averages metrics across outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{
		Runs:    len(outcomes),
		Results: make(map[string]int),
		Metrics: make(map[string]float64),
	}
	counts := make(map[string]int)
	for _, out := range outcomes {
		if out.Solution == nil {
			s.Results[dynamo.InvalidProblem.String()]++
			continue
		}
		s.Results[out.Solution.Result.String()]++
		if out.Solution.Result == dynamo.EventOccurred {
			s.Events++
			s.MeanEventTime += out.Solution.EventTime
		}
		for k, v := range out.Metrics {
			s.Metrics[k] += v
			counts[k]++
		}
	}
	if s.Events > 0 {
		s.MeanEventTime /= float64(s.Events)
	}
	for k, n := range counts {
		s.Metrics[k] /= float64(n)
	}
	return s
}
