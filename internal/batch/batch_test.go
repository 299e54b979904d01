package batch

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/cowell/internal/logging"
	"github.com/san-kum/cowell/internal/metrics"
	"github.com/san-kum/cowell/pkg/cowell"
	"github.com/san-kum/cowell/pkg/dynamo"
	"github.com/san-kum/cowell/pkg/gravity"
)

func TestPoolPreservesOrder(t *testing.T) {
	d := cowell.New(gravity.TwoBody())
	x0s := Perturb(gravity.Circular(1, 1), 8, 1e-3, 1e-3, 7)

	pool := NewPool(3, logging.NewNop(), WithMetrics(func() []metrics.Metric {
		return metrics.Standard(1)
	}))
	outcomes, err := pool.Run(context.Background(), d, cowell.Request{Mode: cowell.ModeFinal, T1: 2 * math.Pi}, x0s)
	require.NoError(t, err)
	require.Len(t, outcomes, 8)

	for i, out := range outcomes {
		assert.Equal(t, i, out.Index)
		assert.Equal(t, x0s[i], out.X0)
		require.NoError(t, out.Err)
		require.NotNil(t, out.Solution)
		assert.Equal(t, dynamo.Successful, out.Solution.Result)
		assert.Equal(t, 1, out.Solution.Len())
		assert.Less(t, out.Metrics["energy_drift"], 1e-6)
	}

	s := Summarize(outcomes)
	assert.Equal(t, 8, s.Runs)
	assert.Equal(t, 8, s.Results["successful"])
	assert.Zero(t, s.Events)
	assert.Contains(t, s.Metrics, "min_radius")
}

func TestPoolEvents(t *testing.T) {
	d := cowell.New(gravity.TwoBody(),
		cowell.WithArgs(dynamo.Args{"mu": 1.0, "rmin": 0.5}),
		cowell.WithEvent(gravity.RadiusBelow()),
	)
	x0s := []dynamo.State{
		{1, 0, 0, 0, 0.5, 0},
		{1, 0, 0, 0, 1, 0},
	}

	outcomes, err := NewPool(2, logging.NewNop()).Run(context.Background(), d,
		cowell.Request{Mode: cowell.ModeAdaptive, T1: 10}, x0s)
	require.NoError(t, err)

	assert.Equal(t, dynamo.EventOccurred, outcomes[0].Solution.Result)
	assert.Equal(t, dynamo.Successful, outcomes[1].Solution.Result)
	assert.Empty(t, outcomes[0].Metrics)

	s := Summarize(outcomes)
	assert.Equal(t, 1, s.Events)
	assert.InDelta(t, outcomes[0].Solution.EventTime, s.MeanEventTime, 1e-12)
}

func TestPoolReportsFailures(t *testing.T) {
	d := cowell.New(gravity.TwoBody())
	outcomes, err := NewPool(1, logging.NewNop()).Run(context.Background(), d,
		cowell.Request{Mode: cowell.ModeAdaptive, T1: 100}, []dynamo.State{gravity.Circular(1, 1)},
		cowell.WithMaxSteps(5))
	require.NoError(t, err)
	assert.ErrorIs(t, outcomes[0].Err, dynamo.ErrMaxSteps)

	outcomes, err = NewPool(1, logging.NewNop()).Run(context.Background(), d,
		cowell.Request{Mode: "warp", T1: 1}, []dynamo.State{gravity.Circular(1, 1)})
	require.NoError(t, err)
	assert.Error(t, outcomes[0].Err)
	assert.Nil(t, outcomes[0].Solution)

	s := Summarize(outcomes)
	assert.Equal(t, 1, s.Results["invalid_problem"])
}

func TestPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := cowell.New(gravity.TwoBody())
	_, err := NewPool(2, logging.NewNop()).Run(ctx, d,
		cowell.Request{Mode: cowell.ModeFinal, T1: 1}, Perturb(gravity.Circular(1, 1), 50, 0, 0, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPoolEmpty(t *testing.T) {
	outcomes, err := NewPool(0, logging.NewNop()).Run(context.Background(), nil, cowell.Request{}, nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestPerturb(t *testing.T) {
	x0 := gravity.Circular(1, 1)
	a := Perturb(x0, 5, 0.1, 0.01, 42)
	b := Perturb(x0, 5, 0.1, 0.01, 42)

	require.Len(t, a, 5)
	assert.Equal(t, a, b, "same seed should give the same ensemble")
	assert.Equal(t, x0, a[0])
	assert.NotEqual(t, x0, a[1])

	a[0][0] = 99
	assert.Equal(t, 1.0, x0[0], "perturbation must not alias x0")
}
