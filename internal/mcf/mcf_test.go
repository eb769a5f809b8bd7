package mcf_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperflow/internal/hh"
	"hyperflow/internal/hh/hhtest"
	"hyperflow/internal/mcf"
	"hyperflow/internal/metrics"
)

func newSolver(t *testing.T, seed int64) *mcf.Solver {
	t.Helper()
	s, err := mcf.New(mcf.DefaultConfig(), rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return s
}

// ticking - ручные часы, сдвигаемые на step при каждом применении эвристики.
func ticking(p *hhtest.Problem, iterations int, step time.Duration) *hh.Run {
	clock := &hhtest.Clock{}
	p.OnApply = func(int) { clock.Advance(step) }
	return hh.NewRun(0, hh.WithClock(clock.Now), hh.WithMaxIterations(iterations))
}

func TestBootstrapReplaysSeed(t *testing.T) {
	for _, seed := range []int64{1, 7, 2024} {
		p := hhtest.NewProblem(4, 100, 99, 98, 97, 99, 96, 100, 95)
		p.Types[hh.Mutation] = []int{0, 3}
		p.Types[hh.LocalSearch] = []int{1, 2}

		_, err := newSolver(t, seed).Solve(context.Background(), p, ticking(p, 10, time.Millisecond))
		require.NoError(t, err)

		candidates := []int{0, 3, 1, 2}
		replay := rand.New(rand.NewSource(seed))
		want := []int{
			candidates[replay.Intn(len(candidates))],
			candidates[replay.Intn(len(candidates))],
		}
		assert.Equal(t, want, p.Applied[:2], "seed %d", seed)
	}
}

func TestCrossoverNeverSelected(t *testing.T) {
	values := make([]float64, 0, 300)
	for i := 0; i < 300; i++ {
		values = append(values, float64(1000-i%17*3+i%5))
	}
	p := hhtest.NewProblem(5, 1000, values...)
	p.Types[hh.Mutation] = []int{0, 4}
	p.Types[hh.Crossover] = []int{2}
	p.Types[hh.LocalSearch] = []int{1, 3}

	s := newSolver(t, 3)
	_, err := s.Solve(context.Background(), p, ticking(p, 300, 2*time.Millisecond))
	require.NoError(t, err)

	require.Len(t, p.Applied, 300)
	assert.NotContains(t, p.Applied, 2)
}

func TestAllMovesAccepted(t *testing.T) {
	p := hhtest.NewProblem(2, 100, 90, 120, 80, 130)
	p.Types[hh.Mutation] = []int{0, 1}

	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	s := newSolver(t, 11)
	s.Metrics = rec

	res, err := s.Solve(context.Background(), p, ticking(p, 4, time.Millisecond))
	require.NoError(t, err)

	assert.Equal(t, 80.0, res.Best)
	assert.Equal(t, 4, res.Iterations)
	assert.Empty(t, p.Copies, "all-moves works in place")
	assert.Equal(t, 4.0, testutil.ToFloat64(rec.DecisionsFor(mcf.Name, true)))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.DecisionsFor(mcf.Name, false)))

	// Последний ход 80 -> 130 неулучшающий
	assert.Equal(t, 0.98, res.Meta["phi"])
	assert.Equal(t, 0.02, res.Meta["delta"])
	assert.Equal(t, 0.98, s.ChoiceFunction().Phi())
}

func TestKeepsPreviousWhenNoPositiveScore(t *testing.T) {
	p := hhtest.NewProblem(1, 50, 50)
	p.Types[hh.Mutation] = []int{0}

	_, err := newSolver(t, 5).Solve(context.Background(), p, ticking(p, 6, 0))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, p.Applied)
}

func TestProblemErrorPropagatesUnmodified(t *testing.T) {
	boom := errors.New("apply failed")
	p := hhtest.NewProblem(2, 100, 90)
	p.Types[hh.Mutation] = []int{0, 1}
	p.ApplyErr = boom

	_, err := newSolver(t, 1).Solve(context.Background(), p, ticking(p, 5, time.Millisecond))
	require.Same(t, boom, err)
}

func TestNoApplicableHeuristics(t *testing.T) {
	p := hhtest.NewProblem(2, 100, 90)
	p.Types[hh.Crossover] = []int{0, 1}

	_, err := newSolver(t, 1).Solve(context.Background(), p, ticking(p, 5, time.Millisecond))
	require.ErrorIs(t, err, hh.ErrNoApplicableHeuristics)
	assert.Empty(t, p.Applied)
}

func TestCancelMidRunCountsCompletedIterations(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := hhtest.NewProblem(2, 100, 90, 95, 80)
	p.Types[hh.Mutation] = []int{0, 1}
	run := ticking(p, 10, time.Millisecond)
	step := p.OnApply
	p.OnApply = func(id int) {
		step(id)
		if len(p.Applied) == 2 {
			cancel()
		}
	}

	res, err := newSolver(t, 1).Solve(ctx, p, run)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, p.Applied, 3)
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, "context", res.Meta["stopped"])
}
