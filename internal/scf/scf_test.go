package scf_test

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperflow/internal/hh"
	"hyperflow/internal/hh/hhtest"
	"hyperflow/internal/scf"
)

func newSolver(t *testing.T, seed int64) *scf.Solver {
	t.Helper()
	s, err := scf.New(scf.DefaultConfig(), rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return s
}

func TestFourIterationScenario(t *testing.T) {
	for _, seed := range []int64{1, 2, 3, 99} {
		p := hhtest.NewProblem(3, 100, 100, 95, 96, 90)
		p.Types[hh.Mutation] = []int{0, 1}
		p.Types[hh.LocalSearch] = []int{2}

		s := newSolver(t, seed)
		clock := &hhtest.Clock{}
		var phiBefore []float64
		p.OnApply = func(int) {
			phiBefore = append(phiBefore, s.ChoiceFunction().Phi())
			clock.Advance(time.Second)
		}
		run := hh.NewRun(0, hh.WithClock(clock.Now), hh.WithMaxIterations(4))

		res, err := s.Solve(context.Background(), p, run)
		require.NoError(t, err)
		require.Len(t, p.Applied, 4)

		// Итерации 1-3 - случайный выбор по сиду
		candidates := []int{0, 1, 2}
		replay := rand.New(rand.NewSource(seed))
		boot := make([]int, 3)
		for i := range boot {
			boot[i] = candidates[replay.Intn(len(candidates))]
		}
		assert.Equal(t, boot, p.Applied[:3], "seed %d", seed)

		// phi: 0.50 -> 0.49 (100->100) -> 0.99 (100->95) -> 0.98 (95->96)
		require.Len(t, phiBefore, 4)
		assert.InDelta(t, 0.50, phiBefore[0], 1e-9)
		assert.InDelta(t, 0.49, phiBefore[1], 1e-9)
		assert.InDelta(t, 0.99, phiBefore[2], 1e-9)
		assert.InDelta(t, 0.98, phiBefore[3], 1e-9)

		// Итерация 4 - первый выбор по оценке в момент 3s: каждое применение
		// длилось 1s, итерация k начиналась в (k-1)s
		deltas := []float64{0, 5, -1}
		score := map[int]float64{}
		for _, id := range candidates {
			score[id] = 0.98*(-math.MaxFloat64) + 0.02*3
		}
		for k, id := range boot {
			score[id] = 0.98*deltas[k]/2 + 0.02*float64(3-k)
		}
		want := 0
		for _, id := range []int{1, 2} {
			if score[id] > score[want] {
				want = id
			}
		}
		assert.Equal(t, want, p.Applied[3], "seed %d", seed)

		assert.InDelta(t, 0.99, res.Meta["phi"].(float64), 1e-9)
		assert.Equal(t, 90.0, res.Best)
	}
}

func TestBootstrapLengthEqualsCandidates(t *testing.T) {
	const seed = 17
	p := hhtest.NewProblem(5, 100, 100)
	p.Types[hh.Mutation] = []int{0, 1}
	p.Types[hh.Crossover] = []int{2}
	p.Types[hh.RuinRecreate] = []int{3}
	p.Types[hh.LocalSearch] = []int{4}

	clock := &hhtest.Clock{}
	p.OnApply = func(int) { clock.Advance(time.Millisecond) }
	s := newSolver(t, seed)

	_, err := s.Solve(context.Background(), p, hh.NewRun(0, hh.WithClock(clock.Now), hh.WithMaxIterations(12)))
	require.NoError(t, err)

	candidates := []int{0, 1, 3, 4}
	replay := rand.New(rand.NewSource(seed))
	for i := 0; i < len(candidates); i++ {
		assert.Equal(t, candidates[replay.Intn(len(candidates))], p.Applied[i])
	}
	// После бутстрапа генератор больше не используется
	assert.Equal(t, replay.Int63(), s.Rng.Int63())
	assert.NotContains(t, p.Applied, 2)
}

func TestSelectTiesPickLowestID(t *testing.T) {
	c := &hh.Catalog{Heuristics: []*hh.Heuristic{
		{ID: 0, Type: hh.Crossover, Ineligible: true},
		{ID: 1, Type: hh.Mutation},
		{ID: 2, Type: hh.Mutation},
		{ID: 3, Type: hh.LocalSearch},
	}}
	c.TrackPerformance(0)
	cf := scf.NewChoiceFunction(0.5)

	id, ok := cf.Select(c, 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, id)

	cf.Update(c.Heuristic(1), hh.Outcome{Before: 10, After: 10, AppliedAt: 0, Took: time.Second})
	cf.Update(c.Heuristic(3), hh.Outcome{Before: 10, After: 10, AppliedAt: 0, Took: time.Second})
	id, ok = cf.Select(c, 5*time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, id, "1 and 3 score the same")
}

func TestSelectCoversWholeCatalog(t *testing.T) {
	c := &hh.Catalog{
		Heuristics: []*hh.Heuristic{
			{ID: 0, Type: hh.Mutation},
			{ID: 1, Type: hh.Other},
			{ID: 2, Type: hh.LocalSearch},
		},
		Candidates: []int{0, 2},
	}
	c.TrackPerformance(0)
	c.Heuristic(0).Perf.LastDelta = 1
	c.Heuristic(1).Perf.LastDelta = 8
	c.Heuristic(2).Perf.LastDelta = 3
	var sel hh.Selector = scf.NewChoiceFunction(0.5)

	id, ok := sel.Select(c, 0)
	require.True(t, ok)
	assert.Equal(t, 1, id, "heuristic outside the candidate set wins on score")
}

func TestScoredPhaseReachesUntypedHeuristic(t *testing.T) {
	// Отрицательный phi делает оценку ни разу не применённой эвристики огромной
	p := hhtest.NewProblem(3, 100, 100)
	p.Types[hh.Mutation] = []int{0}
	p.Types[hh.LocalSearch] = []int{2}

	s, err := scf.New(scf.Config{Phi: 0.01}, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	clock := &hhtest.Clock{}
	p.OnApply = func(int) { clock.Advance(time.Millisecond) }

	_, err = s.Solve(context.Background(), p, hh.NewRun(0, hh.WithClock(clock.Now), hh.WithMaxIterations(3)))
	require.NoError(t, err)

	require.Len(t, p.Applied, 3)
	assert.NotContains(t, p.Applied[:2], 1, "bootstrap draws from candidates only")
	assert.Equal(t, 1, p.Applied[2])
	assert.InDelta(t, -0.02, s.ChoiceFunction().Phi(), 1e-9)
}

func TestSelectSkipsIneligibleEvenWithNegativePhi(t *testing.T) {
	c := &hh.Catalog{Heuristics: []*hh.Heuristic{
		{ID: 0, Type: hh.Mutation},
		{ID: 1, Type: hh.Crossover, Ineligible: true},
	}}
	c.TrackPerformance(0)
	cf := scf.NewChoiceFunction(-0.5)

	id, ok := cf.Select(c, time.Minute)
	require.True(t, ok)
	assert.Equal(t, 0, id)
}

func TestPhiDecrementIsUnclamped(t *testing.T) {
	h := &hh.Heuristic{ID: 0, Perf: &hh.Performance{}}
	cf := scf.NewChoiceFunction(0.01)

	cf.Update(h, hh.Outcome{Before: 5, After: 6})
	cf.Update(h, hh.Outcome{Before: 6, After: 7})
	assert.InDelta(t, -0.01, cf.Phi(), 1e-9)

	cf.Update(h, hh.Outcome{Before: 7, After: 1, AppliedAt: 2 * time.Second, Took: 1500 * time.Millisecond})
	assert.Equal(t, 0.99, cf.Phi())
	assert.Equal(t, 6.0, h.Perf.LastDelta)
	assert.Equal(t, 2*time.Second, h.Perf.TimeLastApplied)
	assert.Equal(t, 1500*time.Millisecond+1, h.Perf.PreviousDuration)
}

func TestScoreTruncatesToSeconds(t *testing.T) {
	h := &hh.Heuristic{ID: 0, Perf: &hh.Performance{
		TimeLastApplied:  time.Second,
		PreviousDuration: 1999 * time.Millisecond,
		LastDelta:        8,
	}}
	cf := scf.NewChoiceFunction(0.5)

	// f1 = 8 / (1 + 1), f3 = trunc(3.7s - 1s) = 2
	assert.InDelta(t, 0.5*4+0.5*2, cf.Score(h, 3700*time.Millisecond), 1e-9)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, scf.DefaultConfig().Validate())
	require.NoError(t, scf.Config{Phi: 0}.Validate())
	require.Error(t, scf.Config{Phi: 1.5}.Validate())
	require.Error(t, scf.Config{Phi: 0.5, IntensityOfMutation: []float64{-1}}.Validate())
}

func TestCancelledBeforeFirstIteration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := hhtest.NewProblem(2, 100, 90)
	p.Types[hh.Mutation] = []int{0, 1}

	res, err := newSolver(t, 1).Solve(ctx, p, hh.NewRun(0, hh.WithMaxIterations(5)))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, p.Applied)
	assert.Equal(t, 0, res.Iterations)
}
