package flowshop

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperflow/internal/hh"
)

func newTestDomain(t *testing.T, jobs, machines int, seed int64) *Domain {
	t.Helper()
	inst, err := RandomInstance(jobs, machines, 1, 99, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	d, err := NewDomain(inst, rand.New(rand.NewSource(seed+1)))
	require.NoError(t, err)
	return d
}

func TestHeuristicClassification(t *testing.T) {
	d := newTestDomain(t, 8, 3, 1)

	assert.Equal(t, 7, d.NumberOfHeuristics())
	assert.Equal(t, []int{0, 1, 2}, d.HeuristicsOfType(hh.Mutation))
	assert.Equal(t, []int{3}, d.HeuristicsOfType(hh.RuinRecreate))
	assert.Equal(t, []int{4, 5}, d.HeuristicsOfType(hh.LocalSearch))
	assert.Equal(t, []int{6}, d.HeuristicsOfType(hh.Crossover))
	assert.Equal(t, []int{4, 5}, d.HeuristicsThatUseDepthOfSearch())
	assert.Equal(t, []int{0, 1, 2, 3}, d.HeuristicsThatUseIntensityOfMutation())

	assert.Equal(t, "ruin-recreate", d.HeuristicName(3))
	assert.Equal(t, "unknown(9)", d.HeuristicName(9))
}

func TestHeuristicsKeepValidPermutations(t *testing.T) {
	d := newTestDomain(t, 12, 4, 7)
	require.NoError(t, d.InitialiseSolution(0))

	for _, param := range []float64{0, 0.2, 0.5, 1} {
		d.SetDepthOfSearch(param)
		d.SetIntensityOfMutation(param)
		for id := 0; id < d.NumberOfHeuristics(); id++ {
			for rep := 0; rep < 5; rep++ {
				before, err := d.FunctionValue(0)
				require.NoError(t, err)

				v, err := d.ApplyHeuristic(id, 0, 1)
				require.NoError(t, err)

				perm, err := d.Solution(1)
				require.NoError(t, err)
				require.NoError(t, ValidatePermutation(perm, 12), "heuristic %s", d.HeuristicName(id))
				require.Equal(t, float64(d.eval.MustMakespan(perm)), v)

				if lowLevels[id].kind == hh.LocalSearch {
					assert.LessOrEqual(t, v, before, "local search must not worsen (%s)", d.HeuristicName(id))
				}
				require.NoError(t, d.CopySolution(1, 0))
			}
		}
	}

	best, cost := d.BestSolution()
	require.NoError(t, ValidatePermutation(best, 12))
	assert.Equal(t, d.eval.MustMakespan(best), cost)
}

func TestApplyInPlace(t *testing.T) {
	d := newTestDomain(t, 10, 3, 3)
	require.NoError(t, d.InitialiseSolution(0))

	v, err := d.ApplyHeuristic(4, 0, 0)
	require.NoError(t, err)
	got, err := d.FunctionValue(0)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestOrderCrossoverWithIdenticalParent(t *testing.T) {
	d := newTestDomain(t, 9, 3, 5)
	require.NoError(t, d.InitialiseSolution(0))
	parent, err := d.Solution(0)
	require.NoError(t, err)

	// Лучшее известное решение совпадает с текущим, потомок повторяет родителя
	_, err = d.ApplyHeuristic(6, 0, 0)
	require.NoError(t, err)
	child, err := d.Solution(0)
	require.NoError(t, err)
	assert.Equal(t, parent, child)
}

func TestSlotErrors(t *testing.T) {
	d := newTestDomain(t, 5, 2, 1)

	_, err := d.FunctionValue(0)
	require.Error(t, err)
	_, err = d.ApplyHeuristic(0, 0, 1)
	require.Error(t, err)
	require.Error(t, d.CopySolution(3, 0))
	require.Error(t, d.InitialiseSolution(-1))

	require.NoError(t, d.InitialiseSolution(2))
	_, err = d.FunctionValue(1)
	require.Error(t, err, "slots below an initialised one stay empty")
	_, err = d.ApplyHeuristic(7, 2, 2)
	require.Error(t, err)
	_, err = d.ApplyHeuristic(-1, 2, 2)
	require.Error(t, err)
}

func TestParametersClamped(t *testing.T) {
	d := newTestDomain(t, 5, 2, 1)
	assert.Equal(t, hh.DefaultParamValue, d.DepthOfSearch())

	d.SetDepthOfSearch(1.7)
	d.SetIntensityOfMutation(-3)
	assert.Equal(t, 1.0, d.DepthOfSearch())
	assert.Equal(t, 0.0, d.IntensityOfMutation())
}

func TestStrength(t *testing.T) {
	assert.Equal(t, 1, strength(0, 10))
	assert.Equal(t, 5, strength(0.5, 10))
	assert.Equal(t, 10, strength(1, 10))
	assert.Equal(t, 1, strength(1, 0))
}

func TestApplyInsert(t *testing.T) {
	p := []int{0, 1, 2, 3, 4}
	applyInsert(p, 1, 3)
	assert.Equal(t, []int{0, 2, 3, 1, 4}, p)
	applyInsert(p, 3, 0)
	assert.Equal(t, []int{1, 0, 2, 3, 4}, p)
}

func TestMakespan(t *testing.T) {
	inst, err := NewInstance(2, 2, []int{3, 2, 1, 4})
	require.NoError(t, err)
	e, err := NewEvaluator(inst)
	require.NoError(t, err)

	ms, err := e.Makespan([]int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 9, ms)
	ms, err = e.Makespan([]int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 7, ms)

	_, err = e.Makespan([]int{0, 0})
	require.Error(t, err)
	_, err = e.Makespan([]int{0})
	require.Error(t, err)
}

func TestReadInstance(t *testing.T) {
	inst, err := ReadInstance(strings.NewReader("2 2\n3 1\n2 4\n"))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1, 4}, inst.ProcTimes)
	assert.Equal(t, 1, inst.Time(1, 0))

	_, err = ReadInstance(strings.NewReader("2 2\n3 1\n2\n"))
	require.ErrorContains(t, err, "unexpected end of input")
	_, err = ReadInstance(strings.NewReader("2 x\n"))
	require.Error(t, err)
	_, err = ReadInstance(strings.NewReader("0 3\n"))
	require.Error(t, err)

	// Заголовок с огромными размерами отклоняется до выделения памяти
	_, err = ReadInstance(strings.NewReader("3037000500 3037000500 1 2 3"))
	require.ErrorContains(t, err, "exceeds")
	_, err = ReadInstance(strings.NewReader("9223372036854775807 2 1 2 3"))
	require.ErrorContains(t, err, "exceeds")
}

func TestReadTaillardInstance(t *testing.T) {
	const file = `number of jobs, number of machines, initial seed, upper bound and lower bound :
           3           2   873654221        1278        1232
processing times :
  3  1  5
  2  4  6
number of jobs, number of machines, initial seed, upper bound and lower bound :
           2           2   379008056        1359        1286
processing times :
  9  9
  9  9
`
	inst, err := ReadInstance(strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, 3, inst.Jobs)
	assert.Equal(t, 2, inst.Machines)
	assert.Equal(t, []int{3, 2, 1, 4, 5, 6}, inst.ProcTimes)

	_, err = ReadInstance(strings.NewReader("number of jobs :\n 3 2 1 1\n"))
	require.ErrorContains(t, err, "lower bound")
}

func TestRandomInstanceValidation(t *testing.T) {
	_, err := RandomInstance(3, 3, 1, 9, nil)
	require.Error(t, err)
	_, err = RandomInstance(3, 3, 9, 1, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	_, err = RandomInstance(0, 3, 1, 9, rand.New(rand.NewSource(1)))
	require.Error(t, err)

	inst, err := RandomInstance(4, 3, 5, 5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	for _, v := range inst.ProcTimes {
		assert.Equal(t, 5, v)
	}
}
