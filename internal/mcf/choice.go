package mcf

import (
	"math"
	"time"

	"hyperflow/internal/hh"
)

const (
	phiMax  = 0.99
	phiMin  = 0.01
	phiStep = 0.01

	// bootstrapIterations - число первых итераций со случайным выбором.
	bootstrapIterations = 2
)

// ChoiceFunction - модифицированная функция выбора с парной памятью:
//
//	F(i) = phi*f1(i) + phi*f2(i, last) + delta*f3(i)
//
// f1 - недавняя эффективность i, f2 - эффективность i сразу после last,
// f3 - время с последнего применения i (в миллисекундах).
type ChoiceFunction struct {
	phi, delta float64

	f1 []float64
	f2 [][]float64
	f3 []float64

	// prevChange - вклад предыдущего улучшения в f2; обнуляется при неудаче.
	prevChange float64
	last       int
	updates    int
}

// NewChoiceFunction создаёт состояние для n эвристик с начальным весом phi.
func NewChoiceFunction(n int, phi float64) *ChoiceFunction {
	f2 := make([][]float64, n)
	backing := make([]float64, n*n)
	for i := range f2 {
		f2[i] = backing[i*n : (i+1)*n]
	}
	return &ChoiceFunction{
		phi:   roundTwoDecimals(phi),
		delta: roundTwoDecimals(1 - phi),
		f1:    make([]float64, n),
		f2:    f2,
		f3:    make([]float64, n),
	}
}

// Bootstrapping истинно, пока не набрано данных для оценок.
func (cf *ChoiceFunction) Bootstrapping() bool {
	return cf.updates < bootstrapIterations
}

// Select возвращает эвристику со строго наибольшей положительной оценкой.
// Ноль - порог отбора: если ни одна оценка не больше нуля, ok == false.
func (cf *ChoiceFunction) Select(c *hh.Catalog, _ time.Duration) (int, bool) {
	best := 0.0
	chosen := -1
	for i, h := range c.Heuristics {
		if h.Ineligible {
			continue
		}
		score := cf.Score(i)
		if score > best {
			best = score
			chosen = i
		}
	}
	return chosen, chosen >= 0
}

// Score - текущая оценка эвристики i относительно последней применённой.
func (cf *ChoiceFunction) Score(i int) float64 {
	return cf.phi*cf.f1[i] + cf.phi*cf.f2[i][cf.last] + cf.delta*cf.f3[i]
}

// Update учитывает применение эвристики h.
func (cf *ChoiceFunction) Update(h *hh.Heuristic, o hh.Outcome) {
	i := h.ID
	dt := float64(o.Took.Milliseconds() + 1) // +1 защищает от деления на ноль
	change := o.Delta()
	rate := change / dt

	// Первые две итерации заполняют f1 и f2 напрямую, без сглаживания
	switch cf.updates {
	case 0:
		cf.f1[i] = rate
	case 1:
		cf.f1[i] = rate
		cf.f2[i][cf.last] = cf.prevChange + rate + cf.prevChange
	default:
		cf.f1[i] = rate + cf.phi*cf.f1[i]
		cf.f2[i][cf.last] = cf.prevChange + rate + cf.phi*cf.f2[i][cf.last]
	}
	if cf.updates < bootstrapIterations {
		cf.updates++
	}

	for j := range cf.f3 {
		cf.f3[j] += dt
	}
	cf.f3[i] = 0

	if change > 0 {
		cf.phi = phiMax
		cf.delta = phiMin
		cf.prevChange = rate
	} else {
		if cf.phi > phiMin {
			cf.phi -= phiStep
		}
		cf.phi = roundTwoDecimals(cf.phi)
		cf.delta = roundTwoDecimals(1 - cf.phi)
		cf.prevChange = 0
	}
	cf.last = i

	if h.Perf != nil {
		h.Perf.TimeLastApplied = o.AppliedAt
		h.Perf.PreviousDuration = o.Took + 1
		h.Perf.LastDelta = change
	}
}

func (cf *ChoiceFunction) Phi() float64   { return cf.phi }
func (cf *ChoiceFunction) Delta() float64 { return cf.delta }
func (cf *ChoiceFunction) Last() int      { return cf.last }

func (cf *ChoiceFunction) F1(i int) float64    { return cf.f1[i] }
func (cf *ChoiceFunction) F2(i, j int) float64 { return cf.f2[i][j] }
func (cf *ChoiceFunction) F3(i int) float64    { return cf.f3[i] }

// roundTwoDecimals гасит накопление ошибки округления в phi и delta.
func roundTwoDecimals(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

var _ hh.Selector = (*ChoiceFunction)(nil)
