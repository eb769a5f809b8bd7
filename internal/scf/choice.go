package scf

import (
	"math"
	"time"

	"hyperflow/internal/hh"
)

const (
	phiImproved = 0.99
	phiStep     = 0.01
)

// ChoiceFunction - упрощённая функция выбора с одной памятью:
//
//	F(h) = phi*f1(h) + (1-phi)*f3(h)
//
// f1(h) = I(h) / (T(h) + 1), где I - изменение целевой функции при последнем
// применении h, T - его длительность в целых секундах;
// f3(h) - целые секунды с последнего применения h.
type ChoiceFunction struct {
	phi float64
}

func NewChoiceFunction(phi float64) *ChoiceFunction {
	return &ChoiceFunction{phi: phi}
}

// Select перебирает весь каталог по возрастанию id; при равенстве оценок
// остаётся первая найденная эвристика.
func (cf *ChoiceFunction) Select(c *hh.Catalog, now time.Duration) (int, bool) {
	best := -math.MaxFloat64
	chosen := -1
	for i, h := range c.Heuristics {
		if h.Ineligible || h.Perf == nil {
			continue
		}
		score := cf.Score(h, now)
		if score > best {
			best = score
			chosen = i
		}
	}
	return chosen, chosen >= 0
}

// Score - оценка эвристики h в момент now.
func (cf *ChoiceFunction) Score(h *hh.Heuristic, now time.Duration) float64 {
	improvement := h.Perf.LastDelta
	took := float64(h.Perf.PreviousDuration/time.Second) + 1
	f1 := improvement / took

	f3 := float64((now - h.Perf.TimeLastApplied) / time.Second)

	return cf.phi*f1 + (1-cf.phi)*f3
}

// Update полностью заменяет статистику h результатом последнего применения.
func (cf *ChoiceFunction) Update(h *hh.Heuristic, o hh.Outcome) {
	h.Perf.TimeLastApplied = o.AppliedAt
	h.Perf.PreviousDuration = o.Took + 1 // +1 защищает от деления на ноль
	h.Perf.LastDelta = o.Delta()

	if o.Improved() {
		cf.phi = phiImproved
	} else {
		// Нижней границы нет: при долгой серии неудач phi уходит в минус
		cf.phi -= phiStep
	}
}

func (cf *ChoiceFunction) Phi() float64 { return cf.phi }

var _ hh.Selector = (*ChoiceFunction)(nil)
