package hh

import (
	"math"
	"time"
)

// DefaultParamValue - базовое значение depth-of-search и intensity-of-mutation.
const DefaultParamValue = 0.2

// HeuristicConfig - настраиваемые параметры эвристики в диапазоне [0,1].
type HeuristicConfig struct {
	DepthOfSearch       float64
	IntensityOfMutation float64
}

// Performance - статистика применений эвристики.
// Заводится только стратегиями с памятью.
type Performance struct {
	TimeLastApplied time.Duration
	// PreviousDuration всегда >= 1 тика после первого применения.
	PreviousDuration time.Duration
	// LastDelta = before - after; -MaxFloat64 пока эвристика не применялась.
	LastDelta float64
}

// Heuristic - запись о низкоуровневой эвристике на время одного запуска.
type Heuristic struct {
	ID     int
	Type   HeuristicType
	Config HeuristicConfig
	// Ineligible выставляется для кроссоверов: такие эвристики не выбираются никогда.
	Ineligible bool
	Perf       *Performance
}

// Catalog - записи всех эвристик задачи (индекс = id) и упорядоченное множество кандидатов.
type Catalog struct {
	Heuristics []*Heuristic
	Candidates []int
}

// BuildCatalog опрашивает задачу и строит записи эвристик.
// dos и iom сопоставляются позиционно со списками эвристик, использующих
// соответствующий параметр; nil означает «без переопределений».
func BuildCatalog(p Problem, dos, iom []float64) (*Catalog, error) {
	n := p.NumberOfHeuristics()

	c := &Catalog{Heuristics: make([]*Heuristic, n)}
	for i := 0; i < n; i++ {
		c.Heuristics[i] = &Heuristic{
			ID:   i,
			Type: Other,
			Config: HeuristicConfig{
				DepthOfSearch:       DefaultParamValue,
				IntensityOfMutation: DefaultParamValue,
			},
		}
	}

	byType := make(map[HeuristicType][]int, len(Types))
	for _, t := range Types {
		ids := p.HeuristicsOfType(t)
		for _, id := range ids {
			if id < 0 || id >= n {
				return nil, &ConfigurationError{Reason: ReasonIDOutOfRange, Param: t.String(), Need: n, Got: id}
			}
			c.Heuristics[id].Type = t
		}
		byType[t] = ids
	}

	for _, id := range byType[Crossover] {
		c.Heuristics[id].Ineligible = true
	}

	if err := applyOverrides(c, "depth of search", p.HeuristicsThatUseDepthOfSearch(), dos,
		func(h *Heuristic, v float64) { h.Config.DepthOfSearch = v }); err != nil {
		return nil, err
	}
	if err := applyOverrides(c, "intensity of mutation", p.HeuristicsThatUseIntensityOfMutation(), iom,
		func(h *Heuristic, v float64) { h.Config.IntensityOfMutation = v }); err != nil {
		return nil, err
	}

	// Порядок кандидатов: мутации, ruin-recreate, локальный поиск
	for _, t := range []HeuristicType{Mutation, RuinRecreate, LocalSearch} {
		for _, id := range byType[t] {
			if c.Heuristics[id].Ineligible {
				continue
			}
			c.Candidates = append(c.Candidates, id)
		}
	}
	if len(c.Candidates) == 0 {
		return nil, ErrNoApplicableHeuristics
	}

	return c, nil
}

func applyOverrides(c *Catalog, param string, ids []int, values []float64, set func(*Heuristic, float64)) error {
	if values == nil {
		return nil
	}
	if len(values) < len(ids) {
		return &ConfigurationError{Reason: ReasonInsufficientOverrides, Param: param, Need: len(ids), Got: len(values)}
	}
	for i, id := range ids {
		if id < 0 || id >= len(c.Heuristics) {
			return &ConfigurationError{Reason: ReasonIDOutOfRange, Param: param, Need: len(c.Heuristics), Got: id}
		}
		set(c.Heuristics[id], values[i])
	}
	return nil
}

// TrackPerformance заводит статистику применений для всех записей.
// start - момент начала запуска по часам Run.
func (c *Catalog) TrackPerformance(start time.Duration) {
	for _, h := range c.Heuristics {
		h.Perf = &Performance{
			TimeLastApplied: start,
			LastDelta:       -math.MaxFloat64,
		}
	}
}

// Heuristic возвращает запись по id.
func (c *Catalog) Heuristic(id int) *Heuristic {
	return c.Heuristics[id]
}

// Len - число эвристик в каталоге.
func (c *Catalog) Len() int { return len(c.Heuristics) }
