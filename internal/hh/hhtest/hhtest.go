// Package hhtest - заглушка задачи и ручные часы для тестов стратегий.
package hhtest

import (
	"fmt"
	"time"

	"hyperflow/internal/hh"
)

// Problem - задача со сценарием значений целевой функции.
// Каждое применение эвристики возвращает следующее значение из Values
// независимо от id; после исчерпания повторяется последнее.
type Problem struct {
	N     int
	Types map[hh.HeuristicType][]int
	DOS   []int
	IOM   []int

	Initial float64
	Values  []float64

	// ApplyErr возвращается из ApplyHeuristic вместо значения.
	ApplyErr error
	// OnApply вызывается перед каждым применением (например, чтобы сдвинуть часы).
	OnApply func(id int)

	Applied []int
	Params  []hh.HeuristicConfig
	Copies  [][2]int

	dos, iom float64
	slots    map[int]float64
	next     int
}

// NewProblem - n эвристик; все без типа, пока не заданы Types.
func NewProblem(n int, initial float64, values ...float64) *Problem {
	return &Problem{
		N:       n,
		Types:   map[hh.HeuristicType][]int{},
		Initial: initial,
		Values:  values,
	}
}

func (p *Problem) NumberOfHeuristics() int { return p.N }

func (p *Problem) HeuristicsOfType(t hh.HeuristicType) []int { return p.Types[t] }

func (p *Problem) HeuristicsThatUseDepthOfSearch() []int { return p.DOS }

func (p *Problem) HeuristicsThatUseIntensityOfMutation() []int { return p.IOM }

func (p *Problem) SetDepthOfSearch(v float64) { p.dos = v }

func (p *Problem) SetIntensityOfMutation(v float64) { p.iom = v }

func (p *Problem) InitialiseSolution(slot int) error {
	if p.slots == nil {
		p.slots = map[int]float64{}
	}
	p.slots[slot] = p.Initial
	return nil
}

func (p *Problem) FunctionValue(slot int) (float64, error) {
	v, ok := p.slots[slot]
	if !ok {
		return 0, fmt.Errorf("slot %d is empty", slot)
	}
	return v, nil
}

func (p *Problem) ApplyHeuristic(id, src, dst int) (float64, error) {
	if p.OnApply != nil {
		p.OnApply(id)
	}
	p.Applied = append(p.Applied, id)
	p.Params = append(p.Params, hh.HeuristicConfig{DepthOfSearch: p.dos, IntensityOfMutation: p.iom})
	if p.ApplyErr != nil {
		return 0, p.ApplyErr
	}
	if _, ok := p.slots[src]; !ok {
		return 0, fmt.Errorf("slot %d is empty", src)
	}

	v := p.Initial
	if len(p.Values) > 0 {
		i := p.next
		if i >= len(p.Values) {
			i = len(p.Values) - 1
		}
		v = p.Values[i]
		p.next++
	}
	p.slots[dst] = v
	return v, nil
}

func (p *Problem) CopySolution(src, dst int) error {
	v, ok := p.slots[src]
	if !ok {
		return fmt.Errorf("slot %d is empty", src)
	}
	p.slots[dst] = v
	p.Copies = append(p.Copies, [2]int{src, dst})
	return nil
}

var _ hh.Problem = (*Problem)(nil)

// Clock - ручные часы для hh.WithClock.
type Clock struct {
	now time.Duration
}

func (c *Clock) Now() time.Duration { return c.now }

func (c *Clock) Advance(d time.Duration) { c.now += d }
