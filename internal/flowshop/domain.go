package flowshop

import (
	"fmt"
	"math/rand"

	"hyperflow/internal/hh"
)

type solution struct {
	perm []int
	cost int
}

// Domain - задача flow-shop в виде, пригодном для гиперэвристик:
// память решений по слотам и набор низкоуровневых эвристик.
type Domain struct {
	inst *Instance
	eval *Evaluator
	rng  *rand.Rand

	dos float64
	iom float64

	memory []*solution

	best     []int
	bestCost int

	// Рабочие буферы эвристик
	scratch   []int
	partial   []int
	positions []int
	removed   []int
	mark      []int
	stamp     int
}

// NewDomain создаёт домен над экземпляром inst; rng задачи не зависит от rng гиперэвристики.
func NewDomain(inst *Instance, rng *rand.Rand) (*Domain, error) {
	eval, err := NewEvaluator(inst)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	n := inst.Jobs
	return &Domain{
		inst:      inst,
		eval:      eval,
		rng:       rng,
		dos:       hh.DefaultParamValue,
		iom:       hh.DefaultParamValue,
		scratch:   make([]int, n),
		partial:   make([]int, 0, n),
		positions: make([]int, n),
		removed:   make([]int, 0, n),
		mark:      make([]int, n),
	}, nil
}

func (d *Domain) NumberOfHeuristics() int { return len(lowLevels) }

func (d *Domain) HeuristicsOfType(t hh.HeuristicType) []int {
	var ids []int
	for id, h := range lowLevels {
		if h.kind == t {
			ids = append(ids, id)
		}
	}
	return ids
}

func (d *Domain) HeuristicsThatUseDepthOfSearch() []int {
	var ids []int
	for id, h := range lowLevels {
		if h.usesDOS {
			ids = append(ids, id)
		}
	}
	return ids
}

func (d *Domain) HeuristicsThatUseIntensityOfMutation() []int {
	var ids []int
	for id, h := range lowLevels {
		if h.usesIOM {
			ids = append(ids, id)
		}
	}
	return ids
}

// HeuristicName - читаемое имя эвристики для журналов.
func (d *Domain) HeuristicName(id int) string {
	if id < 0 || id >= len(lowLevels) {
		return fmt.Sprintf("unknown(%d)", id)
	}
	return lowLevels[id].name
}

// SetDepthOfSearch и SetIntensityOfMutation приводят значение к [0,1].
func (d *Domain) SetDepthOfSearch(v float64) { d.dos = clamp01(v) }

func (d *Domain) SetIntensityOfMutation(v float64) { d.iom = clamp01(v) }

func (d *Domain) DepthOfSearch() float64 { return d.dos }

func (d *Domain) IntensityOfMutation() float64 { return d.iom }

// InitialiseSolution записывает в слот случайную перестановку.
func (d *Domain) InitialiseSolution(slot int) error {
	s, err := d.slotForWrite(slot)
	if err != nil {
		return err
	}
	initPermutation(s.perm)
	shufflePermutation(s.perm, d.rng)
	s.cost = d.eval.MustMakespan(s.perm)
	d.observe(s)
	return nil
}

func (d *Domain) FunctionValue(slot int) (float64, error) {
	s, err := d.slotForRead(slot)
	if err != nil {
		return 0, err
	}
	return float64(s.cost), nil
}

func (d *Domain) ApplyHeuristic(id, src, dst int) (float64, error) {
	if id < 0 || id >= len(lowLevels) {
		return 0, fmt.Errorf("heuristic id %d out of range [0,%d)", id, len(lowLevels))
	}
	from, err := d.slotForRead(src)
	if err != nil {
		return 0, err
	}
	copy(d.scratch, from.perm)
	cost := lowLevels[id].apply(d, d.scratch)

	to, err := d.slotForWrite(dst)
	if err != nil {
		return 0, err
	}
	copy(to.perm, d.scratch)
	to.cost = cost
	d.observe(to)
	return float64(cost), nil
}

func (d *Domain) CopySolution(src, dst int) error {
	from, err := d.slotForRead(src)
	if err != nil {
		return err
	}
	to, err := d.slotForWrite(dst)
	if err != nil {
		return err
	}
	copy(to.perm, from.perm)
	to.cost = from.cost
	return nil
}

// Solution возвращает копию перестановки из слота.
func (d *Domain) Solution(slot int) ([]int, error) {
	s, err := d.slotForRead(slot)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(s.perm))
	copy(out, s.perm)
	return out, nil
}

// BestSolution - лучшая перестановка за время жизни домена.
func (d *Domain) BestSolution() ([]int, int) {
	if d.best == nil {
		return nil, 0
	}
	out := make([]int, len(d.best))
	copy(out, d.best)
	return out, d.bestCost
}

func (d *Domain) observe(s *solution) {
	if d.best == nil {
		d.best = make([]int, len(s.perm))
	} else if s.cost >= d.bestCost {
		return
	}
	copy(d.best, s.perm)
	d.bestCost = s.cost
}

func (d *Domain) slotForRead(slot int) (*solution, error) {
	if slot < 0 || slot >= len(d.memory) || d.memory[slot] == nil {
		return nil, fmt.Errorf("solution slot %d is not initialised", slot)
	}
	return d.memory[slot], nil
}

func (d *Domain) slotForWrite(slot int) (*solution, error) {
	if slot < 0 {
		return nil, fmt.Errorf("solution slot %d is negative", slot)
	}
	for len(d.memory) <= slot {
		d.memory = append(d.memory, nil)
	}
	if d.memory[slot] == nil {
		d.memory[slot] = &solution{perm: make([]int, d.inst.Jobs)}
	}
	return d.memory[slot], nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var _ hh.Problem = (*Domain)(nil)
