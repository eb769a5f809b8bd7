package hh

import "fmt"

// HeuristicType - класс низкоуровневой эвристики.
type HeuristicType int

const (
	Mutation HeuristicType = iota
	Crossover
	RuinRecreate
	LocalSearch
	// Other - эвристика, не отнесённая задачей ни к одному классу.
	Other
)

// Types перечисляет классы, о которых спрашивают задачу при построении каталога.
var Types = []HeuristicType{Mutation, Crossover, RuinRecreate, LocalSearch}

func (t HeuristicType) String() string {
	switch t {
	case Mutation:
		return "MUTATION"
	case Crossover:
		return "CROSSOVER"
	case RuinRecreate:
		return "RUIN_RECREATE"
	case LocalSearch:
		return "LOCAL_SEARCH"
	case Other:
		return "OTHER"
	default:
		return fmt.Sprintf("HeuristicType(%d)", int(t))
	}
}

// Problem - внешняя абстракция задачи оптимизации (минимизация).
// Владеет представлением решений и памятью решений (слотами).
type Problem interface {
	NumberOfHeuristics() int
	HeuristicsOfType(t HeuristicType) []int
	HeuristicsThatUseDepthOfSearch() []int
	HeuristicsThatUseIntensityOfMutation() []int

	SetDepthOfSearch(v float64)
	SetIntensityOfMutation(v float64)

	InitialiseSolution(slot int) error
	FunctionValue(slot int) (float64, error)
	// ApplyHeuristic читает решение из слота src, пишет результат в dst
	// (возможно тот же слот) и возвращает новое значение целевой функции.
	ApplyHeuristic(id, src, dst int) (float64, error)
	CopySolution(src, dst int) error
}

// Apply выставляет параметры эвристики h в задаче и применяет её.
// Ошибка задачи возвращается без изменений.
func Apply(p Problem, h *Heuristic, src, dst int) (float64, error) {
	p.SetDepthOfSearch(h.Config.DepthOfSearch)
	p.SetIntensityOfMutation(h.Config.IntensityOfMutation)
	return p.ApplyHeuristic(h.ID, src, dst)
}
