package hh

import (
	"math"
	"time"
)

// Clock возвращает монотонное время от произвольной точки отсчёта.
type Clock func() time.Duration

// SystemClock - монотонные часы процесса.
func SystemClock() Clock {
	origin := time.Now()
	return func() time.Duration { return time.Since(origin) }
}

// Run - драйвер запуска: часы, бюджет времени и лучшее найденное значение.
// Один Run обслуживает ровно один запуск стратегии.
type Run struct {
	TimeLimit time.Duration
	// MaxIterations ограничивает число итераций; 0 - без ограничения.
	MaxIterations int

	clock      Clock
	start      time.Duration
	iterations int
	best       float64
}

type RunOption func(*Run)

// WithClock подменяет системные часы (используется в тестах).
func WithClock(c Clock) RunOption {
	return func(r *Run) { r.clock = c }
}

// WithMaxIterations ограничивает запуск заданным числом итераций.
func WithMaxIterations(n int) RunOption {
	return func(r *Run) { r.MaxIterations = n }
}

func NewRun(limit time.Duration, opts ...RunOption) *Run {
	r := &Run{TimeLimit: limit, best: math.Inf(1)}
	for _, o := range opts {
		o(r)
	}
	if r.clock == nil {
		r.clock = SystemClock()
	}
	return r
}

// Start фиксирует начало отсчёта бюджета и сбрасывает счётчики.
func (r *Run) Start() {
	r.start = r.clock()
	r.iterations = 0
	r.best = math.Inf(1)
}

// Now - текущее показание часов (монотонная метка).
func (r *Run) Now() time.Duration { return r.clock() }

// StartedAt - метка начала запуска.
func (r *Run) StartedAt() time.Duration { return r.start }

// Elapsed - время с начала запуска.
func (r *Run) Elapsed() time.Duration { return r.clock() - r.start }

// HasTimeExpired опрашивается в начале каждой итерации.
// Истина, если исчерпан бюджет времени или лимит итераций.
func (r *Run) HasTimeExpired() bool {
	if r.MaxIterations > 0 && r.iterations >= r.MaxIterations {
		return true
	}
	if r.TimeLimit > 0 && r.Elapsed() >= r.TimeLimit {
		return true
	}
	r.iterations++
	return false
}

// Iterations - число начатых итераций.
func (r *Run) Iterations() int { return r.iterations }

// Observe учитывает новое значение целевой функции.
func (r *Run) Observe(v float64) {
	if v < r.best {
		r.best = v
	}
}

// BestSolutionValue - лучшее значение за запуск; +Inf, если значений не было.
func (r *Run) BestSolutionValue() float64 { return r.best }
