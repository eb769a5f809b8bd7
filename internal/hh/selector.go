package hh

import "time"

// Outcome - результат одного применения эвристики.
type Outcome struct {
	Before float64
	After  float64
	// AppliedAt - метка часов Run непосредственно перед применением.
	AppliedAt time.Duration
	// Took - длительность применения без поправки +1.
	Took time.Duration
}

// Delta - изменение целевой функции; > 0 означает улучшение (минимизация).
func (o Outcome) Delta() float64 { return o.Before - o.After }

// Improved сообщает, стало ли решение строго лучше.
func (o Outcome) Improved() bool { return o.Before > o.After }

// Selector - адаптивный механизм выбора эвристик, выбирается при создании стратегии.
type Selector interface {
	// Select возвращает id эвристики с наилучшей оценкой.
	// ok == false, если ни одна эвристика не прошла порог отбора.
	Select(c *Catalog, now time.Duration) (id int, ok bool)
	// Update учитывает результат применения эвристики h.
	Update(h *Heuristic, o Outcome)
}
